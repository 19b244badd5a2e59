package object

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/permissions"
)

// Secret content endpoints.
const (
	retrieveSecretEndpoint    = "/ServerManage/RetrieveSecretContents"
	secretDownloadURLEndpoint = "/ServerManage/RequestSecretDownloadUrl"
)

// SecretType distinguishes text secrets from vaulted files.
type SecretType string

const (
	// SecretText is an inline text secret.
	SecretText SecretType = "Text"
	// SecretFile is a vaulted file; retrieval yields a short-lived
	// download URL, not bytes.
	SecretFile SecretType = "File"
)

// ContentState is the secret content lifecycle. Transitions are one-way:
// Unretrieved -> Retrieved -> Exported.
type ContentState int

const (
	// StateUnretrieved means content fields are unpopulated.
	StateUnretrieved ContentState = iota
	// StateRetrieved means content (or a download handle) is held.
	StateRetrieved
	// StateExported means the secret has been written out. Terminal.
	StateExported
)

// RootParentPath is the sentinel parent path for root-level secrets.
const RootParentPath = "."

// Secret is a vaulted secret record. It is a snapshot of remote state at
// fetch time; content fields are lazily hydrated by Retrieve.
type Secret struct {
	// ID is the tenant identifier.
	ID string
	// Name is the secret's display name.
	Name string
	// Type distinguishes Text from File secrets.
	Type SecretType
	// ParentPath is the folder path, RootParentPath for root secrets.
	ParentPath string
	// Description is the operator-facing description.
	Description string
	// Created is when the secret was created.
	Created time.Time
	// Modified is the last modification time, if any.
	Modified *time.Time
	// LastRetrieved is the last content retrieval time, if any.
	LastRetrieved *time.Time
	// AccessEntries is the secret's own ACL.
	AccessEntries []acl.Entry
	// WorkflowEnabled reports whether checkout requires approval.
	WorkflowEnabled bool
	// Approvers is the approval chain, populated only when
	// WorkflowEnabled is set.
	Approvers []Approver

	// Text holds retrieved text content, Text secrets only.
	Text string
	// FileName is the stored filename, File secrets only.
	FileName string
	// FileSize is the display size string ("2 KB"), File secrets only.
	FileSize string
	// downloadURL is the short-lived handle issued for File secrets.
	downloadURL string

	state ContentState
}

// State returns the content lifecycle state.
func (s *Secret) State() ContentState {
	return s.state
}

// NewSecret builds a Secret from a query row, resolving its ACL and, when
// workflow is enabled, its approver chain.
func NewSecret(ctx context.Context, resolver *acl.Resolver, row api.Row) (*Secret, error) {
	id := row.String("ID")
	name := row.String("SecretName")
	if id == "" || name == "" {
		return nil, platformerrors.New(platformerrors.ErrCodeObjectRowInvalid,
			"secret row missing ID or SecretName",
			platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), nil)
	}

	parent := row.String("ParentPath")
	if parent == "" {
		parent = RootParentPath
	}

	s := &Secret{
		ID:              id,
		Name:            name,
		Type:            SecretType(row.String("Type")),
		ParentPath:      parent,
		Description:     row.String("Description"),
		WorkflowEnabled: row.Bool("WorkflowEnabled"),
		FileName:        row.String("SecretFileName"),
		FileSize:        row.String("SecretFileSize"),
	}
	if t, ok := row.OptTime("WhenCreated"); ok {
		s.Created = t
	}
	if t, ok := row.OptTime("WhenModified"); ok {
		s.Modified = &t
	}
	if t, ok := row.OptTime("LastRetrieved"); ok {
		s.LastRetrieved = &t
	}

	aces, err := resolver.RowAces(ctx, permissions.ObjectTypeSecret, id)
	if err != nil {
		return nil, err
	}
	s.AccessEntries = aces

	if s.WorkflowEnabled {
		approvers, err := ParseApprovers(row.String("WorkflowApproversList"))
		if err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.ErrCodeObjectRowInvalid, err.Error(),
					platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), err),
				"secret", name)
		}
		s.Approvers = approvers
	}

	return s, nil
}

// retrieveResult is the Result payload of the content endpoints.
type retrieveResult struct {
	SecretText string `json:"SecretText"`
	Location   string `json:"Location"`
}

// Retrieve hydrates the secret's content: text for Text secrets, a
// short-lived download URL for File secrets. Valid only once, from the
// Unretrieved state.
func (s *Secret) Retrieve(ctx context.Context, caller api.Caller) error {
	if s.state != StateUnretrieved {
		return fmt.Errorf("secret %s content already retrieved", s.Name)
	}

	switch s.Type {
	case SecretText:
		result, err := caller.Invoke(ctx, retrieveSecretEndpoint, map[string]string{"ID": s.ID})
		if err != nil {
			return err
		}
		var rr retrieveResult
		if err := json.Unmarshal(result, &rr); err != nil {
			return platformerrors.WrapRemoteCallError(err, retrieveSecretEndpoint, s.ID)
		}
		s.Text = rr.SecretText
	case SecretFile:
		result, err := caller.Invoke(ctx, secretDownloadURLEndpoint, map[string]string{"secretID": s.ID})
		if err != nil {
			return err
		}
		var rr retrieveResult
		if err := json.Unmarshal(result, &rr); err != nil {
			return platformerrors.WrapRemoteCallError(err, secretDownloadURLEndpoint, s.ID)
		}
		s.downloadURL = rr.Location
	default:
		return fmt.Errorf("secret %s has unknown type %q", s.Name, s.Type)
	}

	s.state = StateRetrieved
	return nil
}

// ExportResult reports what Export did with one secret.
type ExportResult struct {
	// Path is the file written, empty when skipped.
	Path string
	// Skipped reports a Text no-clobber skip.
	Skipped bool
}

// Export writes the retrieved secret under baseDir, creating the secret's
// parent-path directory when missing. Exports never clobber: a Text secret
// whose target file exists is silently skipped; a File secret name
// collision gets an 8-character random suffix before the extension.
func (s *Secret) Export(ctx context.Context, fsys FS, dl Downloader, baseDir string) (ExportResult, error) {
	if s.state == StateExported {
		return ExportResult{}, fmt.Errorf("secret %s already exported", s.Name)
	}
	if s.state != StateRetrieved {
		return ExportResult{}, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeSecretNotRetrieved,
				fmt.Sprintf("secret %s content not retrieved", s.Name),
				platformerrors.GetSuggestion(platformerrors.ErrCodeSecretNotRetrieved), nil),
			"secret", s.Name)
	}

	dir := baseDir
	if s.ParentPath != RootParentPath {
		dir = filepath.Join(baseDir, filepath.FromSlash(s.ParentPath))
	}
	if err := fsys.EnsureDir(dir); err != nil {
		return ExportResult{}, exportErr(err, s.Name)
	}

	switch s.Type {
	case SecretText:
		path := filepath.Join(dir, s.Name+".txt")
		if fsys.FileExists(path) {
			s.state = StateExported
			return ExportResult{Skipped: true}, nil
		}
		if err := fsys.WriteFile(path, []byte(s.Text), ExportFileMode); err != nil {
			return ExportResult{}, exportErr(err, s.Name)
		}
		s.state = StateExported
		return ExportResult{Path: path}, nil

	case SecretFile:
		name := s.FileName
		if name == "" {
			name = s.Name
		}
		path := filepath.Join(dir, name)
		if fsys.FileExists(path) {
			path = filepath.Join(dir, suffixFileName(name))
		}
		data, err := dl.Download(ctx, s.downloadURL)
		if err != nil {
			return ExportResult{}, exportErr(err, s.Name)
		}
		if err := fsys.WriteFile(path, data, ExportFileMode); err != nil {
			return ExportResult{}, exportErr(err, s.Name)
		}
		s.state = StateExported
		return ExportResult{Path: path}, nil
	}

	return ExportResult{}, fmt.Errorf("secret %s has unknown type %q", s.Name, s.Type)
}

// suffixFileName inserts an 8-character random suffix before the extension
// so a colliding export never overwrites an earlier one.
func suffixFileName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)
}

func exportErr(err error, secret string) error {
	return platformerrors.WithContext(
		platformerrors.New(platformerrors.ErrCodeExportFailed, err.Error(),
			platformerrors.GetSuggestion(platformerrors.ErrCodeExportFailed), err),
		"secret", secret)
}
