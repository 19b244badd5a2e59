// Package migrate flattens accounts and external credentials into
// target-system-agnostic migration records: a template name, the credential
// fields, and the merged permission view across the object's own ACL and
// its set and folder memberships.
package migrate

import (
	"strings"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/permissions"
)

// Bucket is the coarse permission class a decoded grant maps onto in the
// target system.
type Bucket string

const (
	// BucketOwner is full control in the target system.
	BucketOwner Bucket = "Owner"
	// BucketView allows reading the credential value.
	BucketView Bucket = "View"
	// BucketEdit allows metadata changes without value access.
	BucketEdit Bucket = "Edit"
	// BucketList is bare visibility.
	BucketList Bucket = "List"
)

// ClassifyGrant maps a decoded grant into exactly one bucket, tested in
// fixed priority order. The tests run against the lexically ordered flag
// string, so decode determinism feeds directly into classification.
func ClassifyGrant(g permissions.Grant) Bucket {
	flags := g.FlagString()
	switch {
	case strings.Contains(flags, "Grant") || strings.Contains(flags, "Owner"):
		return BucketOwner
	case strings.Contains(flags, "Checkout") || strings.Contains(flags, "Retrieve") || strings.Contains(flags, "Naked"):
		return BucketView
	case strings.Contains(flags, "Edit"):
		return BucketEdit
	default:
		return BucketList
	}
}

// Permission is one migrated grant: a principal and its bucket.
type Permission struct {
	// Principal is the grant holder.
	Principal acl.Principal
	// Bucket is the target-system permission class.
	Bucket Bucket
	// Inherited carries the source entry's inheritance flag.
	Inherited bool
}

// classifyEntries converts access entries into migration permissions.
func classifyEntries(entries []acl.Entry) []Permission {
	perms := make([]Permission, 0, len(entries))
	for _, e := range entries {
		perms = append(perms, Permission{
			Principal: e.Principal,
			Bucket:    ClassifyGrant(e.Grant),
			Inherited: e.Inherited,
		})
	}
	return perms
}

// SourceKind tags which constructor produced a record.
type SourceKind string

const (
	// SourceAccount marks records mapped from a vaulted account.
	SourceAccount SourceKind = "account"
	// SourceSecret marks records mapped from a vaulted secret.
	SourceSecret SourceKind = "secret"
	// SourceExternal marks records mapped from an external credential
	// tuple.
	SourceExternal SourceKind = "external"
)

// ExternalCredential is a (target, username, password) tuple supplied from
// outside the tenant, mapped without any remote lookups.
type ExternalCredential struct {
	// Target is the host or service the credential applies to.
	Target string
	// Username is the login name.
	Username string
	// Password is the credential value.
	Password string
	// Folder is the optional target folder.
	Folder string
	// TemplateName optionally names the target template directly.
	TemplateName string
}

// Record is one flattened, exportable migration unit.
type Record struct {
	// SecretTemplateName is the resolved target template; empty when the
	// source combination has no mapping.
	SecretTemplateName string `json:"secret_template_name"`
	// SecretName is the target secret name.
	SecretName string `json:"secret_name"`
	// Target is the host/domain/database the credential applies to.
	Target string `json:"target"`
	// Username is the login name.
	Username string `json:"username"`
	// Password is the credential value; populated only when the caller
	// checked the account out.
	Password string `json:"password,omitempty"`
	// Folder is the target folder, from folder memberships or the
	// external credential.
	Folder string `json:"folder,omitempty"`
	// Permissions are classified from the source object's own ACL.
	Permissions []Permission `json:"permissions"`
	// FolderPermissions are classified from folder-set memberships.
	FolderPermissions []Permission `json:"folder_permissions"`
	// SetPermissions are classified from manual-set member ACLs.
	SetPermissions []Permission `json:"set_permissions"`
	// MemberOfSets are the sets the source object belongs to.
	MemberOfSets []*object.Set `json:"-"`
	// HasConflicts is true iff the object belongs to more than one set;
	// recomputed on every membership resolution.
	HasConflicts bool `json:"has_conflicts"`
	// SourceID identifies the source object, empty for external
	// credentials.
	SourceID string `json:"source_id,omitempty"`
	// SourceKind tags the constructor path.
	SourceKind SourceKind `json:"source_kind"`
}
