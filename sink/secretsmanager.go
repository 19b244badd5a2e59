package sink

import (
	"context"
	"encoding/json"
	"errors"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/migrate"
)

// secretsManagerAPI defines the Secrets Manager operations used by the
// sink. This interface enables testing with mock implementations.
type secretsManagerAPI interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

// SecretsManagerSink migrates records into AWS Secrets Manager. Each record
// becomes one secret named <prefix>/<folder>/<secret name>; records that
// already exist get a new secret value version instead of failing.
type SecretsManagerSink struct {
	client secretsManagerAPI
	prefix string
}

// NewSecretsManagerSink creates a sink using the default AWS configuration
// chain for the given profile and region ("" for the environment default).
func NewSecretsManagerSink(ctx context.Context, profile, region, prefix string) (*SecretsManagerSink, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if profile != "" {
		optFns = append(optFns, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	return &SecretsManagerSink{
		client: secretsmanager.NewFromConfig(cfg),
		prefix: prefix,
	}, nil
}

// newSecretsManagerSinkWithClient creates a sink with a custom client (for
// testing).
func newSecretsManagerSinkWithClient(client secretsManagerAPI, prefix string) *SecretsManagerSink {
	return &SecretsManagerSink{client: client, prefix: prefix}
}

// Name identifies the sink.
func (s *SecretsManagerSink) Name() string { return "secretsmanager" }

// secretPayload is the JSON value stored per migrated secret.
type secretPayload struct {
	Target   string `json:"target"`
	Username string `json:"username"`
	Password string `json:"password"`
	Template string `json:"template,omitempty"`
}

// Write stores each record as one Secrets Manager secret. Per-record
// failures are collected in the report; the batch continues.
func (s *SecretsManagerSink) Write(ctx context.Context, records []*migrate.Record) (*WriteReport, error) {
	report := newWriteReport()

	for _, rec := range records {
		if err := s.writeOne(ctx, rec); err != nil {
			report.Failed[rec.SecretName] = platformerrors.WithContext(
				platformerrors.New(platformerrors.ErrCodeSinkWriteFailed, err.Error(),
					platformerrors.GetSuggestion(platformerrors.ErrCodeSinkWriteFailed), err),
				"record", rec.SecretName)
			continue
		}
		report.Written++
	}
	return report, nil
}

func (s *SecretsManagerSink) writeOne(ctx context.Context, rec *migrate.Record) error {
	value, err := json.Marshal(secretPayload{
		Target:   rec.Target,
		Username: rec.Username,
		Password: rec.Password,
		Template: rec.SecretTemplateName,
	})
	if err != nil {
		return err
	}

	name := s.secretName(rec)
	_, err = s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(string(value)),
		Description:  aws.String("migrated by pasmigrate from " + string(rec.SourceKind) + " " + rec.SourceID),
	})
	if err == nil {
		return nil
	}

	var exists *smtypes.ResourceExistsException
	if errors.As(err, &exists) {
		_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(name),
			SecretString: aws.String(string(value)),
		})
	}
	return err
}

// secretName builds the target secret path. Secrets Manager forbids
// backslashes, so the composite display name is flattened.
func (s *SecretsManagerSink) secretName(rec *migrate.Record) string {
	name := rec.Target + "_" + rec.Username
	if rec.Username == "" {
		name = rec.SecretName
	}
	parts := []string{}
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if rec.Folder != "" {
		parts = append(parts, rec.Folder)
	}
	parts = append(parts, name)
	return path.Join(parts...)
}
