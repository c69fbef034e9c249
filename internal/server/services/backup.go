package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/authz"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// Function variables below are test seams for the AWS SDK calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// tenantExport is the backup object layout written to S3.
type tenantExport struct {
	TenantID     string                      `json:"tenant_id"`
	BackupID     string                      `json:"backup_id"`
	Mode         domain.BackupMode           `json:"mode"`
	CreatedAt    time.Time                   `json:"created_at"`
	Users        []domain.SessionInfo        `json:"users,omitempty"`
	FeatureFlags []domain.FeatureFlagRecord  `json:"feature_flags,omitempty"`
	ConfigItems  []domain.ConfigItem         `json:"config_items"`
	License      *domain.LicenseState        `json:"license,omitempty"`
	Audit        []domain.AuditLogEntry      `json:"audit,omitempty"`
}

// BackupService streams tenant exports to S3-compatible object storage and
// validates restore requests against the stored objects.
type BackupService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	cfg    *config.Config
	stepup *StepUpService
	audit  *AuditRecorder
	log    logging.Logger
}

func NewBackupService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, stepup *StepUpService, audit *AuditRecorder, log logging.Logger) *BackupService {
	return &BackupService{db: db, rm: rm, cfg: cfg, stepup: stepup, audit: audit, log: log}
}

func (s *BackupService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3RootUser,
			s.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}
	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func objectKey(tenantID, backupID string) string {
	return fmt.Sprintf("backups/%s/%s.json", tenantID, backupID)
}

func (s *BackupService) export(ctx context.Context, tenantID, backupID string, mode domain.BackupMode, at time.Time) (*tenantExport, error) {
	e := &tenantExport{TenantID: tenantID, BackupID: backupID, Mode: mode, CreatedAt: at}

	items, err := s.rm.ConfigItems(s.db).List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	e.ConfigItems = items

	if mode == domain.BackupConfigOnly {
		return e, nil
	}

	principals, err := s.rm.Principals(s.db).List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, p := range principals {
		e.Users = append(e.Users, p.SessionInfo())
	}
	if e.FeatureFlags, err = s.rm.FeatureFlags(s.db).List(ctx, tenantID); err != nil {
		return nil, err
	}
	license, err := s.rm.TenantState(s.db).GetLicense(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	e.License = license
	if e.Audit, err = s.rm.AuditLog(s.db).List(ctx, tenantID, 1000); err != nil {
		return nil, err
	}
	return e, nil
}

// TriggerBackup exports tenant state and uploads it as one JSON object.
// Admin access suffices, but never during an impersonation.
func (s *BackupService) TriggerBackup(ctx context.Context, claims *auth.Claims, mode domain.BackupMode) (*api.BackupResponse, error) {
	if d := authz.CanAccessAdmin(claims.Role); !d.Allowed {
		return nil, forbidden(d)
	}
	if claims.Impersonating() {
		return nil, common.ErrImpersonationRequired
	}

	if mode == "" {
		mode = domain.BackupFull
	}
	if mode != domain.BackupFull && mode != domain.BackupConfigOnly {
		return nil, fmt.Errorf("%w: unknown backup mode %q", common.ErrorValidation, mode)
	}

	backupID := uuid.NewString()
	startedAt := time.Now().UTC()

	export, err := s.export(ctx, claims.TenantID, backupID, mode, startedAt)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(export)
	if err != nil {
		return nil, err
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	key := objectKey(claims.TenantID, backupID)
	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("backup upload: %w", err)
	}

	if err := s.rm.TenantState(s.db).RecordBackup(ctx, claims.TenantID, startedAt, mode); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, claims, "infrastructure.backup", "backup:"+backupID, map[string]string{
		"mode": string(mode),
		"key":  key,
	}, domain.SeverityInfo)

	status, err := s.rm.TenantState(s.db).GetInfrastructure(ctx, claims.TenantID)
	if err != nil {
		return nil, err
	}
	return &api.BackupResponse{BackupID: backupID, StartedAt: startedAt, Status: *status}, nil
}

// TriggerRestore validates the backup object exists before touching
// anything. A dry run only stamps the dry-run timestamp.
func (s *BackupService) TriggerRestore(ctx context.Context, claims *auth.Claims, req *api.RestoreRequest) (*api.RestoreResponse, error) {
	if d := authz.CanRunCriticalOps(claims.Role, claims.Impersonating()); !d.Allowed {
		return nil, forbidden(d)
	}
	if err := s.stepup.RequireFresh(ctx, claims.UserID); err != nil {
		return nil, err
	}
	if req.BackupID == "" {
		return nil, fmt.Errorf("%w: backup id is required", common.ErrorValidation)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	key := objectKey(claims.TenantID, req.BackupID)
	if _, err := headObject(client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("%w: backup %s not found", common.ErrorValidation, req.BackupID)
	}

	at := time.Now().UTC()
	if err := s.rm.TenantState(s.db).RecordRestore(ctx, claims.TenantID, at, req.DryRun); err != nil {
		return nil, err
	}

	severity := domain.SeverityCritical
	if req.DryRun {
		severity = domain.SeverityWarning
	}
	metadata := map[string]string{"backup_id": req.BackupID, "dry_run": fmt.Sprintf("%t", req.DryRun)}
	if req.Note != "" {
		metadata["note"] = req.Note
	}
	s.audit.Record(ctx, claims, "infrastructure.restore", "backup:"+req.BackupID, metadata, severity)

	status, err := s.rm.TenantState(s.db).GetInfrastructure(ctx, claims.TenantID)
	if err != nil {
		return nil, err
	}
	return &api.RestoreResponse{DryRun: req.DryRun, Status: *status}, nil
}
