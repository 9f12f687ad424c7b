package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"cern-sync/core/logger"
	"cern-sync/core/storage"
	"cern-sync/feature/identity/models"
	"cern-sync/feature/identity/reconcile"
	"cern-sync/feature/identity/reindex"
	"cern-sync/feature/identity/serializer"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AuthzSource fetches raw identity records from the AuthZ REST service.
type AuthzSource interface {
	FetchIdentities(ctx context.Context, since string) ([]map[string]any, error)
}

// DirectorySource fetches raw identity records from the LDAP directory.
type DirectorySource interface {
	FetchIdentities(ctx context.Context) ([]models.DirectoryRecord, error)
}

// Service orchestrates a users sync run: fetch, serialize, reconcile,
// reindex, report.
type Service struct {
	cfg        Config
	authz      AuthzSource
	ldap       DirectorySource
	authzSer   *serializer.AuthzSerializer
	dirSer     *serializer.DirectorySerializer
	engine     *reconcile.Engine
	reindexer  reindex.Submitter
	archive    storage.Client
	archiveCfg storage.Config
	logger     *zap.Logger

	group      singleflight.Group
	mu         gosync.Mutex
	lastReport *Report
}

// NewService wires the users sync orchestrator. The archive client may be
// nil when report archiving is disabled.
func NewService(
	cfg Config,
	authz AuthzSource,
	ldap DirectorySource,
	engine *reconcile.Engine,
	reindexer reindex.Submitter,
	archive storage.Client,
	archiveCfg storage.Config,
	log *zap.Logger,
) *Service {
	if cfg.Method == "" {
		cfg.Method = MethodAuthz
	}
	return &Service{
		cfg:        cfg,
		authz:      authz,
		ldap:       ldap,
		authzSer:   serializer.NewAuthzSerializer(nil, nil),
		dirSer:     serializer.NewDirectorySerializer(nil, nil),
		engine:     engine,
		reindexer:  reindexer,
		archive:    archive,
		archiveCfg: archiveCfg,
		logger:     log,
	}
}

// SyncUsers runs one users sync. Concurrent triggers while a run is in
// flight share that run's report instead of starting another.
func (s *Service) SyncUsers(ctx context.Context, method, since string) (*Report, error) {
	if method == "" {
		method = s.cfg.Method
	}
	report, err, _ := s.group.Do("users", func() (any, error) {
		return s.syncUsers(ctx, method, since)
	})
	if err != nil {
		return nil, err
	}
	return report.(*Report), nil
}

func (s *Service) syncUsers(ctx context.Context, method, since string) (*Report, error) {
	runID := uuid.NewString()
	log := logger.WithRunID(s.logger, runID)
	started := time.Now()

	log.Info("users_sync",
		zap.String("status", "started"),
		zap.String("method", method),
		zap.String("since", since))

	identities, fetched, skipped, err := s.fetchAndSerialize(ctx, log, method, since)
	if err != nil {
		log.Error("users_sync", zap.String("status", "failed"), zap.Error(err))
		return nil, err
	}

	plan, err := s.engine.BuildPlan(ctx, identities)
	if err != nil {
		log.Error("users_sync", zap.String("status", "failed"), zap.Error(err))
		return nil, err
	}

	log.Info("updating_existing_users", zap.String("status", "started"))
	updated, inserted, applyErr := s.engine.Apply(ctx, plan)
	if applyErr != nil {
		log.Error("users_sync", zap.String("status", "failed"), zap.Error(applyErr))
		return nil, applyErr
	}
	log.Info("updating_existing_users",
		zap.String("status", "completed"),
		zap.Int("count", len(updated)))
	log.Info("inserting_missing_users",
		zap.String("status", "completed"),
		zap.Int("count", len(inserted)))

	s.reindexer.Submit(ctx, append(append([]uint{}, updated...), inserted...))

	report := &Report{
		RunID:      runID,
		Kind:       "users",
		Method:     method,
		Since:      since,
		StartedAt:  started.UTC(),
		ElapsedMs:  time.Since(started).Milliseconds(),
		Fetched:    fetched,
		Serialized: len(identities),
		Skipped:    skipped,
		Updated:    len(updated),
		Inserted:   len(inserted),
		Outcomes:   plan.Summarize(),
	}
	s.setLastReport(report)
	s.archiveReport(ctx, log, report)

	log.Info("users_sync",
		zap.String("status", "completed"),
		zap.Int("fetched", fetched),
		zap.Int("updated", len(updated)),
		zap.Int("inserted", len(inserted)),
		zap.Int("skipped", skipped),
		zap.Int("faults", report.Outcomes.Faults),
		zap.Duration("elapsed", time.Since(started)))
	return report, nil
}

// fetchAndSerialize pulls the raw records for the chosen method and turns
// them into canonical identities, skipping records that fail validation.
func (s *Service) fetchAndSerialize(ctx context.Context, log *zap.Logger, method, since string) ([]models.CanonicalIdentity, int, int, error) {
	var identities []models.CanonicalIdentity
	var fetched, skipped int

	serialize := func(doSerialize func() (models.CanonicalIdentity, error)) {
		identity, err := doSerialize()
		if err != nil {
			var vErr *serializer.ValidationError
			if errors.As(err, &vErr) {
				skipped++
				log.Warn("Skipping invalid record",
					zap.String("field", vErr.Field),
					zap.String("person_id", vErr.PersonID))
				return
			}
			// Serializers only return validation errors.
			skipped++
			log.Warn("Skipping invalid record", zap.Error(err))
			return
		}
		identities = append(identities, identity)
	}

	switch method {
	case MethodAuthz:
		if s.authz == nil {
			return nil, 0, 0, fmt.Errorf("authz source is not configured")
		}
		records, err := s.authz.FetchIdentities(ctx, since)
		if err != nil {
			return nil, 0, 0, err
		}
		fetched = len(records)
		for _, record := range records {
			serialize(func() (models.CanonicalIdentity, error) {
				return s.authzSer.Serialize(record)
			})
		}
	case MethodLDAP:
		if s.ldap == nil {
			return nil, 0, 0, fmt.Errorf("ldap source is not configured")
		}
		records, err := s.ldap.FetchIdentities(ctx)
		if err != nil {
			return nil, 0, 0, err
		}
		fetched = len(records)
		for _, record := range records {
			serialize(func() (models.CanonicalIdentity, error) {
				return s.dirSer.Serialize(record)
			})
		}
	default:
		return nil, 0, 0, fmt.Errorf("unknown sync method %q", method)
	}

	return identities, fetched, skipped, nil
}

// LastReport returns the most recent completed run report, nil when no run
// has completed yet.
func (s *Service) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *Service) setLastReport(report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReport = report
}

// archiveReport persists the run report to object storage. Best-effort: a
// missing or failing archive never fails the run.
func (s *Service) archiveReport(ctx context.Context, log *zap.Logger, report *Report) {
	if s.archive == nil || !s.archiveCfg.Enabled() {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.Error("Failed to encode run report", zap.Error(err))
		return
	}

	bucket := s.archiveCfg.Bucket
	exists, err := s.archive.BucketExists(ctx, bucket)
	if err != nil {
		log.Error("Failed to check report bucket", zap.Error(err))
		return
	}
	if !exists {
		if err := s.archive.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.archiveCfg.Region}); err != nil {
			log.Error("Failed to create report bucket", zap.Error(err))
			return
		}
	}

	objectName := fmt.Sprintf("reports/%s-%s.json", report.Kind, report.RunID)
	_, err = s.archive.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		log.Error("Failed to archive run report",
			zap.String("object", objectName),
			zap.Error(err))
		return
	}
	log.Debug("Archived run report", zap.String("object", objectName))
}
