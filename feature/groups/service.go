package groups

import (
	"context"
	"errors"
	"time"

	"cern-sync/core/logger"
	"cern-sync/core/utils"
	"cern-sync/feature/groups/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Source fetches raw group records from the AuthZ service.
type Source interface {
	FetchGroups(ctx context.Context, since string) ([]map[string]any, error)
}

// Report summarizes one groups sync run.
type Report struct {
	RunID     string    `json:"run_id"`
	Since     string    `json:"since,omitempty"`
	StartedAt time.Time `json:"started_at"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Fetched   int       `json:"fetched"`
	Skipped   int       `json:"skipped"`
	Upserted  int       `json:"upserted"`
}

// Service orchestrates a groups sync run.
type Service struct {
	source Source
	db     *gorm.DB
	logger *zap.Logger
	group  singleflight.Group
}

// NewService wires the groups sync orchestrator.
func NewService(source Source, db *gorm.DB, log *zap.Logger) *Service {
	return &Service{source: source, db: db, logger: log}
}

// Migrate creates or updates the roles schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Role{})
}

// SyncGroups fetches all groups and upserts them as local roles. Concurrent
// triggers while a run is in flight share that run's report.
func (s *Service) SyncGroups(ctx context.Context, since string) (*Report, error) {
	if s.source == nil {
		return nil, ErrNotConfigured
	}
	report, err, _ := s.group.Do("groups", func() (any, error) {
		return s.syncGroups(ctx, since)
	})
	if err != nil {
		return nil, err
	}
	return report.(*Report), nil
}

func (s *Service) syncGroups(ctx context.Context, since string) (*Report, error) {
	runID := uuid.NewString()
	log := logger.WithRunID(s.logger, runID)
	started := time.Now()

	log.Info("groups_sync",
		zap.String("status", "started"),
		zap.String("since", since))

	records, err := s.source.FetchGroups(ctx, since)
	if err != nil {
		log.Error("groups_sync", zap.String("status", "failed"), zap.Error(err))
		return nil, err
	}

	roles := make([]models.Role, 0, len(records))
	skipped := 0
	for _, record := range records {
		roleID := utils.ToString(record["groupIdentifier"])
		if roleID == "" {
			skipped++
			log.Warn("Skipping group without identifier")
			continue
		}
		roles = append(roles, models.Role{
			RoleID:      roleID,
			Name:        utils.ToString(record["displayName"]),
			Description: utils.ToString(record["description"]),
		})
	}

	if err := s.upsertRoles(ctx, roles); err != nil {
		log.Error("groups_sync", zap.String("status", "failed"), zap.Error(err))
		return nil, err
	}

	report := &Report{
		RunID:     runID,
		Since:     since,
		StartedAt: started.UTC(),
		ElapsedMs: time.Since(started).Milliseconds(),
		Fetched:   len(records),
		Skipped:   skipped,
		Upserted:  len(roles),
	}

	log.Info("groups_sync",
		zap.String("status", "completed"),
		zap.Int("fetched", len(records)),
		zap.Int("upserted", len(roles)),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(started)))
	return report, nil
}

// upsertRoles writes all roles in one transaction, updating name and
// description on conflict with an existing role id.
func (s *Service) upsertRoles(ctx context.Context, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
		}).Create(&roles).Error
	})
}

// ErrNotConfigured reports a groups sync attempted without an AuthZ source.
var ErrNotConfigured = errors.New("groups: authz source is not configured")
