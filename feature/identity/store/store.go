package store

import (
	"context"
	"errors"
	"fmt"

	"cern-sync/feature/identity/models"

	"gorm.io/gorm"
)

// AccountStore persists accounts via gorm.
type AccountStore struct {
	db *gorm.DB
}

// NewAccountStore creates a store bound to the given database handle.
func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Migrate creates or updates the accounts schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Account{})
}

// FindByPersonID returns the account holding the given person id, or nil
// when none exists.
func (s *AccountStore) FindByPersonID(ctx context.Context, personID string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("person_id = ?", personID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by person id: %w", err)
	}
	return &account, nil
}

// FindByIdentifiers returns the account holding the given email and
// username pair, or nil when none exists.
func (s *AccountStore) FindByIdentifiers(ctx context.Context, email, username string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ? AND username = ?", email, username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by identifiers: %w", err)
	}
	return &account, nil
}

// ApplyUpdates persists every changed account in a single transaction. The
// transaction commits before any insert runs, so updates freeing up
// identifiers are durable first.
//
// Inside the transaction the updated rows are first moved to per-row
// sentinel identifiers, then written with their final values. The unique
// indexes are checked per statement, so two accounts exchanging their
// email/username pairs would otherwise collide with each other's
// still-current row no matter the update order.
func (s *AccountStore) ApplyUpdates(ctx context.Context, accounts []*models.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, account := range accounts {
			sentinel := fmt.Sprintf("\x00relink\x00%d", account.ID)
			err := tx.Model(&models.Account{}).Where("id = ?", account.ID).Updates(map[string]any{
				"person_id": sentinel,
				"email":     sentinel,
				"username":  sentinel,
			}).Error
			if err != nil {
				return err
			}
		}
		for _, account := range accounts {
			if err := tx.Save(account).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply account updates: %w", err)
	}
	return nil
}

// InsertAll persists new accounts in a single transaction and returns their
// generated ids.
func (s *AccountStore) InsertAll(ctx context.Context, accounts []*models.Account) ([]uint, error) {
	if len(accounts) == 0 {
		return nil, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(accounts).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert accounts: %w", err)
	}
	ids := make([]uint, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	return ids, nil
}
