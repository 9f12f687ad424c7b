package reconcile_test

import (
	"context"
	"testing"

	"cern-sync/feature/identity/models"
	"cern-sync/feature/identity/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory reconcile.Store for engine tests.
type memStore struct {
	accounts map[uint]*models.Account
	nextID   uint

	updateCalls int
	insertCalls int
}

func newMemStore(accounts ...*models.Account) *memStore {
	s := &memStore{accounts: map[uint]*models.Account{}, nextID: 1}
	for _, a := range accounts {
		if a.ID == 0 {
			a.ID = s.nextID
		}
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
		s.accounts[a.ID] = a
	}
	return s
}

func (s *memStore) FindByPersonID(_ context.Context, personID string) (*models.Account, error) {
	for _, a := range s.accounts {
		if a.PersonID == personID {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByIdentifiers(_ context.Context, email, username string) (*models.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email && a.Username == username {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

func (s *memStore) ApplyUpdates(_ context.Context, accounts []*models.Account) error {
	if len(accounts) > 0 {
		s.updateCalls++
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a.Clone()
	}
	return nil
}

func (s *memStore) InsertAll(_ context.Context, accounts []*models.Account) ([]uint, error) {
	if len(accounts) > 0 {
		s.insertCalls++
	}
	var ids []uint
	for _, a := range accounts {
		a.ID = s.nextID
		s.nextID++
		s.accounts[a.ID] = a.Clone()
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func storedAccount(id uint, personID, email, username string) *models.Account {
	return &models.Account{
		ID:       id,
		PersonID: personID,
		Email:    email,
		Username: username,
		Active:   true,
		Profile:  models.JSONMap{"full_name": "John Doe"},
		Preferences: models.JSONMap{
			"locale": "en",
		},
		ExtraData: models.JSONMap{"person_id": personID},
	}
}

func incomingIdentity(personID, email, username string) models.CanonicalIdentity {
	return models.CanonicalIdentity{
		PersonID:    personID,
		Email:       email,
		Username:    username,
		Active:      true,
		Profile:     map[string]any{"full_name": "John Doe"},
		Preferences: map[string]any{"locale": "en"},
		ExtraData:   map[string]any{"person_id": personID},
	}
}

func runSync(t *testing.T, store *memStore, identities ...models.CanonicalIdentity) ([]uint, []uint, *reconcile.Plan) {
	t.Helper()
	engine := reconcile.NewEngine(store, zap.NewNop())
	plan, err := engine.BuildPlan(context.Background(), identities)
	require.NoError(t, err)
	updated, inserted, err := engine.Apply(context.Background(), plan)
	require.NoError(t, err)
	return updated, inserted, plan
}

func TestNewIdentityIsInserted(t *testing.T) {
	store := newMemStore()

	updated, inserted, _ := runSync(t, store, incomingIdentity("123", "a@x.org", "jdoe"))

	assert.Empty(t, updated)
	require.Len(t, inserted, 1)

	account := store.accounts[inserted[0]]
	assert.Equal(t, "123", account.PersonID)
	assert.Equal(t, "a@x.org", account.Email)
	assert.Equal(t, "jdoe", account.Username)
	assert.Empty(t, account.Changes())
}

func TestConsistentUnchangedIsIdempotent(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	updated, inserted, plan := runSync(t, store, incomingIdentity("123", "a@x.org", "jdoe"))

	assert.Empty(t, updated)
	assert.Empty(t, inserted)
	assert.Equal(t, 0, store.updateCalls)
	assert.Equal(t, 1, plan.Summarize().Consistent)
	assert.Equal(t, 1, plan.Summarize().Unchanged)
}

func TestConsistentProfileChangeIsMerged(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	identity := incomingIdentity("123", "a@x.org", "jdoe")
	identity.Profile["cern_department"] = "IT"

	updated, inserted, _ := runSync(t, store, identity)

	assert.Equal(t, []uint{1}, updated)
	assert.Empty(t, inserted)

	account := store.accounts[1]
	assert.Equal(t, "IT", account.Profile["cern_department"])
	// Untouched keys survive the shallow merge.
	assert.Equal(t, "John Doe", account.Profile["full_name"])
	// A plain attribute change is not identifier drift.
	assert.Empty(t, account.Changes())
}

func TestDriftedSecondary(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	updated, inserted, plan := runSync(t, store, incomingIdentity("123", "b@x.org", "jdoe"))

	assert.Equal(t, []uint{1}, updated)
	assert.Empty(t, inserted)
	assert.Equal(t, 1, plan.Summarize().DriftedSecondary)

	account := store.accounts[1]
	assert.Equal(t, "b@x.org", account.Email)

	changes := account.Changes()
	require.Len(t, changes, 1)
	entry := changes[0].(map[string]any)
	assert.Equal(t, models.ActionUserDataChanged, entry["action"])
	assert.Equal(t, "a@x.org", entry["previousEmail"])
	assert.Equal(t, "b@x.org", entry["newEmail"])
	assert.Equal(t, "jdoe", entry["previousUsername"])
	assert.Equal(t, "jdoe", entry["newUsername"])
}

func TestDriftedPrimary(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	updated, inserted, plan := runSync(t, store, incomingIdentity("456", "a@x.org", "jdoe"))

	assert.Equal(t, []uint{1}, updated)
	assert.Empty(t, inserted)
	assert.Equal(t, 1, plan.Summarize().DriftedPrimary)

	account := store.accounts[1]
	assert.Equal(t, "456", account.PersonID)

	changes := account.Changes()
	require.Len(t, changes, 1)
	entry := changes[0].(map[string]any)
	assert.Equal(t, models.ActionPersonIDChanged, entry["action"])
	assert.Equal(t, "123", entry["previousPrimaryKey"])
	assert.Equal(t, "456", entry["newPrimaryKey"])
}

func TestSwappedIdentifiersRelink(t *testing.T) {
	store := newMemStore(
		storedAccount(1, "123", "a@x.org", "adoe"),
		storedAccount(2, "456", "b@x.org", "bdoe"),
	)

	// Both accounts exchanged their email/username pairs upstream.
	updated, inserted, plan := runSync(t, store,
		incomingIdentity("123", "b@x.org", "bdoe"),
		incomingIdentity("456", "a@x.org", "adoe"),
	)

	assert.ElementsMatch(t, []uint{1, 2}, updated)
	assert.Empty(t, inserted)
	assert.Empty(t, plan.Faults)

	assert.Equal(t, "b@x.org", store.accounts[1].Email)
	assert.Equal(t, "a@x.org", store.accounts[2].Email)
	require.Len(t, store.accounts[1].Changes(), 1)
	require.Len(t, store.accounts[2].Changes(), 1)
}

func TestConflictWithoutRelinquishIsFault(t *testing.T) {
	store := newMemStore(
		storedAccount(1, "123", "a@x.org", "adoe"),
		storedAccount(2, "456", "b@x.org", "bdoe"),
	)

	// Identity claims account 1's primary key but account 2's pair, and
	// nothing in the run frees that pair up.
	updated, inserted, plan := runSync(t, store, incomingIdentity("123", "b@x.org", "bdoe"))

	assert.Empty(t, updated)
	assert.Empty(t, inserted)
	require.Len(t, plan.Faults, 1)
	assert.Equal(t, uint(1), plan.Faults[0].PrimaryAccountID)
	assert.Equal(t, uint(2), plan.Faults[0].SecondaryAccountID)

	// Neither account was touched.
	assert.Equal(t, "a@x.org", store.accounts[1].Email)
	assert.Equal(t, "b@x.org", store.accounts[2].Email)
	assert.Empty(t, store.accounts[1].Changes())
}

func TestDuplicateResolutionKeepsFirstUpdate(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	// Both identities resolve to account 1 by primary key. The first
	// staged update wins, the second is recorded as a fault.
	updated, inserted, plan := runSync(t, store,
		incomingIdentity("123", "b@x.org", "jdoe"),
		incomingIdentity("123", "c@x.org", "jdoe"),
	)

	assert.Equal(t, []uint{1}, updated)
	assert.Empty(t, inserted)
	require.Len(t, plan.Faults, 1)
	assert.Equal(t, uint(1), plan.Faults[0].PrimaryAccountID)
	assert.Equal(t, "c@x.org", plan.Faults[0].Email)

	assert.Equal(t, "b@x.org", store.accounts[1].Email)
	require.Len(t, store.accounts[1].Changes(), 1)
}

func TestRunTwiceProducesNoSecondMutation(t *testing.T) {
	store := newMemStore(storedAccount(1, "123", "a@x.org", "jdoe"))

	identities := []models.CanonicalIdentity{
		incomingIdentity("123", "b@x.org", "jdoe"),
		incomingIdentity("789", "c@x.org", "cdoe"),
	}

	updated, inserted, _ := runSync(t, store, identities...)
	require.Len(t, updated, 1)
	require.Len(t, inserted, 1)

	updated, inserted, _ = runSync(t, store, identities...)
	assert.Empty(t, updated)
	assert.Empty(t, inserted)

	// Exactly one audit entry, from the first run.
	require.Len(t, store.accounts[1].Changes(), 1)
}

func TestMissingKeyDiffersFromEmpty(t *testing.T) {
	account := storedAccount(1, "123", "a@x.org", "jdoe")
	store := newMemStore(account)

	identity := incomingIdentity("123", "a@x.org", "jdoe")
	identity.Profile["orcid"] = ""

	updated, _, _ := runSync(t, store, identity)

	// The empty incoming value still sets a key that was absent locally.
	assert.Equal(t, []uint{1}, updated)
	value, ok := store.accounts[1].Profile["orcid"]
	require.True(t, ok)
	assert.Equal(t, "", value)
}
