package reconcile

import (
	"context"
	"time"

	"cern-sync/feature/identity/models"

	"go.uber.org/zap"
)

// Store is the persistence surface the engine drives.
type Store interface {
	Lookup
	ApplyUpdates(ctx context.Context, accounts []*models.Account) error
	InsertAll(ctx context.Context, accounts []*models.Account) ([]uint, error)
}

// Engine reconciles incoming identities against the local account store.
type Engine struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates a reconciliation engine.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger, now: time.Now}
}

// BuildPlan classifies every incoming identity and stages the resulting
// mutations. Nothing is written: the plan holds cloned accounts with merges
// already applied, deferred inserts, and faults for skipped identities.
func (e *Engine) BuildPlan(ctx context.Context, identities []models.CanonicalIdentity) (*Plan, error) {
	plan := &Plan{}
	for _, identity := range identities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.classify(ctx, identity, plan); err != nil {
			return nil, err
		}
	}
	e.validate(plan)
	return plan, nil
}

// classify resolves one identity to its terminal outcome and stages it.
func (e *Engine) classify(ctx context.Context, identity models.CanonicalIdentity, plan *Plan) error {
	byPK, err := e.store.FindByPersonID(ctx, identity.PersonID)
	if err != nil {
		return err
	}
	bySec, err := e.store.FindByIdentifiers(ctx, identity.Email, identity.Username)
	if err != nil {
		return err
	}

	switch {
	case byPK == nil && bySec == nil:
		plan.Inserts = append(plan.Inserts, identity)
		return nil

	case byPK != nil:
		// Primary-key match takes precedence. A different account holding
		// the incoming pair is recorded as a conflict and resolved when the
		// plan is validated.
		update := Update{Account: byPK.Clone(), Outcome: OutcomeConsistent}
		if byPK.Email != identity.Email || byPK.Username != identity.Username {
			update.Outcome = OutcomeDriftedSecondary
			update.Account.AppendChange(models.UserDataChange(
				e.now(), byPK.Username, byPK.Email, identity.Username, identity.Email))
			e.logger.Warn("Account identifiers drifted",
				zap.String("person_id", identity.PersonID),
				zap.String("previous_email", byPK.Email),
				zap.String("new_email", identity.Email),
				zap.String("previous_username", byPK.Username),
				zap.String("new_username", identity.Username))
		}
		if bySec != nil && bySec.ID != byPK.ID {
			update.ConflictID = bySec.ID
		}
		update.Changed = mergeAccount(update.Account, identity) || update.Outcome != OutcomeConsistent
		plan.Updates = append(plan.Updates, update)
		return nil

	default:
		// Matched by email/username only: the external key was corrected.
		update := Update{Account: bySec.Clone(), Outcome: OutcomeDriftedPrimary}
		update.Account.AppendChange(models.PersonIDChange(e.now(), bySec.PersonID, identity.PersonID))
		update.Account.PersonID = identity.PersonID
		e.logger.Warn("Account primary key drifted",
			zap.String("previous_person_id", bySec.PersonID),
			zap.String("new_person_id", identity.PersonID),
			zap.String("email", identity.Email))
		mergeAccount(update.Account, identity)
		update.Changed = true
		plan.Updates = append(plan.Updates, update)
		return nil
	}
}

// validate drops staged updates that would violate uniqueness and records
// them as faults.
//
// An update carrying a conflict may only proceed when the conflicting
// account is itself staged to give up the contested email/username pair in
// the same run (the swapped-identifiers case). Otherwise two live accounts
// claim one pair and the identity is skipped, not merged.
func (e *Engine) validate(plan *Plan) {
	pairByID := make(map[uint][2]string, len(plan.Updates))
	for _, u := range plan.Updates {
		pairByID[u.Account.ID] = [2]string{u.Account.Email, u.Account.Username}
	}

	seen := make(map[uint]bool, len(plan.Updates))
	kept := plan.Updates[:0]
	for _, u := range plan.Updates {
		if seen[u.Account.ID] {
			plan.Faults = append(plan.Faults, Fault{
				PersonID:         u.Account.PersonID,
				Email:            u.Account.Email,
				Username:         u.Account.Username,
				PrimaryAccountID: u.Account.ID,
			})
			e.logger.Error("Two identities resolved to one account, skipping the second",
				zap.Uint("account_id", u.Account.ID),
				zap.String("person_id", u.Account.PersonID))
			continue
		}

		if u.ConflictID != 0 {
			pair, staged := pairByID[u.ConflictID]
			relinquished := staged && pair != [2]string{u.Account.Email, u.Account.Username}
			if !relinquished {
				plan.Faults = append(plan.Faults, Fault{
					PersonID:           u.Account.PersonID,
					Email:              u.Account.Email,
					Username:           u.Account.Username,
					PrimaryAccountID:   u.Account.ID,
					SecondaryAccountID: u.ConflictID,
				})
				e.logger.Error("Primary-key and identifier lookups disagree, skipping identity",
					zap.String("person_id", u.Account.PersonID),
					zap.Uint("account_by_person_id", u.Account.ID),
					zap.Uint("account_by_identifiers", u.ConflictID))
				continue
			}
		}

		seen[u.Account.ID] = true
		kept = append(kept, u)
	}
	plan.Updates = kept
}

// Apply executes a plan: all changed updates in one commit, then all
// deferred inserts in their own commit. Returns the updated and inserted
// account id sets.
func (e *Engine) Apply(ctx context.Context, plan *Plan) ([]uint, []uint, error) {
	var updated []uint
	var changed []*models.Account
	for _, u := range plan.Updates {
		if !u.Changed {
			continue
		}
		changed = append(changed, u.Account)
		updated = append(updated, u.Account.ID)
	}
	if err := e.store.ApplyUpdates(ctx, changed); err != nil {
		return nil, nil, err
	}

	accounts := make([]*models.Account, 0, len(plan.Inserts))
	for _, identity := range plan.Inserts {
		accounts = append(accounts, models.NewAccount(identity))
	}
	inserted, err := e.store.InsertAll(ctx, accounts)
	if err != nil {
		return updated, nil, err
	}
	return updated, inserted, nil
}
