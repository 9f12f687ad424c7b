package reconcile

import (
	"context"

	"cern-sync/feature/identity/models"
)

// Outcome is the terminal classification of one incoming identity.
type Outcome string

const (
	// OutcomeNew means neither lookup matched; the identity goes to the
	// deferred insert batch.
	OutcomeNew Outcome = "new"
	// OutcomeConsistent means both lookups agree on the same account.
	OutcomeConsistent Outcome = "consistent"
	// OutcomeDriftedSecondary means the primary key matched but the stored
	// email/username pair differs from the incoming one.
	OutcomeDriftedSecondary Outcome = "drifted_secondary"
	// OutcomeDriftedPrimary means the email/username pair matched but the
	// linked primary key differs.
	OutcomeDriftedPrimary Outcome = "drifted_primary"
	// OutcomeFault means the two lookups returned two different accounts.
	OutcomeFault Outcome = "inconsistent_fault"
)

// Lookup is the read side of the account store used for classification.
type Lookup interface {
	FindByPersonID(ctx context.Context, personID string) (*models.Account, error)
	FindByIdentifiers(ctx context.Context, email, username string) (*models.Account, error)
}

// Update is one staged account mutation. Account is a clone of the stored
// row with the merge already applied; Changed reports whether the merge
// produced any difference.
type Update struct {
	Account *models.Account
	Outcome Outcome
	Changed bool

	// ConflictID is the id of a different account matching the incoming
	// secondary key while the primary key matched Account. Zero when there
	// is no conflict. Validated before apply: the update is dropped as a
	// fault unless the conflicting account relinquishes the pair in the
	// same run.
	ConflictID uint
}

// Fault records an identity skipped because the primary-key and
// secondary-key lookups disagree.
type Fault struct {
	PersonID           string
	Email              string
	Username           string
	PrimaryAccountID   uint
	SecondaryAccountID uint
}

// Plan is the reconciliation outcome for one batch: staged updates, deferred
// inserts, and faults to surface.
type Plan struct {
	Updates []Update
	Inserts []models.CanonicalIdentity
	Faults  []Fault
}

// Summary counts a plan's outcomes for logging and the run report.
type Summary struct {
	Consistent       int `json:"consistent"`
	DriftedSecondary int `json:"drifted_secondary"`
	DriftedPrimary   int `json:"drifted_primary"`
	New              int `json:"new"`
	Faults           int `json:"faults"`
	Unchanged        int `json:"unchanged"`
}

// Summarize tallies the plan.
func (p *Plan) Summarize() Summary {
	var s Summary
	for _, u := range p.Updates {
		switch u.Outcome {
		case OutcomeConsistent:
			s.Consistent++
		case OutcomeDriftedSecondary:
			s.DriftedSecondary++
		case OutcomeDriftedPrimary:
			s.DriftedPrimary++
		}
		if !u.Changed {
			s.Unchanged++
		}
	}
	s.New = len(p.Inserts)
	s.Faults = len(p.Faults)
	return s
}
