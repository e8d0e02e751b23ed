// Package verification decides whether a user may use escrow features.
//
// Checks run in a fixed order and the first failing rule is reported, so the
// caller can route the user to exactly one next step.
package verification

import (
	"errors"
	"fmt"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/shopspring/decimal"
)

var (
	// ErrVerificationRequired is wrapped by every denial.
	ErrVerificationRequired = errors.New("verification required")
	// ErrUpgradeRequired is additionally wrapped by tier limit denials.
	ErrUpgradeRequired = errors.New("tier upgrade required")
)

// Requirement names what kind of verification is missing.
type Requirement string

const (
	RequiresEmail   Requirement = "email"
	RequiresKYC     Requirement = "kyc"
	RequiresAccount Requirement = "account"
	RequiresTier    Requirement = "tier"
	RequiresPayout  Requirement = "payout_account"
)

// Action is the remedial step the UI should offer.
type Action string

const (
	ActionVerifyEmail      Action = "verify_email"
	ActionCompleteKYC      Action = "complete_kyc"
	ActionContactSupport   Action = "contact_support"
	ActionUpgradeTier      Action = "upgrade_tier"
	ActionAddPayoutAccount Action = "add_payout_account"
)

// Gate steps, in evaluation order.
const (
	StepEmail             = 1
	StepKYC               = 2
	StepAccount           = 3
	StepEscrowCreation    = 4
	StepMonthlyLimit      = 5
	StepTransactionAmount = 6
	StepPayoutDestination = 5
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed              bool             `json:"allowed"`
	Reason               string           `json:"reason,omitempty"`
	RequiresVerification Requirement      `json:"requires_verification,omitempty"`
	RequiredAction       Action           `json:"required_action,omitempty"`
	Step                 int              `json:"step,omitempty"`
	KYCStatus            models.KYCStatus `json:"kyc_status,omitempty"`
	UpgradeRequired      bool             `json:"upgrade_required,omitempty"`
}

// Err returns nil for an allowed decision and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Decision: d}
}

// DeniedError carries a denial through error returns.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("verification required at step %d: %s", e.Decision.Step, e.Decision.Reason)
}

func (e *DeniedError) Unwrap() []error {
	if e.Decision.UpgradeRequired {
		return []error{ErrVerificationRequired, ErrUpgradeRequired}
	}
	return []error{ErrVerificationRequired}
}

var allowed = Decision{Allowed: true}

// Gate evaluates users against the tier catalog. now is injectable for tests.
type Gate struct {
	catalog *tiers.Catalog
	now     func() time.Time
}

// NewGate creates a gate over the catalog using the wall clock.
func NewGate(catalog *tiers.Catalog) *Gate {
	return &Gate{catalog: catalog, now: time.Now}
}

// WithClock returns a copy of the gate that reads time from now.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	c := *g
	c.now = now
	return &c
}

// CanAccessEscrow runs the base checks: email, KYC, account status and the
// escrow-creation flag.
func (g *Gate) CanAccessEscrow(u *models.User) Decision {
	if !u.EmailVerified {
		return Decision{
			Reason:               "email verification required",
			RequiresVerification: RequiresEmail,
			RequiredAction:       ActionVerifyEmail,
			Step:                 StepEmail,
		}
	}
	if !u.IsKYCVerified() {
		return Decision{
			Reason:               "KYC verification required",
			RequiresVerification: RequiresKYC,
			RequiredAction:       ActionCompleteKYC,
			Step:                 StepKYC,
			KYCStatus:            kycStatusOrDefault(u.KYCStatus),
		}
	}
	if !u.IsActive() {
		return Decision{
			Reason:               "account suspended or deleted",
			RequiresVerification: RequiresAccount,
			RequiredAction:       ActionContactSupport,
			Step:                 StepAccount,
		}
	}
	if !u.EscrowCreationEnabled() {
		return Decision{
			Reason:               "escrow creation is disabled for this account",
			RequiresVerification: RequiresTier,
			RequiredAction:       ActionContactSupport,
			Step:                 StepEscrowCreation,
		}
	}
	return allowed
}

// CanCreateTransaction adds the tier's monthly count and per-transaction
// amount limits on top of CanAccessEscrow.
func (g *Gate) CanCreateTransaction(u *models.User, amount decimal.Decimal, currency models.Currency) (Decision, error) {
	if d := g.CanAccessEscrow(u); !d.Allowed {
		return d, nil
	}
	tier, err := g.catalog.Tier(u.Tier)
	if err != nil {
		return Decision{}, err
	}

	if !tier.UnlimitedTransactions() && u.TransactionsThisMonth(g.now()) >= tier.MaxTransactionsPerMonth {
		return Decision{
			Reason:               fmt.Sprintf("monthly limit of %d transactions reached for the %s plan", tier.MaxTransactionsPerMonth, tier.Name),
			RequiresVerification: RequiresTier,
			RequiredAction:       ActionUpgradeTier,
			Step:                 StepMonthlyLimit,
			UpgradeRequired:      true,
		}, nil
	}

	limit, bounded, err := g.catalog.MaxTransactionAmount(tier, currency)
	if err != nil {
		return Decision{}, err
	}
	if bounded && amount.GreaterThan(limit) {
		return Decision{
			Reason:               fmt.Sprintf("amount exceeds the %s plan limit of %s %s", tier.Name, limit.String(), currency),
			RequiresVerification: RequiresTier,
			RequiredAction:       ActionUpgradeTier,
			Step:                 StepTransactionAmount,
			UpgradeRequired:      true,
		}, nil
	}
	return allowed, nil
}

// CanReceivePayouts adds a verified payout destination on top of CanAccessEscrow.
func (g *Gate) CanReceivePayouts(u *models.User) Decision {
	if d := g.CanAccessEscrow(u); !d.Allowed {
		return d
	}
	if _, ok := u.VerifiedPayoutAccount(); !ok {
		return Decision{
			Reason:               "a verified payout account is required",
			RequiresVerification: RequiresPayout,
			RequiredAction:       ActionAddPayoutAccount,
			Step:                 StepPayoutDestination,
		}
	}
	return allowed
}

// Status bundles the three gate decisions for a user.
type Status struct {
	UserID                string           `json:"user_id"`
	EmailVerified         bool             `json:"email_verified"`
	KYCStatus             models.KYCStatus `json:"kyc_status"`
	KYCVerified           bool             `json:"kyc_verified"`
	Tier                  models.TierID    `json:"tier"`
	Access                Decision         `json:"access"`
	CreateTransaction     Decision         `json:"create_transaction"`
	ReceivePayouts        Decision         `json:"receive_payouts"`
	TransactionsThisMonth int              `json:"transactions_this_month"`
}

// Evaluate returns every gate decision for u. The create-transaction check
// uses the smallest positive amount so only count limits apply.
func (g *Gate) Evaluate(u *models.User) (Status, error) {
	create, err := g.CanCreateTransaction(u, decimal.New(1, -2), models.USD)
	if err != nil {
		return Status{}, err
	}
	return Status{
		UserID:                u.ID,
		EmailVerified:         u.EmailVerified,
		KYCStatus:             kycStatusOrDefault(u.KYCStatus),
		KYCVerified:           u.IsKYCVerified(),
		Tier:                  u.Tier,
		Access:                g.CanAccessEscrow(u),
		CreateTransaction:     create,
		ReceivePayouts:        g.CanReceivePayouts(u),
		TransactionsThisMonth: u.TransactionsThisMonth(g.now()),
	}, nil
}

func kycStatusOrDefault(s models.KYCStatus) models.KYCStatus {
	if s == "" {
		return models.KYCUnverified
	}
	return s
}
