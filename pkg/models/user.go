package models

import "time"

// TierID identifies a subscription plan.
type TierID string

const (
	TierFree       TierID = "free"
	TierStarter    TierID = "starter"
	TierGrowth     TierID = "growth"
	TierEnterprise TierID = "enterprise"
	TierAPI        TierID = "api"
)

// KYCStatus is the state reported by the KYC provider. It is the only stored
// KYC field; verification is derived from it on read.
type KYCStatus string

const (
	KYCUnverified           KYCStatus = "unverified"
	KYCPending              KYCStatus = "pending"
	KYCUnderReview          KYCStatus = "under_review"
	KYCApproved             KYCStatus = "approved"
	KYCRejected             KYCStatus = "rejected"
	KYCResubmissionRequired KYCStatus = "resubmission_required"
)

// AccountStatus describes whether a user account may transact.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountDeleted   AccountStatus = "deleted"
)

// Role is the coarse authorization role of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// CapabilityManageDisputes allows an admin to assign and resolve disputes.
const CapabilityManageDisputes = "manageDisputes"

// MonthlyUsage tracks escrow creations within a calendar month ("2006-01").
type MonthlyUsage struct {
	TransactionCount int    `json:"transaction_count" dynamodbav:"transaction_count"`
	ResetMonth       string `json:"reset_month" dynamodbav:"reset_month"`
}

// PayoutAccount is a payout destination registered by a user.
type PayoutAccount struct {
	ID            string `json:"id" dynamodbav:"id"`
	Type          string `json:"type" dynamodbav:"type"`
	AccountName   string `json:"account_name" dynamodbav:"account_name"`
	AccountNumber string `json:"account_number" dynamodbav:"account_number"`
	BankCode      string `json:"bank_code,omitempty" dynamodbav:"bank_code,omitempty"`
	Verified      bool   `json:"verified" dynamodbav:"verified"`
	IsDefault     bool   `json:"is_default" dynamodbav:"is_default"`
}

// User is the external account record. The escrow core only reads it.
type User struct {
	ID              string          `json:"id" dynamodbav:"id"`
	Email           string          `json:"email" dynamodbav:"email"`
	Name            string          `json:"name" dynamodbav:"name"`
	EmailVerified   bool            `json:"email_verified" dynamodbav:"email_verified"`
	KYCStatus       KYCStatus       `json:"kyc_status" dynamodbav:"kyc_status"`
	AccountStatus   AccountStatus   `json:"account_status" dynamodbav:"account_status"`
	Tier            TierID          `json:"tier" dynamodbav:"tier"`
	CanCreateEscrow *bool           `json:"can_create_escrow,omitempty" dynamodbav:"can_create_escrow,omitempty"`
	MonthlyUsage    MonthlyUsage    `json:"monthly_usage" dynamodbav:"monthly_usage"`
	PayoutAccounts  []PayoutAccount `json:"payout_accounts,omitempty" dynamodbav:"payout_accounts,omitempty"`
	Role            Role            `json:"role" dynamodbav:"role"`
	Capabilities    []string        `json:"capabilities,omitempty" dynamodbav:"capabilities,omitempty"`
}

// IsKYCVerified is derived from KYCStatus and never stored.
func (u *User) IsKYCVerified() bool {
	return u.KYCStatus == KYCApproved
}

// IsActive reports whether the account may transact.
func (u *User) IsActive() bool {
	return u.AccountStatus == AccountActive
}

// EscrowCreationEnabled applies the per-user override, defaulting to true.
func (u *User) EscrowCreationEnabled() bool {
	if u.CanCreateEscrow == nil {
		return true
	}
	return *u.CanCreateEscrow
}

// HasCapability reports whether an admin holds the named capability.
// Superadmins hold every capability.
func (u *User) HasCapability(capability string) bool {
	switch u.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		for _, c := range u.Capabilities {
			if c == capability {
				return true
			}
		}
	}
	return false
}

// VerifiedPayoutAccount returns the default verified payout account, falling
// back to the first verified one.
func (u *User) VerifiedPayoutAccount() (PayoutAccount, bool) {
	var fallback *PayoutAccount
	for i := range u.PayoutAccounts {
		acc := u.PayoutAccounts[i]
		if !acc.Verified {
			continue
		}
		if acc.IsDefault {
			return acc, true
		}
		if fallback == nil {
			fallback = &u.PayoutAccounts[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return PayoutAccount{}, false
}

// UsageMonth formats the calendar month used for monthly usage buckets.
func UsageMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// TransactionsThisMonth returns the usage count, treating a stale bucket as zero.
func (u *User) TransactionsThisMonth(now time.Time) int {
	if u.MonthlyUsage.ResetMonth != UsageMonth(now) {
		return 0
	}
	return u.MonthlyUsage.TransactionCount
}
