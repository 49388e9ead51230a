// Package types holds the domain model shared across the brandgate service:
// trial accounts, usage records, plan tiers, and the error taxonomy.
package types

import "time"

// PlanName identifies a plan tier. The set is closed: free, pro, agency,
// enterprise.
type PlanName string

const (
	PlanFree       PlanName = "free"
	PlanPro        PlanName = "pro"
	PlanAgency     PlanName = "agency"
	PlanEnterprise PlanName = "enterprise"
)

// FeatureTag identifies one of the four gated capability groups.
type FeatureTag string

const (
	FeatureProfessional FeatureTag = "professional"
	FeatureResearch     FeatureTag = "research"
	FeatureAgents       FeatureTag = "agents"
	FeatureExport       FeatureTag = "export"
)

// PlanTier is a named bundle of quotas and capability flags. Tiers are
// statically configured and never persisted per-user; a user's tier is
// resolved per-request from the environment (an MVP limitation that is
// preserved deliberately -- see billing.Resolver).
type PlanTier struct {
	Name               PlanName `json:"name"`
	MonthlyPrice       int      `json:"monthlyPrice"`
	TokensPerMonth     int      `json:"tokensPerMonth"`
	RunsPerMonth       int      `json:"runsPerMonth"`
	CanUseProfessional bool     `json:"canUseProfessional"`
	CanUseResearch     bool     `json:"canUseResearch"`
	CanUseAgents       bool     `json:"canUseAgents"`
	CanExport          bool     `json:"canExport"`
}

// CanUse reports whether this tier grants the given capability.
// Unknown tags are never allowed.
func (t PlanTier) CanUse(tag FeatureTag) bool {
	switch tag {
	case FeatureProfessional:
		return t.CanUseProfessional
	case FeatureResearch:
		return t.CanUseResearch
	case FeatureAgents:
		return t.CanUseAgents
	case FeatureExport:
		return t.CanExport
	default:
		return false
	}
}

// TrialAccount is the per-user trial ledger record. Created once at signup,
// mutated only by credit consumption, never physically deleted: a record past
// ExpiresAt is treated as absent by readers.
//
// Invariant: CreditsRemaining >= 0 and monotonically non-increasing;
// RunsCompleted monotonically increasing.
type TrialAccount struct {
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	CreditsRemaining int       `json:"creditsRemaining"`
	RunsCompleted    int       `json:"runsCompleted"`
}

// Expired reports whether the trial window has closed at the given instant.
func (a TrialAccount) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// UsageRecord captures one feature invocation's estimated token/cost
// footprint. Immutable once appended; the log is pruned only by age.
type UsageRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"userId,omitempty"`
	OrgID      string    `json:"orgId,omitempty"`
	Feature    string    `json:"feature"`
	Brand      string    `json:"brand,omitempty"`
	TokensUsed int       `json:"tokensUsed"`
	CostUSD    float64   `json:"costUSD"`
	Success    bool      `json:"success"`
}

// MonthlyUsage is the aggregate of a user's usage records for the current
// calendar month.
type MonthlyUsage struct {
	Tokens int     `json:"tokens"`
	Runs   int     `json:"runs"`
	Cost   float64 `json:"cost"`
}

// Subscription is the view of a payment-processor subscription exposed to
// callers. Status values mirror Stripe's subscription status strings.
type Subscription struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	CancelAtPeriodEnd  bool      `json:"cancelAtPeriodEnd"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
	PriceID            string    `json:"priceId,omitempty"`
	CustomerID         string    `json:"customerId,omitempty"`
}
