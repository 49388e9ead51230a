// Package billing provides the plan registry and feature gating logic.
package billing

import (
	"strings"

	"brandgate/internal/config"
	"brandgate/internal/types"
)

// planDefaults is the closed set of plan tiers. This is the single source of
// truth for what each plan allows; tiers are static and never persisted
// per-user.
var planDefaults = map[types.PlanName]types.PlanTier{
	types.PlanFree: {
		Name:               types.PlanFree,
		MonthlyPrice:       0,
		TokensPerMonth:     50_000,
		RunsPerMonth:       5,
		CanUseProfessional: false,
		CanUseResearch:     false,
		CanUseAgents:       false,
		CanExport:          false,
	},
	types.PlanPro: {
		Name:               types.PlanPro,
		MonthlyPrice:       99,
		TokensPerMonth:     500_000,
		RunsPerMonth:       50,
		CanUseProfessional: true,
		CanUseResearch:     true,
		CanUseAgents:       true,
		CanExport:          true,
	},
	types.PlanAgency: {
		Name:               types.PlanAgency,
		MonthlyPrice:       499,
		TokensPerMonth:     2_000_000,
		RunsPerMonth:       500,
		CanUseProfessional: true,
		CanUseResearch:     true,
		CanUseAgents:       true,
		CanExport:          true,
	},
	types.PlanEnterprise: {
		Name:               types.PlanEnterprise,
		MonthlyPrice:       0, // custom pricing
		TokensPerMonth:     10_000_000,
		RunsPerMonth:       10_000,
		CanUseProfessional: true,
		CanUseResearch:     true,
		CanUseAgents:       true,
		CanExport:          true,
	},
}

// Registry resolves plan tiers by name.
type Registry interface {
	// Get returns the tier for the given name and whether it is known.
	Get(name types.PlanName) (types.PlanTier, bool)
}

// staticRegistry is the compile-time registry backed by planDefaults.
type staticRegistry struct {
	tiers map[types.PlanName]types.PlanTier
}

// NewStaticRegistry returns a Registry backed by the hardcoded tier table.
func NewStaticRegistry() Registry {
	// Copy the defaults so callers cannot mutate the package-level table.
	m := make(map[types.PlanName]types.PlanTier, len(planDefaults))
	for k, v := range planDefaults {
		m[k] = v
	}
	return &staticRegistry{tiers: m}
}

// Get returns the tier for the given name and whether it is known.
func (r *staticRegistry) Get(name types.PlanName) (types.PlanTier, bool) {
	t, ok := r.tiers[name]
	return t, ok
}

// Resolver resolves the plan tier in effect for a request.
//
// The resolution reads process configuration, not per-user state. This is a
// known MVP shortcut preserved on purpose: the backend has no persisted
// entitlements, so a single license key marks the whole deployment. Do not
// "fix" this into per-user lookups without changing the product design.
type Resolver struct {
	registry Registry
	license  config.LicenseConfig
	isProd   bool
}

// NewResolver builds a Resolver from the license configuration and execution
// mode.
func NewResolver(registry Registry, license config.LicenseConfig, isProduction bool) *Resolver {
	return &Resolver{
		registry: registry,
		license:  license,
		isProd:   isProduction,
	}
}

// Resolve returns the plan tier for the given user.
//
// Resolution order, preserved verbatim:
//  1. Non-production mode OR the local-override flag -> pro, always.
//     This is a development bypass, not an entitlement check.
//  2. A license key is configured -> the tier named by the plan-name
//     variable (case-insensitive), defaulting to pro for unknown names.
//  3. Otherwise -> free.
//
// The userID parameter is accepted for interface stability; the MVP
// resolution does not consult it.
func (r *Resolver) Resolve(userID string) types.PlanTier {
	_ = userID

	if !r.isProd || r.license.AllowLocal {
		tier, _ := r.registry.Get(types.PlanPro)
		return tier
	}

	if r.license.LicenseKey.Unmask() != "" {
		name := types.PlanName(strings.ToLower(r.license.PlanName))
		if tier, ok := r.registry.Get(name); ok {
			return tier
		}
		tier, _ := r.registry.Get(types.PlanPro)
		return tier
	}

	tier, _ := r.registry.Get(types.PlanFree)
	return tier
}

// CanUse reports whether the resolved plan grants the given capability.
// Unknown feature tags are never allowed.
func (r *Resolver) CanUse(userID string, tag types.FeatureTag) bool {
	return r.Resolve(userID).CanUse(tag)
}

// EnsurePaidFeature is the sole gating mechanism: it checks the capability
// locally (no network call) and returns a feature_not_allowed error carrying
// the plan name and an upgrade message when the plan lacks it.
func (r *Resolver) EnsurePaidFeature(userID, featureName string, tag types.FeatureTag) error {
	if r.CanUse(userID, tag) {
		return nil
	}
	return types.NewFeatureNotAllowed(featureName, r.Resolve(userID).Name)
}
