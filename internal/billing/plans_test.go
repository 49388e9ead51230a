package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandgate/internal/config"
	"brandgate/internal/types"
)

func newResolver(license config.LicenseConfig, isProduction bool) *Resolver {
	return NewResolver(NewStaticRegistry(), license, isProduction)
}

func TestRegistry_KnownTiers(t *testing.T) {
	reg := NewStaticRegistry()

	for _, name := range []types.PlanName{types.PlanFree, types.PlanPro, types.PlanAgency, types.PlanEnterprise} {
		tier, ok := reg.Get(name)
		require.True(t, ok, "tier %s must exist", name)
		assert.Equal(t, name, tier.Name)
	}

	_, ok := reg.Get("platinum")
	assert.False(t, ok)
}

func TestResolve_DevelopmentBypassWinsOverLicense(t *testing.T) {
	// Non-production always resolves pro, even when the license names free.
	r := newResolver(config.LicenseConfig{
		LicenseKey: "lk_live_abc",
		PlanName:   "free",
	}, false)

	assert.Equal(t, types.PlanPro, r.Resolve("user_1").Name)
}

func TestResolve_AllowLocalBypassInProduction(t *testing.T) {
	r := newResolver(config.LicenseConfig{
		LicenseKey: "lk_live_abc",
		PlanName:   "free",
		AllowLocal: true,
	}, true)

	assert.Equal(t, types.PlanPro, r.Resolve("user_1").Name)
}

func TestResolve_LicensedPlanName(t *testing.T) {
	tests := []struct {
		planName string
		want     types.PlanName
	}{
		{"agency", types.PlanAgency},
		{"AGENCY", types.PlanAgency}, // case-insensitive
		{"enterprise", types.PlanEnterprise},
		{"free", types.PlanFree},
		{"", types.PlanPro},         // unset defaults to pro
		{"platinum", types.PlanPro}, // unknown defaults to pro
	}

	for _, tt := range tests {
		r := newResolver(config.LicenseConfig{
			LicenseKey: "lk_live_abc",
			PlanName:   tt.planName,
		}, true)
		assert.Equal(t, tt.want, r.Resolve("user_1").Name, "USER_PLAN=%q", tt.planName)
	}
}

func TestResolve_NoLicenseIsFree(t *testing.T) {
	r := newResolver(config.LicenseConfig{}, true)
	assert.Equal(t, types.PlanFree, r.Resolve("user_1").Name)
}

func TestCanUse(t *testing.T) {
	free := newResolver(config.LicenseConfig{}, true)
	assert.False(t, free.CanUse("user_1", types.FeatureProfessional))
	assert.False(t, free.CanUse("user_1", types.FeatureExport))

	pro := newResolver(config.LicenseConfig{LicenseKey: "lk", PlanName: "pro"}, true)
	assert.True(t, pro.CanUse("user_1", types.FeatureProfessional))
	assert.True(t, pro.CanUse("user_1", types.FeatureResearch))
	assert.True(t, pro.CanUse("user_1", types.FeatureAgents))
	assert.True(t, pro.CanUse("user_1", types.FeatureExport))

	// Unknown tags are never allowed, regardless of tier.
	assert.False(t, pro.CanUse("user_1", "teleportation"))
}

func TestEnsurePaidFeature(t *testing.T) {
	pro := newResolver(config.LicenseConfig{LicenseKey: "lk", PlanName: "pro"}, true)
	assert.NoError(t, pro.EnsurePaidFeature("user_1", "Professional Mode", types.FeatureProfessional))

	free := newResolver(config.LicenseConfig{}, true)
	err := free.EnsurePaidFeature("user_1", "Professional Mode", types.FeatureProfessional)
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeFeatureNotAllowed, appErr.Code)
	assert.Equal(t, 403, appErr.HTTPStatus())
	assert.Contains(t, appErr.Message, "free")
	assert.Contains(t, appErr.Message, "Professional Mode")
}
