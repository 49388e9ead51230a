package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandgate/internal/types"
)

// mockUsageReporter implements UsageReporter for testing.
type mockUsageReporter struct {
	monthlyFn func(ctx context.Context, userID string) types.MonthlyUsage
}

func (m *mockUsageReporter) MonthlyUsage(ctx context.Context, userID string) types.MonthlyUsage {
	if m.monthlyFn != nil {
		return m.monthlyFn(ctx, userID)
	}
	return types.MonthlyUsage{}
}

func TestUsageMonthly(t *testing.T) {
	meter := &mockUsageReporter{
		monthlyFn: func(ctx context.Context, userID string) types.MonthlyUsage {
			assert.Equal(t, "user_abc", userID)
			return types.MonthlyUsage{Tokens: 1200, Runs: 3, Cost: 0.024}
		},
	}
	h := NewUsageHandler(meter)

	rr := serve(h, makeRequest("GET", "/usage/user_abc", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp types.MonthlyUsage
	parseJSONResponse(t, rr, &resp)

	assert.Equal(t, 1200, resp.Tokens)
	assert.Equal(t, 3, resp.Runs)
	assert.Equal(t, 0.024, resp.Cost)
}

func TestUsageMonthly_EmptyIsZeroAggregate(t *testing.T) {
	h := NewUsageHandler(&mockUsageReporter{})

	rr := serve(h, makeRequest("GET", "/usage/user_abc", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp types.MonthlyUsage
	parseJSONResponse(t, rr, &resp)
	assert.Equal(t, types.MonthlyUsage{}, resp)
}
