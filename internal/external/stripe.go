package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"brandgate/internal/types"
)

// stripeAPIBase is the default Stripe API base URL.
// Overridable in tests via StripeClientConfig.BaseURL.
const stripeAPIBase = "https://api.stripe.com"

// Stripe webhook event types the service dispatches on.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventSubUpdated        = "customer.subscription.updated"
	EventSubDeleted        = "customer.subscription.deleted"
	EventInvoicePaid       = "invoice.payment_succeeded"
)

// CheckoutParams are the inputs for a subscription-mode checkout session.
type CheckoutParams struct {
	PriceID    string
	Email      string
	CustomerID string // optional; when set, Email is omitted from the request
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the processor-hosted payment flow handed back to the
// frontend.
type CheckoutSession struct {
	URL       string
	SessionID string
}

// StripeClientConfig holds the configuration for creating a StripeClient.
type StripeClientConfig struct {
	SecretKey string
	BaseURL   string // override for testing; defaults to stripeAPIBase
	Logger    *slog.Logger
}

// StripeClient is a thin pass-through to the Stripe REST API via BaseClient.
// Lookup and cancellation failures are swallowed into absent/false results
// plus a log line; only checkout-session creation propagates its error,
// because the caller has nothing useful to return without a URL.
type StripeClient struct {
	base      *BaseClient
	secretKey string
	baseURL   string
	logger    *slog.Logger
}

// NewStripeClient creates a StripeClient over a 20 second HTTP timeout unless
// the caller supplies its own client via NewStripeClientWithBase.
func NewStripeClient(cfg StripeClientConfig) *StripeClient {
	base := NewBaseClient(
		&http.Client{Timeout: 20 * time.Second},
		"stripe",
		"brandgate/1.0",
	)
	return NewStripeClientWithBase(base, cfg)
}

// NewStripeClientWithBase creates a StripeClient with a pre-configured
// BaseClient, for tests that point BaseURL at an httptest server.
func NewStripeClientWithBase(base *BaseClient, cfg StripeClientConfig) *StripeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeClient{
		base:      base,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// CreateCheckoutSession creates a subscription-mode checkout session.
// When CustomerID is set, the customer email is omitted and Stripe infers
// identity from the customer record; otherwise the email is passed directly.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	params := url.Values{}
	params.Set("mode", "subscription")
	params.Set("payment_method_types[0]", "card")
	params.Set("line_items[0][price]", p.PriceID)
	params.Set("line_items[0][quantity]", "1")
	params.Set("success_url", p.SuccessURL)
	params.Set("cancel_url", p.CancelURL)
	if p.CustomerID != "" {
		params.Set("customer", p.CustomerID)
	} else {
		params.Set("customer_email", p.Email)
	}

	resp, err := s.doPost(ctx, "/v1/checkout/sessions", params)
	if err != nil {
		return CheckoutSession{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return CheckoutSession{}, s.errorFromResponse(resp, "CreateCheckoutSession")
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, types.NewAppError(
			types.ErrCodeUpstreamStripe,
			"failed to decode Stripe checkout session response",
			err,
		)
	}

	return CheckoutSession{URL: session.URL, SessionID: session.ID}, nil
}

// GetSubscription looks up a subscription by ID. Any processor error yields
// ok=false and a log line; errors never propagate to the caller.
func (s *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (types.Subscription, bool) {
	resp, err := s.doGet(ctx, "/v1/subscriptions/"+url.PathEscape(subscriptionID))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to retrieve subscription",
			"subscription_id", subscriptionID,
			"error", err,
		)
		return types.Subscription{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.ErrorContext(ctx, "failed to retrieve subscription",
			"subscription_id", subscriptionID,
			"error", s.errorFromResponse(resp, "GetSubscription"),
		)
		return types.Subscription{}, false
	}

	var sub stripeSubscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to decode subscription response",
			"subscription_id", subscriptionID,
			"error", err,
		)
		return types.Subscription{}, false
	}

	return mapStripeSubscription(&sub), true
}

// CancelSubscription requests cancellation effective at period end. Returns
// false (plus a log line) on any processor error.
func (s *StripeClient) CancelSubscription(ctx context.Context, subscriptionID string) bool {
	params := url.Values{}
	params.Set("cancel_at_period_end", "true")

	resp, err := s.doPost(ctx, "/v1/subscriptions/"+url.PathEscape(subscriptionID), params)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to cancel subscription",
			"subscription_id", subscriptionID,
			"error", err,
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.ErrorContext(ctx, "failed to cancel subscription",
			"subscription_id", subscriptionID,
			"error", s.errorFromResponse(resp, "CancelSubscription"),
		)
		return false
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

func (s *StripeClient) doGet(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	s.setAuthHeaders(req)
	return s.base.Do(req)
}

func (s *StripeClient) doPost(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.setAuthHeaders(req)
	return s.base.Do(req)
}

func (s *StripeClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Stripe-Version", stripe.APIVersion)
}

// errorFromResponse reads a Stripe error body and wraps it as an AppError.
func (s *StripeClient) errorFromResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: Stripe returned status %d and the body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var stripeErr stripeErrorResponse
	if jsonErr := json.Unmarshal(body, &stripeErr); jsonErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: Stripe returned status %d with a non-JSON body", operation, resp.StatusCode),
			jsonErr,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamStripe,
		fmt.Sprintf("%s: Stripe error (%d): %s", operation, resp.StatusCode, stripeErr.Error.Message),
		nil,
	)
}

// ---------------------------------------------------------------------------
// Stripe response types
// ---------------------------------------------------------------------------

type stripeErrorResponse struct {
	Error stripeErrorBody `json:"error"`
}

type stripeErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeSubscription struct {
	ID                 string                  `json:"id"`
	Status             string                  `json:"status"`
	Customer           string                  `json:"customer"`
	CancelAtPeriodEnd  bool                    `json:"cancel_at_period_end"`
	CurrentPeriodStart int64                   `json:"current_period_start"`
	CurrentPeriodEnd   int64                   `json:"current_period_end"`
	Items              stripeSubscriptionItems `json:"items"`
}

type stripeSubscriptionItems struct {
	Data []stripeSubscriptionItem `json:"data"`
}

type stripeSubscriptionItem struct {
	Price stripePrice `json:"price"`
}

type stripePrice struct {
	ID string `json:"id"`
}

// mapStripeSubscription converts a Stripe subscription to the domain view.
func mapStripeSubscription(sub *stripeSubscription) types.Subscription {
	out := types.Subscription{
		ID:                 sub.ID,
		Status:             sub.Status,
		CustomerID:         sub.Customer,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if len(sub.Items.Data) > 0 {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

// ---------------------------------------------------------------------------
// Webhook verification
// ---------------------------------------------------------------------------

// WebhookVerifier validates an inbound webhook payload against its signature
// header and signing secret.
type WebhookVerifier interface {
	Verify(payload []byte, header string, secret string) (stripe.Event, error)
}

// StripeVerifier implements WebhookVerifier using stripe-go's signature
// primitive: HMAC-SHA256 with timestamp tolerance. The cryptography is
// delegated entirely to the SDK.
type StripeVerifier struct{}

// Verify checks the payload signature and returns the parsed event.
func (v *StripeVerifier) Verify(payload []byte, header string, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, header, secret)
}
