package chargebee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client is a typed facade over the Chargebee v2 HTTP API. It is stateless
// and safe for concurrent use; every method is a single synchronous
// request/response against the remote site, bounded by Config.HTTPTimeout.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client. The configured timeout is
// still applied unless the supplied client carries its own.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Chargebee API client for the configured site.
// Credentials come from explicit configuration, never from ad-hoc
// environment reads.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Site == "" {
			return nil, ErrMissingSite
		}
		baseURL = fmt.Sprintf("https://%s.chargebee.com/api/v2", cfg.Site)
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateSubscription creates a subscription for the given plan and customer
// profile. A payment token is optional; plans without a charge (free or
// trial-only) can be created without one.
func (c *Client) CreateSubscription(ctx context.Context, planID string, profile CustomerProfile, addons []AddonRequest, coupon, cardToken string) (*Result, error) {
	params := url.Values{}
	params.Set("plan_id", planID)
	params.Set("customer[first_name]", profile.FirstName)
	params.Set("customer[last_name]", profile.LastName)
	params.Set("customer[email]", profile.Email)
	encodeAddons(params, addons)
	if coupon != "" {
		params.Set("coupon", coupon)
	}
	if cardToken != "" {
		params.Set("card[gateway]", c.cfg.Gateway)
		params.Set("card[tmp_token]", cardToken)
	}

	var result Result
	if err := c.post(ctx, "/subscriptions", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetrieveSubscription fetches the authoritative subscription record.
func (c *Client) RetrieveSubscription(ctx context.Context, subscriptionID string) (*Result, error) {
	var result Result
	if err := c.get(ctx, "/subscriptions/"+url.PathEscape(subscriptionID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePlan moves the subscription to a different plan ("swap").
func (c *Client) UpdatePlan(ctx context.Context, subscriptionID, planID string) (*Result, error) {
	params := url.Values{}
	params.Set("plan_id", planID)

	var result Result
	if err := c.post(ctx, "/subscriptions/"+url.PathEscape(subscriptionID), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel ends the subscription. With immediate=false the provider schedules
// the cancellation for the end of the current term (or trial), with
// immediate=true it takes effect now.
func (c *Client) Cancel(ctx context.Context, subscriptionID string, immediate bool) (*Result, error) {
	params := url.Values{}
	params.Set("end_of_term", strconv.FormatBool(!immediate))

	var result Result
	if err := c.post(ctx, "/subscriptions/"+url.PathEscape(subscriptionID)+"/cancel", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveScheduledCancellation drops a pending end-of-term cancellation
// ("resume").
func (c *Client) RemoveScheduledCancellation(ctx context.Context, subscriptionID string) (*Result, error) {
	var result Result
	if err := c.post(ctx, "/subscriptions/"+url.PathEscape(subscriptionID)+"/remove_scheduled_cancellation", url.Values{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reactivate restarts a cancelled subscription.
func (c *Client) Reactivate(ctx context.Context, subscriptionID string) (*Result, error) {
	var result Result
	if err := c.post(ctx, "/subscriptions/"+url.PathEscape(subscriptionID)+"/reactivate", url.Values{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetrieveCustomer fetches a customer record.
func (c *Client) RetrieveCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var envelope struct {
		Customer *Customer `json:"customer"`
	}
	if err := c.get(ctx, "/customers/"+url.PathEscape(customerID), &envelope); err != nil {
		return nil, err
	}
	return envelope.Customer, nil
}

// RetrievePaymentSource fetches a stored payment instrument.
func (c *Client) RetrievePaymentSource(ctx context.Context, paymentSourceID string) (*PaymentSource, error) {
	var envelope struct {
		PaymentSource *PaymentSource `json:"payment_source"`
	}
	if err := c.get(ctx, "/payment_sources/"+url.PathEscape(paymentSourceID), &envelope); err != nil {
		return nil, err
	}
	return envelope.PaymentSource, nil
}

// CheckoutNew creates a hosted checkout page for a new subscription.
// passThru is the opaque owner token that the provider round-trips
// unmodified; callers must verify it when resolving the completed page.
func (c *Client) CheckoutNew(ctx context.Context, planID string, addons []AddonRequest, embed bool, passThru string) (*HostedPage, error) {
	params := url.Values{}
	params.Set("subscription[plan_id]", planID)
	encodeAddons(params, addons)
	params.Set("embed", strconv.FormatBool(embed))
	if c.cfg.SuccessURL != "" {
		params.Set("redirect_url", c.cfg.SuccessURL)
	}
	if c.cfg.CancelURL != "" {
		params.Set("cancel_url", c.cfg.CancelURL)
	}
	params.Set("pass_thru_content", passThru)

	var envelope struct {
		HostedPage *HostedPage `json:"hosted_page"`
	}
	if err := c.post(ctx, "/hosted_pages/checkout_new", params, &envelope); err != nil {
		return nil, err
	}
	if envelope.HostedPage == nil || envelope.HostedPage.URL == "" {
		return nil, ErrNoCheckoutURL
	}
	return envelope.HostedPage, nil
}

// RetrieveHostedPage fetches a hosted checkout page by ID, including the
// pass-through token and the subscription created by the completed payment.
func (c *Client) RetrieveHostedPage(ctx context.Context, hostedPageID string) (*HostedPage, error) {
	var envelope struct {
		HostedPage *HostedPage `json:"hosted_page"`
	}
	if err := c.get(ctx, "/hosted_pages/"+url.PathEscape(hostedPageID), &envelope); err != nil {
		return nil, err
	}
	return envelope.HostedPage, nil
}

// encodeAddons flattens add-on lines into Chargebee's indexed form fields
// (addons[id][0], addons[quantity][0], ...).
func encodeAddons(params url.Values, addons []AddonRequest) {
	for i, addon := range addons {
		idx := strconv.Itoa(i)
		params.Set("addons[id]["+idx+"]", addon.ID)
		params.Set("addons[quantity]["+idx+"]", strconv.Itoa(addon.Quantity))
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, params, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	var body io.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Join(ErrRemoteCall, err)
	}
	req.SetBasicAuth(c.cfg.APIKey, "")
	if params != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return errors.Join(ErrTimeout, err)
		}
		return errors.Join(ErrRemoteCall, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(ErrRemoteCall, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		// The error body is best effort; keep the status even when the
		// provider returns something undecodable.
		_ = json.Unmarshal(payload, apiErr)
		if resp.StatusCode == http.StatusNotFound {
			return errors.Join(ErrNotFound, apiErr)
		}
		return errors.Join(ErrRemoteCall, apiErr)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return errors.Join(ErrRemoteCall, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
