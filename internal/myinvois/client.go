package myinvois

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

const (
	submissionsPath = "/api/v1.0/documentsubmissions"
	documentsPath   = "/api/v1.0/documents"
	taxpayerPath    = "/api/v1.0/taxpayer/validate"

	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// Client wraps the MyInvois document APIs with token handling, bounded
// retry and error classification. 5xx and network failures are retried with
// exponential backoff and surfaced as transport errors on exhaustion; a 401
// triggers exactly one forced token refresh and one retry before surfacing
// as an auth error. 4xx responses are provider decisions and are never
// retried here.
type Client struct {
	rest   *resty.Client
	tokens *TokenSource
	creds  CredentialSource
	clock  clockwork.Clock

	maxAttempts int
	backoffBase time.Duration
	baseURLFn   func(model.Environment) string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying resty client.
func WithHTTPClient(rest *resty.Client) Option {
	return func(c *Client) { c.rest = rest }
}

// WithClock injects a clock for deterministic backoff and expiry in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithRetry tunes the transport retry policy.
func WithRetry(maxAttempts int, backoffBase time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.backoffBase = backoffBase
	}
}

// WithBaseURL points every environment at a fixed base URL. Test use only.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURLFn = func(model.Environment) string { return base }
	}
}

// NewClient creates a MyInvois client over the given credential source.
func NewClient(creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		rest:        resty.New().SetTimeout(30 * time.Second),
		creds:       creds,
		clock:       clockwork.NewRealClock(),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		baseURLFn:   envBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	c.tokens = NewTokenSource(creds, c.rest, c.clock)
	c.tokens.baseURLFn = c.baseURLFn
	return c
}

// InvalidateToken drops any cached token for the tenant. Called when the
// tenant's credentials are created or updated.
func (c *Client) InvalidateToken(tenantID string) {
	c.tokens.Invalidate(tenantID)
}

// TestConnection verifies the stored credentials by acquiring a token.
func (c *Client) TestConnection(ctx context.Context, tenantID string) error {
	_, err := c.tokens.Token(ctx, tenantID)
	return err
}

// SubmitDocuments submits a batch of encoded documents and returns the
// provider's accepted/rejected partition.
func (c *Client) SubmitDocuments(ctx context.Context, tenantID string, docs []DocumentSubmission) (*SubmissionResponse, error) {
	const op = "submit"
	resp, err := c.do(ctx, tenantID, op, func(r *resty.Request, base string) (*resty.Response, error) {
		return r.SetBody(submitRequest{Documents: docs}).Post(base + submissionsPath)
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, classifyRejection(op, resp)
	}

	var out SubmissionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, model.NewTransportError(op, resp.StatusCode(), 1,
			fmt.Errorf("decode submission response: %w", err))
	}
	log.WithFields(log.Fields{
		"tenant":     tenantID,
		"submission": out.SubmissionUID,
		"accepted":   len(out.AcceptedDocuments),
		"rejected":   len(out.RejectedDocuments),
	}).Debug("documents submitted")
	return &out, nil
}

// GetDocumentDetails fetches the provider's definitive view of a document.
func (c *Client) GetDocumentDetails(ctx context.Context, tenantID, documentUUID string) (*DocumentDetails, error) {
	const op = "status"
	resp, err := c.do(ctx, tenantID, op, func(r *resty.Request, base string) (*resty.Response, error) {
		return r.Get(base + documentsPath + "/" + url.PathEscape(documentUUID) + "/details")
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, model.NewNotFoundError("provider document", documentUUID)
	}
	if resp.IsError() {
		return nil, classifyRejection(op, resp)
	}

	var out DocumentDetails
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, model.NewTransportError(op, resp.StatusCode(), 1,
			fmt.Errorf("decode document details: %w", err))
	}
	return &out, nil
}

// ValidateTIN checks a TIN (optionally with an id type/value pair) against
// the taxpayer registry. A 404 means the TIN is unknown, not a failure.
func (c *Client) ValidateTIN(ctx context.Context, tenantID, tin, idType, idValue string) (bool, error) {
	const op = "validate_tin"
	resp, err := c.do(ctx, tenantID, op, func(r *resty.Request, base string) (*resty.Response, error) {
		if idType != "" {
			r.SetQueryParam("idType", idType)
			r.SetQueryParam("idValue", idValue)
		}
		return r.Get(base + taxpayerPath + "/" + url.PathEscape(tin))
	})
	if err != nil {
		return false, err
	}
	switch {
	case resp.StatusCode() == 404:
		return false, nil
	case resp.IsError():
		return false, classifyRejection(op, resp)
	}
	return true, nil
}

// CancelDocument asks the provider to cancel a valid document. A refusal
// (e.g. cancellation window expired) surfaces as a rejection error carrying
// the provider's reason.
func (c *Client) CancelDocument(ctx context.Context, tenantID, documentUUID, reason string) error {
	const op = "cancel"
	resp, err := c.do(ctx, tenantID, op, func(r *resty.Request, base string) (*resty.Response, error) {
		return r.SetBody(cancelRequest{Status: "cancelled", Reason: reason}).
			Put(base + documentsPath + "/state/" + url.PathEscape(documentUUID) + "/state")
	})
	if err != nil {
		return err
	}
	if resp.IsError() {
		return classifyRejection(op, resp)
	}
	return nil
}

// GetRecentDocuments pages through the tenant's recent documents.
// direction is "Sent" or "Received".
func (c *Client) GetRecentDocuments(ctx context.Context, tenantID, direction string, page, pageSize int) (*RecentDocumentsPage, error) {
	const op = "recent"
	resp, err := c.do(ctx, tenantID, op, func(r *resty.Request, base string) (*resty.Response, error) {
		return r.
			SetQueryParam("pageNo", strconv.Itoa(page)).
			SetQueryParam("pageSize", strconv.Itoa(pageSize)).
			SetQueryParam("InvoiceDirection", direction).
			Get(base + documentsPath + "/recent")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, classifyRejection(op, resp)
	}

	var out RecentDocumentsPage
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, model.NewTransportError(op, resp.StatusCode(), 1,
			fmt.Errorf("decode recent documents: %w", err))
	}
	if out.Page == 0 {
		out.Page = page
	}
	if out.PageSize == 0 {
		out.PageSize = pageSize
	}
	return &out, nil
}

// do runs one authenticated call with the retry policy. build receives a
// prepared request (context and bearer token set) and the environment base
// URL.
func (c *Client) do(ctx context.Context, tenantID, op string, build func(r *resty.Request, base string) (*resty.Response, error)) (*resty.Response, error) {
	cred, err := c.creds.Credentials(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	base := c.baseURLFn(cred.Environment)

	token, err := c.tokens.Token(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	refreshed := false
	attempt := 0
	for {
		attempt++

		req := c.rest.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json")
		resp, err := build(req, base)

		switch {
		case err != nil:
			if attempt >= c.maxAttempts {
				return nil, model.NewTransportError(op, 0, attempt, err)
			}
		case resp.StatusCode() == 401 && !refreshed:
			// One forced refresh, one retry; the refresh does not
			// consume a transport attempt.
			refreshed = true
			attempt--
			token, err = c.tokens.ForceRefresh(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			continue
		case resp.StatusCode() == 401:
			return nil, model.NewAuthError(op, "unauthorized after forced token refresh", nil)
		case resp.StatusCode() >= 500:
			if attempt >= c.maxAttempts {
				return nil, model.NewTransportError(op, resp.StatusCode(), attempt, nil)
			}
		default:
			return resp, nil
		}

		if err := c.sleep(ctx, attempt); err != nil {
			return nil, model.NewTransportError(op, 0, attempt, err)
		}
	}
}

// sleep waits out the exponential backoff for the given attempt number,
// aborting early when the context is cancelled.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoffBase << (attempt - 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(delay):
		return nil
	}
}

// classifyRejection maps a non-retryable error response onto the taxonomy,
// preserving the provider's code and message verbatim.
func classifyRejection(op string, resp *resty.Response) error {
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)
	msg := body.message()
	if msg == "" {
		msg = fmt.Sprintf("%s returned status %d", op, resp.StatusCode())
	}
	return model.NewRejectionError(body.code(), msg)
}
