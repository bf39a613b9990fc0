// Package firefly is the REST gateway to the Firefly III API, covering the
// transaction create/read/update calls the relay needs.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/barretobrock/ff-relay/internal/relay"
	"github.com/barretobrock/ff-relay/pkg/logger"
)

const (
	requestTimeout = 30 * time.Second

	// dateLayout matches the zone-aware timestamp format the API accepts.
	dateLayout = "2006-01-02T15:04:05-0700"
)

// Config holds client settings beyond the service address.
type Config struct {
	// CurrencyCode is stamped on created transactions.
	CurrencyCode string
	// Location is the timezone used for created transaction dates.
	Location *time.Location
}

// Client is an HTTP client for the Firefly III REST API.
type Client struct {
	baseURL    string
	apiURL     string
	token      string
	currency   string
	location   *time.Location
	httpClient *http.Client
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a new Firefly III API client. baseURL is the site root;
// the API lives under /api/v1.
func NewClient(baseURL, token string, cfg Config, log *logger.Logger) *Client {
	currency := cfg.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:  baseURL,
		apiURL:   baseURL + "/api/v1",
		token:    token,
		currency: currency,
		location: loc,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "firefly"),
		now:    time.Now,
	}
}

// SetBaseURL overrides the service address (useful for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
	c.apiURL = url + "/api/v1"
}

// doRequest performs an authenticated API call and returns the response
// body. Non-2xx responses become *APIError carrying the request payload.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	reqURL := c.apiURL + endpoint

	var reqBody io.Reader
	var payloadJSON []byte
	if payload != nil {
		var err error
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payloadJSON)
	}

	c.logger.Debug("API request", "method", method, "url", reqURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Payload:    string(payloadJSON),
		}
		c.logger.Error("API error", "method", method, "url", reqURL, "status_code", resp.StatusCode, "payload", string(payloadJSON))
		return nil, apiErr
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// CreateTransaction stores a new single-split transaction group. The call
// is flagged to skip the ledger's rules and webhooks so the relay does not
// trigger itself.
func (c *Client) CreateTransaction(ctx context.Context, spec relay.DerivedSpec) (relay.CreatedTransaction, error) {
	req := createRequest{
		ErrorIfDuplicateHash: true,
		ApplyRules:           false,
		FireWebhooks:         false,
		GroupTitle:           spec.Title,
		Transactions: []createSplit{
			{
				Type:          string(spec.Type),
				Date:          c.now().In(c.location).Format(dateLayout),
				Amount:        spec.AmountString(),
				Description:   spec.Description,
				Order:         0,
				CurrencyCode:  c.currency,
				SourceID:      spec.SourceID,
				DestinationID: spec.DestinationID,
				Reconciled:    false,
				Notes:         spec.Notes,
			},
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/transactions", req)
	if err != nil {
		return relay.CreatedTransaction{}, err
	}

	var resp transactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return relay.CreatedTransaction{}, fmt.Errorf("failed to parse create response: %w", err)
	}

	created := relay.CreatedTransaction{GroupID: string(resp.Data.ID)}
	if len(resp.Data.Attributes.Transactions) > 0 {
		created.JournalID = string(resp.Data.Attributes.Transactions[0].JournalID)
	}
	return created, nil
}

// GetTransaction fetches a transaction group with all of its splits.
func (c *Client) GetTransaction(ctx context.Context, groupID string) (*relay.TransactionGroup, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/transactions/"+groupID, nil)
	if err != nil {
		return nil, err
	}

	var resp transactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse transaction response: %w", err)
	}

	group := &relay.TransactionGroup{
		ID:     string(resp.Data.ID),
		Splits: make([]relay.Split, 0, len(resp.Data.Attributes.Transactions)),
	}
	if resp.Data.Attributes.GroupTitle != nil {
		group.Title = *resp.Data.Attributes.GroupTitle
	}
	for _, j := range resp.Data.Attributes.Transactions {
		s := relay.Split{
			JournalID:     string(j.JournalID),
			Type:          relay.SplitType(j.Type),
			Amount:        j.Amount,
			Description:   j.Description,
			SourceID:      string(j.SourceID),
			DestinationID: string(j.DestinationID),
			Tags:          j.Tags,
		}
		if j.Notes != nil {
			s.Notes = *j.Notes
		}
		group.Splits = append(group.Splits, s)
	}
	return group, nil
}

// UpdateTransaction replaces fields on a group's journals. The whole group
// is resubmitted keyed by journal id; nil fields are left unchanged.
func (c *Client) UpdateTransaction(ctx context.Context, groupID, title string, splits []relay.SplitUpdate) error {
	req := updateRequest{
		ApplyRules:   false,
		FireWebhooks: false,
		Transactions: make([]updateSplit, 0, len(splits)),
	}
	if title != "" {
		req.GroupTitle = &title
	}
	for _, s := range splits {
		req.Transactions = append(req.Transactions, updateSplit{
			JournalID: s.JournalID,
			Notes:     s.Notes,
			Amount:    s.Amount,
		})
	}

	_, err := c.doRequest(ctx, http.MethodPut, "/transactions/"+groupID, req)
	return err
}

var _ relay.LedgerClient = (*Client)(nil)
