// Package gateway provides the row-oriented client for the remote ledger API.
// It exposes select/insert/patch against the ledger's REST resources and is
// the single funnel for all remote traffic in the library.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/wallet-sync/internal/config"
	"github.com/wallet-sync/internal/errors"
	"github.com/wallet-sync/internal/logging"
)

// Remote ledger tables
const (
	TableWalletBalances   = "wallet_balances"
	TableUserState        = "user_state"
	TableReferralEdges    = "referral_edges"
	TablePayoutAddresses  = "payout_addresses"
	TableWithdrawRequests = "withdraw_requests"
	TableDepositLedger    = "deposit_ledger"
)

// Filter is a set of column conditions, value syntax "op.operand"
// (e.g. "eq.42", "lt.4"), matching the ledger's REST filter grammar.
type Filter map[string]string

// Client performs read/write calls against the remote ledger API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// NewClient creates a new remote ledger client
func NewClient(cfg *config.GatewayConfig, logger *logging.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// Select reads all rows of table matching filter
func (c *Client) Select(ctx context.Context, table string, filter Filter) ([]Row, error) {
	body, err := c.do(ctx, http.MethodGet, table, filter, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.NewTransportError(table, fmt.Errorf("failed to parse response: %w", err))
	}
	return rows, nil
}

// Insert creates a row in table and returns the created row
func (c *Client) Insert(ctx context.Context, table string, record Row) (Row, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, errors.NewTransportError(table, fmt.Errorf("failed to encode record: %w", err))
	}

	body, err := c.do(ctx, http.MethodPost, table, nil, payload, "return=representation")
	if err != nil {
		return nil, err
	}

	// The ledger echoes created rows as a one-element array
	var rows []Row
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) > 0 {
		return rows[0], nil
	}
	var row Row
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, errors.NewTransportError(table, fmt.Errorf("failed to parse created row: %w", err))
	}
	return row, nil
}

// Patch partially updates all rows of table matching filter
func (c *Client) Patch(ctx context.Context, table string, filter Filter, fields Row) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return errors.NewTransportError(table, fmt.Errorf("failed to encode fields: %w", err))
	}

	_, err = c.do(ctx, http.MethodPatch, table, filter, payload, "")
	return err
}

func (c *Client) do(ctx context.Context, method, table string, filter Filter, payload []byte, prefer string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.NewTransportError(table, err)
		}
	}

	requestID := uuid.New().String()
	reqURL := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(filter) > 0 {
		reqURL += "?" + encodeFilter(filter)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, errors.NewTransportError(table, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(table, err)
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, errors.NewTransportError(table, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(map[string]interface{}{
			"requestId": requestID,
			"table":     table,
			"method":    method,
			"status":    resp.StatusCode,
		}).Warn("remote ledger rejected request")
		return nil, errors.NewRemoteRejectedError(table, resp.StatusCode, string(body))
	}

	c.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"table":     table,
		"method":    method,
	}).Debug("remote ledger call completed")

	return body, nil
}

// encodeFilter renders filter conditions in a stable order
func encodeFilter(filter Filter) string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, filter[k])
	}
	return values.Encode()
}

// Eq builds an equality filter condition value
func Eq(v string) string { return "eq." + v }

// Lt builds a less-than filter condition value
func Lt(v string) string { return "lt." + v }
