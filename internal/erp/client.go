// Package erp implements the signed, rate-limited, retrying client against
// the ERP's REST SQL endpoint.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Row is one ERP result row, keyed by the lowercased column names the ERP
// returns.
type Row map[string]any

// Config configures one Client instance. One credential set per process.
type Config struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string

	// BaseURL is the ERP's SQL REST endpoint, e.g.
	// "https://<account>.suitetalk.api.netsuite.com/services/rest/query/v1/suiteql".
	BaseURL string

	// MaxPageRows caps the total rows returned for one logical query,
	// guarding against runaway pivots. Zero uses the default (100,000).
	MaxPageRows int

	// RequestsPerSecond paces outbound requests client-side so the
	// gateway's own fan-out doesn't trip the ERP's rate limiter. Zero
	// disables pacing (unlimited).
	RequestsPerSecond float64
}

const defaultMaxPageRows = 100_000

// Client executes SQL statements against the ERP and yields rows.
type Client struct {
	creds       credentials
	baseURL     string
	maxPageRows int
	http        *resty.Client
	limiter     *rate.Limiter
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	maxRows := cfg.MaxPageRows
	if maxRows <= 0 {
		maxRows = defaultMaxPageRows
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	httpClient := resty.New().
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "transient")

	return &Client{
		creds: credentials{
			accountID:      cfg.AccountID,
			consumerKey:    cfg.ConsumerKey,
			consumerSecret: cfg.ConsumerSecret,
			tokenID:        cfg.TokenID,
			tokenSecret:    cfg.TokenSecret,
		},
		baseURL:     cfg.BaseURL,
		maxPageRows: maxRows,
		http:        httpClient,
		limiter:     limiter,
	}
}

type suiteQLRequest struct {
	Q string `json:"q"`
}

type suiteQLResponse struct {
	Items   []map[string]any `json:"items"`
	HasMore bool              `json:"hasMore"`
	Offset  int               `json:"offset"`
	Count   int               `json:"count"`
	TotalResults int          `json:"totalResults"`
}

// Query executes sql and returns every row, following pagination until the
// ERP reports hasMore=false or the row cap is reached.
func (c *Client) Query(ctx context.Context, sql string, timeout time.Duration) ([]Row, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rows []Row
	offset := 0
	const pageSize = 1000

	for {
		if len(rows) >= c.maxPageRows {
			slog.Warn("erp query truncated at row cap", "cap", c.maxPageRows)
			break
		}
		page, hasMore, err := c.executePage(ctx, sql, offset, pageSize)
		if err != nil {
			return nil, err
		}
		for _, item := range page {
			rows = append(rows, Row(lowercaseKeys(item)))
		}
		if !hasMore {
			break
		}
		offset += pageSize
	}
	return rows, nil
}

// executePage performs one signed request with retry, returning the page's
// items and whether more pages remain.
func (c *Client) executePage(ctx context.Context, sql string, offset, limit int) ([]map[string]any, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, newError(KindTimeout, "rate limiter wait cancelled", err.Error())
		}
	}

	reqURL := fmt.Sprintf("%s?limit=%d&offset=%d", c.baseURL, limit, offset)

	var resp *resty.Response
	var execErr error

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 2 * time.Second
	retryBackoff.Multiplier = 2
	retryBackoff.RandomizationFactor = 0.2
	bounded := backoff.WithMaxRetries(retryBackoff, 3)
	bounded = backoff.WithContext(bounded, ctx)

	attempt := 0
	retryable5xxBudget := 2
	sawReadTimeout := false

	operation := func() error {
		attempt++
		authHeader, err := signRequest("POST", c.baseURL, url.Values{"limit": {fmt.Sprint(limit)}, "offset": {fmt.Sprint(offset)}}, c.creds)
		if err != nil {
			execErr = fmt.Errorf("sign request: %w", err)
			return backoff.Permanent(execErr)
		}

		r, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", authHeader).
			SetBody(suiteQLRequest{Q: sql}).
			Post(reqURL)

		if err != nil {
			if strings.Contains(err.Error(), "timeout") && !sawReadTimeout {
				sawReadTimeout = true
				slog.Warn("erp read timeout, retrying once", "attempt", attempt)
				return err
			}
			execErr = newError(KindTimeout, "erp request failed", err.Error())
			return backoff.Permanent(execErr)
		}
		resp = r

		switch {
		case resp.StatusCode() == 200:
			return nil
		case resp.StatusCode() == 429:
			slog.Warn("erp rate limited, backing off", "attempt", attempt)
			execErr = newError(KindRateLimit, "erp concurrent request limit", string(resp.Body()))
			return err429{}
		case resp.StatusCode() >= 500:
			if retryable5xxBudget <= 0 {
				execErr = newError(KindBackend, "erp server error", string(resp.Body()))
				return backoff.Permanent(execErr)
			}
			retryable5xxBudget--
			slog.Warn("erp server error, retrying", "attempt", attempt, "status", resp.StatusCode())
			return fmt.Errorf("erp 5xx: %d", resp.StatusCode())
		case resp.StatusCode() == 401 || resp.StatusCode() == 403:
			execErr = newError(KindAuth, "erp rejected signature or token", string(resp.Body()))
			return backoff.Permanent(execErr)
		default:
			execErr = newError(KindBackend, "erp returned non-retryable error", string(resp.Body()))
			return backoff.Permanent(execErr)
		}
	}

	err := backoff.Retry(operation, bounded)
	if err != nil {
		if execErr != nil {
			return nil, false, execErr
		}
		return nil, false, newError(KindBackend, "erp request exhausted retries", err.Error())
	}

	var parsed suiteQLResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, false, newError(KindBackend, "decode erp response", err.Error())
	}
	return parsed.Items, parsed.HasMore, nil
}

// err429 is a retryable sentinel distinct from execErr's final classification
// so backoff.Retry knows to keep trying within its own bounded policy.
type err429 struct{}

func (err429) Error() string { return "rate limited" }

// lowercaseKeys normalizes ERP column names to lowercase, the convention
// the rest of the gateway relies on.
func lowercaseKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
