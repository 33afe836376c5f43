package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrInvalidPayload is returned when the response body does not carry a list of rows.
var ErrInvalidPayload = errors.New("invalid api response: 'rows' is not a list")

// SessionCookie is the cookie name Cobalto uses for authenticated sessions.
const SessionCookie = "PHPSESSID"

// Row is one flat compartimento record as returned by the API.
type Row map[string]any

// Payload is the result of a fetch: the decoded rows and the raw body they came from.
type Payload struct {
	Rows []Row
	Raw  []byte
}

// Client defines the interface for fetching compartimento rows.
type Client interface {
	// Fetch retrieves the full list of rows in a single request.
	Fetch(ctx context.Context) (*Payload, error)
}

// queryParams asks the grid endpoint for every row, sorted, with search disabled.
var queryParams = map[string]string{
	"rows":    "-1",
	"_search": "false",
	"sidx":    "compartimento_id, compartimento_nome",
	"sord":    "asc",
}

type httpClient struct {
	http   *resty.Client
	url    string
	logger *zap.Logger
}

// NewClient creates a Cobalto client based on the configuration.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "dataharvester")

	if cfg.SessionID != "" {
		client.SetCookie(&http.Cookie{Name: SessionCookie, Value: cfg.SessionID})
	}

	return &httpClient{
		http:   client,
		url:    cfg.URL,
		logger: logger,
	}, nil
}

func (c *httpClient) Fetch(ctx context.Context) (*Payload, error) {
	c.logger.Info("Fetching compartimentos", zap.String("url", c.url))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to call cobalto api: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("cobalto api returned status %d", resp.StatusCode())
	}

	rows, err := DecodeRows(resp.Body())
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched compartimentos",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", resp.Time()),
	)

	return &Payload{Rows: rows, Raw: resp.Body()}, nil
}

// DecodeRows extracts the rows array from a response body.
// Numbers are kept as json.Number so decimals are not rounded through float64.
func DecodeRows(body []byte) ([]Row, error) {
	var envelope struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	raw := bytes.TrimSpace(envelope.Rows)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrInvalidPayload
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return rows, nil
}
