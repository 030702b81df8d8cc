package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// HTTPClient is a thin adapter over the external ledger service's JSON API.
// The service exposes POST /log (append, returns the assigned index) and
// GET /log/{index}.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type writeResponse struct {
	Index  uint64 `json:"index"`
	TxHash string `json:"txHash"`
}

func (c *HTTPClient) Write(ctx context.Context, record Record) (uint64, string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, "", fmt.Errorf("marshal ledger record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/log", bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("build ledger write request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("ledger write: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("ledger write: unexpected status %d", resp.StatusCode)
	}

	var out writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, "", fmt.Errorf("decode ledger write response: %w", err)
	}
	return out.Index, out.TxHash, nil
}

func (c *HTTPClient) Read(ctx context.Context, index uint64) (Record, error) {
	url := c.baseURL + "/log/" + strconv.FormatUint(index, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Record{}, fmt.Errorf("build ledger read request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("ledger read: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Record{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("ledger read: unexpected status %d", resp.StatusCode)
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Record{}, fmt.Errorf("decode ledger record: %w", err)
	}
	return record, nil
}
