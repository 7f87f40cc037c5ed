/**
 * @description
 * This package provides a client for the external chain settlement gateway.
 * It encapsulates the logic for making authenticated HTTP requests to the
 * gateway's settlement endpoint, handling request body construction, and
 * parsing responses.
 *
 * The caller treats every outcome of a settlement call, including transport
 * errors, as non-fatal: the reward has already committed to the ledger and is
 * never rolled back or retried because of the gateway.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package chainclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the chain settlement gateway.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new settlement gateway client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SettlementRequest is the payload for a settlement submission.
type SettlementRequest struct {
	Address   string `json:"address"`
	Amount    int64  `json:"amount"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// SettlementResponse is the expected response from the gateway.
type SettlementResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		TxHash string `json:"tx_hash,omitempty"`
	} `json:"data"`
}

// ErrorResponse represents an error from the settlement gateway.
type ErrorResponse struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Status string `json:"status"`
	} `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("settlement gateway error: %s - %s", e.Errors[0].Title, e.Errors[0].Detail)
	}
	return "unknown settlement gateway error"
}

// Settle submits a settlement for the given wallet address and amount. The
// nonce and signature are generated by the caller.
func (c *Client) Settle(ctx context.Context, address string, amount int64, nonce, signature string) error {
	payload := SettlementRequest{
		Address:   address,
		Amount:    amount,
		Nonce:     nonce,
		Signature: signature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/v1/settlements", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create settlement request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-settlement-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute settlement request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read settlement response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=chain_client op=settle status=%d msg=\"non-2xx response (unparsable error body)\"", resp.StatusCode)
			return fmt.Errorf("settlement failed (status %d)", resp.StatusCode)
		}
		return &errResp
	}

	var successResp SettlementResponse
	if err := json.Unmarshal(bodyBytes, &successResp); err != nil {
		return fmt.Errorf("failed to decode settlement response: %w", err)
	}

	log.Printf("level=info component=chain_client op=settle status=%q settlement_id=%s", successResp.Data.Status, successResp.Data.ID)
	return nil
}
