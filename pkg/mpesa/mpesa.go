// Package mpesa implements a client for the Safaricom Daraja API: OAuth token
// acquisition with caching, Lipa na M-Pesa (STK push) payment initiation, and
// parsing of the asynchronous payment callback.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGatewayUnavailable is returned when the payment gateway cannot be reached
// or rejects the initiation request. The caller may retry the whole user-level
// operation; the client itself never retries.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Config holds Daraja API settings
type Config struct {
	AuthURL           string
	STKPushURL        string
	ConsumerKey       string
	ConsumerSecret    string
	BusinessShortCode string
	PassKey           string
	CallbackURL       string
	MockAPI           bool
}

// Client is a Daraja API client
type Client struct {
	cfg    Config
	tokens *TokenSource
	client *http.Client
}

// NewClient creates a new Daraja client with a bounded request timeout
func NewClient(cfg Config) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		cfg:    cfg,
		tokens: NewTokenSource(cfg, httpClient),
		client: httpClient,
	}
}

// STKPushResponse is the synchronous response to a payment initiation
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush initiates a Lipa na M-Pesa online payment. The gateway confirms the
// outcome later through the callback URL; this call only starts the checkout.
func (c *Client) STKPush(ctx context.Context, phone, amount, transactionDesc string) (*STKPushResponse, error) {
	if c.cfg.MockAPI {
		return c.mockSTKPush(phone)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.BusinessShortCode + c.cfg.PassKey + timestamp))

	payload := map[string]string{
		"BusinessShortCode": c.cfg.BusinessShortCode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            c.cfg.BusinessShortCode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  phone,
		"TransactionDesc":   transactionDesc,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.STKPushURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(body))
	}

	var response STKPushResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &response, nil
}

// mockSTKPush simulates a successful payment initiation for local development
func (c *Client) mockSTKPush(phone string) (*STKPushResponse, error) {
	now := time.Now().UnixNano()
	return &STKPushResponse{
		MerchantRequestID:   fmt.Sprintf("MOCK-MERCHANT-%d", now),
		CheckoutRequestID:   fmt.Sprintf("ws_CO_MOCK_%d_%s", now, phone),
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}, nil
}
