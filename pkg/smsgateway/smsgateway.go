// Package smsgateway holds the outbound messaging gateway clients.
package smsgateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSendFailed is returned when a gateway accepts the request but reports a
// non-success status for the recipient.
var ErrSendFailed = errors.New("sms gateway rejected the message")

// Gateway represents an SMS gateway
type Gateway interface {
	SendSMS(msisdn, message, senderID string) (string, error)
}

// AfricasTalkingGateway sends SMS through the AfricasTalking bulk messaging API
type AfricasTalkingGateway struct {
	BaseURL  string
	Username string
	APIKey   string
	client   *http.Client
}

// NewAfricasTalkingGateway creates a new AfricasTalkingGateway
func NewAfricasTalkingGateway(baseURL, username, apiKey string) *AfricasTalkingGateway {
	return &AfricasTalkingGateway{
		BaseURL:  baseURL,
		Username: username,
		APIKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type sendResponse struct {
	SMSMessageData struct {
		Recipients []struct {
			Number     string `json:"number"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
			StatusCode int    `json:"statusCode"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendSMS sends one message and returns the gateway message id
func (g *AfricasTalkingGateway) SendSMS(msisdn, message, senderID string) (string, error) {
	form := url.Values{}
	form.Set("username", g.Username)
	form.Set("to", msisdn)
	form.Set("message", message)
	if senderID != "" {
		form.Set("from", senderID)
	}

	req, err := http.NewRequest(http.MethodPost, g.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", g.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response sendResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.SMSMessageData.Recipients) == 0 {
		return "", ErrSendFailed
	}
	recipient := response.SMSMessageData.Recipients[0]
	if recipient.Status != "Success" {
		return "", fmt.Errorf("%w: %s", ErrSendFailed, recipient.Status)
	}
	return recipient.MessageID, nil
}

// MockGateway simulates an SMS gateway for development and tests
type MockGateway struct {
	Name string
}

// NewMockGateway creates a new MockGateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{Name: name}
}

// SendSMS simulates a successful send
func (g *MockGateway) SendSMS(msisdn, message, senderID string) (string, error) {
	return fmt.Sprintf("%s-MOCK-MSG-%d", g.Name, time.Now().UnixNano()), nil
}
