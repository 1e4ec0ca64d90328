package smsgateway

import (
	"fmt"
	"time"
)

// EmailGateway represents an outbound email gateway
type EmailGateway interface {
	SendEmail(to, subject, body string) (string, error)
}

// MockEmailGateway simulates an email gateway for development and tests
type MockEmailGateway struct{}

// NewMockEmailGateway creates a new MockEmailGateway
func NewMockEmailGateway() *MockEmailGateway {
	return &MockEmailGateway{}
}

// SendEmail simulates a successful send
func (g *MockEmailGateway) SendEmail(to, subject, body string) (string, error) {
	return fmt.Sprintf("EMAIL-MOCK-MSG-%d", time.Now().UnixNano()), nil
}
