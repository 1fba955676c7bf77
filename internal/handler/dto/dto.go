// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WebhookAck is the acknowledgement body the payment processor expects.
type WebhookAck struct {
	Received bool `json:"received"`
}
