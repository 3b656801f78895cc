package server

import (
	"github.com/google/uuid"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// CreateRequest is the body for registering a new e-invoice.
type CreateRequest struct {
	InvoiceID          string     `json:"invoiceId" binding:"required"`
	Type               string     `json:"type" binding:"required"`
	OriginalEInvoiceID *uuid.UUID `json:"originalEInvoiceId,omitempty"`
}

// CancelRequest is the body for cancelling a valid e-invoice.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CredentialRequest is the body for storing tenant API credentials. The
// client secret is accepted here, encrypted at rest and never echoed back.
type CredentialRequest struct {
	ClientID     string `json:"clientId" binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
	TIN          string `json:"tin" binding:"required"`
	BRN          string `json:"brn,omitempty"`
	IDType       string `json:"idType"`
	IDValue      string `json:"idValue"`
	Environment  string `json:"environment" binding:"required"`
	Active       bool   `json:"active"`
}

// ValidationResponse is the response of the dry-run validation endpoint.
type ValidationResponse struct {
	Valid  bool                    `json:"valid"`
	Issues []model.ValidationIssue `json:"issues,omitempty"`
}

// TinValidationResponse is the response of the TIN check endpoint.
type TinValidationResponse struct {
	TIN   string `json:"tin"`
	Valid bool   `json:"valid"`
}

// TestConnectionResponse reports the outcome of a credential connectivity
// test.
type TestConnectionResponse struct {
	OK bool `json:"ok"`
}

// LinkResponse carries the public validation link of a VALID document.
type LinkResponse struct {
	Link string `json:"link"`
}

// ErrorResponse is the standard error envelope. Category mirrors the error
// taxonomy so API clients can branch without parsing messages.
type ErrorResponse struct {
	Error    string                  `json:"error"`
	Category string                  `json:"category,omitempty"`
	Issues   []model.ValidationIssue `json:"issues,omitempty"`
}
