// Package myinvois is the protocol adapter for the LHDN MyInvois API. It
// owns OAuth2 token acquisition and caching, bounded retry, and the mapping
// of HTTP failures onto the pipeline error taxonomy.
package myinvois

import (
	"context"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// API base URLs per environment. The identity service shares the host.
const (
	SandboxBaseURL    = "https://preprod-api.myinvois.hasil.gov.my"
	ProductionBaseURL = "https://api.myinvois.hasil.gov.my"

	tokenPath  = "/connect/token"
	tokenScope = "InvoiceAPI"
)

// Credentials is a tenant's decrypted MyInvois API credential set. Instances
// are short-lived and never logged.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Environment  model.Environment
}

// CredentialSource supplies decrypted credentials on demand, typically the
// credential store combined with the vault.
type CredentialSource interface {
	Credentials(ctx context.Context, tenantID string) (*Credentials, error)
}

// tokenResponse is the OAuth2 client-credentials token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// DocumentSubmission is one document in a submission request. DocumentHash
// and CodeNumber together form the correlation key the provider echoes back,
// which is how responses map 1:1 onto local records.
type DocumentSubmission struct {
	Format       string `json:"format"`
	Document     string `json:"document"` // base64 payload
	DocumentHash string `json:"documentHash"`
	CodeNumber   string `json:"codeNumber"`
}

// submitRequest is the document submission request body.
type submitRequest struct {
	Documents []DocumentSubmission `json:"documents"`
}

// AcceptedDocument is a document the provider accepted for processing.
type AcceptedDocument struct {
	UUID              string `json:"uuid"`
	InvoiceCodeNumber string `json:"invoiceCodeNumber"`
}

// ProviderError is a provider-supplied rejection reason, preserved verbatim.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RejectedDocument is a document the provider refused at submission time.
type RejectedDocument struct {
	InvoiceCodeNumber string        `json:"invoiceCodeNumber"`
	Error             ProviderError `json:"error"`
}

// SubmissionResponse partitions the submitted batch into accepted and
// rejected documents.
type SubmissionResponse struct {
	SubmissionUID     string             `json:"submissionUid"`
	AcceptedDocuments []AcceptedDocument `json:"acceptedDocuments"`
	RejectedDocuments []RejectedDocument `json:"rejectedDocuments"`
}

// Provider document statuses as returned by the details endpoint.
const (
	ProviderStatusSubmitted = "Submitted"
	ProviderStatusValid     = "Valid"
	ProviderStatusInvalid   = "Invalid"
	ProviderStatusRejected  = "Rejected"
	ProviderStatusCancelled = "Cancelled"
)

// ValidationStep is one provider-side validation outcome on a document.
type ValidationStep struct {
	Name   string        `json:"name"`
	Status string        `json:"status"`
	Error  *ProviderError `json:"error,omitempty"`
}

// DocumentDetails is the provider's view of a submitted document.
type DocumentDetails struct {
	UUID              string           `json:"uuid"`
	SubmissionUID     string           `json:"submissionUid"`
	LongID            string           `json:"longId"`
	Status            string           `json:"status"`
	ValidationResults []ValidationStep `json:"validationResults,omitempty"`
}

// RecentDocument is one row of the recent-documents listing.
type RecentDocument struct {
	UUID              string `json:"uuid"`
	InvoiceCodeNumber string `json:"internalId"`
	Status            string `json:"status"`
	IssuerTIN         string `json:"issuerTin"`
	ReceiverTIN       string `json:"receiverTin"`
	DateTimeIssued    string `json:"dateTimeIssued"`
}

// RecentDocumentsPage is a page of the recent-documents listing.
type RecentDocumentsPage struct {
	Documents  []RecentDocument `json:"result"`
	Page       int              `json:"pageNo"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
}

// cancelRequest is the document state change body used for cancellation.
type cancelRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// errorBody is the generic MyInvois error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *errorBody) code() string {
	if e.Error != nil && e.Error.Code != "" {
		return e.Error.Code
	}
	return e.Code
}

func (e *errorBody) message() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}
