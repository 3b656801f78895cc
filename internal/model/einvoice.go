package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType is the LHDN e-invoice type code.
type DocumentType string

const (
	TypeInvoice              DocumentType = "01"
	TypeCreditNote           DocumentType = "02"
	TypeDebitNote            DocumentType = "03"
	TypeRefundNote           DocumentType = "04"
	TypeSelfBilledInvoice    DocumentType = "11"
	TypeSelfBilledCreditNote DocumentType = "12"
	TypeSelfBilledDebitNote  DocumentType = "13"
	TypeSelfBilledRefundNote DocumentType = "14"
)

// IsValid reports whether t is a known document type code.
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeInvoice, TypeCreditNote, TypeDebitNote, TypeRefundNote,
		TypeSelfBilledInvoice, TypeSelfBilledCreditNote,
		TypeSelfBilledDebitNote, TypeSelfBilledRefundNote:
		return true
	}
	return false
}

// IsAdjustment reports whether t must reference an original e-invoice.
func (t DocumentType) IsAdjustment() bool {
	switch t {
	case TypeCreditNote, TypeDebitNote, TypeRefundNote,
		TypeSelfBilledCreditNote, TypeSelfBilledDebitNote, TypeSelfBilledRefundNote:
		return true
	}
	return false
}

// Status is the e-invoice submission lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusValid     Status = "VALID"
	StatusInvalid   Status = "INVALID"
	StatusRejected  Status = "REJECTED"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRejected
}

// CanSubmit reports whether a submit may start from s.
func (s Status) CanSubmit() bool {
	return s == StatusDraft || s == StatusError
}

// CanRetry reports whether an explicit retry may start from s. INVALID is
// retryable by business policy: the caller resubmits after fixing source
// data, reusing the original document hash.
func (s Status) CanRetry() bool {
	return s == StatusError || s == StatusInvalid
}

// CanSync reports whether a status reconciliation is meaningful from s.
func (s Status) CanSync() bool {
	return s == StatusSubmitted
}

// CanCancel reports whether cancellation may start from s.
func (s Status) CanCancel() bool {
	return s == StatusValid
}

// InFlight reports whether the record is between submit and a provider
// decision. Credential deletion is refused while any record is in flight.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusSubmitted
}

// ErrorDetail is the last failure recorded on an e-invoice record.
type ErrorDetail struct {
	Category string `json:"category"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

// EInvoice is the persisted e-invoice record. DocumentHash is computed once
// at build time and never recomputed for the same logical document, so the
// provider can detect idempotent resubmission.
type EInvoice struct {
	ID        uuid.UUID    `json:"id"`
	TenantID  string       `json:"tenantId"`
	InvoiceID string       `json:"invoiceId"` // internal sales document id
	Type      DocumentType `json:"type"`
	Status    Status       `json:"status"`

	// Set for credit/debit/refund notes; must reference a VALID e-invoice
	// of the same tenant.
	OriginalEInvoiceID *uuid.UUID `json:"originalEInvoiceId,omitempty"`

	DocumentHash string `json:"documentHash,omitempty"`
	Payload      string `json:"-"` // base64 document payload, kept for retry

	// Provider-assigned identifiers, filled as the lifecycle progresses.
	SubmissionUID string `json:"submissionUid,omitempty"`
	DocumentUUID  string `json:"documentUuid,omitempty"`
	LongID        string `json:"longId,omitempty"`

	CancelReason string       `json:"cancelReason,omitempty"`
	LastError    *ErrorDetail `json:"lastError,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	SyncedAt    *time.Time `json:"syncedAt,omitempty"`
}
