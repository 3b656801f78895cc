// Package einvoicelib provides the public API surface of the e-invoice
// compliance and submission pipeline.
//
// It re-exports the canonical document types, the pure field validator and
// the totals engine so embedding applications can validate and price
// documents without wiring the full pipeline.
//
// Example usage:
//
//	doc := einvoicelib.Document{ /* ... */ }
//	result := einvoicelib.Validate(&doc)
//	if !result.IsValid() {
//	    for _, issue := range result.Errors() {
//	        fmt.Println(issue.Field, issue.Message)
//	    }
//	}
package einvoicelib

import (
	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/money"
	"github.com/yijian0905/erp-einvoice/internal/validator"
)

// Re-export canonical document types.
type (
	Document         = model.Document
	Party            = model.Party
	Address          = model.Address
	Line             = model.Line
	Totals           = model.Totals
	DocumentType     = model.DocumentType
	Status           = model.Status
	EInvoice         = model.EInvoice
	ValidationResult = model.ValidationResult
	ValidationIssue  = model.ValidationIssue
	Severity         = model.Severity
)

// Re-export document type codes.
const (
	TypeInvoice    = model.TypeInvoice
	TypeCreditNote = model.TypeCreditNote
	TypeDebitNote  = model.TypeDebitNote
	TypeRefundNote = model.TypeRefundNote
)

// Re-export lifecycle statuses.
const (
	StatusDraft     = model.StatusDraft
	StatusPending   = model.StatusPending
	StatusSubmitted = model.StatusSubmitted
	StatusValid     = model.StatusValid
	StatusInvalid   = model.StatusInvalid
	StatusRejected  = model.StatusRejected
	StatusError     = model.StatusError
	StatusCancelled = model.StatusCancelled
)

// Validate runs the MyInvois field validation rule set on a document.
func Validate(doc *Document) ValidationResult {
	return validator.Validate(doc)
}

// ComputeTotals fills per-line amounts and invoice totals on a document.
func ComputeTotals(doc *Document) {
	money.Apply(doc)
}
