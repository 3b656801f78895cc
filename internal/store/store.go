// Package store defines the storage ports of the submission pipeline and
// provides in-memory implementations. The sales read model is the narrow
// interface onto the business-document store; e-invoice and credential
// records are owned by this core.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// SalesLine is one line of an internal sales document, as exposed by the
// business-document read model.
type SalesLine struct {
	Description        string
	ClassificationCode string
	Quantity           decimal.Decimal
	UnitCode           string
	UnitPrice          decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxTypeCode        string
	TaxRate            decimal.Decimal
	ExemptionCode      string
	ExemptionAmount    decimal.Decimal
}

// CompanyProfile is the supplier-side profile of the issuing tenant.
type CompanyProfile struct {
	Name             string
	TIN              string
	BRN              string
	SSTNumber        string
	MSICCode         string
	BusinessActivity string
	Email            string
	Phone            string
	Address          model.Address
}

// Customer is the buyer on an internal sales document.
type Customer struct {
	Name    string
	TIN     string
	IDType  string
	IDValue string
	BRN     string
	Email   string
	Phone   string
	Address model.Address
}

// SalesInvoice is the read-model projection of an internal sales/credit/debit
// document plus its related customer and company profile.
type SalesInvoice struct {
	ID           string
	Number       string
	IssueDate    time.Time
	Currency     string
	ExchangeRate decimal.Decimal
	PaymentMode  string
	PaymentTerms string
	Discount     decimal.Decimal
	Lines        []SalesLine
	Customer     Customer
	Company      CompanyProfile
}

// SalesReader is the read model onto the business-document store, keyed by
// internal invoice id.
type SalesReader interface {
	GetInvoice(ctx context.Context, tenantID, invoiceID string) (*SalesInvoice, error)
}

// EInvoiceStore persists e-invoice records.
type EInvoiceStore interface {
	Create(ctx context.Context, rec *model.EInvoice) error
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error)
	GetByInvoiceID(ctx context.Context, tenantID, invoiceID string) (*model.EInvoice, error)
	List(ctx context.Context, tenantID string) ([]*model.EInvoice, error)
	Update(ctx context.Context, rec *model.EInvoice) error

	// Transition atomically moves the record to the target status if its
	// current status is one of from, returning the updated record. A
	// record in any other status yields a StateConflictError and is left
	// untouched.
	Transition(ctx context.Context, tenantID string, id uuid.UUID, to model.Status, from ...model.Status) (*model.EInvoice, error)

	// InFlightCount reports how many records of the tenant are PENDING or
	// SUBMITTED. Credential deletion is refused while it is non-zero.
	InFlightCount(ctx context.Context, tenantID string) (int, error)
}

// CredentialStore persists per-tenant API credentials.
type CredentialStore interface {
	Get(ctx context.Context, tenantID string) (*model.Credential, error)
	Put(ctx context.Context, cred *model.Credential) error
	Delete(ctx context.Context, tenantID string) error
}

// slowThreshold is the latency above which a store operation is logged as
// slow.
const slowThreshold = 200 * time.Millisecond

// observe logs the outcome of a store operation. Slow and failing operations
// get distinct event tags so dashboards can tell them apart.
func observe(log *logrus.Logger, op string, elapsed time.Duration, err error) {
	if log == nil {
		return
	}
	switch {
	case err != nil:
		log.WithFields(logrus.Fields{"event": "store_error", "op": op, "elapsed": elapsed}).
			WithError(err).Warn("store operation failed")
	case elapsed > slowThreshold:
		log.WithFields(logrus.Fields{"event": "store_slow", "op": op, "elapsed": elapsed}).
			Warn("store operation slow")
	}
}
