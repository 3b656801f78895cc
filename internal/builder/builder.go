// Package builder maps internal sales documents into the canonical MyInvois
// document shape and produces the encoded payload plus its content hash.
// Building never validates; validation is a separate gate so callers can
// dry-run one without the other.
package builder

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/money"
	"github.com/yijian0905/erp-einvoice/internal/store"
)

// Result is the outcome of a build: the canonical document, its base64
// payload and the SHA-256 hash of the canonical serialization. The hash is
// the duplicate-detection token the provider receives; byte-identical
// documents always hash identically.
type Result struct {
	Document *model.Document
	Payload  string
	Hash     string
}

// Builder assembles canonical documents from the sales read model.
type Builder struct {
	sales store.SalesReader
}

// New creates a Builder over the given sales read model.
func New(sales store.SalesReader) *Builder {
	return &Builder{sales: sales}
}

// Build loads the internal invoice and produces the canonical document for
// the given e-invoice type. originalRef is the provider uuid of the adjusted
// document, required for credit/debit/refund notes and empty otherwise.
func (b *Builder) Build(ctx context.Context, tenantID, invoiceID string, docType model.DocumentType, originalRef string) (*Result, error) {
	inv, err := b.sales.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := mapDocument(inv, docType, originalRef)
	money.Apply(doc)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	sum := sha256.Sum256(payload)
	return &Result{
		Document: doc,
		Payload:  base64.StdEncoding.EncodeToString(payload),
		Hash:     hex.EncodeToString(sum[:]),
	}, nil
}

func mapDocument(inv *store.SalesInvoice, docType model.DocumentType, originalRef string) *model.Document {
	doc := &model.Document{
		Version:           model.DocumentVersion,
		Type:              docType,
		CodeNumber:        inv.Number,
		IssueDate:         inv.IssueDate.UTC(),
		Currency:          inv.Currency,
		ExchangeRate:      inv.ExchangeRate,
		PaymentMode:       inv.PaymentMode,
		PaymentTerms:      inv.PaymentTerms,
		OriginalReference: originalRef,
		Discount:          inv.Discount,
		Supplier:          mapSupplier(&inv.Company),
		Buyer:             mapBuyer(&inv.Customer),
	}

	doc.Lines = make([]model.Line, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		doc.Lines = append(doc.Lines, model.Line{
			Description:        l.Description,
			ClassificationCode: l.ClassificationCode,
			Quantity:           l.Quantity,
			UnitCode:           l.UnitCode,
			UnitPrice:          l.UnitPrice,
			DiscountAmount:     l.DiscountAmount,
			TaxTypeCode:        l.TaxTypeCode,
			TaxRate:            l.TaxRate,
			ExemptionCode:      l.ExemptionCode,
			ExemptionAmount:    l.ExemptionAmount,
		})
	}

	return doc
}

func mapSupplier(c *store.CompanyProfile) model.Party {
	return model.Party{
		Name:             c.Name,
		TIN:              c.TIN,
		IDType:           "BRN",
		IDValue:          c.BRN,
		BRN:              c.BRN,
		SSTNumber:        c.SSTNumber,
		MSICCode:         c.MSICCode,
		BusinessActivity: c.BusinessActivity,
		Email:            c.Email,
		Phone:            c.Phone,
		Address:          c.Address,
	}
}

func mapBuyer(c *store.Customer) model.Party {
	return model.Party{
		Name:    c.Name,
		TIN:     c.TIN,
		IDType:  c.IDType,
		IDValue: c.IDValue,
		BRN:     c.BRN,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}
