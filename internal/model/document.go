package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the invoicing base currency. Documents issued in any other
// currency must carry a positive exchange rate to MYR.
const BaseCurrency = "MYR"

// Address is a party address in the canonical document shape.
type Address struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode,omitempty"`
	StateCode   string `json:"stateCode"`
	CountryCode string `json:"countryCode"`
}

// Party is a supplier or buyer on the canonical document. The same shape is
// used for both sides; MSICCode and BusinessActivity are only mandatory for
// the supplier.
type Party struct {
	Name             string  `json:"name"`
	TIN              string  `json:"tin"`
	IDType           string  `json:"idType,omitempty"` // BRN, NRIC, PASSPORT, ARMY
	IDValue          string  `json:"idValue,omitempty"`
	BRN              string  `json:"brn,omitempty"`
	SSTNumber        string  `json:"sstNumber,omitempty"`
	MSICCode         string  `json:"msicCode,omitempty"`
	BusinessActivity string  `json:"businessActivity,omitempty"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Address          Address `json:"address"`
}

// Line is one line item on the canonical document. Subtotal, TaxAmount and
// Total are filled by the totals engine, not by callers.
type Line struct {
	Number             int             `json:"number"`
	Description        string          `json:"description"`
	ClassificationCode string          `json:"classificationCode,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCode           string          `json:"unitCode,omitempty"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TaxTypeCode        string          `json:"taxTypeCode"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	ExemptionCode      string          `json:"exemptionCode,omitempty"`
	ExemptionAmount    decimal.Decimal `json:"exemptionAmount"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
}

// Totals holds the invoice-level aggregates. Each field is a sum of
// already-rounded line values so rounding error stays bounded per line.
type Totals struct {
	TotalExcludingTax decimal.Decimal `json:"totalExcludingTax"`
	TotalIncludingTax decimal.Decimal `json:"totalIncludingTax"`
	TotalDiscount     decimal.Decimal `json:"totalDiscount"`
	TotalTax          decimal.Decimal `json:"totalTax"`
	TotalPayable      decimal.Decimal `json:"totalPayable"`
}

// Document is the canonical e-invoice shape submitted to MyInvois.
type Document struct {
	Version           string          `json:"version"`
	Type              DocumentType    `json:"type"`
	CodeNumber        string          `json:"codeNumber"` // internal invoice number
	IssueDate         time.Time       `json:"issueDate"`
	Currency          string          `json:"currency"`
	ExchangeRate      decimal.Decimal `json:"exchangeRate"`
	PaymentMode       string          `json:"paymentMode,omitempty"`
	PaymentTerms      string          `json:"paymentTerms,omitempty"`
	OriginalReference string          `json:"originalReference,omitempty"` // provider uuid of the adjusted document
	Supplier          Party           `json:"supplier"`
	Buyer             Party           `json:"buyer"`
	Lines             []Line          `json:"lines"`
	Discount          decimal.Decimal `json:"discount"`
	Totals            Totals          `json:"totals"`
}

// DocumentVersion is the MyInvois document schema version this pipeline emits.
const DocumentVersion = "1.0"
