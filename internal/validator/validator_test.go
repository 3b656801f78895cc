package validator_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/money"
	"github.com/yijian0905/erp-einvoice/internal/validator"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// validDocument builds a document that passes the full rule set without
// warnings. Tests mutate it to trigger individual rules.
func validDocument() *model.Document {
	doc := &model.Document{
		Version:    model.DocumentVersion,
		Type:       model.TypeInvoice,
		CodeNumber: "INV-2026-0001",
		IssueDate:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Currency:   model.BaseCurrency,
		Supplier: model.Party{
			Name:             "Rezonia Trading Sdn Bhd",
			TIN:              "C1234567890",
			BRN:              "202001012345",
			MSICCode:         "62010",
			BusinessActivity: "Computer programming activities",
			Phone:            "+60123456789",
			Address: model.Address{
				Line1:       "12 Jalan Ampang",
				City:        "Kuala Lumpur",
				PostalCode:  "50450",
				StateCode:   "14",
				CountryCode: "MYS",
			},
		},
		Buyer: model.Party{
			Name: "Contoso Retail Sdn Bhd",
			TIN:  "C9876543210",
			Address: model.Address{
				Line1:       "8 Persiaran KLCC",
				City:        "Kuala Lumpur",
				StateCode:   "14",
				CountryCode: "MYS",
			},
		},
		Lines: []model.Line{
			{
				Description:        "Consulting services",
				ClassificationCode: "022",
				Quantity:           dec("2"),
				UnitCode:           "HUR",
				UnitPrice:          dec("150"),
				TaxTypeCode:        "02",
				TaxRate:            dec("8"),
			},
		},
	}
	money.Apply(doc)
	return doc
}

func TestValidate_FullyValidDocument(t *testing.T) {
	result := validator.Validate(validDocument())

	assert.True(t, result.IsValid())
	assert.Empty(t, result.Issues)
}

func TestValidate_MissingTINAndZeroQuantity(t *testing.T) {
	doc := validDocument()
	doc.Supplier.TIN = ""
	doc.Lines[0].Quantity = decimal.Zero
	money.Apply(doc)

	result := validator.Validate(doc)

	require.False(t, result.IsValid())
	errs := result.Errors()
	require.Len(t, errs, 2)

	assert.Equal(t, "Supplier.TIN", errs[0].Field)
	assert.Equal(t, model.CodeRequired, errs[0].Code)
	assert.Equal(t, "Lines[0].Quantity", errs[1].Field)
	assert.Equal(t, model.CodeInvalidValue, errs[1].Code)
}

func TestValidate_TIN(t *testing.T) {
	tests := []struct {
		name    string
		tin     string
		wantErr string // empty means valid
	}{
		{name: "company TIN", tin: "C1234567890"},
		{name: "individual TIN", tin: "IG123456789012"},
		{name: "special TIN general public", tin: "EI00000000010"},
		{name: "special TIN foreign buyer", tin: "EI00000000020"},
		{name: "missing", tin: "", wantErr: model.CodeRequired},
		{name: "too long", tin: "C12345678901234", wantErr: model.CodeMaxLength},
		{name: "bad prefix", tin: "X1234567890", wantErr: model.CodeInvalidFormat},
		{name: "too few digits", tin: "C123456789", wantErr: model.CodeInvalidFormat},
		{name: "unregistered special-looking TIN", tin: "EI00000000099", wantErr: model.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			doc.Buyer.TIN = tt.tin

			result := validator.Validate(doc)

			if tt.wantErr == "" {
				assert.True(t, result.IsValid(), "issues: %+v", result.Issues)
				return
			}
			require.False(t, result.IsValid())
			errs := result.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, "Buyer.TIN", errs[0].Field)
			assert.Equal(t, tt.wantErr, errs[0].Code)
		})
	}
}

func TestValidate_ForeignCurrencyNeedsExchangeRate(t *testing.T) {
	doc := validDocument()
	doc.Currency = "USD"
	doc.ExchangeRate = decimal.Zero

	result := validator.Validate(doc)

	require.False(t, result.IsValid())
	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Invoice.ExchangeRate", errs[0].Field)
	assert.Equal(t, model.CodeRequired, errs[0].Code)

	doc.ExchangeRate = dec("4.72")
	result = validator.Validate(doc)
	assert.True(t, result.IsValid())
}

func TestValidate_BaseCurrencyNeedsNoExchangeRate(t *testing.T) {
	doc := validDocument()
	doc.ExchangeRate = decimal.Zero

	result := validator.Validate(doc)
	assert.True(t, result.IsValid())
}

func TestValidate_HeaderRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.Document)
		wantField string
		wantCode  string
	}{
		{
			name:      "missing invoice number",
			mutate:    func(d *model.Document) { d.CodeNumber = "" },
			wantField: "Invoice.CodeNumber",
			wantCode:  model.CodeRequired,
		},
		{
			name:      "invoice number too long",
			mutate:    func(d *model.Document) { d.CodeNumber = strings.Repeat("X", 51) },
			wantField: "Invoice.CodeNumber",
			wantCode:  model.CodeMaxLength,
		},
		{
			name:      "unknown document type",
			mutate:    func(d *model.Document) { d.Type = "99" },
			wantField: "Invoice.Type",
			wantCode:  model.CodeInvalidValue,
		},
		{
			name:      "missing issue date",
			mutate:    func(d *model.Document) { d.IssueDate = time.Time{} },
			wantField: "Invoice.IssueDate",
			wantCode:  model.CodeRequired,
		},
		{
			name:      "missing currency",
			mutate:    func(d *model.Document) { d.Currency = "" },
			wantField: "Invoice.Currency",
			wantCode:  model.CodeRequired,
		},
		{
			name:      "bad payment mode",
			mutate:    func(d *model.Document) { d.PaymentMode = "09" },
			wantField: "Invoice.PaymentMode",
			wantCode:  model.CodeInvalidValue,
		},
		{
			name:      "priced lines but zero totals",
			mutate:    func(d *model.Document) { d.Totals = model.Totals{} },
			wantField: "Invoice.TotalAmount",
			wantCode:  model.CodeRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			result := validator.Validate(doc)

			require.False(t, result.IsValid())
			errs := result.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantCode, errs[0].Code)
		})
	}
}

func TestValidate_SupplierOnlyRules(t *testing.T) {
	doc := validDocument()
	doc.Supplier.MSICCode = ""
	doc.Supplier.BusinessActivity = ""
	doc.Supplier.Phone = ""

	result := validator.Validate(doc)

	require.False(t, result.IsValid())
	errs := result.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, "Supplier.MSICCode", errs[0].Field)
	assert.Equal(t, "Supplier.BusinessActivity", errs[1].Field)
	assert.Equal(t, "Supplier.Phone", errs[2].Field)

	// The same fields stay optional on the buyer side.
	doc = validDocument()
	doc.Buyer.MSICCode = ""
	doc.Buyer.Phone = ""
	result = validator.Validate(doc)
	assert.True(t, result.IsValid())
}

func TestValidate_AddressRules(t *testing.T) {
	doc := validDocument()
	doc.Buyer.Address.Line1 = ""
	doc.Buyer.Address.StateCode = "42"

	result := validator.Validate(doc)

	require.False(t, result.IsValid())
	errs := result.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "Buyer.Address.Line1", errs[0].Field)
	assert.Equal(t, model.CodeRequired, errs[0].Code)
	assert.Equal(t, "Buyer.Address.StateCode", errs[1].Field)
	assert.Equal(t, model.CodeInvalidValue, errs[1].Code)
}

func TestValidate_NotApplicableStateForForeignAddress(t *testing.T) {
	doc := validDocument()
	doc.Buyer.TIN = "EI00000000020"
	doc.Buyer.Address.StateCode = "17"
	doc.Buyer.Address.CountryCode = "SGP"

	result := validator.Validate(doc)
	assert.True(t, result.IsValid())
}

func TestValidate_WarningsDoNotBlock(t *testing.T) {
	doc := validDocument()
	doc.Lines[0].ClassificationCode = ""
	doc.Lines[0].UnitCode = "ZZZ"
	doc.Buyer.Address.CountryCode = "XXX"
	doc.Buyer.Phone = "123"

	result := validator.Validate(doc)

	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors())
	require.Len(t, result.Warnings(), 4)

	fields := make([]string, 0, 4)
	for _, w := range result.Warnings() {
		fields = append(fields, w.Field)
	}
	assert.Equal(t, []string{
		"Buyer.Phone",
		"Buyer.Address.CountryCode",
		"Lines[0].ClassificationCode",
		"Lines[0].UnitCode",
	}, fields)
}

func TestValidate_LineRules(t *testing.T) {
	doc := validDocument()
	doc.Lines = nil

	result := validator.Validate(doc)
	require.False(t, result.IsValid())
	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Invoice.Lines", errs[0].Field)

	doc = validDocument()
	doc.Lines[0].Description = ""
	doc.Lines[0].UnitPrice = dec("-5")
	doc.Lines[0].TaxTypeCode = "ZZ"
	money.Apply(doc)

	result = validator.Validate(doc)
	require.False(t, result.IsValid())
	errs = result.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, "Lines[0].Description", errs[0].Field)
	assert.Equal(t, "Lines[0].UnitPrice", errs[1].Field)
	assert.Equal(t, model.CodeInvalidValue, errs[1].Code)
	assert.Equal(t, "Lines[0].TaxTypeCode", errs[2].Field)
}

func TestValidate_IssueOrderIsDeterministic(t *testing.T) {
	doc := validDocument()
	doc.CodeNumber = ""
	doc.Supplier.TIN = ""
	doc.Buyer.Name = ""
	doc.Lines[0].Description = ""

	first := validator.Validate(doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Issues, validator.Validate(doc).Issues)
	}

	fields := make([]string, 0, len(first.Errors()))
	for _, e := range first.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"Invoice.CodeNumber",
		"Supplier.TIN",
		"Buyer.Name",
		"Lines[0].Description",
	}, fields)
}
