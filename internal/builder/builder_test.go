package builder_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yijian0905/erp-einvoice/internal/builder"
	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seededReader(t *testing.T) *store.MemorySalesReader {
	t.Helper()
	sales := store.NewMemorySalesReader()
	sales.Seed("tenant-1", &store.SalesInvoice{
		ID:        "inv-100",
		Number:    "INV-2026-0100",
		IssueDate: time.Date(2026, 8, 15, 9, 30, 0, 0, time.FixedZone("MYT", 8*3600)),
		Currency:  "MYR",
		Lines: []store.SalesLine{
			{
				Description:        "Consulting services",
				ClassificationCode: "022",
				Quantity:           dec("2"),
				UnitCode:           "HUR",
				UnitPrice:          dec("150"),
				TaxTypeCode:        "02",
				TaxRate:            dec("8"),
			},
			{
				Description: "Travel expenses",
				Quantity:    dec("1"),
				UnitPrice:   dec("85.50"),
				TaxTypeCode: "06",
			},
		},
		Customer: store.Customer{
			Name: "Contoso Retail Sdn Bhd",
			TIN:  "C9876543210",
			Address: model.Address{
				Line1:       "8 Persiaran KLCC",
				City:        "Kuala Lumpur",
				StateCode:   "14",
				CountryCode: "MYS",
			},
		},
		Company: store.CompanyProfile{
			Name:             "Rezonia Trading Sdn Bhd",
			TIN:              "C1234567890",
			BRN:              "202001012345",
			MSICCode:         "62010",
			BusinessActivity: "Computer programming activities",
			Phone:            "+60123456789",
			Address: model.Address{
				Line1:       "12 Jalan Ampang",
				City:        "Kuala Lumpur",
				StateCode:   "14",
				CountryCode: "MYS",
			},
		},
	})
	return sales
}

func TestBuild_MapsSalesInvoice(t *testing.T) {
	b := builder.New(seededReader(t))

	res, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeInvoice, "")
	require.NoError(t, err)

	doc := res.Document
	assert.Equal(t, model.DocumentVersion, doc.Version)
	assert.Equal(t, model.TypeInvoice, doc.Type)
	assert.Equal(t, "INV-2026-0100", doc.CodeNumber)
	assert.Equal(t, time.UTC, doc.IssueDate.Location())
	assert.Empty(t, doc.OriginalReference)

	assert.Equal(t, "Rezonia Trading Sdn Bhd", doc.Supplier.Name)
	assert.Equal(t, "BRN", doc.Supplier.IDType)
	assert.Equal(t, "202001012345", doc.Supplier.IDValue)
	assert.Equal(t, "C9876543210", doc.Buyer.TIN)

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, 1, doc.Lines[0].Number)
	assert.Equal(t, 2, doc.Lines[1].Number)
	// 2 x 150 at 8% plus 85.50 untaxed.
	assert.True(t, doc.Lines[0].TaxAmount.Equal(dec("24")), "got %s", doc.Lines[0].TaxAmount)
	assert.True(t, doc.Totals.TotalPayable.Equal(dec("409.5")), "got %s", doc.Totals.TotalPayable)
}

func TestBuild_HashMatchesPayload(t *testing.T) {
	b := builder.New(seededReader(t))

	res, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeInvoice, "")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(res.Payload)
	require.NoError(t, err)

	sum := sha256.Sum256(raw)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Hash)

	var doc model.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "INV-2026-0100", doc.CodeNumber)
}

func TestBuild_RepeatedBuildsHashIdentically(t *testing.T) {
	b := builder.New(seededReader(t))

	first, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeInvoice, "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeInvoice, "")
		require.NoError(t, err)
		assert.Equal(t, first.Hash, again.Hash)
		assert.Equal(t, first.Payload, again.Payload)
	}
}

func TestBuild_CreditNoteCarriesOriginalReference(t *testing.T) {
	b := builder.New(seededReader(t))

	res, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeCreditNote, "provider-uuid-123")
	require.NoError(t, err)

	assert.Equal(t, model.TypeCreditNote, res.Document.Type)
	assert.Equal(t, "provider-uuid-123", res.Document.OriginalReference)

	// The reference changes the serialization, so the hash differs from the
	// plain invoice build.
	plain, err := b.Build(context.Background(), "tenant-1", "inv-100", model.TypeInvoice, "")
	require.NoError(t, err)
	assert.NotEqual(t, plain.Hash, res.Hash)
}

func TestBuild_DoesNotValidate(t *testing.T) {
	sales := store.NewMemorySalesReader()
	sales.Seed("tenant-1", &store.SalesInvoice{
		ID:     "inv-bad",
		Number: "INV-BAD",
		// No supplier TIN, no lines: invalid but still buildable.
	})
	b := builder.New(sales)

	res, err := b.Build(context.Background(), "tenant-1", "inv-bad", model.TypeInvoice, "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Hash)
}

func TestBuild_UnknownInvoice(t *testing.T) {
	b := builder.New(store.NewMemorySalesReader())

	_, err := b.Build(context.Background(), "tenant-1", "missing", model.TypeInvoice, "")
	require.Error(t, err)
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}

func TestBuild_TenantScoped(t *testing.T) {
	b := builder.New(seededReader(t))

	_, err := b.Build(context.Background(), "tenant-2", "inv-100", model.TypeInvoice, "")
	require.Error(t, err)
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}
