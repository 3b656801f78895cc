package codes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yijian0905/erp-einvoice/internal/codes"
)

func TestIsSpecialTIN(t *testing.T) {
	for _, tin := range codes.SpecialTINs {
		assert.True(t, codes.IsSpecialTIN(tin), tin)
	}
	assert.False(t, codes.IsSpecialTIN("EI00000000050"))
	assert.False(t, codes.IsSpecialTIN("C1234567890"))
	assert.False(t, codes.IsSpecialTIN(""))
}

func TestIsValidTaxType(t *testing.T) {
	for _, code := range []string{"01", "02", "03", "04", "05", "06", "E"} {
		assert.True(t, codes.IsValidTaxType(code), code)
	}
	assert.False(t, codes.IsValidTaxType("07"))
	assert.False(t, codes.IsValidTaxType("e"))
	assert.False(t, codes.IsValidTaxType(""))
}

func TestIsValidStateCode(t *testing.T) {
	for i := 1; i <= 17; i++ {
		code := []string{
			"01", "02", "03", "04", "05", "06", "07", "08", "09",
			"10", "11", "12", "13", "14", "15", "16", "17",
		}[i-1]
		assert.True(t, codes.IsValidStateCode(code), code)
	}
	assert.False(t, codes.IsValidStateCode("00"))
	assert.False(t, codes.IsValidStateCode("18"))
	assert.False(t, codes.IsValidStateCode("1"))
}

func TestIsValidPaymentMode(t *testing.T) {
	for _, code := range []string{"01", "02", "03", "04", "05", "06", "07"} {
		assert.True(t, codes.IsValidPaymentMode(code), code)
	}
	assert.False(t, codes.IsValidPaymentMode("08"))
	assert.False(t, codes.IsValidPaymentMode(""))
}

func TestIsKnownCountryCode(t *testing.T) {
	assert.True(t, codes.IsKnownCountryCode("MYS"))
	assert.True(t, codes.IsKnownCountryCode("SGP"))
	assert.False(t, codes.IsKnownCountryCode("MY"))
	assert.False(t, codes.IsKnownCountryCode("mys"))
}

func TestIsKnownUnitCode(t *testing.T) {
	assert.True(t, codes.IsKnownUnitCode("C62"))
	assert.True(t, codes.IsKnownUnitCode("HUR"))
	assert.False(t, codes.IsKnownUnitCode("XYZ"))
}

func TestIsKnownClassificationCode(t *testing.T) {
	assert.True(t, codes.IsKnownClassificationCode("001"))
	assert.True(t, codes.IsKnownClassificationCode("022"))
	assert.True(t, codes.IsKnownClassificationCode("045"))
	assert.False(t, codes.IsKnownClassificationCode("046"))
	assert.False(t, codes.IsKnownClassificationCode("22"))
}

func TestIsKnownExemptionCode(t *testing.T) {
	assert.True(t, codes.IsKnownExemptionCode("E01"))
	assert.True(t, codes.IsKnownExemptionCode("E05"))
	assert.False(t, codes.IsKnownExemptionCode("E06"))
	assert.False(t, codes.IsKnownExemptionCode("01"))
}
