// Package validator implements the MyInvois field validation rule set. The
// validator is pure: no I/O, deterministic output, issues appended in
// evaluation order (header, supplier, buyer, lines) so assertions on the
// result stay stable.
package validator

import (
	"fmt"
	"regexp"

	"github.com/yijian0905/erp-einvoice/internal/codes"
	"github.com/yijian0905/erp-einvoice/internal/model"
)

// Field length limits from the LHDN e-invoice data catalogue.
const (
	maxNameLen        = 300
	maxTINLen         = 14
	maxBRNLen         = 20
	maxEmailLen       = 320
	maxMSICLen        = 5
	maxPhoneLen       = 20
	minPhoneLen       = 8
	maxAddressLineLen = 150
	maxInvoiceNoLen   = 50
)

var (
	// Standard TINs: "C" (companies) or "IG" (individuals) followed by
	// 10 to 12 digits. Special TINs bypass this pattern.
	tinPattern = regexp.MustCompile(`^(C|IG)\d{10,12}$`)

	// Contact numbers: optional leading +, then digits, spaces, hyphens
	// and parentheses. Length is checked separately.
	phonePattern = regexp.MustCompile(`^\+?[0-9()\- ]+$`)
)

// Validate checks a candidate document against the compliance rule set and
// returns the itemized result. Warnings never block submission.
func Validate(doc *model.Document) model.ValidationResult {
	var result model.ValidationResult

	validateHeader(&result, doc)
	validateParty(&result, "Supplier", &doc.Supplier, true)
	validateParty(&result, "Buyer", &doc.Buyer, false)
	validateLines(&result, doc.Lines)

	return result
}

func validateHeader(result *model.ValidationResult, doc *model.Document) {
	if doc.CodeNumber == "" {
		result.AddError("Invoice.CodeNumber", model.CodeRequired, "invoice number is required")
	} else if len(doc.CodeNumber) > maxInvoiceNoLen {
		result.AddError("Invoice.CodeNumber", model.CodeMaxLength,
			fmt.Sprintf("invoice number exceeds %d characters", maxInvoiceNoLen))
	}

	if !doc.Type.IsValid() {
		result.AddError("Invoice.Type", model.CodeInvalidValue,
			fmt.Sprintf("unknown e-invoice type code %q", doc.Type))
	}

	if doc.IssueDate.IsZero() {
		result.AddError("Invoice.IssueDate", model.CodeRequired, "issue date is required")
	}

	if doc.Currency == "" {
		result.AddError("Invoice.Currency", model.CodeRequired, "currency code is required")
	} else if doc.Currency != model.BaseCurrency && !doc.ExchangeRate.IsPositive() {
		result.AddError("Invoice.ExchangeRate", model.CodeRequired,
			fmt.Sprintf("a positive exchange rate is required for currency %s", doc.Currency))
	}

	if doc.PaymentMode != "" && !codes.IsValidPaymentMode(doc.PaymentMode) {
		result.AddError("Invoice.PaymentMode", model.CodeInvalidValue,
			fmt.Sprintf("payment mode %q is not one of 01-07", doc.PaymentMode))
	}

	// The total is only "missing" when priced lines exist but no totals
	// were computed; a document whose lines legitimately sum to zero is
	// caught by the per-line rules instead.
	if doc.Totals.TotalPayable.IsZero() && doc.Totals.TotalIncludingTax.IsZero() && hasPricedLine(doc.Lines) {
		result.AddError("Invoice.TotalAmount", model.CodeRequired, "total amount is required")
	}
}

func hasPricedLine(lines []model.Line) bool {
	for _, l := range lines {
		if l.Quantity.IsPositive() && l.UnitPrice.IsPositive() {
			return true
		}
	}
	return false
}

func validateParty(result *model.ValidationResult, prefix string, party *model.Party, supplier bool) {
	if party.Name == "" {
		result.AddError(prefix+".Name", model.CodeRequired, "name is required")
	} else if len(party.Name) > maxNameLen {
		result.AddError(prefix+".Name", model.CodeMaxLength,
			fmt.Sprintf("name exceeds %d characters", maxNameLen))
	}

	validateTIN(result, prefix+".TIN", party.TIN)

	if len(party.BRN) > maxBRNLen {
		result.AddError(prefix+".BRN", model.CodeMaxLength,
			fmt.Sprintf("business registration number exceeds %d characters", maxBRNLen))
	}

	if len(party.Email) > maxEmailLen {
		result.AddError(prefix+".Email", model.CodeMaxLength,
			fmt.Sprintf("email exceeds %d characters", maxEmailLen))
	}

	if supplier {
		if party.MSICCode == "" {
			result.AddError(prefix+".MSICCode", model.CodeRequired, "MSIC code is required")
		} else if len(party.MSICCode) > maxMSICLen {
			result.AddError(prefix+".MSICCode", model.CodeMaxLength,
				fmt.Sprintf("MSIC code exceeds %d characters", maxMSICLen))
		}
		if party.BusinessActivity == "" {
			result.AddError(prefix+".BusinessActivity", model.CodeRequired,
				"business activity description is required")
		} else if len(party.BusinessActivity) > maxNameLen {
			result.AddError(prefix+".BusinessActivity", model.CodeMaxLength,
				fmt.Sprintf("business activity exceeds %d characters", maxNameLen))
		}
		if party.Phone == "" {
			result.AddError(prefix+".Phone", model.CodeRequired, "contact number is required")
		}
	}

	validatePhone(result, prefix+".Phone", party.Phone)
	validateAddress(result, prefix+".Address", &party.Address)
}

func validateTIN(result *model.ValidationResult, field, tin string) {
	if tin == "" {
		result.AddError(field, model.CodeRequired, "TIN is required")
		return
	}
	if len(tin) > maxTINLen {
		result.AddError(field, model.CodeMaxLength,
			fmt.Sprintf("TIN exceeds %d characters", maxTINLen))
		return
	}
	if codes.IsSpecialTIN(tin) {
		return
	}
	if !tinPattern.MatchString(tin) {
		result.AddError(field, model.CodeInvalidFormat,
			"TIN must be C or IG followed by 10-12 digits, or a designated special TIN")
	}
}

func validatePhone(result *model.ValidationResult, field, phone string) {
	if phone == "" {
		return
	}
	// Format guidance only; a non-conforming number does not block
	// submission.
	if len(phone) < minPhoneLen || len(phone) > maxPhoneLen {
		result.AddWarning(field, model.CodeInvalidFormat,
			fmt.Sprintf("contact number should be %d-%d characters", minPhoneLen, maxPhoneLen))
		return
	}
	if !phonePattern.MatchString(phone) {
		result.AddWarning(field, model.CodeInvalidFormat,
			"contact number may only contain digits, spaces, hyphens, parentheses and a leading +")
	}
}

func validateAddress(result *model.ValidationResult, prefix string, addr *model.Address) {
	if addr.Line1 == "" {
		result.AddError(prefix+".Line1", model.CodeRequired, "address line is required")
	}
	for i, line := range []string{addr.Line1, addr.Line2, addr.Line3} {
		if len(line) > maxAddressLineLen {
			result.AddError(fmt.Sprintf("%s.Line%d", prefix, i+1), model.CodeMaxLength,
				fmt.Sprintf("address line exceeds %d characters", maxAddressLineLen))
		}
	}

	if !codes.IsValidStateCode(addr.StateCode) {
		result.AddError(prefix+".StateCode", model.CodeInvalidValue,
			fmt.Sprintf("state code %q is not one of the 17 Malaysia state codes", addr.StateCode))
	}

	if addr.CountryCode == "" {
		result.AddError(prefix+".CountryCode", model.CodeRequired, "country code is required")
	} else if !codes.IsKnownCountryCode(addr.CountryCode) {
		// The alpha-3 subset is not exhaustive, so an unknown code is
		// only flagged, never blocked.
		result.AddWarning(prefix+".CountryCode", model.CodeUnknownCode,
			fmt.Sprintf("country code %q is not in the known ISO 3166-1 alpha-3 list", addr.CountryCode))
	}
}

func validateLines(result *model.ValidationResult, lines []model.Line) {
	if len(lines) == 0 {
		result.AddError("Invoice.Lines", model.CodeRequired, "at least one line item is required")
		return
	}

	for i, line := range lines {
		field := func(name string) string { return fmt.Sprintf("Lines[%d].%s", i, name) }

		if line.ClassificationCode == "" {
			result.AddWarning(field("ClassificationCode"), model.CodeRequired,
				"classification code is recommended")
		} else if !codes.IsKnownClassificationCode(line.ClassificationCode) {
			result.AddWarning(field("ClassificationCode"), model.CodeUnknownCode,
				fmt.Sprintf("classification code %q is not in the known table", line.ClassificationCode))
		}

		if line.Description == "" {
			result.AddError(field("Description"), model.CodeRequired, "description is required")
		}

		if !line.Quantity.IsPositive() {
			result.AddError(field("Quantity"), model.CodeInvalidValue,
				"quantity must be greater than zero")
		}

		if line.UnitPrice.IsNegative() {
			result.AddError(field("UnitPrice"), model.CodeInvalidValue,
				"unit price must not be negative")
		}

		if line.UnitCode != "" && !codes.IsKnownUnitCode(line.UnitCode) {
			result.AddWarning(field("UnitCode"), model.CodeUnknownCode,
				fmt.Sprintf("unit code %q is not in the known UN/ECE set", line.UnitCode))
		}

		if !codes.IsValidTaxType(line.TaxTypeCode) {
			result.AddError(field("TaxTypeCode"), model.CodeInvalidValue,
				fmt.Sprintf("tax type code %q is not one of 01-06 or E", line.TaxTypeCode))
		}

		if line.ExemptionCode != "" && !codes.IsKnownExemptionCode(line.ExemptionCode) {
			result.AddWarning(field("ExemptionCode"), model.CodeUnknownCode,
				fmt.Sprintf("exemption code %q is not in the known table", line.ExemptionCode))
		}
	}
}
