// Package codes holds the static MyInvois lookup tables: tax types, state
// and country codes, unit codes, payment modes and classification codes.
// All lookups are pure and safe for concurrent use.
package codes

// Special TINs accepted by LHDN in place of a registered taxpayer TIN.
const (
	TINGeneralPublic   = "EI00000000010" // individual without a TIN
	TINForeignBuyer    = "EI00000000020"
	TINForeignSupplier = "EI00000000030"
	TINFinalConsumer   = "EI00000000040" // buyer exempt from holding a TIN
)

// SpecialTINs lists every TIN usable without matching the standard pattern.
var SpecialTINs = []string{
	TINGeneralPublic,
	TINForeignBuyer,
	TINForeignSupplier,
	TINFinalConsumer,
}

// IsSpecialTIN reports whether tin is one of the LHDN special TINs.
func IsSpecialTIN(tin string) bool {
	for _, s := range SpecialTINs {
		if tin == s {
			return true
		}
	}
	return false
}

// TaxTypes maps LHDN tax type codes to their descriptions.
var TaxTypes = map[string]string{
	"01": "Sales Tax",
	"02": "Service Tax",
	"03": "Tourism Tax",
	"04": "High-Value Goods Tax",
	"05": "Sales Tax on Low Value Goods",
	"06": "Not Applicable",
	"E":  "Tax exemption",
}

// IsValidTaxType reports whether code is a known tax type code.
func IsValidTaxType(code string) bool {
	_, ok := TaxTypes[code]
	return ok
}

// StateCodes maps Malaysia state codes (01-17) to state names.
// 17 means "Not Applicable" and is valid for foreign addresses.
var StateCodes = map[string]string{
	"01": "Johor",
	"02": "Kedah",
	"03": "Kelantan",
	"04": "Melaka",
	"05": "Negeri Sembilan",
	"06": "Pahang",
	"07": "Pulau Pinang",
	"08": "Perak",
	"09": "Perlis",
	"10": "Selangor",
	"11": "Terengganu",
	"12": "Sabah",
	"13": "Sarawak",
	"14": "Wilayah Persekutuan Kuala Lumpur",
	"15": "Wilayah Persekutuan Labuan",
	"16": "Wilayah Persekutuan Putrajaya",
	"17": "Not Applicable",
}

// IsValidStateCode reports whether code is a known Malaysia state code.
func IsValidStateCode(code string) bool {
	_, ok := StateCodes[code]
	return ok
}

// CountryCodes is a subset of ISO 3166-1 alpha-3 codes covering Malaysia's
// main trading partners. The list is not exhaustive, so an unknown code is
// treated as a warning by the validator, not an error.
var CountryCodes = map[string]string{
	"MYS": "Malaysia",
	"SGP": "Singapore",
	"THA": "Thailand",
	"IDN": "Indonesia",
	"BRN": "Brunei Darussalam",
	"VNM": "Vietnam",
	"PHL": "Philippines",
	"KHM": "Cambodia",
	"LAO": "Laos",
	"MMR": "Myanmar",
	"CHN": "China",
	"HKG": "Hong Kong",
	"TWN": "Taiwan",
	"JPN": "Japan",
	"KOR": "South Korea",
	"IND": "India",
	"PAK": "Pakistan",
	"BGD": "Bangladesh",
	"LKA": "Sri Lanka",
	"AUS": "Australia",
	"NZL": "New Zealand",
	"USA": "United States",
	"CAN": "Canada",
	"MEX": "Mexico",
	"BRA": "Brazil",
	"GBR": "United Kingdom",
	"IRL": "Ireland",
	"FRA": "France",
	"DEU": "Germany",
	"NLD": "Netherlands",
	"BEL": "Belgium",
	"CHE": "Switzerland",
	"AUT": "Austria",
	"ITA": "Italy",
	"ESP": "Spain",
	"PRT": "Portugal",
	"SWE": "Sweden",
	"NOR": "Norway",
	"DNK": "Denmark",
	"FIN": "Finland",
	"POL": "Poland",
	"CZE": "Czech Republic",
	"RUS": "Russia",
	"TUR": "Turkey",
	"ARE": "United Arab Emirates",
	"SAU": "Saudi Arabia",
	"QAT": "Qatar",
	"KWT": "Kuwait",
	"EGY": "Egypt",
	"ZAF": "South Africa",
	"NGA": "Nigeria",
	"KEN": "Kenya",
}

// IsKnownCountryCode reports whether code is in the known alpha-3 subset.
func IsKnownCountryCode(code string) bool {
	_, ok := CountryCodes[code]
	return ok
}

// UnitCodes is a subset of UN/ECE Recommendation 20 unit codes commonly used
// on Malaysian e-invoices.
var UnitCodes = map[string]string{
	"C62": "unit",
	"H87": "piece",
	"XUN": "unit (package)",
	"KGM": "kilogram",
	"GRM": "gram",
	"TNE": "tonne",
	"LTR": "litre",
	"MLT": "millilitre",
	"MTR": "metre",
	"CMT": "centimetre",
	"MMT": "millimetre",
	"MTK": "square metre",
	"MTQ": "cubic metre",
	"HUR": "hour",
	"DAY": "day",
	"MON": "month",
	"ANN": "year",
	"KWH": "kilowatt hour",
	"SET": "set",
	"PR":  "pair",
	"DZN": "dozen",
	"BX":  "box",
	"CT":  "carton",
	"PK":  "pack",
	"RO":  "roll",
	"BG":  "bag",
	"BO":  "bottle",
	"CA":  "can",
	"TU":  "tube",
	"EA":  "each",
}

// IsKnownUnitCode reports whether code is in the known UN/ECE subset.
func IsKnownUnitCode(code string) bool {
	_, ok := UnitCodes[code]
	return ok
}

// PaymentModes maps LHDN payment mode codes to their descriptions.
var PaymentModes = map[string]string{
	"01": "Cash",
	"02": "Cheque",
	"03": "Bank Transfer",
	"04": "Credit Card",
	"05": "Debit Card",
	"06": "e-Wallet / Digital Wallet",
	"07": "Others",
}

// IsValidPaymentMode reports whether code is a known payment mode.
func IsValidPaymentMode(code string) bool {
	_, ok := PaymentModes[code]
	return ok
}

// ClassificationCodes is a subset of the LHDN product/service classification
// table. Classification is advisory at validation time: a missing or unknown
// code downgrades to a warning.
var ClassificationCodes = map[string]string{
	"001": "Breastfeeding equipment",
	"002": "Child care centres and kindergartens fees",
	"003": "Computer, smartphone or tablet",
	"004": "Consolidated e-Invoice",
	"005": "Construction materials",
	"006": "Disbursement",
	"007": "Donation",
	"008": "e-Commerce - e-Invoice to buyer / purchaser",
	"009": "e-Commerce - self-billed e-Invoice",
	"010": "Education fees",
	"011": "Goods on consignment (Consignor)",
	"012": "Goods on consignment (Consignee)",
	"013": "Gym membership",
	"014": "Insurance - education and medical benefits",
	"015": "Insurance - takaful or life insurance",
	"016": "Interest and financing expenses",
	"017": "Internet subscription",
	"018": "Land and building",
	"019": "Medical examination for learning disabilities",
	"020": "Medical examination or vaccination expenses",
	"021": "Medical expenses for serious diseases",
	"022": "Others",
	"023": "Petroleum operations",
	"024": "Private retirement scheme or deferred annuity scheme",
	"025": "Motor vehicle",
	"026": "Subscription of books, journals, magazines, newspapers",
	"027": "Reimbursement",
	"028": "Rental of motor vehicle",
	"029": "EV charging facilities",
	"030": "Repair and maintenance",
	"031": "Research and development",
	"032": "Foreign income",
	"033": "Self-billed - betting and gaming",
	"034": "Self-billed - importation of goods",
	"035": "Self-billed - importation of services",
	"036": "Self-billed - others",
	"037": "Self-billed - monetary payment to agents, dealers, distributors",
	"038": "Sports equipment, rental or entry fees",
	"039": "Supporting equipment for disabled person",
	"040": "Voluntary contribution to approved provident fund",
	"041": "Dental examination or treatment",
	"042": "Fertility treatment",
	"043": "Treatment and home care nursing",
	"044": "Vouchers, gift cards, loyalty points",
	"045": "Self-billed - non-monetary payment to agents, dealers, distributors",
}

// IsKnownClassificationCode reports whether code is a known classification.
func IsKnownClassificationCode(code string) bool {
	_, ok := ClassificationCodes[code]
	return ok
}

// ExemptionCodes lists tax exemption reason codes accepted alongside tax
// type "E".
var ExemptionCodes = map[string]string{
	"E01": "Exempted under Sales Tax Act 2018",
	"E02": "Exempted under Service Tax Act 2018",
	"E03": "Exempted under Tourism Tax Act 2017",
	"E04": "Diplomatic exemption",
	"E05": "Designated area exemption",
}

// IsKnownExemptionCode reports whether code is a known exemption reason.
func IsKnownExemptionCode(code string) bool {
	_, ok := ExemptionCodes[code]
	return ok
}
