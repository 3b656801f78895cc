package model

// Severity classifies a validation issue. Only errors block submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Validation issue codes.
const (
	CodeRequired      = "REQUIRED"
	CodeMaxLength     = "MAX_LENGTH"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeUnknownCode   = "UNKNOWN_CODE"
)

// ValidationIssue is one itemized finding against a candidate document.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the ordered list of findings produced by the field
// validator. Order is the evaluation order (header, supplier, buyer, lines)
// so assertions stay stable.
type ValidationResult struct {
	Issues []ValidationIssue `json:"issues"`
}

// AddError appends an error-severity issue.
func (r *ValidationResult) AddError(field, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Field: field, Code: code, Message: message, Severity: SeverityError})
}

// AddWarning appends a warning-severity issue.
func (r *ValidationResult) AddWarning(field, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Field: field, Code: code, Message: message, Severity: SeverityWarning})
}

// IsValid reports whether no issue has error severity. Warnings do not block
// submission.
func (r *ValidationResult) IsValid() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the error-severity issues in order.
func (r *ValidationResult) Errors() []ValidationIssue {
	var out []ValidationIssue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns the warning-severity issues in order.
func (r *ValidationResult) Warnings() []ValidationIssue {
	var out []ValidationIssue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}
