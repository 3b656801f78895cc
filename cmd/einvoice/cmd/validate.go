package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate canonical e-invoice documents offline",
	Long: `Validate one or more canonical document JSON files against the
MyInvois field catalogue without touching the API.

Exit status is non-zero when any document has validation errors.

Examples:
  einvoice validate invoice.json
  einvoice validate drafts/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileValidation pairs a file with its validation outcome for output.
type fileValidation struct {
	File   string                  `json:"file"`
	Valid  bool                    `json:"valid"`
	Issues []model.ValidationIssue `json:"issues,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	results := make([]fileValidation, 0, len(args))
	allValid := true

	for _, file := range args {
		result := validateFile(file)
		if !result.Valid {
			allValid = false
		}
		results = append(results, result)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}

	if !allValid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func validateFile(file string) fileValidation {
	data, err := os.ReadFile(file)
	if err != nil {
		return fileValidation{File: file, Error: err.Error()}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileValidation{File: file, Error: fmt.Sprintf("cannot parse document: %v", err)}
	}

	result := validator.Validate(&doc)
	return fileValidation{File: file, Valid: result.IsValid(), Issues: result.Issues}
}
