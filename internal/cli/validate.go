package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/schema"
)

// ValidationError is one schema problem in command output.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ModelSummary describes a compiled model.
type ModelSummary struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files,omitempty"`
	Models []ModelSummary    `json:"models,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema>",
		Short: "Compile a schema and report every error",
		Long: `Compile a CUE schema file or directory into models and field pipelines.

Every model is compiled, so all errors are reported in one pass.
Every modifier name and argument count is checked against the built-in
registry.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErrs := loadSchema(path, newRegistry(), schema.LoadModeCollectAll)
	if result == nil {
		first := loadErrs[0]
		_ = formatter.Error(first.Code, first.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", first.Code, first.Message))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, path)

	if len(loadErrs) > 0 {
		errs := make([]ValidationError, len(loadErrs))
		for i, e := range loadErrs {
			errs[i] = ValidationError{Code: e.Code, Field: e.Field, Message: e.Message, Line: e.Line()}
		}
		return outputValidationErrors(formatter, result.FileCount, errs)
	}

	return outputValidateSuccess(formatter, result.FileCount, result.Graph)
}

func summarize(g *object.Graph) []ModelSummary {
	models := g.Models()
	out := make([]ModelSummary, len(models))
	for i, m := range models {
		fields := make([]string, 0, len(m.Fields()))
		for _, f := range m.Fields() {
			fields = append(fields, f.Name)
		}
		out[i] = ModelSummary{
			Name:   m.Name(),
			Fields: fields,
			Input:  m.InputKeys(),
			Output: m.OutputKeys(),
		}
	}
	return out
}

func outputValidateSuccess(formatter *OutputFormatter, files int, g *object.Graph) error {
	models := summarize(g)
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Files: files, Models: models})
	}

	fmt.Fprintf(formatter.Writer, "✓ Schema valid (%d model(s))\n", len(models))
	for _, m := range models {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", m.Name, strings.Join(m.Fields, ", "))
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, files int, errs []ValidationError) error {
	if formatter.Format == "json" {
		err := formatter.Indented(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Files: files, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
