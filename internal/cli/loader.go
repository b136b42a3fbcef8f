package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/strata/internal/pipeline/modifiers"
	"github.com/roach88/strata/internal/schema"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeScanError  = "E002" // Directory scan error
	ErrCodeNoFiles    = "E003" // No CUE files found
	ErrCodeLoadFailed = "E004" // CUE load failed
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeBadInput   = "E006" // Malformed command input
	ErrCodeStorage    = "E007" // Database error

	// Schema compilation
	ErrCodeCompile = "E101" // Model, field or pipeline is invalid
)

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line, or 0 when unknown.
func (e *LoadError) Line() int {
	if !e.Pos.IsValid() {
		return 0
	}
	return e.Pos.Line()
}

// newRegistry returns the modifier registry used by commands: wall clock,
// UUID ids and the process logger for print.
func newRegistry() *modifiers.Registry {
	return modifiers.NewRegistry(modifiers.WithLogger(slog.Default()))
}

// loadSchema loads and compiles a schema file or directory.
// Failures to read the schema come back as a single error and a nil
// result; compile errors come back with the result.
func loadSchema(path string, reg *modifiers.Registry, mode schema.LoadMode) (*schema.LoadResult, []*LoadError) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []*LoadError{{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", path)}}
	}
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema: %v", err)}}
	}
	if info.IsDir() {
		files, err := schema.FindCUEFiles(path)
		if err != nil {
			return nil, []*LoadError{{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(files) == 0 {
			return nil, []*LoadError{{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
	}

	result, errs := schema.Load(path, reg, mode)
	out := make([]*LoadError, 0, len(errs))
	for _, err := range errs {
		out = append(out, toLoadError(err))
	}
	if result == nil && len(out) > 0 {
		out[0].Code = ErrCodeLoadFailed
	}
	return result, out
}

func toLoadError(err error) *LoadError {
	var ce *schema.CompileError
	if errors.As(err, &ce) {
		return &LoadError{Code: ErrCodeCompile, Field: ce.Field, Message: ce.Message, Pos: ce.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
