package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// Exit codes.
const (
	ExitFailure      = 1 // the command ran and the knowledge base said no
	ExitCommandError = 2 // the command could not run (config, database, flags)
)

// Error codes carried in JSON error responses.
const (
	ErrCodeGeneric             = "E001"
	ErrCodeNotFound            = "E002"
	ErrCodeInvalidEdit         = "E003"
	ErrCodeMalformedImport     = "E004"
	ErrCodeNoQuestions         = "E005"
	ErrCodeInvalidPrecondition = "E006"
	ErrCodePersistence         = "E007"
)

// errorClass is how the CLI surfaces one kb error category.
type errorClass struct {
	code string
	exit int
}

var errorClasses = map[kb.ErrorCode]errorClass{
	kb.ErrCodeNotFound:               {ErrCodeNotFound, ExitFailure},
	kb.ErrCodeInvalidEdit:            {ErrCodeInvalidEdit, ExitFailure},
	kb.ErrCodeMalformedImport:        {ErrCodeMalformedImport, ExitFailure},
	kb.ErrCodeNoQuestionsAvailable:   {ErrCodeNoQuestions, ExitFailure},
	kb.ErrCodeInvalidPrecondition:    {ErrCodeInvalidPrecondition, ExitFailure},
	kb.ErrCodePersistenceUnavailable: {ErrCodePersistence, ExitCommandError},
}

// classify returns the class of err. Errors outside the kb categories are
// generic command errors.
func classify(err error) errorClass {
	if c, ok := errorClasses[kb.CodeOf(err)]; ok {
		return c
	}
	return errorClass{ErrCodeGeneric, ExitCommandError}
}

// ErrorCodeFor maps an error to its JSON error code.
func ErrorCodeFor(err error) string { return classify(err).code }

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set once the error has been written as a JSON response.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already written to the command output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// CLIResponse is the envelope of every JSON response.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as CLIResponse JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics and prompts; falls back to Writer
	Verbose   bool
}

func (f *OutputFormatter) IsJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) diag() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Success writes data as an "ok" response, or with fmt's default
// formatting in text mode. Text results implement fmt.Stringer.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an "error" response. In text mode details are shown only
// when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "  %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.diag(), format+"\n", args...)
	}
}

// Prompter returns where interactive prompts go. In JSON mode that is the
// diagnostic writer so stdout holds only the response.
func (f *OutputFormatter) Prompter() io.Writer {
	if f.IsJSON() {
		return f.diag()
	}
	return f.Writer
}
