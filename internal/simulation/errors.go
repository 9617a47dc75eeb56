package simulation

import "errors"

// Kind is the user-facing error taxonomy. Transient generation-service
// failures are absorbed by fallbacks and normally never surface; the other
// kinds are returned to the boundary as typed results.
type Kind string

const (
	KindInvalidPrompt        Kind = "INVALID_PROMPT"
	KindInvalidSpecification Kind = "INVALID_SPECIFICATION"
	KindGenerationService    Kind = "GENERATION_SERVICE_ERROR"
	KindDataFormat           Kind = "DATA_FORMAT_ERROR"
)

// Error is the typed failure result carried across stage boundaries. Its
// JSON shape is the wire error payload.
type Error struct {
	Kind        Kind     `json:"error"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the error kind, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidPromptError(reason string, suggestions []string) *Error {
	msg := "This prompt is not related to environmental data simulation. " +
		"Please provide a scenario about environmental impacts, pollution, climate change, or similar topics."
	if len(suggestions) == 0 {
		suggestions = []string{
			"Try: 'What happens if we remove all electric vehicles?'",
			"Try: 'Impact of closing all coal power plants'",
			"Try: 'Effect of doubling renewable energy production'",
		}
	}
	return &Error{Kind: KindInvalidPrompt, Message: msg, Suggestions: suggestions, cause: nil}
}

func invalidSpecificationError(cause error) *Error {
	return &Error{
		Kind:        KindInvalidSpecification,
		Message:     "Failed to generate a valid scenario specification.",
		Suggestions: []string{"Please try rephrasing your prompt."},
		cause:       cause,
	}
}

// DataFormatError marks malformed or missing columns in the location
// dataset. It is fatal for the request.
func DataFormatError(message string, cause error) *Error {
	return &Error{
		Kind:        KindDataFormat,
		Message:     message,
		Suggestions: []string{"Check the location dataset file for the required columns."},
		cause:       cause,
	}
}
