package form

import "github.com/tbxark/briefpay/types"

type FormSpec[T any] interface {
	JsonSchema() (string, error)

	MissingFacts(current T) []types.FieldInfo
	ValidateFacts(current T) []types.FieldInfo

	Summary(current T) string
}

// Result is the outcome of validating a whole form.
type Result struct {
	Valid   bool
	Issues  []types.FieldInfo
	Message string
	Focus   string
}

// Err converts an invalid result into a validation error, nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return types.NewValidationError(r.Focus, r.Message)
}
