package card

import (
	"errors"
	"fmt"
)

// ConfigurationError reports missing or invalid required configuration at
// construction time. It is fatal to construction; the card is never built
// in a half-configured state.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid card configuration: %s: %s", e.Field, e.Reason)
}

// LocalValidationError reports a user action whose precondition failed
// (empty search query, play with no player selected). It is recovered
// locally: the caller shows the Warning text and no dispatch is sent.
type LocalValidationError struct {
	Warning string
}

func (e *LocalValidationError) Error() string {
	return e.Warning
}

// IsLocalValidation reports whether err is a LocalValidationError,
// returning it for display when so.
func IsLocalValidation(err error) (*LocalValidationError, bool) {
	var lve *LocalValidationError
	if errors.As(err, &lve) {
		return lve, true
	}
	return nil, false
}
