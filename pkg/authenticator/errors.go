package authenticator

import (
	"errors"
	"fmt"
)

// AuthenticatorError signals that a backend could not validate credentials
// because of an operational problem. Rejected credentials are not an error.
type AuthenticatorError struct {
	Msg string
	Err error
}

func (e *AuthenticatorError) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *AuthenticatorError) Unwrap() error {
	return e.Err
}

// NewError returns an *AuthenticatorError with the given message.
func NewError(msg string) error {
	return &AuthenticatorError{Msg: msg}
}

// WrapError marks err as a recoverable backend failure.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &AuthenticatorError{Msg: msg, Err: err}
}

// IsAuthenticatorError reports whether err wraps an *AuthenticatorError.
func IsAuthenticatorError(err error) bool {
	var authErr *AuthenticatorError
	return errors.As(err, &authErr)
}

var (
	// ErrModuleNotFound is the cause of a MissingModule resolution error.
	ErrModuleNotFound = errors.New("module not registered")
	// ErrSymbolNotFound is the cause of a MissingSymbol resolution error.
	ErrSymbolNotFound = errors.New("symbol not found in module")
)

// ResolutionKind tells why a backend could not be resolved.
type ResolutionKind int

const (
	MissingModule ResolutionKind = iota
	MissingSymbol
)

func (k ResolutionKind) String() string {
	switch k {
	case MissingModule:
		return "MissingModule"
	case MissingSymbol:
		return "MissingSymbol"
	}
	return fmt.Sprintf("ResolutionKind(%d)", int(k))
}

// ResolutionError is returned when a configured backend has no registered
// implementation. It is fatal for the Registry.Get call that triggered it.
type ResolutionError struct {
	Kind      ResolutionKind
	ShortName string
	Module    string
	Symbol    string
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Kind == MissingModule {
		return fmt.Sprintf(
			"failed to load authenticator %q: maybe you have to register module %q with the resolver (error: %v)",
			e.ShortName, e.Module, e.Err,
		)
	}
	return fmt.Sprintf(
		"failed to load authenticator %q: the authenticator must be registered as %q in module %q (error: %v)",
		e.ShortName, e.Symbol, e.Module, e.Err,
	)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
