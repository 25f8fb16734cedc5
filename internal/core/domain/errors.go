package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMaxChangesExceeded indicates the apply run hit its mutation ceiling.
	ErrMaxChangesExceeded = errors.New("max allowed changes exceeded")

	// ErrMissingToken indicates the token endpoint answered without an access token.
	ErrMissingToken = errors.New("response has no access_token")
)

// AuthError reports a failed refresh-token exchange.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("zoho auth failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("zoho auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError is returned once the gateway retry policy is exhausted.
// StatusCode is zero for transport failures.
type RemoteError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Attempts   int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed after %d attempts: status %d: %s",
			e.Method, e.URL, e.Attempts, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ParseError reports a 2xx response whose body could not be decoded.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a malformed or incomplete local record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing %q", e.Field)
	}
	return fmt.Sprintf("invalid %q: %s", e.Field, e.Reason)
}

// VerificationError reports a card that survived its detachment.
type VerificationError struct {
	ProfileID string
	CardID    string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for %s: card_id %s still present", e.ProfileID, e.CardID)
}

// ConfigError reports a missing settings file or required key.
// Exactly one of File and Key is set.
type ConfigError struct {
	File string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		if e.Err != nil {
			return fmt.Sprintf("load env file %s: %v", e.File, e.Err)
		}
		return fmt.Sprintf("no env file found at %s", e.File)
	}
	return fmt.Sprintf("missing required setting %s", e.Key)
}

func (e *ConfigError) Unwrap() error { return e.Err }
