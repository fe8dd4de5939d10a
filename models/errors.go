package models

import "errors"

// Error taxonomy shared across services and handlers. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrUnauthenticated means no valid identity accompanied the request.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrCredentialsRequired means the identity is valid but carries no
	// calendar grant; callers should trigger the re-auth flow.
	ErrCredentialsRequired = errors.New("calendar permissions required")

	// ErrTranslatorUnavailable means the language-model translator is not
	// configured or could not be reached.
	ErrTranslatorUnavailable = errors.New("translator unavailable")

	// ErrParseFailure means the translator replied but no valid JSON could
	// be extracted from its output.
	ErrParseFailure = errors.New("no parseable event data in translator reply")

	// ErrValidation means a parsed request is missing required fields.
	ErrValidation = errors.New("invalid event request")

	// ErrInvalidTimeRange means a computed end instant is not strictly
	// after the start instant.
	ErrInvalidTimeRange = errors.New("invalid time range: end time must be after start time")

	// ErrProvider is a generic external calendar store failure.
	ErrProvider = errors.New("calendar provider error")

	// ErrProviderPermission is a provider failure caused by a missing or
	// revoked grant, distinguished so callers can re-authenticate.
	ErrProviderPermission = errors.New("calendar provider permission denied")
)
