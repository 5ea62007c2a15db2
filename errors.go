package mbedtargets

import (
	"errors"

	"github.com/armmbed/mbedtargets/internal/database"
)

var (
	// ErrTargetNotFound is returned by lookups when no target matches.
	ErrTargetNotFound = errors.New("target not found")

	// ErrMalformedRecord is wrapped by [Target.Validate] and the collection's
	// passes for attributes that are present with an unexpected type.
	ErrMalformedRecord = errors.New("malformed target record")

	// ErrUnexpectedStatus is returned by the online database provider when
	// the server answers with a non-200 status.
	ErrUnexpectedStatus = database.ErrUnexpectedStatus

	// ErrMalformedResponse is returned by the database providers when a
	// document is not a JSON object with a "data" array.
	ErrMalformedResponse = database.ErrMalformedResponse

	// ErrResponseTooLarge is returned by the online database provider when
	// a response exceeds 16MB.
	ErrResponseTooLarge = database.ErrResponseTooLarge
)
