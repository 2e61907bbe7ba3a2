package folio

import "errors"

// Domain error taxonomy. Handlers map these onto HTTP status codes and the
// {success:false} envelope; raw database errors never cross the store
// boundary untranslated.
var (
	// ErrNotFound means a content key resolved to no post.
	ErrNotFound = errors.New("folio: content not found")

	// ErrEmptySlug means a title reduced to nothing URL-safe.
	ErrEmptySlug = errors.New("folio: title produces an empty slug")

	// ErrUnauthorized means no principal could be resolved from the request.
	ErrUnauthorized = errors.New("folio: authentication required")

	// ErrForbidden means the principal's role does not satisfy the
	// requirement on the route.
	ErrForbidden = errors.New("folio: insufficient role")
)
