package service

import "errors"

var (
	// ErrNotAuthor means an authenticated user tried to edit somebody
	// else's post. Handlers turn it into a redirect to the detail view,
	// not an error page.
	ErrNotAuthor = errors.New("not the post author")

	// ErrEmptyComment makes an empty submission a no-op.
	ErrEmptyComment = errors.New("comment text is empty")
)

// FieldErrors carries per-field validation messages back into the form
// template. A nil/empty map means the submission was valid.
type FieldErrors map[string]string
