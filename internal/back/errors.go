package back

import "courtside/internal/util"

// Errors returned by the match consensus workflow. They are meant to be
// matched using errors.Is as they are usually wrapped with some context.
var (
	ErrNotFound               = util.ErrPublic("not found")
	ErrInvalidStateTransition = util.ErrPublic("match is not pending confirmation")
	ErrUnauthorized           = util.ErrPublic("not allowed")
	ErrValidation             = util.ErrPublic("invalid input")
)
