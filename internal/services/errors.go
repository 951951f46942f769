package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists with this email or phone number")
	ErrCategoryRequired   = errors.New("at least one category is required")
	ErrUnknownCategory    = errors.New("unknown category reference")
	ErrLocationRequired   = errors.New("location is required")
	ErrNotEnoughImages    = errors.New("not enough verification images")

	ErrDuplicateCategory = errors.New("category with the same name already exists")
	ErrDefaultCategory   = errors.New("cannot modify or delete the default category")
	ErrMissingLocale     = errors.New("both English and Arabic name and description are required")

	ErrInvalidRank = errors.New("rank must be between 0 and 10")

	ErrFilterRequired = errors.New("at least one of 'client' or 'provider' must be true")

	ErrNotJobOffer     = errors.New("message is not a job offer")
	ErrBadTransition   = errors.New("invalid job offer status transition")
	ErrNotParticipant  = errors.New("not a participant of this job offer")
	ErrNotCompleted    = errors.New("job offer is not completed")
	ErrAlreadyReviewed = errors.New("review already exists for this job offer")
)
