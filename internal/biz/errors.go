package biz

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

const ReasonInvalidArgument = "INVALID_ARGUMENT"

var (
	ErrMovieNotFound          = errors.NotFound("MOVIE_NOT_FOUND", "movie not found")
	ErrUserNotFound           = errors.NotFound("USER_NOT_FOUND", "user not found")
	ErrWatchlistEntryNotFound = errors.NotFound("WATCHLIST_ENTRY_NOT_FOUND", "movie not found in your watchlist")

	ErrMovieExists        = errors.Conflict("MOVIE_EXISTS", "movie with this title and release year already exists")
	ErrReviewExists       = errors.Conflict("REVIEW_EXISTS", "you have already reviewed this movie; updating a review is not supported")
	ErrAlreadyInWatchlist = errors.Conflict("ALREADY_IN_WATCHLIST", "movie is already in your watchlist")
	ErrUserExists         = errors.Conflict("USER_EXISTS", "a user with this name or email already exists")

	ErrUnauthenticated    = errors.Unauthorized("UNAUTHENTICATED", "authentication required")
	ErrInvalidCredentials = errors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	ErrForbidden          = errors.Forbidden("FORBIDDEN", "admin privilege required")

	ErrImageHostingDisabled = errors.ServiceUnavailable("IMAGE_HOSTING_DISABLED", "image hosting is not configured")
)

// InvalidArgument builds a 400 error with a formatted message.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.BadRequest(ReasonInvalidArgument, fmt.Sprintf(format, args...))
}

// IsInvalidArgument reports whether err is an InvalidArgument failure.
func IsInvalidArgument(err error) bool {
	return errors.Reason(err) == ReasonInvalidArgument
}
