package biz

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinReleaseYear       = 1888
	MaxReleaseYearOffset = 5
	MaxSynopsisLength    = 2000
	MaxReviewTextLength  = 1000
	MinPasswordLength    = 6
	MinRating            = 1
	MaxRating            = 5
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError converts validator output into an InvalidArgument error naming
// the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return InvalidArgument("%v", err)
	}
	fe := verrs[0]
	field := lowerFirst(fe.StructField())
	switch fe.Tag() {
	case "required":
		return InvalidArgument("%s is required", field)
	case "email":
		return InvalidArgument("%s must be a valid email address", field)
	case "url":
		return InvalidArgument("%s must be a valid URL", field)
	case "min":
		if fe.Kind().String() == "slice" {
			return InvalidArgument("%s must contain at least %s item(s)", field, fe.Param())
		}
		return InvalidArgument("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return InvalidArgument("%s must be at most %s characters long", field, fe.Param())
	default:
		return InvalidArgument("%s is invalid (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// trimAll trims every element, dropping elements that become empty.
func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// MaxReleaseYear is the latest accepted release year relative to now.
func MaxReleaseYear(now time.Time) int {
	return now.Year() + MaxReleaseYearOffset
}

func validateReleaseYear(year int, now time.Time) error {
	if year < MinReleaseYear || year > MaxReleaseYear(now) {
		return InvalidArgument("releaseYear must be between %d and %d", MinReleaseYear, MaxReleaseYear(now))
	}
	return nil
}

// validateRating accepts whole numbers in [MinRating, MaxRating].
func validateRating(rating float64) (int, error) {
	if math.IsNaN(rating) || rating != math.Trunc(rating) {
		return 0, InvalidArgument("rating must be an integer between %d and %d", MinRating, MaxRating)
	}
	if rating < MinRating || rating > MaxRating {
		return 0, InvalidArgument("rating must be an integer between %d and %d", MinRating, MaxRating)
	}
	return int(rating), nil
}

// validateReviewText trims text and enforces the length bound in characters.
func validateReviewText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", InvalidArgument("reviewText is required")
	}
	if n := utf8.RuneCountInString(text); n > MaxReviewTextLength {
		return "", InvalidArgument("reviewText must be at most %d characters long (got %d)", MaxReviewTextLength, n)
	}
	return text, nil
}
