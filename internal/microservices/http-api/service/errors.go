package service

import (
	"errors"
	"fmt"

	"anilog/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// Error kinds handlers map onto HTTP statuses. Specific errors wrap one of
// these so errors.Is works on the kind.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrAnimeNotFound    = fmt.Errorf("%w: anime not found", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("%w: review not found", ErrNotFound)
	ErrCommentNotFound  = fmt.Errorf("%w: comment not found", ErrNotFound)
	ErrParentNotFound   = fmt.Errorf("%w: parent comment not found", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category not found", ErrNotFound)
	ErrSeriesNotFound   = fmt.Errorf("%w: series not found", ErrNotFound)

	ErrDuplicateReview = fmt.Errorf("%w: you already reviewed this anime", ErrConflict)
	ErrNameInUse       = fmt.Errorf("%w: username already in use", ErrConflict)
	ErrDuplicateName   = fmt.Errorf("%w: name already exists", ErrConflict)

	ErrNotReviewAuthor  = fmt.Errorf("%w: only the author can change this review", ErrForbidden)
	ErrNotCommentAuthor = fmt.Errorf("%w: only the author can delete this comment", ErrForbidden)
	ErrCannotDeleteSelf = fmt.Errorf("%w: admins cannot delete their own account here", ErrForbidden)
	ErrWrongPassword    = fmt.Errorf("%w: wrong password", ErrForbidden)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("%w: token has expired", ErrUnauthorized)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound turns gorm's missing-record error into the given domain error.
func notFound(err, domain error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

func conflict(err, domain error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return domain
	}
	return err
}

// badReference reports a dangling foreign key as a validation problem.
func badReference(err error, what string) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return validationError("%s does not exist", what)
	}
	return err
}
