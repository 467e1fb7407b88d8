// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Registration errors
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameAlreadyExists = errors.New("team name already exists")
	ErrRosterTooSmall        = errors.New("roster has too few players")
	ErrRosterTooLarge        = errors.New("roster has too many players")
	ErrDuplicateJerseyNumber = errors.New("duplicate jersey number in roster")
	ErrPaymentProofRequired  = errors.New("payment proof document is required")
	ErrSequenceUnavailable   = errors.New("identifier sequence temporarily unavailable")

	// Review errors
	ErrTeamNotPending     = errors.New("team is not pending review")
	ErrReviewNoteRequired = errors.New("review note is required for rejection")

	// Match errors
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchTeamsIdentical   = errors.New("a team cannot play itself")
	ErrMatchTeamNotApproved  = errors.New("both teams must be approved before scheduling")
	ErrMatchAlreadyFinalized = errors.New("match is already completed or cancelled")
	ErrMatchScheduleInPast   = errors.New("match cannot be scheduled in the past")
	ErrMatchResultIncomplete = errors.New("both scores are required to complete a match")

	// Document errors
	ErrDocumentNotFound       = errors.New("document not found")
	ErrDocumentTooLarge       = errors.New("document exceeds the size limit")
	ErrDocumentKindInvalid    = errors.New("unsupported document kind")
	ErrDocumentContentInvalid = errors.New("document content does not match an allowed type")
	ErrDocumentNotPreviewable = errors.New("document kind has no image preview")

	// Sequence admin errors
	ErrSequenceNameRequired = errors.New("sequence name is required")
	ErrResyncValueNegative  = errors.New("resync value cannot be negative")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsTeamNotFound(err error) bool {
	return errors.Is(err, ErrTeamNotFound)
}

func IsTeamNameAlreadyExists(err error) bool {
	return errors.Is(err, ErrTeamNameAlreadyExists)
}

func IsRosterTooSmall(err error) bool {
	return errors.Is(err, ErrRosterTooSmall)
}

func IsRosterTooLarge(err error) bool {
	return errors.Is(err, ErrRosterTooLarge)
}

func IsDuplicateJerseyNumber(err error) bool {
	return errors.Is(err, ErrDuplicateJerseyNumber)
}

func IsPaymentProofRequired(err error) bool {
	return errors.Is(err, ErrPaymentProofRequired)
}

func IsSequenceUnavailable(err error) bool {
	return errors.Is(err, ErrSequenceUnavailable)
}

func IsTeamNotPending(err error) bool {
	return errors.Is(err, ErrTeamNotPending)
}

func IsReviewNoteRequired(err error) bool {
	return errors.Is(err, ErrReviewNoteRequired)
}

func IsMatchNotFound(err error) bool {
	return errors.Is(err, ErrMatchNotFound)
}

func IsMatchTeamsIdentical(err error) bool {
	return errors.Is(err, ErrMatchTeamsIdentical)
}

func IsMatchTeamNotApproved(err error) bool {
	return errors.Is(err, ErrMatchTeamNotApproved)
}

func IsMatchAlreadyFinalized(err error) bool {
	return errors.Is(err, ErrMatchAlreadyFinalized)
}

func IsMatchScheduleInPast(err error) bool {
	return errors.Is(err, ErrMatchScheduleInPast)
}

func IsMatchResultIncomplete(err error) bool {
	return errors.Is(err, ErrMatchResultIncomplete)
}

func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

func IsDocumentTooLarge(err error) bool {
	return errors.Is(err, ErrDocumentTooLarge)
}

func IsDocumentKindInvalid(err error) bool {
	return errors.Is(err, ErrDocumentKindInvalid)
}

func IsDocumentContentInvalid(err error) bool {
	return errors.Is(err, ErrDocumentContentInvalid)
}

func IsDocumentNotPreviewable(err error) bool {
	return errors.Is(err, ErrDocumentNotPreviewable)
}

func IsSequenceNameRequired(err error) bool {
	return errors.Is(err, ErrSequenceNameRequired)
}

func IsResyncValueNegative(err error) bool {
	return errors.Is(err, ErrResyncValueNegative)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
