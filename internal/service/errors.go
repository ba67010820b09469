package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitpartner/internal/calculator"
	"github.com/mmynk/splitpartner/internal/storage"
)

var (
	ErrInvalidCategory  = errors.New("unknown category")
	ErrInvalidStatus    = errors.New("unknown status")
	ErrPartnerNotActive = errors.New("partner is not active")
	ErrAuthRequired     = errors.New("authentication required")
)

// connectError maps domain and storage errors to Connect codes.
func connectError(err error) error {
	var (
		connectErr       *connect.Error
		validationErrors validator.ValidationErrors
	)
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrPartnerNotActive):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidSplitTotal),
		errors.Is(err, calculator.ErrEmptySplit),
		errors.Is(err, calculator.ErrDuplicateParticipant),
		errors.Is(err, calculator.ErrUnknownParticipant),
		errors.Is(err, calculator.ErrPercentageOutOfRange),
		errors.Is(err, calculator.ErrMissingPayer),
		errors.Is(err, ErrValidationFailed),
		errors.As(err, &validationErrors),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidStatus):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
