package services

import (
	"errors"

	"ghgcli/internal/dataprocessing"
	"ghgcli/internal/emissions"
	apperrors "ghgcli/internal/errors"
)

// Service errors
var (
	ErrInvalidFactor      = errors.New("emission factor must be a finite number")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrNonFiniteTotal     = errors.New("total emissions overflow a finite number")
)

// parseFailure maps a dataset loading error to a PARSING application error
func parseFailure(err error) *apperrors.AppError {
	var (
		colErr  *dataprocessing.ColumnError
		cellErr *dataprocessing.CellError
	)

	switch {
	case errors.As(err, &colErr):
		appErr := apperrors.NewParsingError("dataset is missing a required column", err).
			WithContext("column", string(colErr.Column))
		if colErr.Sheet != "" {
			appErr.WithContext("sheet", colErr.Sheet)
		}
		return appErr
	case errors.As(err, &cellErr):
		return apperrors.NewParsingError("consumption value is not numeric", err).
			WithContext("row", cellErr.Row).
			WithContext("column", string(cellErr.Column)).
			WithContext("value", cellErr.Value)
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apperrors.NewParsingError("unsupported dataset format", err)
	default:
		return apperrors.NewParsingError("dataset could not be read", err)
	}
}

// parseFailureReason labels a parse error for metrics
func parseFailureReason(err error) string {
	switch {
	case errors.Is(err, dataprocessing.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, dataprocessing.ErrNonNumeric):
		return "non_numeric"
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return "unsupported_format"
	default:
		return "unreadable"
	}
}

// computeFailure maps a rejected input value to a VALIDATION application error
func computeFailure(err error) *apperrors.AppError {
	appErr := apperrors.NewAppValidationError("input rejected by strict validation", err)

	var valErr *emissions.ValidationError
	if errors.As(err, &valErr) {
		appErr.WithContext("field", valErr.Field)
		if valErr.Row >= 0 {
			appErr.WithContext("row", valErr.Row)
		}
	}
	return appErr
}
