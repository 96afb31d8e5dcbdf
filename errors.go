package wpposter

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

const (
	sourceInvalidCode  = "SOURCE_VALIDATION_FAILED"
	submitCanceledCode = "SUBMIT_CONTEXT_CANCELED"
	submitTimeoutCode  = "SUBMIT_CONTEXT_TIMEOUT"
	submitFailedCode   = "SUBMIT_FAILED"
)

func wrapSourceError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "source document validation failed").
		WithTextCode(sourceInvalidCode)
}

func wrapSubmitError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "submission cancelled").
			WithTextCode(submitCanceledCode)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "submission deadline exceeded").
			WithTextCode(submitTimeoutCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "submission failed").
			WithTextCode(submitFailedCode)
	}
}
