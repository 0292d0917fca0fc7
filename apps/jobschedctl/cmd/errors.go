package cmd

import (
	"fmt"

	sdkerrors "github.com/quatton/jobsched/pkg/qsdk/qerr"
)

// sdkError adds guidance to errors returned from the SDK. Non-SDK errors
// pass through.
func sdkError(err error) error {
	switch {
	case err == nil:
		return nil
	case sdkerrors.IsCode(err, sdkerrors.CodeUnauthorized):
		return fmt.Errorf("authentication required: run 'jobschedctl login' (%w)", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeBadRequest):
		return fmt.Errorf("request rejected: %w", err)
	default:
		return err
	}
}
