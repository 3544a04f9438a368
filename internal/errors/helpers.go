package errors

import "errors"

// As and Is forward to the standard library so callers need one import.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode returns the code of err. Plain errors are CodeInternal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetMessage returns the message safe to show a client.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool { return GetCode(err) == CodeNotFound }

func IsInvalidArgument(err error) bool { return GetCode(err) == CodeInvalidArgument }

func IsAlreadyExists(err error) bool { return GetCode(err) == CodeAlreadyExists }

func IsFailedPrecondition(err error) bool { return GetCode(err) == CodeFailedPrecondition }

func IsUnavailable(err error) bool { return GetCode(err) == CodeUnavailable }
