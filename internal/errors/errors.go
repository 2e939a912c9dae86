package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/soberlit/internal/logger"
)

// Rejection is an error for a request that was refused without touching any
// state, such as toggling a day that has not happened yet.
type Rejection struct {
	msg string
}

// NewRejection creates a rejection with the given message
func NewRejection(msg string) *Rejection {
	return &Rejection{msg: msg}
}

func (r *Rejection) Error() string {
	return r.msg
}

// IsRejection reports whether any error in err's chain is a Rejection
func IsRejection(err error) bool {
	var r *Rejection
	return stderrors.As(err, &r)
}

// Format formats an error message with a consistent prefix.
// Rejections are reported as warnings, everything else as errors.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsRejection(err) {
		return fmt.Sprintf("Warning: %v", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf formats an error, logs it and exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
