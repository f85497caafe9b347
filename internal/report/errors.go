package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrNoSelection is returned when an export is requested for zero stations.
// Nothing is written in that case.
var ErrNoSelection = errors.New("no stations selected for export")

// ExportError reports a failure while producing or writing a report file.
type ExportError struct {
	Path string
	Op   string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// UserMessage turns an export error into text suitable for a dialog box.
func UserMessage(err error) string {
	var exportErr *ExportError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSelection):
		return "Select at least one station to export."
	case errors.Is(err, context.Canceled):
		return "The report export was cancelled."
	case errors.As(err, &exportErr) && errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("Permission denied writing the report to %s.", exportErr.Path)
	case errors.As(err, &exportErr):
		return fmt.Sprintf("Could not write the report to %s: %v", exportErr.Path, exportErr.Err)
	default:
		return "Exporting the report failed."
	}
}
