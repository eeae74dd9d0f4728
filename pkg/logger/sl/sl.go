// package sl contains small helpers for attaching values to slog records.
package sl

import "log/slog"

// Err wraps an error into a slog attribute under the conventional "error" key.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
