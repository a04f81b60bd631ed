// Package safego launches background goroutines that survive panics.
package safego

import "log/slog"

// Go runs fn in a new goroutine. If fn panics, the panic is recovered and
// logged under the given task name rather than crashing the process. Use it
// for all fire-and-forget work (audit writes, API key bookkeeping, scheduled
// jobs) where an unrecovered panic would take the whole server down.
func Go(task string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background task panicked", "task", task, "panic", r)
			}
		}()
		fn()
	}()
}
