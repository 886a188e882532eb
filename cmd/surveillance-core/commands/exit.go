package commands

import "github.com/sentinel-surveillance/core/pkg/apperr"

// exitCodeFor maps an error to the process exit code named in spec.md §6:
// 0 success, 2 validation, 3 I/O, 4 cancellation. Errors outside the
// apperr taxonomy (a bad file path, an unreachable channel) exit 3 — the
// operation failed to complete, which is the closest fit rather than
// inventing a new code for them.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case apperr.IsKind(err, apperr.Validation):
		return 2
	case apperr.IsKind(err, apperr.Cancellation):
		return 4
	default:
		return 3
	}
}
