package domain

import "context"

type Service interface {
	// Record appends a history entry. It never fails the caller's primary
	// action: guests are skipped and storage errors are logged and
	// swallowed.
	Record(ctx context.Context, userID, videoID string, commentCount int)

	// History returns the subject's most recent downloads, newest first.
	History(ctx context.Context, userID string, limit int) ([]Download, error)
}
