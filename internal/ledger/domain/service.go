package domain

import "context"

type Service interface {
	// CheckAndReserve decides whether the subject may perform one more
	// download today and, if so, durably commits the usage before
	// returning. limit <= 0 falls back to the configured free daily limit.
	CheckAndReserve(ctx context.Context, subject Subject, limit int) (Decision, error)

	// Peek reports current usage without reserving anything.
	Peek(ctx context.Context, subject Subject, limit int) (Decision, error)
}
