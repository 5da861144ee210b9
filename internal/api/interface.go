package api

import "context"

type Client interface {
	// Check returns nil when the server answers HEAD /batches
	Check(ctx context.Context) error

	CreateBatch(ctx context.Context, req CreateBatchRequest) (*Batch, error)
	DeleteBatch(ctx context.Context, batchID int) error
	GetBatch(ctx context.Context, batchID int) (*Batch, error)
	GetBatchState(ctx context.Context, batchID int) (string, error)
	IsBatchFinished(ctx context.Context, batchID int) (bool, error)

	// GetBatchLog returns log lines of a batch. A negative from is left out of
	// the query; size 0 is left out and -1 asks for all lines.
	GetBatchLog(ctx context.Context, batchID, from, size int) ([]string, error)

	// Host returns the server host name
	Host() string
}
