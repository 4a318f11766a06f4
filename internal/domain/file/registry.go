package file

import (
	"context"
	"time"
)

type Registry interface {
	CreateFile(ctx context.Context, f *File) (*File, error)
	FetchFileByToken(ctx context.Context, token Token) (*File, error)
	FetchOwnerFiles(ctx context.Context, owner Identity, page int) (Files, error)
	// DeleteFile removes the record and cascades to its statistics and
	// history. Returns ErrNotFound for an unknown token.
	DeleteFile(ctx context.Context, token Token) error
	// SweepExpired deletes every record whose status at now is expired
	// and reports how many were removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
