package download

import (
	"context"
	"time"

	"filevault-api/internal/domain/file"
)

type Ledger interface {
	// RecordDownload applies the whole effect of one successful
	// download atomically: counter increment, unique-downloader set
	// insertion (when downloader is non-nil), last-download timestamp
	// and the new history entry. Returns file.ErrNotFound when the
	// record was deleted concurrently; in that case nothing mutates.
	RecordDownload(ctx context.Context, token file.Token, downloader *file.Identity, now time.Time) (*Event, error)

	FetchStats(ctx context.Context, token file.Token) (*Stats, error)
	// FetchHistory returns one page of events newest-first plus the
	// total event count. Pages are 1-indexed; an out-of-range page
	// yields an empty slice.
	FetchHistory(ctx context.Context, token file.Token, page, limit int) (Events, int, error)
}
