package download

import (
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/file"
)

type (
	// Stats is the aggregate read model for one file. UniqueDownloaders
	// never contains anonymous downloads.
	Stats struct {
		DownloadCount     int64
		UniqueDownloaders []file.Identity
		LastDownloadedAt  *time.Time
	}

	Event struct {
		ID           uuid.UUID
		Downloader   *file.Identity
		DownloadedAt time.Time
		// Completed is reserved for partial-transfer semantics;
		// transfers are atomic here so it is always true.
		Completed bool
	}
	Events []*Event
)

const DefaultHistoryLimit = 20

// TotalPages computes offset-pagination metadata: ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
