package ports

import (
	"context"

	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/download"
	"filevault-api/internal/domain/file"
)

type DownloadService interface {
	// Download authorizes and, on Allow, records one retrieval.
	// Returns file.ErrNotFound for an unknown token; a Deny/Defer
	// decision comes back with a nil error and untouched statistics.
	Download(ctx context.Context, token file.Token, requester *file.Identity, password *string) (*file.File, access.Decision, error)

	FileStats(ctx context.Context, token file.Token, requester file.Identity, isAdmin bool) (*download.Stats, error)
	FileHistory(ctx context.Context, token file.Token, requester file.Identity, isAdmin bool, page, limit int) (download.Events, int, error)
}
