package ports

import (
	"context"
	"mime/multipart"

	"filevault-api/internal/domain/file"
)

type FileService interface {
	CreateFile(ctx context.Context, owner file.Identity, in *multipart.FileHeader, opts file.Upload) (*file.File, error)
	FindFileByToken(ctx context.Context, token file.Token) (*file.File, error)
	FindOwnerFiles(ctx context.Context, owner file.Identity, page int) (file.Files, error)
	DeleteFile(ctx context.Context, token file.Token, requester file.Identity, isAdmin bool) error
	SweepExpired(ctx context.Context) (int, error)
}
