package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		Token       string
		Filename    string
		SizeBytes   int64
		MimeType    string
		StorageKey  string
		DownloadURL string

		Owner        *string
		IsPublic     bool
		SharedWith   []string
		PasswordHash *string

		AvailableFrom time.Time
		AvailableTo   time.Time
		TotpProtected bool

		CreatedAt time.Time
	}
	Files []*File

	Event struct {
		ID           uuid.UUID
		Downloader   *string
		DownloadedAt time.Time
		Completed    bool
	}
)
