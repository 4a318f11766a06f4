package file

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrTokenTaken    = errors.New("share token already registered")
	ErrInvalidWindow = errors.New("available_from must be earlier than available_to")
)

type (
	// Token is the public share token, identical to the record's
	// registry key for its whole lifetime.
	Token string

	// Identity is an opaque authenticated-identity reference (a
	// lowercased email in this deployment). Used only for equality.
	Identity string

	Status string

	File struct {
		Token       Token
		Filename    string
		SizeBytes   int64
		MimeType    string
		StorageKey  string
		DownloadURL string

		Owner        *Identity
		IsPublic     bool
		SharedWith   []Identity
		PasswordHash *string

		AvailableFrom time.Time
		AvailableTo   time.Time
		TotpProtected bool

		CreatedAt time.Time
	}
	Files []*File

	// Upload carries the caller-chosen options of an upload intake.
	// Nil window bounds take policy defaults.
	Upload struct {
		Password      string
		IsPublic      bool
		SharedWith    []Identity
		AvailableFrom *time.Time
		AvailableTo   *time.Time
		TotpProtected bool
	}
)

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Status derives the temporal state of the record at the given instant.
// Equality to either window boundary counts as active.
func (f *File) Status(now time.Time) Status {
	switch {
	case now.Before(f.AvailableFrom):
		return StatusPending
	case now.After(f.AvailableTo):
		return StatusExpired
	default:
		return StatusActive
	}
}

func (f *File) IsOwner(id *Identity) bool {
	return id != nil && f.Owner != nil && *id == *f.Owner
}

func (f *File) IsSharedWith(id Identity) bool {
	for _, s := range f.SharedWith {
		if s == id {
			return true
		}
	}
	return false
}

// Restricted reports whether anonymous access is ruled out: a private
// record, or any record carrying an explicit share list.
func (f *File) Restricted() bool {
	return !f.IsPublic || len(f.SharedWith) > 0
}

// ValidateWindow enforces the creation invariant availableFrom < availableTo.
func (f *File) ValidateWindow() error {
	if !f.AvailableFrom.Before(f.AvailableTo) {
		return ErrInvalidWindow
	}
	return nil
}
