package file

import (
	"time"

	domain "filevault-api/internal/domain/file"
)

func ToResponseFile(fDomain domain.File, now time.Time) File {
	var f = File{
		Token:         string(fDomain.Token),
		Filename:      fDomain.Filename,
		MimeType:      fDomain.MimeType,
		SizeBytes:     fDomain.SizeBytes,
		DownloadURL:   fDomain.DownloadURL,
		IsPublic:      fDomain.IsPublic,
		HasPassword:   fDomain.PasswordHash != nil,
		TotpProtected: fDomain.TotpProtected,
		AvailableFrom: fDomain.AvailableFrom,
		AvailableTo:   fDomain.AvailableTo,
		Status:        string(fDomain.Status(now)),
		CreatedAt:     fDomain.CreatedAt,
	}
	if fDomain.Owner != nil {
		f.Owner = string(*fDomain.Owner)
	}
	for _, id := range fDomain.SharedWith {
		f.SharedWith = append(f.SharedWith, string(id))
	}

	return f
}

func ToResponseFiles(fDomain domain.Files, now time.Time) Files {
	fs := make(Files, len(fDomain))
	for idx, f := range fDomain {
		fs[idx] = ToResponseFile(*f, now)
	}

	return fs
}
