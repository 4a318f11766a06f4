package file

import (
	domainDL "filevault-api/internal/domain/download"
	domain "filevault-api/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	f := &domain.File{
		Token:       domain.Token(model.Token),
		Filename:    model.Filename,
		SizeBytes:   model.SizeBytes,
		MimeType:    model.MimeType,
		StorageKey:  model.StorageKey,
		DownloadURL: model.DownloadURL,

		Owner:        (*domain.Identity)(model.Owner),
		IsPublic:     model.IsPublic,
		PasswordHash: model.PasswordHash,

		AvailableFrom: model.AvailableFrom,
		AvailableTo:   model.AvailableTo,
		TotpProtected: model.TotpProtected,

		CreatedAt: model.CreatedAt,
	}
	for _, s := range model.SharedWith {
		f.SharedWith = append(f.SharedWith, domain.Identity(s))
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}

func fromDBEvent(model *Event) *domainDL.Event {
	return &domainDL.Event{
		ID:           model.ID,
		Downloader:   (*domain.Identity)(model.Downloader),
		DownloadedAt: model.DownloadedAt,
		Completed:    model.Completed,
	}
}
