package download

import (
	domain "filevault-api/internal/domain/download"
	"filevault-api/internal/domain/file"
)

func ToResponseStats(token file.Token, sDomain domain.Stats) Stats {
	s := Stats{
		Token:             string(token),
		DownloadCount:     sDomain.DownloadCount,
		UniqueDownloaders: make([]string, len(sDomain.UniqueDownloaders)),
		LastDownloadedAt:  sDomain.LastDownloadedAt,
	}
	for idx, id := range sDomain.UniqueDownloaders {
		s.UniqueDownloaders[idx] = string(id)
	}

	return s
}

func ToResponseEvent(eDomain domain.Event) Event {
	e := Event{
		ID:           eDomain.ID.String(),
		DownloadedAt: eDomain.DownloadedAt,
		Completed:    eDomain.Completed,
	}
	if eDomain.Downloader != nil {
		e.Downloader = string(*eDomain.Downloader)
	}

	return e
}

func ToResponseHistory(eDomain domain.Events, page, limit, total int) HistoryResponse {
	evs := make(Events, len(eDomain))
	for idx, e := range eDomain {
		evs[idx] = ToResponseEvent(*e)
	}

	return HistoryResponse{
		Data: evs,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: domain.TotalPages(total, limit),
		},
	}
}
