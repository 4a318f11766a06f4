package download

import "time"

type (
	Grant struct {
		Token       string `json:"token"`
		FileName    string `json:"file_name"`
		DownloadURL string `json:"download_url"`
	}

	Stats struct {
		Token             string     `json:"token"`
		DownloadCount     int64      `json:"download_count"`
		UniqueDownloaders []string   `json:"unique_downloaders"`
		LastDownloadedAt  *time.Time `json:"last_downloaded_at"`
	}

	Event struct {
		ID           string    `json:"id"`
		Downloader   string    `json:"downloader,omitempty"`
		DownloadedAt time.Time `json:"downloaded_at"`
		Completed    bool      `json:"completed"`
	}
	Events []Event

	HistoryResponse struct {
		Data       Events     `json:"data"`
		Pagination Pagination `json:"pagination"`
	}

	Pagination struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	}
)
