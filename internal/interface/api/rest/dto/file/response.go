package file

import "time"

type (
	File struct {
		Token         string    `json:"token"`
		Filename      string    `json:"file_name"`
		MimeType      string    `json:"mime_type"`
		SizeBytes     int64     `json:"size_bytes"`
		DownloadURL   string    `json:"download_url"`
		Owner         string    `json:"owner,omitempty"`
		IsPublic      bool      `json:"is_public"`
		SharedWith    []string  `json:"shared_with,omitempty"`
		HasPassword   bool      `json:"has_password"`
		TotpProtected bool      `json:"totp_protected"`
		AvailableFrom time.Time `json:"available_from"`
		AvailableTo   time.Time `json:"available_to"`
		Status        string    `json:"status"`
		CreatedAt     time.Time `json:"created_at"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
)
