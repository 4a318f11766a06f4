package admin

import "time"

type (
	Policy struct {
		MaxFileSizeMB       int64 `json:"max_file_size_mb"`
		MinValidityHours    int   `json:"min_validity_hours"`
		MaxValidityDays     int   `json:"max_validity_days"`
		DefaultValidityDays int   `json:"default_validity_days"`
		MinPasswordLength   int   `json:"min_password_length"`
	}

	CleanupResult struct {
		Message      string    `json:"message"`
		DeletedFiles int       `json:"deletedFiles"`
		Timestamp    time.Time `json:"timestamp"`
	}
)
