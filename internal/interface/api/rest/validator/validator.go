package validator

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"filevault-api/internal/domain/download"
	domain "filevault-api/internal/domain/file"
	fileDTO "filevault-api/internal/interface/api/rest/dto/file"
)

const maxHistoryLimit = 100

func ValidatePage(page string) (int, error) {
	if page == "" {
		return 1, nil
	}

	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return 0, errors.New("page must be a positive integer")
	}

	return p, nil
}

func ValidateLimit(limit string) (int, error) {
	if limit == "" {
		return download.DefaultHistoryLimit, nil
	}

	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 || l > maxHistoryLimit {
		return 0, errors.New("limit must be between 1 and 100")
	}

	return l, nil
}

func IsShareToken(s string) (bool, domain.Token) {
	s = strings.TrimSpace(s)
	if l := len(s); l < 8 || l > 64 {
		return false, ""
	}
	return true, domain.Token(s)
}

// ValidateUpload parses the raw form fields into upload options.
// Returns field-keyed errors; policy bounds (size, password length,
// validity window span) are the service's job, not the validator's.
func ValidateUpload(r fileDTO.UploadRequest) (domain.Upload, map[string]string) {
	errs := make(map[string]string)

	opts := domain.Upload{
		Password:      r.Password,
		IsPublic:      true,
		TotpProtected: r.TotpProtected,
	}
	if r.IsPublic != nil {
		opts.IsPublic = *r.IsPublic
	}

	if shared := strings.TrimSpace(r.SharedWith); shared != "" {
		for _, raw := range strings.Split(shared, ",") {
			email := strings.ToLower(strings.TrimSpace(raw))
			if email == "" {
				continue
			}
			if _, err := mail.ParseAddress(email); err != nil {
				errs["shared_with"] = "must be a comma separated list of emails"
				break
			}
			opts.SharedWith = append(opts.SharedWith, domain.Identity(email))
		}
	}

	if from := strings.TrimSpace(r.AvailableFrom); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			errs["available_from"] = "must be an RFC 3339 timestamp"
		} else {
			utc := ts.UTC()
			opts.AvailableFrom = &utc
		}
	}
	if to := strings.TrimSpace(r.AvailableTo); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			errs["available_to"] = "must be an RFC 3339 timestamp"
		} else {
			utc := ts.UTC()
			opts.AvailableTo = &utc
		}
	}

	if len(errs) == 0 {
		return opts, nil
	}

	return opts, errs
}
