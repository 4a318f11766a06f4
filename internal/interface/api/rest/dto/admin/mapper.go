package admin

import (
	"time"

	"filevault-api/internal/infrastructure/policy"
)

func ToResponsePolicy(snap policy.Snapshot) Policy {
	return Policy{
		MaxFileSizeMB:       snap.MaxFileSizeBytes >> 20,
		MinValidityHours:    int(snap.MinValidity / time.Hour),
		MaxValidityDays:     int(snap.MaxValidity / (24 * time.Hour)),
		DefaultValidityDays: int(snap.DefaultValidity / (24 * time.Hour)),
		MinPasswordLength:   snap.MinPasswordLength,
	}
}
