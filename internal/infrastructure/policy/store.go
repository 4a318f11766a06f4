// Package policy holds the mutable upload policy. Only upload intake
// and the admin screen read it; the decision engine never does.
package policy

import (
	"sync"
	"time"

	"filevault-api/config"
)

type Snapshot struct {
	MaxFileSizeBytes  int64
	MinValidity       time.Duration
	MaxValidity       time.Duration
	DefaultValidity   time.Duration
	MinPasswordLength int
}

type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func New(cfg config.Policy) *Store {
	return &Store{
		snap: Snapshot{
			MaxFileSizeBytes:  cfg.MaxFileSizeMB << 20,
			MinValidity:       time.Duration(cfg.MinValidityHours) * time.Hour,
			MaxValidity:       time.Duration(cfg.MaxValidityDays) * 24 * time.Hour,
			DefaultValidity:   time.Duration(cfg.DefaultValidityDays) * 24 * time.Hour,
			MinPasswordLength: cfg.MinPasswordLength,
		},
	}
}

func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
