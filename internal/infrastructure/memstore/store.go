// Package memstore is the default storage driver: the file registry,
// download statistics and history live in maps owned by one store
// instance and guarded by a single RWMutex. Holding the write lock
// across the whole four-part download mutation (and across delete and
// sweep) makes a download atomic with respect to concurrent downloads
// and deletions of the same record.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/download"
	"filevault-api/internal/domain/file"
)

const ownerPageSize = 50

type statsEntry struct {
	count       int64
	downloaders map[file.Identity]struct{}
	lastAt      *time.Time
}

type Store struct {
	mu      sync.RWMutex
	files   map[file.Token]*file.File
	stats   map[file.Token]*statsEntry
	history map[file.Token]download.Events // newest first
}

func New() *Store {
	return &Store{
		files:   make(map[file.Token]*file.File),
		stats:   make(map[file.Token]*statsEntry),
		history: make(map[file.Token]download.Events),
	}
}

func (s *Store) CreateFile(_ context.Context, f *file.File) (*file.File, error) {
	if err := f.ValidateWindow(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[f.Token]; exists {
		return nil, file.ErrTokenTaken
	}

	s.files[f.Token] = f
	s.stats[f.Token] = &statsEntry{downloaders: make(map[file.Identity]struct{})}
	s.history[f.Token] = nil

	return f, nil
}

func (s *Store) FetchFileByToken(_ context.Context, token file.Token) (*file.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[token]
	if !ok {
		return nil, nil
	}
	return f, nil
}

func (s *Store) FetchOwnerFiles(_ context.Context, owner file.Identity, page int) (file.Files, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all file.Files
	for _, f := range s.files {
		if f.Owner != nil && *f.Owner == owner {
			all = append(all, f)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Token < all[j].Token
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if page < 1 {
		page = 1
	}
	start := (page - 1) * ownerPageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + ownerPageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *Store) DeleteFile(_ context.Context, token file.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[token]; !ok {
		return file.ErrNotFound
	}
	s.remove(token)
	return nil
}

func (s *Store) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, f := range s.files {
		if f.Status(now) == file.StatusExpired {
			s.remove(token)
			removed++
		}
	}
	return removed, nil
}

// remove cascades across all three maps; caller holds the write lock.
func (s *Store) remove(token file.Token) {
	delete(s.files, token)
	delete(s.stats, token)
	delete(s.history, token)
}

func (s *Store) RecordDownload(_ context.Context, token file.Token, downloader *file.Identity, now time.Time) (*download.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[token]
	if !ok {
		return nil, file.ErrNotFound
	}

	ev := &download.Event{
		ID:           uuid.New(),
		Downloader:   downloader,
		DownloadedAt: now,
		Completed:    true,
	}

	st.count++
	if downloader != nil {
		st.downloaders[*downloader] = struct{}{}
	}
	at := now
	st.lastAt = &at
	s.history[token] = append(download.Events{ev}, s.history[token]...)

	return ev, nil
}

func (s *Store) FetchStats(_ context.Context, token file.Token) (*download.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stats[token]
	if !ok {
		return nil, file.ErrNotFound
	}

	out := &download.Stats{DownloadCount: st.count}
	if st.lastAt != nil {
		at := *st.lastAt
		out.LastDownloadedAt = &at
	}
	for id := range st.downloaders {
		out.UniqueDownloaders = append(out.UniqueDownloaders, id)
	}
	sort.Slice(out.UniqueDownloaders, func(i, j int) bool {
		return out.UniqueDownloaders[i] < out.UniqueDownloaders[j]
	})

	return out, nil
}

func (s *Store) FetchHistory(_ context.Context, token file.Token, page, limit int) (download.Events, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs, ok := s.history[token]
	if !ok {
		return nil, 0, file.ErrNotFound
	}

	total := len(evs)
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = download.DefaultHistoryLimit
	}

	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make(download.Events, end-start)
	copy(out, evs[start:end])

	return out, total, nil
}
