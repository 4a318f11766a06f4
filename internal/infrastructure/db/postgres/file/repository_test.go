package file

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "filevault-api/internal/domain/file"
)

var fileColumns = []string{
	"token", "filename", "size_bytes", "mime_type", "storage_key", "download_url",
	"owner_email", "is_public", "shared_with", "password_hash",
	"available_from", "available_to", "totp_protected", "created_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleDomainFile(now time.Time) *domain.File {
	owner := domain.Identity("owner@example.com")
	return &domain.File{
		Token:         "tok-1",
		Filename:      "report.pdf",
		SizeBytes:     2048,
		MimeType:      "application/pdf",
		StorageKey:    "documents/2026/report.pdf",
		DownloadURL:   "https://bucket.example/report.pdf",
		Owner:         &owner,
		IsPublic:      true,
		AvailableFrom: now,
		AvailableTo:   now.Add(24 * time.Hour),
	}
}

func fileRow(mock pgxmock.PgxPoolIface, f *domain.File, now time.Time) *pgxmock.Rows {
	shared := make([]string, len(f.SharedWith))
	for i, s := range f.SharedWith {
		shared[i] = string(s)
	}
	return mock.NewRows(fileColumns).AddRow(
		string(f.Token), f.Filename, f.SizeBytes, f.MimeType, f.StorageKey, f.DownloadURL,
		(*string)(f.Owner), f.IsPublic, shared, f.PasswordHash,
		f.AvailableFrom, f.AvailableTo, f.TotpProtected, now,
	)
}

func TestRepository_CreateFile(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	req := sampleDomainFile(now)

	t.Run("success", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(
				"tok-1", req.Filename, req.SizeBytes, req.MimeType, req.StorageKey, req.DownloadURL,
				(*string)(req.Owner), req.IsPublic, []string{}, req.PasswordHash,
				req.AvailableFrom, req.AvailableTo, req.TotpProtected,
			).
			WillReturnRows(fileRow(mock, req, now))
		mock.ExpectExec("INSERT INTO download_stats").
			WithArgs("tok-1").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		got, err := r.CreateFile(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, req.Token, got.Token)
		assert.Equal(t, now, got.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate token", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(
				"tok-1", req.Filename, req.SizeBytes, req.MimeType, req.StorageKey, req.DownloadURL,
				(*string)(req.Owner), req.IsPublic, []string{}, req.PasswordHash,
				req.AvailableFrom, req.AvailableTo, req.TotpProtected,
			).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		_, err := r.CreateFile(ctx, req)
		require.ErrorIs(t, err, domain.ErrTokenTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inverted window rejected before any query", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		bad := sampleDomainFile(now)
		bad.AvailableTo = bad.AvailableFrom

		_, err := r.CreateFile(ctx, bad)
		require.ErrorIs(t, err, domain.ErrInvalidWindow)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FetchFileByToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	f := sampleDomainFile(now)

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM files").
			WithArgs("tok-1").
			WillReturnRows(fileRow(mock, f, now))

		got, err := r.FetchFileByToken(ctx, "tok-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, f.Token, got.Token)
		assert.Equal(t, f.Owner, got.Owner)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing yields nil, nil", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM files").
			WithArgs("nope").
			WillReturnRows(mock.NewRows(fileColumns))

		got, err := r.FetchFileByToken(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DeleteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectExec("DELETE FROM files").
			WithArgs("tok-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, r.DeleteFile(ctx, "tok-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectExec("DELETE FROM files").
			WithArgs("nope").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.ErrorIs(t, r.DeleteFile(ctx, "nope"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_SweepExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	mock := newMock(t)
	r := NewRepository(mock)

	mock.ExpectExec("DELETE FROM files WHERE available_to").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := r.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RecordDownload(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	alice := domain.Identity("alice@example.com")
	aliceStr := "alice@example.com"
	evID := uuid.New()

	t.Run("authenticated downloader", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE download_stats").
			WithArgs("tok-1", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("INSERT INTO file_downloaders").
			WithArgs("tok-1", "alice@example.com").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery("INSERT INTO download_events").
			WithArgs(pgxmock.AnyArg(), "tok-1", &aliceStr, now).
			WillReturnRows(mock.NewRows([]string{"id", "downloader", "downloaded_at", "completed"}).
				AddRow(evID, &aliceStr, now, true))
		mock.ExpectCommit()

		ev, err := r.RecordDownload(ctx, "tok-1", &alice, now)
		require.NoError(t, err)
		assert.Equal(t, evID, ev.ID)
		require.NotNil(t, ev.Downloader)
		assert.Equal(t, alice, *ev.Downloader)
		assert.True(t, ev.Completed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("anonymous downloader skips the unique set", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE download_stats").
			WithArgs("tok-1", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery("INSERT INTO download_events").
			WithArgs(pgxmock.AnyArg(), "tok-1", (*string)(nil), now).
			WillReturnRows(mock.NewRows([]string{"id", "downloader", "downloaded_at", "completed"}).
				AddRow(evID, (*string)(nil), now, true))
		mock.ExpectCommit()

		ev, err := r.RecordDownload(ctx, "tok-1", nil, now)
		require.NoError(t, err)
		assert.Nil(t, ev.Downloader)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record deleted concurrently", func(t *testing.T) {
		mock := newMock(t)
		r := NewRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE download_stats").
			WithArgs("gone", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		_, err := r.RecordDownload(ctx, "gone", nil, now)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FetchStats(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	mock := newMock(t)
	r := NewRepository(mock)

	mock.ExpectQuery("SELECT download_count, last_downloaded_at").
		WithArgs("tok-1").
		WillReturnRows(mock.NewRows([]string{"download_count", "last_downloaded_at"}).
			AddRow(int64(4), &now))
	mock.ExpectQuery("SELECT downloader").
		WithArgs("tok-1").
		WillReturnRows(mock.NewRows([]string{"downloader"}).
			AddRow("alice@example.com").
			AddRow("bob@example.com"))

	st, err := r.FetchStats(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.DownloadCount)
	assert.Equal(t, []domain.Identity{"alice@example.com", "bob@example.com"}, st.UniqueDownloaders)
	require.NotNil(t, st.LastDownloadedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchHistory(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	aliceStr := "alice@example.com"

	mock := newMock(t)
	r := NewRepository(mock)

	mock.ExpectQuery("SELECT count").
		WithArgs("tok-1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT id, downloader, downloaded_at, completed").
		WithArgs("tok-1", 10, 10).
		WillReturnRows(mock.NewRows([]string{"id", "downloader", "downloaded_at", "completed"}).
			AddRow(uuid.New(), &aliceStr, now, true).
			AddRow(uuid.New(), (*string)(nil), now.Add(-time.Minute), true))

	evs, total, err := r.FetchHistory(ctx, "tok-1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, evs, 2)
	require.NotNil(t, evs[0].Downloader)
	assert.Equal(t, domain.Identity("alice@example.com"), *evs[0].Downloader)
	assert.Nil(t, evs[1].Downloader)
	require.NoError(t, mock.ExpectationsWereMet())
}
