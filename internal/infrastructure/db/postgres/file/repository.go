package file

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"filevault-api/internal/domain/download"
	domain "filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/db/postgres"
)

// DB is the subset of *pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the durable storage driver: it implements both the
// file registry and the download ledger against postgres. The
// four-part download mutation runs in one transaction; deletes cascade
// through foreign keys.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFile(ctx context.Context, req *domain.File) (*domain.File, error) {
	if err := req.ValidateWindow(); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	shared := make([]string, len(req.SharedWith))
	for i, s := range req.SharedWith {
		shared[i] = string(s)
	}

	f := new(File)
	err = tx.QueryRow(
		ctx,
		InsertFile,
		string(req.Token), req.Filename, req.SizeBytes, req.MimeType, req.StorageKey, req.DownloadURL,
		(*string)(req.Owner), req.IsPublic, shared, req.PasswordHash,
		req.AvailableFrom, req.AvailableTo, req.TotpProtected,
	).Scan(
		&f.Token,
		&f.Filename,
		&f.SizeBytes,
		&f.MimeType,
		&f.StorageKey,
		&f.DownloadURL,

		&f.Owner,
		&f.IsPublic,
		&f.SharedWith,
		&f.PasswordHash,

		&f.AvailableFrom,
		&f.AvailableTo,
		&f.TotpProtected,

		&f.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, domain.ErrTokenTaken
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, InsertStatsRow, f.Token); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchFileByToken(ctx context.Context, token domain.Token) (*domain.File, error) {
	f := new(File)
	err := r.db.QueryRow(ctx, SelectFileByToken, string(token)).Scan(
		&f.Token,
		&f.Filename,
		&f.SizeBytes,
		&f.MimeType,
		&f.StorageKey,
		&f.DownloadURL,

		&f.Owner,
		&f.IsPublic,
		&f.SharedWith,
		&f.PasswordHash,

		&f.AvailableFrom,
		&f.AvailableTo,
		&f.TotpProtected,

		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), err
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, owner domain.Identity, page int) (domain.Files, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.db.Query(ctx, SelectOwnerFiles, string(owner), page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs Files
	for rows.Next() {
		f := new(File)

		if err = rows.Scan(
			&f.Token,
			&f.Filename,
			&f.SizeBytes,
			&f.MimeType,
			&f.StorageKey,
			&f.DownloadURL,

			&f.Owner,
			&f.IsPublic,
			&f.SharedWith,
			&f.PasswordHash,

			&f.AvailableFrom,
			&f.AvailableTo,
			&f.TotpProtected,

			&f.CreatedAt,
		); err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}

func (r *Repository) DeleteFile(ctx context.Context, token domain.Token) error {
	tag, err := r.db.Exec(ctx, DeleteFileByToken, string(token))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, DeleteExpired, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) RecordDownload(ctx context.Context, token domain.Token, downloader *domain.Identity, now time.Time) (*download.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, IncrementStats, string(token), now)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if downloader != nil {
		if _, err = tx.Exec(ctx, UpsertDownloader, string(token), string(*downloader)); err != nil {
			return nil, err
		}
	}

	ev := new(Event)
	err = tx.QueryRow(ctx, InsertEvent, uuid.New(), string(token), (*string)(downloader), now).Scan(
		&ev.ID,
		&ev.Downloader,
		&ev.DownloadedAt,
		&ev.Completed,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fromDBEvent(ev), nil
}

func (r *Repository) FetchStats(ctx context.Context, token domain.Token) (*download.Stats, error) {
	st := new(download.Stats)
	err := r.db.QueryRow(ctx, SelectStats, string(token)).Scan(
		&st.DownloadCount,
		&st.LastDownloadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, SelectDownloaders, string(token))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		st.UniqueDownloaders = append(st.UniqueDownloaders, domain.Identity(id))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return st, nil
}

func (r *Repository) FetchHistory(ctx context.Context, token domain.Token, page, limit int) (download.Events, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = download.DefaultHistoryLimit
	}

	var total int
	if err := r.db.QueryRow(ctx, CountEvents, string(token)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, SelectEvents, string(token), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var evs download.Events
	for rows.Next() {
		ev := new(Event)
		if err = rows.Scan(
			&ev.ID,
			&ev.Downloader,
			&ev.DownloadedAt,
			&ev.Completed,
		); err != nil {
			return nil, 0, err
		}
		evs = append(evs, fromDBEvent(ev))
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return evs, total, nil
}
