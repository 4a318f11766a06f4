package file

const (
	InsertFile = `
		INSERT INTO files (token, filename, size_bytes, mime_type, storage_key, download_url, owner_email, is_public, shared_with, password_hash, available_from, available_to, totp_protected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING
		  token, filename, size_bytes, mime_type, storage_key, download_url, owner_email, is_public, shared_with, password_hash, available_from, available_to, totp_protected, created_at
	`
	InsertStatsRow = `
		INSERT INTO download_stats (file_token, download_count, last_downloaded_at)
		VALUES ($1, 0, NULL)
	`
	SelectFileByToken = `
		SELECT token, filename, size_bytes, mime_type, storage_key, download_url, owner_email, is_public, shared_with, password_hash, available_from, available_to, totp_protected, created_at
		FROM files
		WHERE token = $1
	`
	SelectOwnerFiles = `
		SELECT token, filename, size_bytes, mime_type, storage_key, download_url, owner_email, is_public, shared_with, password_hash, available_from, available_to, totp_protected, created_at
		FROM files
		WHERE owner_email = $1
		ORDER BY created_at DESC, token
		LIMIT 50 OFFSET ( ($2 - 1) * 50 )
	`
	DeleteFileByToken = `DELETE FROM files WHERE token = $1`
	DeleteExpired     = `DELETE FROM files WHERE available_to < $1`

	IncrementStats = `
		UPDATE download_stats
		SET download_count = download_count + 1,
		    last_downloaded_at = $2
		WHERE file_token = $1
	`
	UpsertDownloader = `
		INSERT INTO file_downloaders (file_token, downloader)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	InsertEvent = `
		INSERT INTO download_events (id, file_token, downloader, downloaded_at, completed)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, downloader, downloaded_at, completed
	`

	SelectStats = `
		SELECT download_count, last_downloaded_at
		FROM download_stats
		WHERE file_token = $1
	`
	SelectDownloaders = `
		SELECT downloader
		FROM file_downloaders
		WHERE file_token = $1
		ORDER BY downloader
	`
	CountEvents = `
		SELECT count(*)
		FROM download_events
		WHERE file_token = $1
	`
	SelectEvents = `
		SELECT id, downloader, downloaded_at, completed
		FROM download_events
		WHERE file_token = $1
		ORDER BY downloaded_at DESC, id
		LIMIT $2 OFFSET $3
	`
)
