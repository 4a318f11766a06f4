package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/download"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/metrics"
	"filevault-api/internal/infrastructure/mq"
)

type DownloadService struct {
	registry file.Registry
	ledger   download.Ledger
	clock    ports.Clock
	mq       ports.RabbitMQ
	mCounter *prometheus.CounterVec
}

func NewDownloadService(
	registry file.Registry,
	ledger download.Ledger,
	clock ports.Clock,
	rabbit ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
) ports.DownloadService {
	return &DownloadService{
		registry: registry,
		ledger:   ledger,
		clock:    clock,
		mq:       rabbit,
		mCounter: mCounter,
	}
}

// Download runs the decision engine and, only on Allow, records the
// retrieval through the ledger's atomic mutation. The decision itself
// is evaluated lock-free; a record deleted between decision and ledger
// write surfaces as file.ErrNotFound, never as partial statistics.
func (ds *DownloadService) Download(
	ctx context.Context,
	token file.Token,
	requester *file.Identity,
	password *string,
) (*file.File, access.Decision, error) {
	f, err := ds.registry.FetchFileByToken(ctx, token)
	if err != nil {
		return nil, access.Decision{}, err
	}
	if f == nil {
		return nil, access.Decision{}, file.ErrNotFound
	}

	now := ds.clock.Now()
	decision := access.Decide(f, requester, password, now)

	switch decision.Outcome {
	case access.Allow:
		if _, err = ds.ledger.RecordDownload(ctx, token, requester, now); err != nil {
			return nil, access.Decision{}, err
		}

		ev := mq.Event{
			Id:        uuid.New(),
			TS:        now,
			Kind:      mq.KindFileDownloaded,
			FileToken: string(token),
		}
		if requester != nil {
			ev.Downloader = string(*requester)
		}
		ds.mq.GetInputChan() <- ev
		ds.mCounter.WithLabelValues(metrics.DownloadsAllowed).Inc()
	case access.Deny:
		ds.mCounter.WithLabelValues(metrics.DownloadsDenied).Inc()
	case access.Defer:
		ds.mCounter.WithLabelValues(metrics.DownloadsDeferred).Inc()
	}

	return f, decision, nil
}

func (ds *DownloadService) FileStats(
	ctx context.Context,
	token file.Token,
	requester file.Identity,
	isAdmin bool,
) (*download.Stats, error) {
	if err := ds.guardLedgerAccess(ctx, token, requester, isAdmin); err != nil {
		return nil, err
	}

	return ds.ledger.FetchStats(ctx, token)
}

func (ds *DownloadService) FileHistory(
	ctx context.Context,
	token file.Token,
	requester file.Identity,
	isAdmin bool,
	page, limit int,
) (download.Events, int, error) {
	if err := ds.guardLedgerAccess(ctx, token, requester, isAdmin); err != nil {
		return nil, 0, err
	}

	evs, total, err := ds.ledger.FetchHistory(ctx, token, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch history for %s: %w", token, err)
	}

	return evs, total, nil
}

// guardLedgerAccess restricts statistics and history to the record's
// owner and administrative identities.
func (ds *DownloadService) guardLedgerAccess(ctx context.Context, token file.Token, requester file.Identity, isAdmin bool) error {
	f, err := ds.registry.FetchFileByToken(ctx, token)
	if err != nil {
		return err
	}
	if f == nil {
		return file.ErrNotFound
	}
	if !isAdmin && !f.IsOwner(&requester) {
		return ErrNotAllowed
	}
	return nil
}
