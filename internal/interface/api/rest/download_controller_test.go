package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/download"
	domain "filevault-api/internal/domain/file"
	jwtSvc "filevault-api/internal/infrastructure/jwt"
	downloadDTO "filevault-api/internal/interface/api/rest/dto/download"
	"filevault-api/internal/interface/api/rest/middleware"
)

func setupDownloadRouter(t *testing.T, ds *FakeDownloadService) (*gin.Engine, *jwtSvc.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	j := jwtSvc.New(testSecret)
	NewDownloadController(r, ds, zap.NewNop(), j, middleware.NewRateLimiter(1000, 1000))

	return r, j
}

func downloadPath(token domain.Token) string {
	return RouteFiles + "/" + string(token) + "/download"
}

func TestDownloadController_DownloadHandler(t *testing.T) {
	f := someDomainFile()

	t.Run("200 allow returns the grant", func(t *testing.T) {
		ds := &FakeDownloadService{
			DownloadFunc: func(_ context.Context, token domain.Token, requester *domain.Identity, password *string) (*domain.File, access.Decision, error) {
				assert.Equal(t, f.Token, token)
				assert.Nil(t, requester)
				assert.Nil(t, password)
				return f, access.Decision{Outcome: access.Allow}, nil
			},
		}
		r, _ := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, downloadPath(f.Token), nil, "", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp downloadDTO.Grant
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, f.DownloadURL, resp.DownloadURL)
		assert.Equal(t, f.Filename, resp.FileName)
	})

	t.Run("identity and password forwarded", func(t *testing.T) {
		ds := &FakeDownloadService{
			DownloadFunc: func(_ context.Context, _ domain.Token, requester *domain.Identity, password *string) (*domain.File, access.Decision, error) {
				require.NotNil(t, requester)
				assert.Equal(t, domain.Identity("reader@example.com"), *requester)
				require.NotNil(t, password)
				assert.Equal(t, "s3cret!", *password)
				return f, access.Decision{Outcome: access.Allow}, nil
			},
		}
		r, j := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, downloadPath(f.Token)+"?password=s3cret!", nil, "", bearer(t, j, "Reader@Example.com", "user"))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("deny reasons map to status codes", func(t *testing.T) {
		tests := []struct {
			reason     access.Reason
			wantStatus int
		}{
			{access.ReasonExpired, http.StatusGone},
			{access.ReasonAuthRequired, http.StatusUnauthorized},
			{access.ReasonAccessDenied, http.StatusForbidden},
			{access.ReasonPasswordRequired, http.StatusForbidden},
			{access.ReasonIncorrectPassword, http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(string(tt.reason), func(t *testing.T) {
				ds := &FakeDownloadService{
					DownloadFunc: func(context.Context, domain.Token, *domain.Identity, *string) (*domain.File, access.Decision, error) {
						return f, access.Decision{Outcome: access.Deny, Reason: tt.reason}, nil
					},
				}
				r, _ := setupDownloadRouter(t, ds)

				rr := doReq(t, r, http.MethodGet, downloadPath(f.Token), nil, "", nil)

				assert.Equal(t, tt.wantStatus, rr.Code)
				assert.Contains(t, rr.Body.String(), string(tt.reason))
			})
		}
	})

	t.Run("423 defer carries hours remaining", func(t *testing.T) {
		ds := &FakeDownloadService{
			DownloadFunc: func(context.Context, domain.Token, *domain.Identity, *string) (*domain.File, access.Decision, error) {
				return f, access.Decision{
					Outcome:    access.Defer,
					Reason:     access.ReasonNotYetAvailable,
					RetryAfter: 90 * time.Minute,
				}, nil
			},
		}
		r, _ := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, downloadPath(f.Token), nil, "", nil)

		require.Equal(t, http.StatusLocked, rr.Code)
		var resp struct {
			Error          string `json:"error"`
			HoursRemaining int    `json:"hours_remaining"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "not_yet_available", resp.Error)
		assert.Equal(t, 2, resp.HoursRemaining)
	})

	t.Run("404 unknown token", func(t *testing.T) {
		ds := &FakeDownloadService{
			DownloadFunc: func(context.Context, domain.Token, *domain.Identity, *string) (*domain.File, access.Decision, error) {
				return nil, access.Decision{}, domain.ErrNotFound
			},
		}
		r, _ := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, downloadPath("unknown-token"), nil, "", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDownloadController_GetStatsHandler(t *testing.T) {
	f := someDomainFile()
	last := testNow.Add(-time.Minute)

	t.Run("200 for the owner", func(t *testing.T) {
		ds := &FakeDownloadService{
			FileStatsFunc: func(_ context.Context, token domain.Token, requester domain.Identity, isAdmin bool) (*download.Stats, error) {
				assert.Equal(t, domain.Identity("owner@example.com"), requester)
				assert.False(t, isAdmin)
				return &download.Stats{
					DownloadCount:     3,
					UniqueDownloaders: []domain.Identity{"alice@example.com"},
					LastDownloadedAt:  &last,
				}, nil
			},
		}
		r, j := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, RouteFiles+"/"+string(f.Token)+"/stats", nil, "", bearer(t, j, "owner@example.com", "user"))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp downloadDTO.Stats
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.DownloadCount)
		assert.Equal(t, []string{"alice@example.com"}, resp.UniqueDownloaders)
	})

	t.Run("401 anonymous", func(t *testing.T) {
		r, _ := setupDownloadRouter(t, &FakeDownloadService{})

		rr := doReq(t, r, http.MethodGet, RouteFiles+"/"+string(f.Token)+"/stats", nil, "", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("403 stranger", func(t *testing.T) {
		ds := &FakeDownloadService{
			FileStatsFunc: func(context.Context, domain.Token, domain.Identity, bool) (*download.Stats, error) {
				return nil, services.ErrNotAllowed
			},
		}
		r, j := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, RouteFiles+"/"+string(f.Token)+"/stats", nil, "", bearer(t, j, "stranger@example.com", "user"))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestDownloadController_GetHistoryHandler(t *testing.T) {
	f := someDomainFile()
	alice := domain.Identity("alice@example.com")

	t.Run("200 with pagination metadata", func(t *testing.T) {
		ds := &FakeDownloadService{
			FileHistoryFunc: func(_ context.Context, _ domain.Token, _ domain.Identity, _ bool, page, limit int) (download.Events, int, error) {
				assert.Equal(t, 2, page)
				assert.Equal(t, 5, limit)
				return download.Events{
					&download.Event{ID: uuid.New(), Downloader: &alice, DownloadedAt: testNow, Completed: true},
				}, 7, nil
			},
		}
		r, j := setupDownloadRouter(t, ds)

		rr := doReq(t, r, http.MethodGet, RouteFiles+"/"+string(f.Token)+"/history?page=2&limit=5", nil, "", bearer(t, j, "owner@example.com", "user"))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp downloadDTO.HistoryResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "alice@example.com", resp.Data[0].Downloader)
		assert.Equal(t, 7, resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
	})

	t.Run("400 bad page", func(t *testing.T) {
		r, j := setupDownloadRouter(t, &FakeDownloadService{})

		rr := doReq(t, r, http.MethodGet, RouteFiles+"/"+string(f.Token)+"/history?page=0", nil, "", bearer(t, j, "owner@example.com", "user"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
