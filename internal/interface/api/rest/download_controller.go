package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/access"
	domain "filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/jwt"
	downloadDTO "filevault-api/internal/interface/api/rest/dto/download"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type DownloadController struct {
	downloadService ports.DownloadService
	logger          *zap.Logger
}

func NewDownloadController(
	r *gin.Engine,
	downloadService ports.DownloadService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	limiter *middleware.RateLimiter,
) *DownloadController {
	dc := &DownloadController{
		downloadService: downloadService,
		logger:          logger,
	}

	r.GET(RouteFileDownload,
		limiter.Handler(),
		middleware.OptionalAuthMiddleware(jwtService),
		dc.DownloadHandler,
	)
	r.GET(RouteFileStats, middleware.AuthMiddleware(jwtService), dc.GetStatsHandler)
	r.GET(RouteFileHistory, middleware.AuthMiddleware(jwtService), dc.GetHistoryHandler)

	return dc
}

func (dc *DownloadController) DownloadHandler(c *gin.Context) {
	ok, token := validator.IsShareToken(c.Param("token"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid share token"},
		)
		return
	}

	var requester *domain.Identity
	if id := c.GetString(middleware.CtxIdentity); id != "" {
		rid := domain.Identity(id)
		requester = &rid
	}
	var password *string
	if pw, present := c.GetQuery("password"); present {
		password = &pw
	}

	f, decision, err := dc.downloadService.Download(c.Request.Context(), token, requester, password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to download file"},
		)
		dc.logger.Error("Download() error", zap.Error(err))
		return
	}

	switch decision.Outcome {
	case access.Allow:
		c.JSON(http.StatusOK, downloadDTO.Grant{
			Token:       string(f.Token),
			FileName:    f.Filename,
			DownloadURL: f.DownloadURL,
		})
	case access.Defer:
		c.JSON(http.StatusLocked, gin.H{
			"error":           string(decision.Reason),
			"hours_remaining": hoursRemaining(decision.RetryAfter),
		})
	default:
		c.JSON(denyStatus(decision.Reason), gin.H{"error": string(decision.Reason)})
	}
}

func (dc *DownloadController) GetStatsHandler(c *gin.Context) {
	ok, token := validator.IsShareToken(c.Param("token"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid share token"},
		)
		return
	}

	requester := domain.Identity(c.GetString(middleware.CtxIdentity))

	stats, err := dc.downloadService.FileStats(c.Request.Context(), token, requester, middleware.IsAdmin(c))
	if err != nil {
		dc.ledgerError(c, err, "FileStats()")
		return
	}

	c.JSON(http.StatusOK, downloadDTO.ToResponseStats(token, *stats))
}

func (dc *DownloadController) GetHistoryHandler(c *gin.Context) {
	ok, token := validator.IsShareToken(c.Param("token"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid share token"},
		)
		return
	}
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := validator.ValidateLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := domain.Identity(c.GetString(middleware.CtxIdentity))

	evs, total, err := dc.downloadService.FileHistory(
		c.Request.Context(), token, requester, middleware.IsAdmin(c), page, limit,
	)
	if err != nil {
		dc.ledgerError(c, err, "FileHistory()")
		return
	}

	c.JSON(http.StatusOK, downloadDTO.ToResponseHistory(evs, page, limit, total))
}

func (dc *DownloadController) ledgerError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, services.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the file owner"})
	default:
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to read download ledger"},
		)
		dc.logger.Error(op+" error", zap.Error(err))
	}
}

func denyStatus(r access.Reason) int {
	switch r {
	case access.ReasonExpired:
		return http.StatusGone
	case access.ReasonAuthRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// hoursRemaining rounds the wait up to whole hours, minimum one.
func hoursRemaining(wait time.Duration) int {
	h := int((wait + time.Hour - 1) / time.Hour)
	if h < 1 {
		h = 1
	}
	return h
}
