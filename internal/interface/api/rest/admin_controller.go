package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/infrastructure/policy"
	adminDTO "filevault-api/internal/interface/api/rest/dto/admin"
	"filevault-api/internal/interface/api/rest/middleware"
)

type AdminController struct {
	fileService ports.FileService
	policy      *policy.Store
	clock       ports.Clock
	logger      *zap.Logger
}

func NewAdminController(
	r *gin.Engine,
	fileService ports.FileService,
	policyStore *policy.Store,
	clock ports.Clock,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *AdminController {
	ac := &AdminController{
		fileService: fileService,
		policy:      policyStore,
		clock:       clock,
		logger:      logger,
	}

	r.GET(RouteAdminPolicy, middleware.AuthMiddleware(jwtService), ac.GetPolicyHandler)
	r.POST(RouteAdminCleanup, middleware.AuthMiddleware(jwtService), ac.CleanupHandler)

	return ac
}

func (ac *AdminController) GetPolicyHandler(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	c.JSON(http.StatusOK, adminDTO.ToResponsePolicy(ac.policy.Current()))
}

// CleanupHandler runs the expiry sweep on demand, same pass the
// background worker runs on its interval.
func (ac *AdminController) CleanupHandler(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	removed, err := ac.fileService.SweepExpired(c.Request.Context())
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to run cleanup"},
		)
		ac.logger.Error("SweepExpired() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, adminDTO.CleanupResult{
		Message:      "cleanup completed",
		DeletedFiles: removed,
		Timestamp:    ac.clock.Now(),
	})
}
