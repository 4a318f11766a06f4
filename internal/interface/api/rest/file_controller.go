package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	domain "filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/jwt"
	fileDTO "filevault-api/internal/interface/api/rest/dto/file"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type FileController struct {
	fileService ports.FileService
	clock       ports.Clock
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	clock ports.Clock,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		clock:       clock,
		logger:      logger,
	}

	r.POST(RouteFiles, middleware.AuthMiddleware(jwtService), fc.CreateFileHandler)
	r.GET(RouteFiles, middleware.AuthMiddleware(jwtService), fc.GetFilesHandler)
	r.GET(RouteFile, middleware.OptionalAuthMiddleware(jwtService), fc.GetFileHandler)
	r.DELETE(RouteFile, middleware.AuthMiddleware(jwtService), fc.DeleteFileHandler)

	return fc
}

func (fc *FileController) CreateFileHandler(c *gin.Context) {
	var req fileDTO.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	opts, errs := validator.ValidateUpload(req)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is empty"})
		return
	}

	owner := domain.Identity(c.GetString(middleware.CtxIdentity))

	f, err := fc.fileService.CreateFile(c.Request.Context(), owner, fh, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrValidityOutOfBounds),
			errors.Is(err, domain.ErrInvalidWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(
				http.StatusInternalServerError,
				gin.H{"error": "failed to create a file"},
			)
			fc.logger.Error("CreateFile() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, fileDTO.ToResponseFile(*f, fc.clock.Now()))
}

func (fc *FileController) GetFilesHandler(c *gin.Context) {
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	owner := domain.Identity(c.GetString(middleware.CtxIdentity))

	files, err := fc.fileService.FindOwnerFiles(c.Request.Context(), owner, page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get files"},
		)
		fc.logger.Error("FindOwnerFiles() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, fileDTO.ResponseData{
		Data: fileDTO.ToResponseFiles(files, fc.clock.Now()),
	})
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	ok, token := validator.IsShareToken(c.Param("token"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid share token"},
		)
		return
	}

	f, err := fc.fileService.FindFileByToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get file"},
		)
		fc.logger.Error("FindFileByToken() error", zap.Error(err))
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	resp := fileDTO.ToResponseFile(*f, fc.clock.Now())

	// metadata visible to anyone who holds the token; the owner and
	// share list stay hidden from everyone but the owner and admins
	requester := c.GetString(middleware.CtxIdentity)
	if !middleware.IsAdmin(c) && (f.Owner == nil || string(*f.Owner) != requester) {
		resp.Owner = ""
		resp.SharedWith = nil
	}

	c.JSON(http.StatusOK, resp)
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	ok, token := validator.IsShareToken(c.Param("token"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid share token"},
		)
		return
	}

	requester := domain.Identity(c.GetString(middleware.CtxIdentity))

	err := fc.fileService.DeleteFile(c.Request.Context(), token, requester, middleware.IsAdmin(c))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	case errors.Is(err, services.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the file owner"})
		return
	case err != nil:
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to delete file"},
		)
		fc.logger.Error("DeleteFile() error", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}
