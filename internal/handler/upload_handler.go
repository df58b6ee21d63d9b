package handler

import (
	"errors"
	"net/http"

	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/service"
	"github.com/inkwell/blog/internal/utils"

	"github.com/gin-gonic/gin"
)

// UploadImageField form field of the standalone upload endpoint
const UploadImageField = "image"

// UploadHandler image upload and download
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler creates an UploadHandler
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadImage POST /upload_image. The stored file is not linked to any article.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile(UploadImageField)
	if err != nil {
		utils.BadRequest(c, "image file is required")
		return
	}

	filename, err := h.uploadService.Save(c.Request.Context(), file, service.UploadSourceEndpoint)
	if errors.Is(err, service.ErrValidation) {
		utils.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		utils.InternalError(c, "failed to store image")
		return
	}

	c.JSON(http.StatusOK, dto.UploadImageResponse{
		Message:  "Image uploaded successfully",
		Filename: filename,
	})
}

// ServeImage GET /uploads/:filename
func (h *UploadHandler) ServeImage(c *gin.Context) {
	obj, err := h.uploadService.Open(c.Request.Context(), c.Param("filename"))
	if errors.Is(err, service.ErrNotFound) {
		c.String(http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		pageError(c, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
