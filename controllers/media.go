package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/services"
	"spacrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MediaController struct {
	media  *services.MediaService
	logger *zap.Logger
}

func NewMediaController(media *services.MediaService, log *zap.Logger) *MediaController {
	return &MediaController{media: media, logger: logger.OrNop(log)}
}

// Upload expects a multipart form with a "file" field.
func (mc *MediaController) Upload(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "File is required")
		return
	}
	if header.Size > services.MaxUploadSize {
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "File exceeds the 10 MB limit")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	media, err := mc.media.Upload(c.Request.Context(), accountID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

func (mc *MediaController) GetMediaList(c *gin.Context) {
	skip, limit := skipLimit(c)
	list, err := mc.media.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (mc *MediaController) GetMedia(c *gin.Context) {
	id, ok := paramUUID(c, "id", "media")
	if !ok {
		return
	}
	media, err := mc.media.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

func (mc *MediaController) DeleteMedia(c *gin.Context) {
	id, ok := paramUUID(c, "id", "media")
	if !ok {
		return
	}
	if err := mc.media.Delete(c.Request.Context(), id); err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}
