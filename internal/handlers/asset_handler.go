package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmanager/internal/logging"
	"taskmanager/internal/storage"
)

const maxAssetSize = 10 << 20

type AssetHandler struct {
	store storage.Storage
}

func NewAssetHandler(store storage.Storage) *AssetHandler {
	return &AssetHandler{store: store}
}

// @Summary      Загрузить вложение задачи
// @Description  Сохраняет файл в объектное хранилище и возвращает ссылку для поля assets
// @Tags         Tasks
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Файл"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Router       /task/assets [post]
func (h *AssetHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxAssetSize {
		fail(c, http.StatusBadRequest, fmt.Sprintf("file too large (max %d MB)", maxAssetSize>>20))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, "[asset][upload]", err)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := "tasks/" + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))

	info, err := h.store.Put(c.Request.Context(), key, f, storage.PutObjectOptions{
		Size:        fh.Size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-name": filepath.Base(fh.Filename)},
	})
	if err != nil {
		respondError(c, "[asset][upload]", err)
		return
	}
	url, err := h.store.URL(c.Request.Context(), info.Key)
	if err != nil {
		respondError(c, "[asset][upload]", err)
		return
	}
	logging.Logger.Infof("[asset][upload] ok key=%s size=%d by=%s", info.Key, info.Size, principal(c).UserID.Hex())
	c.JSON(http.StatusCreated, gin.H{"status": true, "url": url, "key": info.Key})
}
