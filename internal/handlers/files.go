package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/returnscoi/returns/internal/auth"
	"github.com/returnscoi/returns/internal/storage"
)

const presignTTL = 15 * time.Minute

// FilesHandler serves the uploaded-image listing, browser uploads, and
// downloads backed by the blob store.
type FilesHandler struct {
	store  storage.Provider
	prefix string
	logger *slog.Logger
}

type fileItem struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

func NewFilesHandler(log *slog.Logger, store storage.Provider, prefix string) *FilesHandler {
	return &FilesHandler{
		store:  store,
		prefix: prefix,
		logger: log.With(slog.String("handler", "files")),
	}
}

func (h *FilesHandler) Register(e *echo.Echo) {
	g := e.Group("/api/files")
	g.GET("", h.List)
	g.POST("", h.Upload)
	g.GET("/download", h.Download)
	g.GET("/metadata", h.Metadata)
	g.DELETE("", h.Delete)
}

func (h *FilesHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	infos, err := h.store.List(ctx, h.prefix)
	if err != nil {
		h.logger.Error("list files failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list files failed")
	}
	items := make([]fileItem, 0, len(infos))
	for _, info := range infos {
		item := fileItem{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		}
		// presign failures degrade the listing, they do not fail it
		if url, err := h.store.PresignGet(ctx, info.Key, presignTTL); err == nil {
			item.URL = url
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FilesHandler) Upload(c echo.Context) error {
	session, err := auth.SessionFromContext(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer func() {
		_ = src.Close()
	}()

	ts := time.Now().UTC()
	key := storage.WebUploadKey(ts, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := storage.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			storage.MetaUploaderEmail:   session.Email,
			storage.MetaUploadTimestamp: ts.Format(time.RFC3339),
			storage.MetaRemarks:         c.FormValue("remarks"),
		},
	}
	if err := h.store.Put(c.Request().Context(), key, src, opts); err != nil {
		h.logger.Error("upload failed", slog.String("key", key), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	return c.JSON(http.StatusCreated, map[string]string{"key": key})
}

func (h *FilesHandler) Download(c echo.Context) error {
	key, err := h.objectKey(c)
	if err != nil {
		return err
	}
	body, _, err := h.store.Open(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("download failed", slog.String("key", key), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	defer func() {
		_ = body.Close()
	}()
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filenameFromKey(key)+`"`)
	return c.Stream(http.StatusOK, "application/octet-stream", body)
}

func (h *FilesHandler) Metadata(c echo.Context) error {
	key, err := h.objectKey(c)
	if err != nil {
		return err
	}
	info, err := h.store.Head(c.Request().Context(), key)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.JSON(http.StatusOK, info)
}

func (h *FilesHandler) Delete(c echo.Context) error {
	key, err := h.objectKey(c)
	if err != nil {
		return err
	}
	if err := h.store.Delete(c.Request().Context(), key); err != nil {
		h.logger.Error("delete failed", slog.String("key", key), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// objectKey reads and checks the key query parameter. Keys outside the
// configured prefix are rejected so the web API cannot reach arbitrary
// bucket contents.
func (h *FilesHandler) objectKey(c echo.Context) (string, error) {
	key := strings.TrimSpace(c.QueryParam("key"))
	if key == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}
	if strings.Contains(key, "..") || !strings.HasPrefix(key, h.prefix) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}
	return key, nil
}

func filenameFromKey(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
