package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps a single uploaded file.
const maxUploadBytes = 10 << 20

var (
	allowedUploadTypes = []string{"image/png", "image/jpeg", "text/plain", "application/octet-stream"}
	allowedUploadExts  = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}, ".txt": {}, ".log": {}}
)

// UploadHandler stores user attachments under one directory.
type UploadHandler struct {
	dir    string
	logger *slog.Logger
}

// NewUploadHandler creates the upload directory if needed.
func NewUploadHandler(dir string, logger *slog.Logger) (*UploadHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadHandler{dir: dir, logger: logger}, nil
}

// Dir returns the directory files are stored in.
func (h *UploadHandler) Dir() string {
	return h.dir
}

// HandleUpload handles POST /api/upload with a multipart "file" field.
// A file is accepted when its sniffed content type or its extension is allowed.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	name := filepath.Base(filepath.Clean("/" + fh.Filename))
	if name == "/" || name == "." || name == ".." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	detected, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}

	if !uploadAllowed(detected, name) {
		h.logger.Warn("upload rejected",
			slog.String("filename", name),
			slog.String("mime", detected.String()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	if err := c.SaveUploadedFile(fh, filepath.Join(h.dir, name)); err != nil {
		h.logger.Error("failed to store upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": "/uploads/" + name, "filename": name})
}

func uploadAllowed(detected *mimetype.MIME, name string) bool {
	if _, ok := allowedUploadExts[strings.ToLower(filepath.Ext(name))]; ok {
		return true
	}
	for _, t := range allowedUploadTypes {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
