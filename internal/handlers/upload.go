package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hptiles/tilebill/internal/httpx"
)

const maxUploadBytes = 5 << 20 // 5 MiB

var allowedUploadExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadHandler stores profile pictures and signature images on local disk
// and returns a URL the client persists on the user or invoice record.
type UploadHandler struct {
	Dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{Dir: dir}
}

// Upload: POST /api/auth/upload (multipart, field "file")
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExt[ext] {
		httpx.JSONError(w, http.StatusBadRequest, "unsupported_file_type", nil)
		return
	}
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store", nil)
		return
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store", nil)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_store", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": fmt.Sprintf("/uploads/%s", name)})
}
