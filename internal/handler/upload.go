package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// UploadHandler stores multipart image uploads on local disk and returns
// the public path. Parsing goes through Echo's standard multipart support.
type UploadHandler struct {
	Dir string // destination directory, created on demand
}

func NewUploadHandler(dir string) *UploadHandler { return &UploadHandler{Dir: dir} }

// Upload accepts a multipart form with a "file" part, writes it under a
// sanitized timestamped name and returns {url, path, filename}.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "no file uploaded"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "no file uploaded"})
	}
	defer src.Close()

	name := sanitizeFilename(fh.Filename)
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "upload failed"})
	}
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "upload failed"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "upload failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"url":      "/uploads/" + name,
		"path":     "uploads/" + name,
		"filename": name,
	})
}

// sanitizeFilename keeps only the base name, truncates it, replaces spaces
// and appends a millisecond timestamp so repeated uploads never collide.
func sanitizeFilename(orig string) string {
	base := filepath.Base(orig)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// truncate on runes, not bytes, so multibyte names stay valid UTF-8
	if utf8.RuneCountInString(stem) > 50 {
		stem = string([]rune(stem)[:50])
	}
	stem = strings.ReplaceAll(stem, " ", "_")
	if stem == "" || stem == "." {
		stem = "image"
	}
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%d%s", stem, time.Now().UnixMilli(), ext)
}
