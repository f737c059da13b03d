package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"folio/internal/imaging"
	"folio/internal/models"
	"folio/internal/storage"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// Media lists uploaded assets, newest first.
func (a *Admin) Media(w http.ResponseWriter, r *http.Request) {
	assets, err := a.media.List(r.Context())
	if err != nil {
		writeInternal(w, "list media failed", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// MediaUpload stores the multipart field "file" under a random name that
// keeps the original extension, then records its metadata. Images wider
// than the thumbnail width also get a JPEG thumbnail; thumbnail failures
// are logged and ignored.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeInternal(w, "read upload failed", err)
		return
	}

	contentType := detectContentType(data, header.Header.Get("Content-Type"))

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = storage.ExtensionFromType(contentType)
	}
	id := models.NewFileID()
	key := id + ext

	ctx := r.Context()
	if err := a.storage.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		writeInternal(w, "store upload failed", err)
		return
	}
	keys := []string{key}

	asset := &models.MediaAsset{
		Filename:    filepath.Base(header.Filename),
		URL:         a.storage.URL(key),
		Size:        int64(len(data)),
		ContentType: contentType,
	}

	if imaging.Thumbnailable(contentType) {
		if thumbKey, ok := a.storeThumbnail(ctx, id, data); ok {
			thumbURL := a.storage.URL(thumbKey)
			asset.ThumbURL = &thumbURL
			keys = append(keys, thumbKey)
		}
	}

	created, err := a.media.Create(ctx, asset)
	if err != nil {
		a.discard(keys)
		writeInternal(w, "save media metadata failed", err)
		return
	}

	slog.Info("media uploaded", "id", created.ID, "filename", created.Filename, "size", created.Size)
	writeJSON(w, http.StatusCreated, created)
}

// storeThumbnail generates and stores a thumbnail. ok is false when the
// image is already small or anything fails.
func (a *Admin) storeThumbnail(ctx context.Context, id string, data []byte) (string, bool) {
	thumb, err := imaging.Thumbnail(data, imaging.ThumbWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "id", id, "error", err)
		return "", false
	}
	if thumb == nil {
		return "", false
	}

	key := "thumbs/" + id + ".jpg"
	if err := a.storage.Put(ctx, key, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		slog.Warn("thumbnail upload failed", "id", id, "error", err)
		return "", false
	}
	return key, true
}

// discard removes stored objects whose metadata could not be saved, so a
// failed insert does not leave orphans behind.
func (a *Admin) discard(keys []string) {
	ctx := context.Background()
	for _, k := range keys {
		if err := a.storage.Delete(ctx, k); err != nil {
			slog.Warn("remove orphaned upload failed", "key", k, "error", err)
		}
	}
}

// detectContentType sniffs the first 512 bytes. SVG sniffs as text, and
// unknown binaries fall back to the type the client declared.
func detectContentType(data []byte, declared string) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	sniffed := http.DetectContentType(head)

	if strings.HasPrefix(sniffed, "text/xml") || strings.HasPrefix(sniffed, "text/plain") {
		if bytes.Contains(head, []byte("<svg")) {
			return "image/svg+xml"
		}
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return declared
	}
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = strings.TrimSpace(sniffed[:i])
	}
	return sniffed
}
