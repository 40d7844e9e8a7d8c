package handlers

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"appmarket/internal/middleware"
	"appmarket/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed image upload size (10 MB).
	maxUploadSize = 10 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// ErrLoginRequired rejects uploads from unauthenticated clients before
// any data transfer happens.
var ErrLoginRequired = errors.New("Login Required: you must be logged in to upload images.")

// allowedImageTypes defines MIME types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Uploads groups the image-upload handlers.
type Uploads struct {
	storageClient *storage.Client
}

// NewUploads creates a new Uploads handler group. storageClient may be
// nil when object storage is not configured.
func NewUploads(storageClient *storage.Client) *Uploads {
	return &Uploads{storageClient: storageClient}
}

// ImageUpload stores an image in object storage under
// images/{userID}_{epochMillis}_{fileName} with public-read access, and
// generates a JPEG thumbnail for raster formats. The authentication
// check runs before the body is read.
func (u *Uploads) ImageUpload(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, ErrLoginRequired.Error(), http.StatusUnauthorized)
		return
	}

	if u.storageClient == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "File too large. Maximum size is 10 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "Missing file field.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		writeError(w, "Unsupported file type.", http.StatusUnsupportedMediaType)
		return
	}

	fileName := filepath.Base(header.Filename)
	key := storage.ImageKey(sess.UserID.String(), fileName, time.Now())

	if err := u.storageClient.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("upload failed", "key", key, "error", err)
		writeError(w, "Upload failed.", http.StatusBadGateway)
		return
	}

	resp := map[string]string{
		"key": key,
		"url": u.storageClient.FileURL(key),
	}

	if thumbableTypes[contentType] {
		thumbKey := key + ".thumb.jpg"
		thumb, err := makeThumbnail(data)
		if err != nil {
			slog.Warn("thumbnail generation failed", "key", key, "error", err)
		} else if err := u.storageClient.Upload(r.Context(), thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			slog.Warn("thumbnail upload failed", "key", thumbKey, "error", err)
		} else {
			resp["thumb_key"] = thumbKey
			resp["thumb_url"] = u.storageClient.FileURL(thumbKey)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// makeThumbnail decodes a raster image and scales it down to at most
// thumbMaxWidth, re-encoded as JPEG. Images already narrower pass
// through un-scaled.
func makeThumbnail(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width*cfg.Height > maxImagePixels {
		return nil, errors.New("image too large to decode")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > thumbMaxWidth {
		height = height * thumbMaxWidth / width
		width = thumbMaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
