package sitepress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxFeaturedWidth = 1200
	jpegQuality      = 82
	maxUploadSize    = 10 << 20 // 10MB
	uploadsSubdir    = "uploads"
)

// processFeaturedImage decodes an uploaded image, scales it down to
// maxFeaturedWidth when wider, and re-encodes it as JPEG.
func processFeaturedImage(src io.Reader, originalName string, now time.Time) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxFeaturedWidth {
		scaledH := h * maxFeaturedWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxFeaturedWidth, scaledH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img, w, h = dst, maxFeaturedWidth, scaledH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Filename:     uploadFilename(originalName),
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   now.UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// sniffImage checks the uploaded bytes, not the client-supplied filename or
// Content-Type, against the formats the decoder is registered for.
func sniffImage(data []byte) (string, bool) {
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}
	return mtype.String(), false
}

// uploadFilename builds a collision-free name: a short random prefix and
// the slugified original base name.
func uploadFilename(originalName string) string {
	base := Slugify(strings.TrimSuffix(originalName, filepath.Ext(originalName)))
	if base == "" {
		base = "image"
	}
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "-" + base + ".jpg"
}

// ImageURL is the public path of an uploaded image.
func ImageURL(filename string) string {
	return "/public/" + uploadsSubdir + "/" + filename
}

func (a *App) handleImageUpload(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return err
	}
	if kind, ok := sniffImage(raw); !ok {
		return c.String(http.StatusBadRequest, "Unsupported image type: "+kind)
	}
	img, data, err := processFeaturedImage(bytes.NewReader(raw), file.Filename, a.now())
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(img); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	_ = os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filename)) // already gone is fine
	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}
