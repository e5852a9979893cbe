package blogspace

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// uploadResult is the JSON payload the rich-text editor's uploader expects.
type uploadResult struct {
	Uploaded int          `json:"uploaded"`
	URL      string       `json:"url,omitempty"`
	Error    *uploadError `json:"error,omitempty"`
}

type uploadError struct {
	Message string `json:"message"`
}

func uploadSuccess(c echo.Context, url string) error {
	return c.JSON(http.StatusOK, uploadResult{Uploaded: 1, URL: url})
}

func uploadFail(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, uploadResult{Uploaded: 0, Error: &uploadError{Message: message}})
}

// handleUpload accepts a multipart image upload for embedding in post
// bodies. Extensions outside {jpg, jpeg, png, gif} are rejected before
// anything reaches the store; re-uploading a filename overwrites the
// earlier bytes.
func (a *App) handleUpload(c echo.Context) error {
	if !IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	file, err := c.FormFile("upload")
	if err != nil {
		return uploadFail(c, "No file provided!")
	}
	if file.Size > maxUploadSize {
		return uploadFail(c, "File too large (max 10MB)!")
	}
	if !AllowedImageFilename(file.Filename) {
		return uploadFail(c, "Image only!")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	data, err := normalizeImage(raw)
	if err != nil {
		return uploadFail(c, "Invalid image!")
	}

	id := ImageID(file.Filename)
	if err := a.Store.PutImage(id, data); err != nil {
		return err
	}
	return uploadSuccess(c, "/images/"+id)
}

// normalizeImage returns the bytes to store for an upload. Images wider
// than maxImageWidth are downscaled and re-encoded as JPEG; anything
// smaller is stored byte-for-byte.
func normalizeImage(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return raw, nil
	}

	newH := h * maxImageWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
