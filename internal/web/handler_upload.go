package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/service"
)

// multipartOverhead is the allowance for form boundaries and part headers on
// top of the image itself.
const multipartOverhead = 1 << 20

// allowedImageTypes is the set of MIME types recognised by sniffing when the
// client does not declare one. net/http.DetectContentType handles JPEG, PNG,
// and GIF via magic-byte sniffing. WebP is detected separately because the
// WHATWG sniff spec (and therefore the stdlib) does not include a WebP
// signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// uploadMIME picks the type to validate: the part's declared Content-Type,
// or the sniffed type when the client sent none or a generic one.
func uploadMIME(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = strings.TrimSpace(declared)
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	if sniffed, ok := allowedImageMIME(data); ok {
		return sniffed
	}
	return mediaType
}

type assetView struct {
	domain.AssetSummary
	ThumbURL   string   `json:"thumbUrl"`
	DisplayURL string   `json:"displayUrl"`
	Slots      []string `json:"slots,omitempty"`
}

func (s *Server) view(a domain.AssetSummary) assetView {
	return assetView{
		AssetSummary: a,
		ThumbURL:     s.assets.RenditionURL(a.ID, domain.RenditionThumb),
		DisplayURL:   s.assets.RenditionURL(a.ID, domain.RenditionDisplay),
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(service.MaxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, domain.Invalid("file is larger than %s", humanize.IBytes(service.MaxUploadBytes)))
			return
		}
		s.writeError(w, r, domain.Invalid("failed to parse form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Error("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, domain.Invalid("image file required"))
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	asset, err := s.assets.Upload(r.Context(), service.UploadRequest{
		Data:     data,
		MimeType: uploadMIME(header.Header.Get("Content-Type"), data),
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.view(asset.Summary()))
}
