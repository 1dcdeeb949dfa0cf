package web

import (
	"io"
	"net/http"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := s.assets.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]assetView, 0, len(list))
	for _, a := range list {
		views = append(views, s.view(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, err := s.assets.Summary(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	assigned, err := s.assignments.SlotsForAsset(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := s.view(*summary)
	v.Slots = assigned
	writeJSON(w, http.StatusOK, v)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenameAsset(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.assets.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(*summary))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.assets.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMedia streams one rendition. Renditions never change once written,
// so they are cacheable indefinitely.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	kind := domain.RenditionKind(r.PathValue("kind"))

	reader, mimeType, err := s.assets.Rendition(r.Context(), id, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "rendition reader", s.logger)

	h := w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write rendition failed", "asset_id", id, "kind", kind, "error", err)
	}
}
