package web

import (
	"net/http"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/service"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/slots"
)

type slotView struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Group   domain.Group `json:"group"`
	Default string       `json:"default"`
}

func (s *Server) handleListSlots(w http.ResponseWriter, _ *http.Request) {
	all := slots.All()
	views := make([]slotView, 0, len(all))
	for _, sl := range all {
		views = append(views, slotView{ID: sl.ID, Label: sl.Label, Group: sl.Group, Default: sl.Default})
	}
	writeJSON(w, http.StatusOK, views)
}

type resolveResponse struct {
	Slot string `json:"slot"`
	URL  string `json:"url"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slot")
	if !slots.Known(slotID) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown slot"})
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Slot: slotID, URL: s.resolver.Resolve(r.Context(), slotID)})
}

// handleResolveMany resolves the slots named by repeated ?slot= parameters,
// or every slot when none are given. Unknown slots map to "".
func (s *Server) handleResolveMany(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["slot"]
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, s.resolver.ResolveAll(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.ResolveMany(r.Context(), ids))
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	states, err := s.resolver.Describe(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

type assignRequest struct {
	AssetID string `json:"assetId"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	slotID := r.PathValue("slot")
	if err := s.assignments.Assign(r.Context(), slotID, req.AssetID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Slot: slotID, URL: s.resolver.Resolve(r.Context(), slotID)})
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.assignments.Clear(r.Context(), r.PathValue("slot")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAllSlots(w http.ResponseWriter, r *http.Request) {
	if err := s.assignments.ResetAll(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := service.Reset(r.Context(), s.assets, s.assignments); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := service.BuildExport(r.Context(), s.assets, s.assignments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="slot-images.json"`)
	writeJSON(w, http.StatusOK, exp)
}

type usageResponse struct {
	UsedBytes      int64   `json:"usedBytes"`
	QuotaBytes     int64   `json:"quotaBytes"`
	UsedPercent    float64 `json:"usedPercent"`
	Summary        string  `json:"summary"`
	Assets         int     `json:"assets"`
	RenditionBytes int64   `json:"renditionBytes"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	u, err := s.assets.Usage(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stats, err := s.assets.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageResponse{
		UsedBytes:      u.Used,
		QuotaBytes:     u.Quota,
		UsedPercent:    u.Fraction() * 100,
		Summary:        u.String(),
		Assets:         stats.Assets,
		RenditionBytes: stats.RenditionBytes,
	})
}
