package handlers

import (
	"net/http"

	"github.com/hugh/team-hub/internal/api/dto"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/dashboard"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
}

func NewDashboardHandler(d *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: d}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.dashboard.Stats(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to compute dashboard stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// WorkspaceStats handles GET /api/dashboard/workspace/{id}/stats
func (h *DashboardHandler) WorkspaceStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	workspaceID, ok := urlID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid workspace ID"})
		return
	}

	stats, err := h.dashboard.ForWorkspace(r.Context(), userID, workspaceID)
	if err != nil {
		if err == dashboard.ErrForbidden {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized to access this workspace"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to compute workspace stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
