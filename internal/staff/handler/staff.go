package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/schoolhub-backend/internal/staff/service"
	"github.com/schoolhub/schoolhub-backend/pkg/httputil"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
)

// StaffHandler exposes staff reads for the attendance screens
type StaffHandler struct {
	service *service.StaffService
	logger  *logger.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(svc *service.StaffService, log *logger.Logger) *StaffHandler {
	return &StaffHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRoutes registers staff routes on the router
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.With(httputil.RequirePermission("staff.read")).Get("/", h.List)
		r.With(httputil.RequirePermission("staff.read")).Get("/{id}", h.Get)
		r.With(httputil.RequirePermission("staff.read")).Get("/{id}/overtime-pay", h.OvertimePay)
	})
}

// OvertimePay handles GET /staff/{id}/overtime-pay, returning the priced
// value of the staff member's accumulated overtime.
func (h *StaffHandler) OvertimePay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	breakdown, err := h.service.OvertimePay(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, breakdown)
}

// Get handles GET /staff/{id}, returning the staff member with their
// overtime summary.
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// List handles GET /staff, returning the school's active staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, staff)
}
