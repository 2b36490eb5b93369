package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/internal/staff/service"
	"github.com/schoolhub/schoolhub-backend/pkg/errors"
	"github.com/schoolhub/schoolhub-backend/pkg/httputil"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
)

type createAttendanceRequest struct {
	StaffID  string  `json:"staff_id" validate:"required,uuid"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	ClockIn  *string `json:"clock_in" validate:"omitempty,datetime=15:04"`
	ClockOut *string `json:"clock_out" validate:"omitempty,datetime=15:04"`
	Status   string  `json:"status" validate:"required,oneof=present absent half-day leave"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

type updateAttendanceRequest struct {
	ClockIn  *string `json:"clock_in" validate:"omitempty,datetime=15:04"`
	ClockOut *string `json:"clock_out" validate:"omitempty,datetime=15:04"`
	Status   string  `json:"status" validate:"required,oneof=present absent half-day leave"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

// AttendanceHandler exposes the attendance HTTP API
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRoutes registers attendance routes on the router
func (h *AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/{staffID}/attendance", func(r chi.Router) {
		r.With(httputil.RequirePermission("attendance.record")).Post("/clock-in", h.ClockIn)
		r.With(httputil.RequirePermission("attendance.record")).Post("/clock-out", h.ClockOut)
	})

	r.Route("/attendance", func(r chi.Router) {
		r.With(httputil.RequirePermission("attendance.read")).Get("/", h.List)
		r.With(httputil.RequirePermission("attendance.manage")).Post("/", h.Create)
		r.With(httputil.RequirePermission("attendance.read")).Get("/{id}", h.Get)
		r.With(httputil.RequirePermission("attendance.manage")).Put("/{id}", h.Update)
		r.With(httputil.RequirePermission("attendance.manage")).Delete("/{id}", h.Delete)
	})
}

// ClockIn handles POST /staff/{staffID}/attendance/clock-in
func (h *AttendanceHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffID")

	att, err := h.service.ClockIn(r.Context(), staffID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, att)
}

// ClockOut handles POST /staff/{staffID}/attendance/clock-out
func (h *AttendanceHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffID")

	att, err := h.service.ClockOut(r.Context(), staffID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, att)
}

// Create handles POST /attendance
func (h *AttendanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAttendanceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.Error(w, r, errors.Validation(map[string]string{"date": "must be a valid date (YYYY-MM-DD)"}))
		return
	}

	att, err := h.service.Create(r.Context(), service.CreateAttendanceInput{
		StaffID:  req.StaffID,
		Date:     date,
		ClockIn:  req.ClockIn,
		ClockOut: req.ClockOut,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, att)
}

// Get handles GET /attendance/{id}
func (h *AttendanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	att, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, att)
}

// Update handles PUT /attendance/{id}
func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAttendanceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	att, err := h.service.Update(r.Context(), id, service.UpdateAttendanceInput{
		ClockIn:  req.ClockIn,
		ClockOut: req.ClockOut,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, att)
}

// Delete handles DELETE /attendance/{id}
func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// List handles GET /attendance with optional filters:
// staff_id, status, date_from, date_to, page, per_page.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.AttendanceFilter{
		StaffID: r.URL.Query().Get("staff_id"),
		Status:  r.URL.Query().Get("status"),
	}

	if v := r.URL.Query().Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, r, errors.Validation(map[string]string{"date_from": "must be a valid date (YYYY-MM-DD)"}))
			return
		}
		filter.DateFrom = &t
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, r, errors.Validation(map[string]string{"date_to": "must be a valid date (YYYY-MM-DD)"}))
			return
		}
		filter.DateTo = &t
	}

	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	records, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))

	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
