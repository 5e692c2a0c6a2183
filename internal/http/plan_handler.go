package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/dateplanner/internal/application"
	"github.com/example/dateplanner/internal/model"
)

type planService interface {
	CreatePlan(ctx context.Context, input application.CreatePlanInput) (model.Plan, error)
	GetPlan(ctx context.Context, urlID string) (application.PlanView, error)
	DeletePlan(ctx context.Context, urlID string) error
}

type availabilityService interface {
	ToggleDate(ctx context.Context, input application.ToggleDateInput) (application.ToggleResult, error)
	MarkDates(ctx context.Context, input application.MarkDatesInput) ([]model.Date, error)
}

type PlanHandler struct {
	plans        planService
	availability availabilityService
	responder    responder
	logger       *slog.Logger
}

func NewPlanHandler(plans planService, availability availabilityService, logger *slog.Logger) *PlanHandler {
	base := defaultLogger(logger)
	return &PlanHandler{plans: plans, availability: availability, responder: newResponder(base), logger: base}
}

func (h *PlanHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PlanHandler", operation, attrs...)
}

func (h *PlanHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.plans == nil || h.availability == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// slug returns the plan url id placed in the context by the router.
func (h *PlanHandler) slug(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	slug, ok := PlanSlugFromContext(r.Context())
	if !ok || strings.TrimSpace(slug) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing plan slug")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingSlug)
		return "", false
	}
	return slug, true
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode plan request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	plan, err := h.plans.CreatePlan(r.Context(), application.CreatePlanInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "plan creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("url_id", plan.URLID).InfoContext(r.Context(), "plan created")
	w.Header().Set("HX-Redirect", "plan/"+plan.URLID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, planResponse{Plan: toPlanDTO(plan)})
}

func (h *PlanHandler) Show(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	slug, ok := h.slug(w, r, "Show")
	if !ok {
		return
	}

	view, err := h.plans.GetPlan(r.Context(), slug)
	if err != nil {
		h.log(r.Context(), "Show").ErrorContext(r.Context(), "plan lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlanPageResponse(view))
}

func (h *PlanHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	slug, ok := h.slug(w, r, "Toggle")
	if !ok {
		return
	}

	var req toggleDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Toggle", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode toggle request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Toggle", "web_id", req.User)

	result, err := h.availability.ToggleDate(r.Context(), application.ToggleDateInput{
		PlanURLID: slug,
		UserWebID: req.User,
		Date:      req.Date,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "date toggled", "date", result.Date, "marked", result.Marked)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toggleResponse{Date: result.Date, Marked: result.Marked})
}

func (h *PlanHandler) MarkDates(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	slug, ok := h.slug(w, r, "MarkDates")
	if !ok {
		return
	}

	var req markDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "MarkDates", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode dates request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "MarkDates", "web_id", req.User)

	dates, err := h.availability.MarkDates(r.Context(), application.MarkDatesInput{
		PlanURLID: slug,
		UserWebID: req.User,
		Dates:     req.Dates,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "marking dates failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "dates marked", "count", len(dates))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, datesResponse{Dates: nonNilDates(dates)})
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	slug, ok := h.slug(w, r, "Delete")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Delete")
	if err := h.plans.DeletePlan(r.Context(), slug); err != nil {
		logger.ErrorContext(r.Context(), "plan delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "plan deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createPlanRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type toggleDateRequest struct {
	User uuid.UUID  `json:"user"`
	Date model.Date `json:"date"`
}

type markDatesRequest struct {
	User  uuid.UUID    `json:"user"`
	Dates []model.Date `json:"dates"`
}

type planDTO struct {
	URLID       string    `json:"url_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type participantDTO struct {
	WebID uuid.UUID    `json:"web_id"`
	Name  string       `json:"name"`
	Dates []model.Date `json:"dates"`
}

type planResponse struct {
	Plan planDTO `json:"plan"`
}

type planPageResponse struct {
	Plan  planDTO          `json:"plan"`
	Users []participantDTO `json:"users"`
}

type toggleResponse struct {
	Date   model.Date `json:"date"`
	Marked bool       `json:"marked"`
}

type datesResponse struct {
	Dates []model.Date `json:"dates"`
}

func toPlanDTO(plan model.Plan) planDTO {
	return planDTO{
		URLID:       plan.URLID,
		Name:        plan.Name,
		Description: plan.Description,
		CreatedAt:   plan.CTime,
	}
}

func toPlanPageResponse(view application.PlanView) planPageResponse {
	users := make([]participantDTO, 0, len(view.Users))
	for _, u := range view.Users {
		users = append(users, participantDTO{WebID: u.WebID, Name: u.Name, Dates: nonNilDates(u.Dates)})
	}
	return planPageResponse{Plan: toPlanDTO(view.Plan), Users: users}
}

func nonNilDates(dates []model.Date) []model.Date {
	if dates == nil {
		return []model.Date{}
	}
	return dates
}
