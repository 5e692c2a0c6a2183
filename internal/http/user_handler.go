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

type userService interface {
	CreateUser(ctx context.Context, input application.CreateUserInput) (model.User, error)
}

type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slug, ok := PlanSlugFromContext(r.Context())
	if !ok || strings.TrimSpace(slug) == "" {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "missing plan slug for user")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingSlug)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode user request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	user, err := h.service.CreateUser(r.Context(), application.CreateUserInput{
		PlanURLID: slug,
		Name:      req.Username,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "user creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("web_id", user.WebID).InfoContext(r.Context(), "user created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

type createUserRequest struct {
	Username string `json:"username"`
}

type userDTO struct {
	WebID     uuid.UUID `json:"web_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

func toUserDTO(user model.User) userDTO {
	return userDTO{WebID: user.WebID, Name: user.Name, CreatedAt: user.CTime}
}
