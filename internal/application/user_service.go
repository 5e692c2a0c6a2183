package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/dateplanner/internal/model"
)

// UserService registers participants on plans.
type UserService struct {
	mm     *model.Manager
	logger *slog.Logger
}

// NewUserService constructs a user service with the default logger.
func NewUserService(mm *model.Manager) *UserService {
	return NewUserServiceWithLogger(mm, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(mm *model.Manager, logger *slog.Logger) *UserService {
	return &UserService{mm: mm, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser adds a participant to the plan and returns it with its web id.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (user model.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "url_id", input.PlanURLID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("web_id", user.WebID).InfoContext(ctx, "user created")
	}()

	vErr := &ValidationError{}
	validateName(vErr, "username", input.Name)
	validateSlug(vErr, input.PlanURLID)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var plan model.Plan
	plan, err = model.Plans.GetByURLID(ctx, s.mm, input.PlanURLID)
	if err != nil {
		err = mapModelError(err)
		return
	}

	user, err = model.Users.CreateReturn(ctx, s.mm, model.UserForCreate{
		PlanID: plan.ID,
		Name:   strings.TrimSpace(input.Name),
	})
	err = mapModelError(err)
	return
}
