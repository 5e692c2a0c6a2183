package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/dateplanner/internal/model"
)

const maxSlugAttempts = 5

// PlanService creates, shows and deletes plans.
type PlanService struct {
	mm      *model.Manager
	newSlug func() (string, error)
	logger  *slog.Logger
}

// NewPlanService constructs a plan service using random slugs.
func NewPlanService(mm *model.Manager) *PlanService {
	return NewPlanServiceWithLogger(mm, nil, nil)
}

// NewPlanServiceWithLogger constructs a plan service with a specified slug
// source and logger. A nil newSlug means NewSlug.
func NewPlanServiceWithLogger(mm *model.Manager, newSlug func() (string, error), logger *slog.Logger) *PlanService {
	if newSlug == nil {
		newSlug = NewSlug
	}
	return &PlanService{mm: mm, newSlug: newSlug, logger: defaultLogger(logger)}
}

func (s *PlanService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PlanService", operation, attrs...)
}

// CreatePlan validates input and stores a plan under a fresh slug. A slug
// collision is retried with a new slug.
func (s *PlanService) CreatePlan(ctx context.Context, input CreatePlanInput) (plan model.Plan, err error) {
	if s == nil {
		err = fmt.Errorf("PlanService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreatePlan")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create plan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("plan_id", plan.ID, "url_id", plan.URLID).InfoContext(ctx, "plan created")
	}()

	vErr := validatePlanInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	payload := model.PlanForCreate{
		Name:        strings.TrimSpace(input.Name),
		Description: normalizeOptionalString(input.Description),
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		payload.URLID, err = s.newSlug()
		if err != nil {
			return
		}

		plan, err = model.Plans.CreateReturn(ctx, s.mm, payload)
		if err == nil {
			return
		}
		if !model.IsUniqueViolation(err) {
			err = mapModelError(err)
			return
		}
		logger.WarnContext(ctx, "plan url collision, retrying", "url_id", payload.URLID, "attempt", attempt)
	}

	err = fmt.Errorf("%w after %d attempts", ErrSlugExhausted, maxSlugAttempts)
	return
}

// GetPlan returns the plan with the given slug and every participant with
// their dates.
func (s *PlanService) GetPlan(ctx context.Context, urlID string) (view PlanView, err error) {
	if s == nil {
		err = fmt.Errorf("PlanService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GetPlan", "url_id", urlID)
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to load plan", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	vErr := &ValidationError{}
	validateSlug(vErr, urlID)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.mm.Exclusive(ctx, func(mm *model.Manager) error {
		plan, err := model.Plans.GetByURLID(ctx, mm, urlID)
		if err != nil {
			return err
		}
		users, err := model.Users.ListByPlan(ctx, mm, plan.ID)
		if err != nil {
			return err
		}

		view.Plan = plan
		view.Users = make([]UserView, 0, len(users))
		for _, u := range users {
			dates, err := model.UserDates.ListByUser(ctx, mm, u.ID)
			if err != nil {
				return err
			}
			uv := UserView{WebID: u.WebID, Name: u.Name, Dates: make([]model.Date, len(dates))}
			for i, d := range dates {
				uv.Dates[i] = d.Date
			}
			view.Users = append(view.Users, uv)
		}
		return nil
	})
	if err != nil {
		view = PlanView{}
	}
	err = mapModelError(err)
	return
}

// DeletePlan removes a plan and, through cascading keys, its participants
// and their dates.
func (s *PlanService) DeletePlan(ctx context.Context, urlID string) (err error) {
	if s == nil {
		return fmt.Errorf("PlanService is nil")
	}

	logger := s.loggerWith(ctx, "DeletePlan", "url_id", urlID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete plan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "plan deleted")
	}()

	plan, err := model.Plans.GetByURLID(ctx, s.mm, urlID)
	if err != nil {
		return mapModelError(err)
	}
	return mapModelError(model.Plans.Delete(ctx, s.mm, plan.ID))
}
