package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/dateplanner/internal/model"
)

// AvailabilityService records which dates participants can make.
type AvailabilityService struct {
	mm     *model.Manager
	logger *slog.Logger
}

// NewAvailabilityService constructs an availability service with the default logger.
func NewAvailabilityService(mm *model.Manager) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(mm, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(mm *model.Manager, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{mm: mm, logger: defaultLogger(logger)}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// participant resolves a web id to a user of the given plan. A user of a
// different plan is reported as not found.
func (s *AvailabilityService) participant(ctx context.Context, urlID string, webID uuid.UUID) (model.User, error) {
	plan, err := model.Plans.GetByURLID(ctx, s.mm, urlID)
	if err != nil {
		return model.User{}, mapModelError(err)
	}
	user, err := model.Users.GetByWebID(ctx, s.mm, webID)
	if err != nil {
		return model.User{}, mapModelError(err)
	}
	if user.PlanID != plan.ID {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

// ToggleDate marks the date for the participant if unmarked and unmarks it
// otherwise.
func (s *AvailabilityService) ToggleDate(ctx context.Context, input ToggleDateInput) (result ToggleResult, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ToggleDate",
		"url_id", input.PlanURLID,
		"web_id", input.UserWebID,
		"date", input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to toggle date", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("marked", result.Marked).InfoContext(ctx, "date toggled")
	}()

	vErr := &ValidationError{}
	validateSlug(vErr, input.PlanURLID)
	if input.UserWebID == uuid.Nil {
		vErr.add("user", "user is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var user model.User
	user, err = s.participant(ctx, input.PlanURLID, input.UserWebID)
	if err != nil {
		return
	}

	var toggled model.Toggled
	toggled, err = model.UserDates.Toggle(ctx, s.mm, model.UserDateForCreate{UserID: user.ID, Date: input.Date})
	if err != nil {
		err = mapModelError(err)
		return
	}
	result = ToggleResult{Date: input.Date, Marked: toggled.Marked}
	return
}

// MarkDates adds every date not yet marked for the participant in one
// all-or-nothing batch and returns the participant's dates afterwards.
func (s *AvailabilityService) MarkDates(ctx context.Context, input MarkDatesInput) (dates []model.Date, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MarkDates",
		"url_id", input.PlanURLID,
		"web_id", input.UserWebID,
		"count", len(input.Dates),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark dates", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "dates marked")
	}()

	vErr := &ValidationError{}
	validateSlug(vErr, input.PlanURLID)
	for _, d := range input.Dates {
		if d.IsZero() {
			vErr.add("dates", "dates must not contain empty values")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var user model.User
	user, err = s.participant(ctx, input.PlanURLID, input.UserWebID)
	if err != nil {
		return
	}

	err = s.mm.Exclusive(ctx, func(mm *model.Manager) error {
		existing, err := model.UserDates.ListByUser(ctx, mm, user.ID)
		if err != nil {
			return err
		}
		seen := make(map[model.Date]bool, len(existing))
		for _, ud := range existing {
			seen[ud.Date] = true
		}

		batch := model.UserDateForCreateMulti{UserID: user.ID}
		for _, d := range input.Dates {
			if !seen[d] {
				seen[d] = true
				batch.Dates = append(batch.Dates, d)
			}
		}
		if _, err := model.UserDates.CreateMultiple(ctx, mm, batch); err != nil {
			return err
		}

		all, err := model.UserDates.ListByUser(ctx, mm, user.ID)
		if err != nil {
			return err
		}
		dates = make([]model.Date, len(all))
		for i, ud := range all {
			dates[i] = ud.Date
		}
		return nil
	})
	err = mapModelError(err)
	return
}
