package application

import (
	"github.com/google/uuid"

	"github.com/example/dateplanner/internal/model"
)

const (
	maxNameLength        = 128
	maxDescriptionLength = 2000
)

// CreatePlanInput captures caller provided plan fields.
type CreatePlanInput struct {
	Name        string
	Description *string
}

// CreateUserInput registers a participant on the plan identified by PlanURLID.
type CreateUserInput struct {
	PlanURLID string
	Name      string
}

// ToggleDateInput flips one date for one participant of a plan.
type ToggleDateInput struct {
	PlanURLID string
	UserWebID uuid.UUID
	Date      model.Date
}

// MarkDatesInput adds several dates for one participant at once.
type MarkDatesInput struct {
	PlanURLID string
	UserWebID uuid.UUID
	Dates     []model.Date
}

// PlanView is a plan with every participant and their chosen dates.
type PlanView struct {
	Plan  model.Plan
	Users []UserView
}

// UserView is a participant as shown on the plan page.
type UserView struct {
	WebID uuid.UUID
	Name  string
	Dates []model.Date
}

// ToggleResult reports the state of a date after a toggle.
type ToggleResult struct {
	Date   model.Date
	Marked bool
}
