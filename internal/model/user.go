package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a participant of a plan. WebID is the only identifier that leaves
// the server.
type User struct {
	ID     int64     `json:"-"`
	PlanID int64     `json:"-"`
	Name   string    `json:"name"`
	WebID  uuid.UUID `json:"web_id"`
	CTime  time.Time `json:"ctime"`
}

// UserForCreate is the payload for a new user. web_id is assigned on insert.
type UserForCreate struct {
	PlanID int64
	Name   string
}

// Fields lists the columns to insert.
func (u UserForCreate) Fields() Fields {
	return Fields{
		{Column: "plan_id", Value: u.PlanID},
		{Column: "name", Value: u.Name},
	}
}

var userDescriptor = Descriptor[User]{
	Table:   Table{Name: "plan_user", Entity: "user", Behavior: CreationTime | ExternalID},
	Columns: []string{"id", "plan_id", "name", "web_id", "ctime"},
	Decode: func(d *Decoder) User {
		return User{
			ID:     d.Int64("id"),
			PlanID: d.Int64("plan_id"),
			Name:   d.String("name"),
			WebID:  d.UUID("web_id"),
			CTime:  d.Time("ctime"),
		}
	},
}

// UserController is the entry point for user rows.
type UserController struct{}

// Users is the user controller.
var Users UserController

// Create inserts u and returns the new row id.
func (UserController) Create(ctx context.Context, mm *Manager, u UserForCreate) (int64, error) {
	return Create(ctx, mm, userDescriptor.Table, u)
}

// CreateReturn inserts u and returns the stored user, including the
// generated web id.
func (UserController) CreateReturn(ctx context.Context, mm *Manager, u UserForCreate) (User, error) {
	return CreateReturn(ctx, mm, userDescriptor, u)
}

// Get returns the user with the given id.
func (UserController) Get(ctx context.Context, mm *Manager, id int64) (User, error) {
	return Get(ctx, mm, userDescriptor, id)
}

// GetByWebID returns a *UserWebIDNotFoundError on a miss.
func (UserController) GetByWebID(ctx context.Context, mm *Manager, webID uuid.UUID) (User, error) {
	u, ok, err := First(ctx, mm, userDescriptor, Eq("web_id", webID.String()))
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, &UserWebIDNotFoundError{WebID: webID}
	}
	return u, nil
}

// ListByPlan returns the users of a plan in creation order.
func (UserController) ListByPlan(ctx context.Context, mm *Manager, planID int64) ([]User, error) {
	return List(ctx, mm, userDescriptor, Eq("plan_id", planID), "")
}

// Delete removes a user and its dates.
func (UserController) Delete(ctx context.Context, mm *Manager, id int64) error {
	return Delete(ctx, mm, userDescriptor.Table, id)
}
