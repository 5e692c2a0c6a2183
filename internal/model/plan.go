package model

import (
	"context"
	"time"
)

// Plan is a shareable scheduling plan. URLID is its public slug.
type Plan struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	URLID       string    `json:"url_id"`
	Description *string   `json:"description,omitempty"`
	CTime       time.Time `json:"ctime"`
}

// PlanForCreate is the payload for a new plan.
type PlanForCreate struct {
	Name        string
	URLID       string
	Description *string
}

// Fields lists the columns to insert. Description is omitted when nil.
func (p PlanForCreate) Fields() Fields {
	fields := Fields{
		{Column: "name", Value: p.Name},
		{Column: "url_id", Value: p.URLID},
	}
	if p.Description != nil {
		fields = append(fields, Field{Column: "description", Value: *p.Description})
	}
	return fields
}

var planDescriptor = Descriptor[Plan]{
	Table:   Table{Name: "plan", Entity: "plan", Behavior: CreationTime},
	Columns: []string{"id", "name", "url_id", "description", "ctime"},
	Decode: func(d *Decoder) Plan {
		return Plan{
			ID:          d.Int64("id"),
			Name:        d.String("name"),
			URLID:       d.String("url_id"),
			Description: d.OptionalString("description"),
			CTime:       d.Time("ctime"),
		}
	},
}

// PlanController is the entry point for plan rows.
type PlanController struct{}

// Plans is the plan controller.
var Plans PlanController

// Create inserts p and returns the new row id.
func (PlanController) Create(ctx context.Context, mm *Manager, p PlanForCreate) (int64, error) {
	return Create(ctx, mm, planDescriptor.Table, p)
}

// CreateReturn inserts p and returns the stored plan.
func (PlanController) CreateReturn(ctx context.Context, mm *Manager, p PlanForCreate) (Plan, error) {
	return CreateReturn(ctx, mm, planDescriptor, p)
}

// Get returns the plan with the given id.
func (PlanController) Get(ctx context.Context, mm *Manager, id int64) (Plan, error) {
	return Get(ctx, mm, planDescriptor, id)
}

// GetByURLID looks a plan up by slug. A miss is a *PlanURLNotFoundError.
func (PlanController) GetByURLID(ctx context.Context, mm *Manager, urlID string) (Plan, error) {
	p, ok, err := First(ctx, mm, planDescriptor, Eq("url_id", urlID))
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, &PlanURLNotFoundError{URLID: urlID}
	}
	return p, nil
}

// Delete removes a plan together with its users and their dates.
func (PlanController) Delete(ctx context.Context, mm *Manager, id int64) error {
	return Delete(ctx, mm, planDescriptor.Table, id)
}
