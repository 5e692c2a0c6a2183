package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/dateplanner/internal/model"
)

var planCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// PlanOption configures a generated plan payload.
type PlanOption func(*model.PlanForCreate)

// NewPlanFixture returns a plan payload with a unique name and slug.
func NewPlanFixture(opts ...PlanOption) model.PlanForCreate {
	idx := atomic.AddUint64(&planCounter, 1)
	p := model.PlanForCreate{
		Name:  fmt.Sprintf("Plan %03d", idx),
		URLID: fmt.Sprintf("plan%04d", idx%10000),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithPlanName(name string) PlanOption {
	return func(p *model.PlanForCreate) { p.Name = name }
}

func WithPlanURLID(urlID string) PlanOption {
	return func(p *model.PlanForCreate) { p.URLID = urlID }
}

func WithPlanDescription(description string) PlanOption {
	return func(p *model.PlanForCreate) { p.Description = &description }
}

// NewManager returns a model.Manager over a fresh store with a ticking clock
// and deterministic web ids.
func NewManager(tb testing.TB) (*model.Manager, *Clock, *IDGenerator) {
	tb.Helper()
	clock := NewTickingClock(time.Time{}, time.Millisecond)
	ids := NewIDGenerator()
	mm := model.NewManager(NewStore(tb), model.WithClock(clock.NowFunc()), model.WithIDSource(ids.NextUUID))
	return mm, clock, ids
}

// SeedPlan stores a plan with one user per name and returns the plan and the
// users in the given order.
func SeedPlan(tb testing.TB, mm *model.Manager, plan model.PlanForCreate, userNames ...string) (model.Plan, []model.User) {
	tb.Helper()
	ctx := context.Background()

	p, err := model.Plans.CreateReturn(ctx, mm, plan)
	if err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	users := make([]model.User, 0, len(userNames))
	for _, name := range userNames {
		u, err := model.Users.CreateReturn(ctx, mm, model.UserForCreate{PlanID: p.ID, Name: name})
		if err != nil {
			tb.Fatalf("seed user %q: %v", name, err)
		}
		users = append(users, u)
	}
	return p, users
}
