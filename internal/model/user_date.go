package model

import (
	"context"
	"time"
)

// UserDate records that a user is available on a date.
type UserDate struct {
	ID     int64     `json:"-"`
	UserID int64     `json:"-"`
	Date   Date      `json:"date"`
	CTime  time.Time `json:"ctime"`
}

// UserDateForCreate is the payload for one (user, date) row.
type UserDateForCreate struct {
	UserID int64
	Date   Date
}

// Fields lists the columns to insert.
func (u UserDateForCreate) Fields() Fields {
	return Fields{
		{Column: "user_id", Value: u.UserID},
		{Column: "date", Value: u.Date},
	}
}

// UserDateForCreateMulti marks several dates for one user at once.
type UserDateForCreateMulti struct {
	UserID int64
	Dates  []Date
}

func (u UserDateForCreateMulti) rows() []UserDateForCreate {
	rows := make([]UserDateForCreate, len(u.Dates))
	for i, d := range u.Dates {
		rows[i] = UserDateForCreate{UserID: u.UserID, Date: d}
	}
	return rows
}

var userDateDescriptor = Descriptor[UserDate]{
	Table:   Table{Name: "user_date", Entity: "user_date", Behavior: CreationTime},
	Columns: []string{"id", "user_id", "date", "ctime"},
	Decode: func(d *Decoder) UserDate {
		return UserDate{
			ID:     d.Int64("id"),
			UserID: d.Int64("user_id"),
			Date:   d.Date("date"),
			CTime:  d.Time("ctime"),
		}
	},
}

// Toggled is the outcome of UserDateController.Toggle.
type Toggled struct {
	// Marked is true when the date was added, false when it was removed.
	Marked bool
	// ID is the new row id when Marked, otherwise the removed row id.
	ID int64
}

// UserDateController is the entry point for user_date rows.
type UserDateController struct{}

// UserDates is the user_date controller.
var UserDates UserDateController

// Create inserts u and returns the new row id. A second row for the same
// user and date is a unique violation.
func (UserDateController) Create(ctx context.Context, mm *Manager, u UserDateForCreate) (int64, error) {
	return Create(ctx, mm, userDateDescriptor.Table, u)
}

// CreateMultiple stores every date of u atomically and returns ids in the
// order of u.Dates.
func (UserDateController) CreateMultiple(ctx context.Context, mm *Manager, u UserDateForCreateMulti) ([]int64, error) {
	return CreateMultiple(ctx, mm, userDateDescriptor.Table, u.rows())
}

// Get returns the row with the given id.
func (UserDateController) Get(ctx context.Context, mm *Manager, id int64) (UserDate, error) {
	return Get(ctx, mm, userDateDescriptor, id)
}

// GetDate returns the row for (userID, date); ok is false if there is none.
func (UserDateController) GetDate(ctx context.Context, mm *Manager, userID int64, date Date) (UserDate, bool, error) {
	return First(ctx, mm, userDateDescriptor, Eq("user_id", userID).And("date", date))
}

// ListByUser returns a user's dates in calendar order.
func (UserDateController) ListByUser(ctx context.Context, mm *Manager, userID int64) ([]UserDate, error) {
	return List(ctx, mm, userDateDescriptor, Eq("user_id", userID), "date")
}

// Delete removes the row with the given id.
func (UserDateController) Delete(ctx context.Context, mm *Manager, id int64) error {
	return Delete(ctx, mm, userDateDescriptor.Table, id)
}

// Toggle adds the date for the user if absent and removes it if present.
// The lookup and the write run under one connection acquisition, so two
// concurrent toggles of the same pair never both insert.
func (c UserDateController) Toggle(ctx context.Context, mm *Manager, u UserDateForCreate) (Toggled, error) {
	var result Toggled
	err := mm.Exclusive(ctx, func(mm *Manager) error {
		existing, ok, err := c.GetDate(ctx, mm, u.UserID, u.Date)
		if err != nil {
			return err
		}
		if ok {
			if err := c.Delete(ctx, mm, existing.ID); err != nil {
				return err
			}
			result = Toggled{Marked: false, ID: existing.ID}
			return nil
		}

		id, err := c.Create(ctx, mm, u)
		if err != nil {
			return err
		}
		result = Toggled{Marked: true, ID: id}
		return nil
	})
	if err != nil {
		return Toggled{}, err
	}
	return result, nil
}
