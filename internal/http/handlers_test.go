package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/example/dateplanner/internal/application"
	"github.com/example/dateplanner/internal/model"
	"github.com/example/dateplanner/internal/testfixtures"
)

type fakePlanService struct {
	createInput application.CreatePlanInput
	plan        model.Plan
	view        application.PlanView
	deleted     string
	err         error
}

func (f *fakePlanService) CreatePlan(ctx context.Context, input application.CreatePlanInput) (model.Plan, error) {
	f.createInput = input
	return f.plan, f.err
}

func (f *fakePlanService) GetPlan(ctx context.Context, urlID string) (application.PlanView, error) {
	return f.view, f.err
}

func (f *fakePlanService) DeletePlan(ctx context.Context, urlID string) error {
	f.deleted = urlID
	return f.err
}

type fakeAvailabilityService struct {
	toggleInput application.ToggleDateInput
	markInput   application.MarkDatesInput
	marked      bool
	dates       []model.Date
	err         error
}

func (f *fakeAvailabilityService) ToggleDate(ctx context.Context, input application.ToggleDateInput) (application.ToggleResult, error) {
	f.toggleInput = input
	return application.ToggleResult{Date: input.Date, Marked: f.marked}, f.err
}

func (f *fakeAvailabilityService) MarkDates(ctx context.Context, input application.MarkDatesInput) ([]model.Date, error) {
	f.markInput = input
	return f.dates, f.err
}

type fakeUserService struct {
	input application.CreateUserInput
	user  model.User
	err   error
}

func (f *fakeUserService) CreateUser(ctx context.Context, input application.CreateUserInput) (model.User, error) {
	f.input = input
	return f.user, f.err
}

func newTestRouter(plans *fakePlanService, availability *fakeAvailabilityService, users *fakeUserService) http.Handler {
	logger := testfixtures.DiscardLogger()
	return NewRouter(RouterConfig{
		Plans: NewPlanHandler(plans, availability, logger),
		Users: NewUserHandler(users, logger),
	})
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func TestPlanHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("returns the plan and redirects to its page", func(t *testing.T) {
		t.Parallel()
		plans := &fakePlanService{plan: model.Plan{ID: 7, Name: "Trip", URLID: "abcd1234"}}
		router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan", `{"name":"Trip","description":"Beach"}`)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("HX-Redirect"); got != "plan/abcd1234" {
			t.Fatalf("unexpected HX-Redirect %q", got)
		}
		if plans.createInput.Name != "Trip" || plans.createInput.Description == nil || *plans.createInput.Description != "Beach" {
			t.Fatalf("unexpected service input %+v", plans.createInput)
		}

		var resp planResponse
		decodeBody(t, recorder, &resp)
		if resp.Plan.URLID != "abcd1234" || resp.Plan.Name != "Trip" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if strings.Contains(recorder.Body.String(), `"id"`) {
			t.Fatalf("internal id leaked: %s", recorder.Body.String())
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan", `{"name":`)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("validation errors are localized", func(t *testing.T) {
		t.Parallel()
		plans := &fakePlanService{err: &application.ValidationError{FieldErrors: map[string]string{"name": "name is required"}}}
		router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan", `{"name":""}`)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		var resp errorResponse
		decodeBody(t, recorder, &resp)
		if resp.Errors["name"] != "プラン名は必須です。" {
			t.Fatalf("unexpected field errors %+v", resp.Errors)
		}
	})

	t.Run("unexpected failures hide the cause", func(t *testing.T) {
		t.Parallel()
		plans := &fakePlanService{err: errors.New("UNIQUE constraint failed: plan.url_id")}
		router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan", `{"name":"Trip"}`)
		if recorder.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", recorder.Code)
		}
		if strings.Contains(recorder.Body.String(), "UNIQUE") {
			t.Fatalf("driver message leaked: %s", recorder.Body.String())
		}
	})

	t.Run("only POST is allowed", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodGet, "/plan", "")
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
		if got := recorder.Header().Get("Allow"); got != http.MethodPost {
			t.Fatalf("unexpected Allow header %q", got)
		}
	})
}

func TestPlanHandler_Show(t *testing.T) {
	t.Parallel()

	t.Run("lists participants with their dates", func(t *testing.T) {
		t.Parallel()
		webID := uuid.MustParse("01900000-0000-7000-8000-000000000001")
		plans := &fakePlanService{view: application.PlanView{
			Plan: model.Plan{Name: "Trip", URLID: "abcd1234"},
			Users: []application.UserView{
				{WebID: webID, Name: "Ana", Dates: []model.Date{model.NewDate(2024, 5, 1)}},
				{WebID: uuid.New(), Name: "Bo"},
			},
		}}
		router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodGet, "/plan/abcd1234", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		var resp struct {
			Plan  planDTO `json:"plan"`
			Users []struct {
				WebID string   `json:"web_id"`
				Name  string   `json:"name"`
				Dates []string `json:"dates"`
			} `json:"users"`
		}
		decodeBody(t, recorder, &resp)
		if resp.Plan.URLID != "abcd1234" || len(resp.Users) != 2 {
			t.Fatalf("unexpected response %+v", resp)
		}
		if resp.Users[0].WebID != webID.String() || len(resp.Users[0].Dates) != 1 || resp.Users[0].Dates[0] != "2024-05-01" {
			t.Fatalf("unexpected first user %+v", resp.Users[0])
		}
		if resp.Users[1].Dates == nil {
			t.Fatalf("expected empty date list, got null")
		}
	})

	t.Run("missing plan is 404", func(t *testing.T) {
		t.Parallel()
		plans := &fakePlanService{err: application.ErrNotFound}
		router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodGet, "/plan/missing0", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
		var resp errorResponse
		decodeBody(t, recorder, &resp)
		if resp.Message != "指定されたリソースが見つかりません。" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})

	t.Run("unknown sub path is 404", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodGet, "/plan/abcd1234/other", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestPlanHandler_Toggle(t *testing.T) {
	t.Parallel()

	t.Run("passes slug, user and date to the service", func(t *testing.T) {
		t.Parallel()
		availability := &fakeAvailabilityService{marked: true}
		router := newTestRouter(&fakePlanService{}, availability, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan/abcd1234",
			`{"user":"01900000-0000-7000-8000-000000000001","date":"2024-05-01"}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		got := availability.toggleInput
		if got.PlanURLID != "abcd1234" || got.UserWebID.String() != "01900000-0000-7000-8000-000000000001" {
			t.Fatalf("unexpected toggle input %+v", got)
		}
		if got.Date != model.NewDate(2024, 5, 1) {
			t.Fatalf("unexpected date %v", got.Date)
		}

		var resp struct {
			Date   string `json:"date"`
			Marked bool   `json:"marked"`
		}
		decodeBody(t, recorder, &resp)
		if resp.Date != "2024-05-01" || !resp.Marked {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("malformed date is a bad request", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan/abcd1234",
			`{"user":"01900000-0000-7000-8000-000000000001","date":"05/01/2024"}`)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("user from another plan is 404", func(t *testing.T) {
		t.Parallel()
		availability := &fakeAvailabilityService{err: application.ErrNotFound}
		router := newTestRouter(&fakePlanService{}, availability, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/plan/abcd1234",
			`{"user":"01900000-0000-7000-8000-000000000001","date":"2024-05-01"}`)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestPlanHandler_MarkDates(t *testing.T) {
	t.Parallel()

	availability := &fakeAvailabilityService{dates: []model.Date{model.NewDate(2024, 5, 1), model.NewDate(2024, 5, 3)}}
	router := newTestRouter(&fakePlanService{}, availability, &fakeUserService{})

	recorder := serve(t, router, http.MethodPost, "/plan/abcd1234/dates",
		`{"user":"01900000-0000-7000-8000-000000000001","dates":["2024-05-03","2024-05-01"]}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(availability.markInput.Dates) != 2 || availability.markInput.PlanURLID != "abcd1234" {
		t.Fatalf("unexpected input %+v", availability.markInput)
	}

	var resp struct {
		Dates []string `json:"dates"`
	}
	decodeBody(t, recorder, &resp)
	if strings.Join(resp.Dates, ",") != "2024-05-01,2024-05-03" {
		t.Fatalf("unexpected dates %v", resp.Dates)
	}
}

func TestPlanHandler_Delete(t *testing.T) {
	t.Parallel()

	plans := &fakePlanService{}
	router := newTestRouter(plans, &fakeAvailabilityService{}, &fakeUserService{})

	recorder := serve(t, router, http.MethodDelete, "/plan/abcd1234", "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
	if plans.deleted != "abcd1234" {
		t.Fatalf("expected abcd1234 to be deleted, got %q", plans.deleted)
	}
	if recorder.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", recorder.Body.String())
	}
}

func TestUserHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates the participant on the plan", func(t *testing.T) {
		t.Parallel()
		webID := uuid.MustParse("01900000-0000-7000-8000-000000000009")
		users := &fakeUserService{user: model.User{ID: 3, PlanID: 1, Name: "Ana", WebID: webID}}
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, users)

		recorder := serve(t, router, http.MethodPost, "/user/abcd1234", `{"username":"Ana"}`)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", recorder.Code)
		}
		if users.input.PlanURLID != "abcd1234" || users.input.Name != "Ana" {
			t.Fatalf("unexpected input %+v", users.input)
		}

		var resp struct {
			User map[string]any `json:"user"`
		}
		decodeBody(t, recorder, &resp)
		if resp.User["web_id"] != webID.String() || resp.User["name"] != "Ana" {
			t.Fatalf("unexpected user %+v", resp.User)
		}
		if _, ok := resp.User["id"]; ok {
			t.Fatalf("internal id leaked: %+v", resp.User)
		}
	})

	t.Run("too long username is 422", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserService{err: &application.ValidationError{FieldErrors: map[string]string{
			"username": "username must be at most 128 characters",
		}}}
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, users)

		recorder := serve(t, router, http.MethodPost, "/user/abcd1234", `{"username":"x"}`)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
	})

	t.Run("nested path is 404", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&fakePlanService{}, &fakeAvailabilityService{}, &fakeUserService{})

		recorder := serve(t, router, http.MethodPost, "/user/abcd1234/extra", `{"username":"Ana"}`)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}
