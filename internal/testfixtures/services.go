package testfixtures

import (
	"log/slog"
	"testing"
	"time"

	"github.com/example/dateplanner/internal/application"
	"github.com/example/dateplanner/internal/model"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewTickingClock(referenceTime, time.Millisecond),
		IDGenerator: NewIDGenerator(),
		Logger:      DiscardLogger(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewTickingClock(referenceTime, time.Millisecond)
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator()
	}
	if factory.Logger == nil {
		factory.Logger = DiscardLogger()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services bundles the application services sharing one manager.
type Services struct {
	Manager      *model.Manager
	Plans        *application.PlanService
	Users        *application.UserService
	Availability *application.AvailabilityService
}

// NewManager returns a manager over a fresh store that takes its clock and
// web ids from the factory.
func (f *ServiceFactory) NewManager(tb testing.TB) *model.Manager {
	tb.Helper()
	return model.NewManager(NewStore(tb),
		model.WithClock(f.Clock.NowFunc()),
		model.WithIDSource(f.IDGenerator.NextUUID),
	)
}

// Build opens a fresh store and wires every service to it. Plan slugs come
// from the factory's IDGenerator.
func (f *ServiceFactory) Build(tb testing.TB) Services {
	tb.Helper()
	mm := f.NewManager(tb)
	return Services{
		Manager:      mm,
		Plans:        application.NewPlanServiceWithLogger(mm, f.IDGenerator.NextSlug, f.Logger),
		Users:        application.NewUserServiceWithLogger(mm, f.Logger),
		Availability: application.NewAvailabilityServiceWithLogger(mm, f.Logger),
	}
}
