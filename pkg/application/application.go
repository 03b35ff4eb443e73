package application

import (
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/partsdesk/partsdesk/pkg/eventbus"
)

// Controller is a group of HTTP handlers registered under a common
// prefix on the router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires its services, controllers and migrations into the
// application at startup.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Migrations() MigrationManager

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller

	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Middleware() []mux.MiddlewareFunc
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:           opts.Pool,
		eventPublisher: opts.EventBus,
		logger:         opts.Logger,
		controllers:    make(map[string]Controller),
		services:       make(map[reflect.Type]interface{}),
		migrations:     NewMigrationManager(opts.Pool),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool           *pgxpool.Pool
	eventPublisher eventbus.EventBus
	logger         *logrus.Logger
	services       map[reflect.Type]interface{}
	controllers    map[string]Controller
	controllerKeys []string
	middleware     []mux.MiddlewareFunc
	migrations     MigrationManager
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventPublisher
}

func (a *application) Migrations() MigrationManager {
	return a.migrations
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		a.services[serviceType] = service
	}
}

// Service looks up a registered service by example value. Panics when
// the service was never registered: that is a wiring bug, not a
// runtime condition.
func (a *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, ok := a.services[serviceType]
	if !ok {
		panic("service not found: " + serviceType.String())
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	for _, controller := range controllers {
		key := controller.Key()
		if _, exists := a.controllers[key]; !exists {
			a.controllerKeys = append(a.controllerKeys, key)
		}
		a.controllers[key] = controller
	}
}

func (a *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(a.controllers))
	for _, key := range a.controllerKeys {
		controllers = append(controllers, a.controllers[key])
	}
	return controllers
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}

// Load registers the given modules in order.
func Load(app Application, modules ...Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
