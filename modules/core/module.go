package core

import (
	"embed"

	"github.com/partsdesk/partsdesk/modules/core/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/core/presentation/controllers"
	"github.com/partsdesk/partsdesk/modules/core/services"
	"github.com/partsdesk/partsdesk/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema("core", &migrationFiles, "infrastructure/persistence/schema")

	userRepo := persistence.NewUserRepository()
	sessionRepo := persistence.NewSessionRepository()
	authLogRepo := persistence.NewAuthenticationLogRepository()

	app.RegisterServices(
		services.NewAuthService(userRepo, sessionRepo, authLogRepo, app.EventPublisher()),
		services.NewUserService(userRepo, sessionRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewUsersController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
