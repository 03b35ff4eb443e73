package catalog

import (
	"embed"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/persistence"
	"github.com/partsdesk/partsdesk/modules/catalog/infrastructure/query"
	"github.com/partsdesk/partsdesk/modules/catalog/presentation/controllers"
	"github.com/partsdesk/partsdesk/modules/catalog/services"
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
	app.Migrations().RegisterSchema("catalog", &migrationFiles, "infrastructure/persistence/schema")

	partRepo := persistence.NewPartRepository()
	imageRepo := persistence.NewImageRepository()
	importRepo := persistence.NewImportRepository()

	app.RegisterServices(
		services.NewPartService(partRepo, app.EventPublisher()),
		services.NewImageService(partRepo, imageRepo, app.EventPublisher()),
		services.NewImportService(partRepo, importRepo, app.EventPublisher()),
		services.NewRollbackService(partRepo, importRepo, app.EventPublisher()),
	)

	// The public search reads through database/sql on top of the same
	// pgx pool the repositories use.
	searchDB := sqlx.NewDb(stdlib.OpenDBFromPool(app.Pool()), "pgx")
	partSearch := query.NewPartSearch(searchDB)

	app.RegisterControllers(
		controllers.NewCatalogController(app, partSearch),
		controllers.NewPartsController(app),
		controllers.NewImportController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
