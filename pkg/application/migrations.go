package application

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects the embedded migration filesystems modules
// register and applies them with goose.
type MigrationManager interface {
	RegisterSchema(module string, fs *embed.FS, dir string)
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

type schemaSource struct {
	module string
	fs     *embed.FS
	dir    string
}

type migrationManager struct {
	pool    *pgxpool.Pool
	sources []schemaSource
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

func (m *migrationManager) RegisterSchema(module string, fs *embed.FS, dir string) {
	m.sources = append(m.sources, schemaSource{module: module, fs: fs, dir: dir})
}

// versionTable names the goose version table for a module. Modules
// number their migrations independently from 00001, so sharing one
// version table would make goose skip any file whose number a previous
// module already recorded.
func versionTable(module string) string {
	return "goose_db_version_" + module
}

func (m *migrationManager) Up(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	defer m.resetGoose()
	for _, source := range m.sources {
		goose.SetTableName(versionTable(source.module))
		goose.SetBaseFS(source.fs)
		if err := goose.UpContext(ctx, db, source.dir); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrationManager) Down(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	defer m.resetGoose()
	for i := len(m.sources) - 1; i >= 0; i-- {
		source := m.sources[i]
		goose.SetTableName(versionTable(source.module))
		goose.SetBaseFS(source.fs)
		if err := goose.DownContext(ctx, db, source.dir); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrationManager) resetGoose() {
	goose.SetBaseFS(nil)
	goose.SetTableName("goose_db_version")
}
