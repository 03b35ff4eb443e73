package application

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every module ships migrations numbered from 00001, so two modules
// sharing a version table would have the second module's files
// silently skipped. Each registered source must track versions in its
// own table.
func TestMigrationManager_VersionTablePerModule(t *testing.T) {
	var coreFS, catalogFS embed.FS

	m := NewMigrationManager(nil).(*migrationManager)
	m.RegisterSchema("core", &coreFS, "schema")
	m.RegisterSchema("catalog", &catalogFS, "schema")

	require.Len(t, m.sources, 2)
	assert.Equal(t, "goose_db_version_core", versionTable(m.sources[0].module))
	assert.Equal(t, "goose_db_version_catalog", versionTable(m.sources[1].module))
	assert.NotEqual(t, versionTable(m.sources[0].module), versionTable(m.sources[1].module))
}
