package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/forgeboard/internal/db"
)

// writeTestConfig points the CLI at a fresh database under t.TempDir and
// returns the config path together with the database path.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "forgeboard.db")
	configPath := filepath.Join(dir, "forgeboard.yaml")

	content := fmt.Sprintf("database:\n  path: %q\nauth:\n  secret_key: cli-test-secret\nlog_level: error\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath, dbPath
}

func openTestRepositories(t *testing.T, dbPath string) *db.Repositories {
	t.Helper()
	database, err := db.OpenSQLite(dbPath)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db.NewRepositories(database, nil)
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
