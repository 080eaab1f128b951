package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-backend/internal/auth"
	"tourism-backend/internal/config"
	"tourism-backend/internal/store"
)

func writeConfig(t *testing.T) (string, config.DatabaseConfig) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	yaml := fmt.Sprintf(`database:
  driver: sqlite
  name: relatedctl
  path: %s
auth:
  jwt_secret: cli-secret
`, dir)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path, config.DatabaseConfig{Driver: "sqlite", Name: "relatedctl", Path: dir}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateProbeResolve(t *testing.T) {
	path, dbCfg := writeConfig(t)

	out, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "10 collections ready")

	s, err := store.New(context.Background(), dbCfg)
	require.NoError(t, err)
	_, err = s.DB.Exec(`INSERT INTO destinations (id, name, slug, location) VALUES ('d1', 'Shillong', 'shillong', 'Shillong')`)
	require.NoError(t, err)
	_, err = s.DB.Exec(`INSERT INTO cafes (id, name, slug, location) VALUES ('c1', 'Cafe Shillong', 'cafe-shillong', 'Shillong')`)
	require.NoError(t, err)
	s.Close()

	out, err = run(t, "probe", "cafes", "faqs", "--config", path)
	require.NoError(t, err)
	var caps map[string]map[string]bool
	require.NoError(t, json.Unmarshal([]byte(out), &caps))
	assert.True(t, caps["cafes"]["has_location"])
	assert.False(t, caps["faqs"]["has_location"])

	out, err = run(t, "resolve", "destinations", "shillong", "--config", path)
	require.NoError(t, err)
	var bundle map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &bundle))
	require.Len(t, bundle["cafes"], 1)
	assert.Equal(t, "c1", bundle["cafes"][0]["id"])
	assert.Contains(t, bundle, "rentals")

	_, err = run(t, "resolve", "faqs", "x", "--config", path)
	assert.Error(t, err)

	_, err = run(t, "probe", "users", "--config", path)
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := run(t, "token", "--subject", "ops", "--config", path)
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(strings.TrimSpace(out), "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}
