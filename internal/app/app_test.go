package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mud-engine/internal/config"
	"github.com/jwebster45206/mud-engine/internal/logger"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testDataDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "items.yaml"), `
items:
  - id: torch
    short_desc: a torch
    properties:
      type: misc
      weight: 1
`)
	writeFile(t, filepath.Join(dir, "worlds", "default.json"), `{
  "rooms": [
    {"id": "hall", "long_desc": "A stone hall.", "exits": {"north": "yard"}, "items": ["torch"]},
    {"id": "yard", "long_desc": "An open yard.", "exits": {"south": "hall"}}
  ]
}`)
	return dir
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:        dir,
		StorageBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(dir, "mud.db"),
		StartWorld:     "default",
		StartRoom:      "hall",
		Enhancer:       config.EnhancerNone,
	}
}

func TestNew_PlaysAndPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(testDataDir(t))

	a, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, a.Cache)

	_, err = a.Engine.CreateCharacter(ctx, "Aria")
	require.NoError(t, err)

	quit, out := a.Engine.Execute(ctx, "aria", "take torch")
	assert.False(t, quit)
	assert.Equal(t, "You take a torch.", out)
	a.Close()

	// Reopening seeds again and keeps the character.
	a, err = New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	c, err := a.Engine.GetCharacter(ctx, "aria")
	require.NoError(t, err)
	assert.Equal(t, []string{"torch"}, c.Inventory)
}

func TestNew_MissingStartRoom(t *testing.T) {
	cfg := testConfig(testDataDir(t))
	cfg.StartRoom = "cellar"

	_, err := New(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `start room "cellar"`)
}

func TestNew_InvalidCatalog(t *testing.T) {
	dir := testDataDir(t)
	writeFile(t, filepath.Join(dir, "mobs.json"), `{"mobs": [{"id": "wolf"}]}`)

	_, err := New(context.Background(), testConfig(dir), logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed catalogs")
}
