package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name"`
	Timeout int               `json:"timeout"`
	Tags    map[string]string `json:"tags"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0644)
	require.NoError(t, err)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "config.local.json5"), LocalPath(filepath.Join("a", "config.json5")))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, name, `{
		// comments are allowed
		name: "default",
		timeout: 30,
	}`)
	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
	require.Equal(t, 30, cfg.Timeout)

	writeFile(t, LocalPath(name), `{ name: "local" }`)
	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
	require.Equal(t, 30, cfg.Timeout)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{ name: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{ name: "set" }`)

	cfg, err := ReadWithDefaults(name, testConfig{Name: "unused", Timeout: 15})
	require.NoError(t, err)
	require.Equal(t, "set", cfg.Name)
	require.Equal(t, 15, cfg.Timeout)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
	})
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config.json5"), `{ name: "root" }`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeFile(t, filepath.Join(root, "a", "config.local.json5"), `{ timeout: 5 }`)
	chdir(t, nested)

	// the nearest directory holding either file wins
	cfg, err := ReadRecursively[testConfig]("config.json5")
	require.NoError(t, err)
	require.Equal(t, testConfig{Timeout: 5}, cfg)

	require.NoError(t, os.Remove(filepath.Join(root, "a", "config.local.json5")))
	cfg, err = ReadRecursivelyWithDefaults("config.json5", testConfig{Name: "unused", Timeout: 15})
	require.NoError(t, err)
	require.Equal(t, "root", cfg.Name)
	require.Equal(t, 15, cfg.Timeout)

	_, err = ReadRecursively[testConfig]("missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
