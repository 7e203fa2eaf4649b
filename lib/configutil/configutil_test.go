package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Url      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lariat.json5"), `{
	// comments are allowed
	url: "https://fms.example.com",
	username: "admin",
}`)

	config, err := ReadConfig[serverConfig](filepath.Join(dir, "lariat.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://fms.example.com", config.Url)
	require.Equal(t, "admin", config.Username)
	require.Empty(t, config.Password)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lariat.json5"), `{
	url: "https://fms.example.com",
	username: "admin",
}`)
	writeFile(t, filepath.Join(dir, "lariat.local.json5"), `{
	username: "dev",
	password: "hunter2",
}`)

	config, err := ReadConfig[serverConfig](filepath.Join(dir, "lariat.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://fms.example.com", config.Url)
	require.Equal(t, "dev", config.Username)
	require.Equal(t, "hunter2", config.Password)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lariat.local.json5"), `{url: "http://localhost"}`)

	config, err := ReadConfig[serverConfig](filepath.Join(dir, "lariat.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost", config.Url)
}

func TestReadConfigNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[serverConfig](filepath.Join(dir, "lariat.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
