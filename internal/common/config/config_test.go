package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_A", "va")
	in := []byte("a: ${X_A:da}\nb: ${X_B:db}\nc: ${X_C}")
	out := string(resolveEnv(in))
	assert.Contains(t, out, "a: va")
	assert.Contains(t, out, "b: db")
	assert.True(t, strings.HasSuffix(out, "c: "))
}

func TestLoadConfig_APIServer(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	assert.NoError(t, os.Chdir(tmp))

	t.Setenv("SI_DB_NAME", "inspector.db")
	yaml := `
server:
  port: 8080
  public_base_url: "https://inspect.example.com/"
database:
  type: sqlite
  dbname: ${SI_DB_NAME:./data/default.db}
super_admin:
  username: ${SI_ADMIN:admin}
  password: secret
jwt:
  secret_key: a-very-long-secret-key-used-for-signing-tokens
`
	file := filepath.Join(tmp, "apiserver.yaml")
	assert.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig[APIServerConfig]("apiserver.yaml")
	assert.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://inspect.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, "inspector.db", cfg.Database.DBName)
	assert.Equal(t, "admin", cfg.SuperAdmin.Username)

	// defaults
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, int64(20*1024*1024), cfg.Storage.MaxPhotoSize)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "shopinspector", cfg.Tracing.ServiceName)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "shop"}
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "shop"}
	assert.Equal(t, "u:p@tcp(db:3306)/shop?charset=utf8mb4&parseTime=True&loc=UTC", my.GetDSN())

	lite := DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", lite.GetDSN())

	liteWithQuery := DatabaseConfig{Type: "sqlite", DBName: "file.db?cache=shared"}
	assert.Equal(t, "file.db?cache=shared&_pragma=foreign_keys(1)", liteWithQuery.GetDSN())

	assert.Empty(t, (&DatabaseConfig{Type: "oracle"}).GetDSN())
}
