package container

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/http/apiserver"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/test/testutils"
)

const testConfigYAML = `
app:
  environment: test
  log_level: error
server:
  host: 127.0.0.1
  port: 18431
  ops_port: 0
database:
  driver: sqlite
  path: ":memory:"
  seed: true
auth:
  bcrypt_cost: 10
ai:
  primary: mock
features:
  enable_avatar_upload: true
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))
	return path
}

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(New(writeConfig(t)), fx.NopLogger)

	assert.NoError(t, err)
}

func TestModule_ServesSeededData(t *testing.T) {
	// Arrange
	var (
		api *apiserver.Server
		cfg *config.Config
	)
	app := fxtest.New(t, New(writeConfig(t)), fx.NopLogger, fx.Populate(&api, &cfg))
	app.RequireStart()
	defer app.RequireStop()

	// Act
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"patient@ayurwell.com","password":"password"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	// Assert
	var auth inbound.AuthResponse
	testutils.DecodeData(t, rec, http.StatusOK, &auth)
	require.NotNil(t, auth.User.Role)
	assert.Equal(t, user.RolePatient, *auth.User.Role)
	assert.NotEmpty(t, auth.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	rec = httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	var doctors []map[string]interface{}
	testutils.DecodeData(t, rec, http.StatusOK, &doctors)
	assert.Len(t, doctors, 1)

	// no storage provider, so the upload route is not mounted
	assert.False(t, cfg.Features.EnableAvatarUpload)
}
