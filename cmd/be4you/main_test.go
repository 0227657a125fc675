package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"be4you/internal/modules/stubapi"
	"be4you/internal/pkg/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir, _ := setupEnvWithStub(t)
	return dir
}

func setupEnvWithStub(t *testing.T) (string, *stubapi.Server) {
	t.Helper()
	stub := stubapi.New(stubapi.Options{
		SessionTTL: time.Minute,
		BcryptCost: bcrypt.MinCost,
		Logger:     log.Discard(),
		Registry:   prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("API_URL", srv.URL)
	t.Setenv("AUTH_STORE_BACKEND", "file")
	t.Setenv("AUTH_STORE_DIR", dir)
	t.Setenv("NATS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir, stub
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRegisterWhoamiLogout(t *testing.T) {
	dir := setupEnv(t)

	res := runCLI(t, "register",
		"-first-name", "Ada", "-last-name", "Lovelace",
		"-email", "ada@example.com", "-password", "secret1", "-confirm-password", "secret1")
	require.Equal(t, exitOK, res.code, res.stderr)

	var env struct {
		IsSuccess bool `json:"isSuccess"`
		Data      struct {
			Token string `json:"token"`
			Email string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &env))
	assert.True(t, env.IsSuccess)
	assert.NotEmpty(t, env.Data.Token)
	assert.FileExists(t, filepath.Join(dir, "auth_data.json"))

	res = runCLI(t, "whoami")
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, `"email": "ada@example.com"`)

	res = runCLI(t, "logout")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stderr, "Signed out.")
	assert.NoFileExists(t, filepath.Join(dir, "auth_data.json"))

	res = runCLI(t, "whoami")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Not signed in.")
}

func TestActivitiesCreateAndList(t *testing.T) {
	dir := setupEnv(t)

	res := runCLI(t, "register",
		"-first-name", "Grace", "-last-name", "Hopper",
		"-email", "grace@example.com", "-password", "secret1", "-confirm-password", "secret1")
	require.Equal(t, exitOK, res.code, res.stderr)

	payload := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{
		"activity": {"name": "Beach cleanup", "activityTime": "2026-05-01T10:00:00Z", "location": "Kadikoy"},
		"activityItems": [{"name": "Bags", "unit": "Adet", "itemCount": 20}]
	}`), 0o600))

	res = runCLI(t, "activities", "create", "-file", payload)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Beach cleanup")

	res = runCLI(t, "activities", "list")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Beach cleanup")

	res = runCLI(t, "activities", "get", "-id", "")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stdout, `"isSuccess": false`)
}

func TestLoginWrongPassword(t *testing.T) {
	setupEnv(t)

	res := runCLI(t, "login", "-email", "nobody@example.com", "-password", "secret1")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stdout, `"isSuccess": false`)
}

func TestMissingAPIURL(t *testing.T) {
	setupEnv(t)
	t.Setenv("API_URL", "")

	res := runCLI(t, "whoami")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "API_URL is not defined")
}

func TestUsageErrors(t *testing.T) {
	setupEnv(t)

	assert.Equal(t, exitUsage, runCLI(t).code)
	assert.Equal(t, exitUsage, runCLI(t, "dance").code)
	assert.Equal(t, exitUsage, runCLI(t, "activities").code)
	assert.Equal(t, exitUsage, runCLI(t, "login", "-unknown-flag").code)
	assert.Equal(t, exitFailure, runCLI(t, "activities", "create").code)
}

func TestExpiredSessionPrintsLoginHint(t *testing.T) {
	dir, stub := setupEnvWithStub(t)
	t.Setenv("NAVIGATION_DELAY", "1h")

	res := runCLI(t, "register",
		"-first-name", "Alan", "-last-name", "Turing",
		"-email", "alan@example.com", "-password", "secret1", "-confirm-password", "secret1")
	require.Equal(t, exitOK, res.code, res.stderr)

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &env))
	stub.Sessions().Delete(context.Background(), "stub-api", env.Data.Token, "test")

	res = runCLI(t, "activities", "list")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "be4you login")
	assert.NoFileExists(t, filepath.Join(dir, "auth_data.json"))
}
