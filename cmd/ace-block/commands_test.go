package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/security"
	"github.com/AtRiskMedia/ace-block/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestKeygenCmd(t *testing.T) {
	out, err := execute(t, "keygen", "--length", "32")
	require.NoError(t, err)
	assert.Len(t, out, 32)

	_, err = execute(t, "keygen", "--length", "1")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	previous := config.JWTSecret
	config.JWTSecret = "cli-test-secret"
	t.Cleanup(func() { config.JWTSecret = previous })

	out, err := execute(t, "token", "--user", "5")
	require.NoError(t, err)

	claims, err := security.ValidateJWT(out, "cli-test-secret")
	require.NoError(t, err)
	id, err := security.ViewerIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = execute(t, "token")
	assert.Error(t, err)
}

func TestRenderCmdRequiresFlags(t *testing.T) {
	_, err := execute(t, "render", "--block", "b1")
	assert.Error(t, err)
}
