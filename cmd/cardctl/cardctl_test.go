package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/octobees/cardshare/internal/auth"
	"github.com/octobees/cardshare/internal/entity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheck_ValidProfile(t *testing.T) {
	data, err := json.Marshal(entity.DefaultContact())
	require.NoError(t, err)
	path := writeFile(t, "contactData.json", string(data))

	out, err := execute(t, "check", path)
	require.NoError(t, err)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	require.NotNil(t, report.Record)
	assert.Equal(t, "Max Mustermann", report.Record.Name)
}

func TestCheck_RejectedProfile(t *testing.T) {
	path := writeFile(t, "contactData.json", `{"name":"A","email":"not-an-email"}`)

	out, err := execute(t, "check", path, "--output", "yaml")
	require.Error(t, err)

	var report checkReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, "rejected", report.Reason)
	assert.Nil(t, report.Record)
}

func TestCheck_Undecodable(t *testing.T) {
	path := writeFile(t, "contactData.json", "{broken")

	_, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undecodable")
}

func TestToken_Viewer(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("STORAGE_DRIVER", "memory")

	out, err := execute(t, "token", "--role", "viewer", "--ttl", "1h")
	require.NoError(t, err)

	var got tokenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, auth.RoleViewer, got.Role)

	claims, err := auth.NewJWTManager("cli-secret", time.Hour).ParseToken(got.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleViewer, claims.Role)
	assert.Equal(t, auth.RoleViewer, claims.Subject)
}

func TestToken_UnknownRole(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := execute(t, "token", "--role", "admin")
	require.ErrorIs(t, err, auth.ErrUnknownRole)
}

func TestVCard_DefaultProfile(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_DIR", t.TempDir())

	out, err := execute(t, "vcard")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCARD\r\n"))
	assert.Contains(t, out, "FN:Max Mustermann\r\n")
}

func TestRoot_RejectsOutputFormat(t *testing.T) {
	_, err := execute(t, "check", "x.json", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestToDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	got, err := toDataURL(png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	_, err = toDataURL([]byte("hello"))
	assert.Error(t, err)
}
