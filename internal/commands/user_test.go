package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUserCreateAndPasswd(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ctl.db"))

	out, err := runCommand(t, "user", "create", "--email", "admin@example.com", "--password", "correcthorse")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user admin@example.com")

	out, err = runCommand(t, "user", "passwd", "--email", "admin@example.com", "--password", "betterhorse1")
	require.NoError(t, err)
	assert.Contains(t, out, "Password updated for admin@example.com")
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ctl.db"))

	_, err := runCommand(t, "user", "create", "--email", "admin@example.com", "--password", "correcthorse")
	require.NoError(t, err)

	_, err = runCommand(t, "user", "create", "--email", "admin@example.com", "--password", "correcthorse")
	require.Error(t, err)
}

func TestUserCreateRequiresFlags(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ctl.db"))

	_, err := runCommand(t, "user", "create", "--email", "admin@example.com")
	require.Error(t, err)
}

func TestUserCreateRejectsShortPassword(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ctl.db"))

	_, err := runCommand(t, "user", "create", "--email", "admin@example.com", "--password", "short")
	require.Error(t, err)
}
