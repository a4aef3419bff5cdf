package gitx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticIdentity(t *testing.T) {
	sig, err := StaticIdentity{Name: "Test User", Email: "test@example.com"}.Identity(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Test User", sig.Name)
	assert.Equal(t, "test@example.com", sig.Email)
}

func TestStaticIdentityIncomplete(t *testing.T) {
	_, err := StaticIdentity{Name: "Test User"}.Identity(t.Context())
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = StaticIdentity{Email: "test@example.com"}.Identity(t.Context())
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestResolveIdentityPrefersProvider(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.repo.options.Identity = StaticIdentity{Name: "Provider User", Email: "provider@example.com"}

	sig, err := tr.repo.resolveIdentity(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Provider User", sig.Name)
}

func TestXDGIdentityFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir := filepath.Join(configHome, "gitx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "identity"),
		[]byte("Fallback User <fallback@example.com>\n"),
		0o644,
	))

	sig, ok := xdgIdentity()
	require.True(t, ok)
	assert.Equal(t, "Fallback User", sig.Name)
	assert.Equal(t, "fallback@example.com", sig.Email)
}

func TestXDGIdentityFileMalformed(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir := filepath.Join(configHome, "gitx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "identity"),
		[]byte("no email here\n"),
		0o644,
	))

	_, ok := xdgIdentity()
	assert.False(t, ok)
}

func TestXDGIdentityFileAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	_, ok := xdgIdentity()
	assert.False(t, ok)
}

func TestSignatureToObjectDefaultsTimestamp(t *testing.T) {
	sig := Signature{Name: "Test User", Email: "test@example.com"}

	obj := sig.toObject()
	assert.Equal(t, "Test User", obj.Name)
	assert.False(t, obj.When.IsZero(), "zero timestamp defaults to now")

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sig.When = fixed
	assert.Equal(t, fixed, sig.toObject().When)
}
