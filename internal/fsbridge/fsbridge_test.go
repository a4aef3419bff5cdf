package fsbridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBillyFilesystem(t *testing.T) {
	t.Run("unwraps a billy-backed filesystem", func(t *testing.T) {
		memFS := memfs.New()
		wrapped := fsb.NewFS(memFS)

		result, err := ToBillyFilesystem(wrapped)
		require.NoError(t, err)
		assert.Equal(t, memFS, result)
	})

	t.Run("rejects other filesystem implementations", func(t *testing.T) {
		result, err := ToBillyFilesystem(&stubFilesystem{})
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "filesystem must be a billy.FS")
	})
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name      string
		cacheSize int
	}{
		{name: "explicit cache size", cacheSize: 500},
		{name: "zero falls back to default", cacheSize: 0},
		{name: "negative falls back to default", cacheSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFS := memfs.New()
			storage := NewStorage(memFS, tt.cacheSize)

			require.NotNil(t, storage)
			assert.Equal(t, memFS, storage.Filesystem())
		})
	}
}

// stubFilesystem satisfies fs.Filesystem without wrapping billy.
type stubFilesystem struct{}

//nolint:ireturn // mock satisfies an interface-returning contract
func (s *stubFilesystem) Create(string) (fs.File, error) { return nil, nil }

//nolint:ireturn // mock satisfies an interface-returning contract
func (s *stubFilesystem) Open(string) (fs.File, error) { return nil, nil }

//nolint:ireturn // mock satisfies an interface-returning contract
func (s *stubFilesystem) OpenFile(string, int, os.FileMode) (fs.File, error) { return nil, nil }

func (s *stubFilesystem) ReadFile(string) ([]byte, error)             { return nil, nil }
func (s *stubFilesystem) WriteFile(string, []byte, os.FileMode) error { return nil }
func (s *stubFilesystem) Stat(string) (os.FileInfo, error)            { return nil, nil }
func (s *stubFilesystem) Rename(string, string) error                 { return nil }
func (s *stubFilesystem) Remove(string) error                         { return nil }
func (s *stubFilesystem) RemoveAll(string) error                      { return nil }
func (s *stubFilesystem) ReadDir(string) ([]os.FileInfo, error)       { return nil, nil }
func (s *stubFilesystem) MkdirAll(string, os.FileMode) error          { return nil }
func (s *stubFilesystem) Walk(string, filepath.WalkFunc) error        { return nil }
func (s *stubFilesystem) TempDir(string, string) (string, error)      { return "", nil }
func (s *stubFilesystem) GetAbs(string) (string, error)               { return "", nil }
func (s *stubFilesystem) Exists(string) (bool, error)                 { return false, nil }
func (s *stubFilesystem) Symlink(string, string) error                { return nil }
