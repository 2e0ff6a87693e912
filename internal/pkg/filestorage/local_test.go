package filestorage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(filepath.Join(t.TempDir(), "MaayosGrader"), zerolog.Nop())
	require.NoError(t, err)
	return ls
}

func TestNewLocalStorageCreatesBaseDir(t *testing.T) {
	ls := newTestStorage(t)

	info, err := os.Stat(ls.BasePath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	assert.NoError(t, ls.EnsureBaseDir())
}

func TestMakeDirIsExclusive(t *testing.T) {
	ls := newTestStorage(t)

	require.NoError(t, ls.MakeDir("ws"))
	err := ls.MakeDir("ws")
	assert.True(t, errors.Is(err, os.ErrExist), "got %v", err)

	assert.ErrorIs(t, ls.MakeDir(""), ErrUnsafePath)
	assert.ErrorIs(t, ls.MakeDir(".."), ErrUnsafePath)
}

func TestRemoveDir(t *testing.T) {
	ls := newTestStorage(t)
	require.NoError(t, ls.MakeDir("ws"))
	require.NoError(t, ls.WriteJSON("ws", "metadata.json", map[string]string{"id": "ws"}))

	require.NoError(t, ls.RemoveDir("ws"))
	_, err := ls.Stat("ws", "")
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	assert.NoError(t, ls.RemoveDir("ws"))
	assert.ErrorIs(t, ls.RemoveDir(""), ErrUnsafePath)
	assert.ErrorIs(t, ls.RemoveDir(".."), ErrUnsafePath)

	_, err = os.Stat(ls.BasePath())
	assert.NoError(t, err, "base directory must survive")
}

func TestGetFullPathRejectsEscapes(t *testing.T) {
	ls := newTestStorage(t)

	p, err := ls.GetFullPath("ws", "scan_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ls.BasePath(), "ws", "scan_1.jpg"), p)

	_, err = ls.GetFullPath("ws", "../../etc/passwd")
	assert.ErrorIs(t, err, ErrUnsafePath)
	_, err = ls.GetFullPath("..", "")
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestSaveFileWithPath(t *testing.T) {
	ls := newTestStorage(t)
	require.NoError(t, ls.MakeDir("ws"))

	path, err := ls.SaveFileWithPath(strings.NewReader("jpeg-bytes"), "ws", "scan_1.jpg")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = ls.SaveFileWithPath(strings.NewReader("other"), "ws", "scan_1.jpg")
	assert.True(t, errors.Is(err, os.ErrExist), "got %v", err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data), "existing file must not be overwritten")
}

func TestWriteAndReadJSON(t *testing.T) {
	ls := newTestStorage(t)
	require.NoError(t, ls.MakeDir("ws"))

	type record struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	require.NoError(t, ls.WriteJSON("ws", "results.json", []record{{"A", 10}}))
	require.NoError(t, ls.WriteJSON("ws", "results.json", []record{{"B", 42}, {"A", 10}}))

	var got []record
	require.NoError(t, ls.ReadJSON("ws", "results.json", &got))
	assert.Equal(t, []record{{"B", 42}, {"A", 10}}, got)

	entries, err := ls.ListDir("ws")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "results.json", entries[0].Name())
}

func TestReadJSONMissingFile(t *testing.T) {
	ls := newTestStorage(t)
	require.NoError(t, ls.MakeDir("ws"))

	var v []int
	err := ls.ReadJSON("ws", "results.json", &v)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestReadJSONCorruptFile(t *testing.T) {
	ls := newTestStorage(t)
	require.NoError(t, ls.MakeDir("ws"))
	require.NoError(t, os.WriteFile(filepath.Join(ls.BasePath(), "ws", "results.json"), []byte("{broken"), 0o644))

	var v []int
	err := ls.ReadJSON("ws", "results.json", &v)
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
