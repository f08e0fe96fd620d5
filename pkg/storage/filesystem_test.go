package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)

	rel, err := store.Save("abc/Student_Report_All_All.csv", []byte("id\n1\n"))
	require.NoError(t, err)
	require.Equal(t, "abc/Student_Report_All_All.csv", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.Equal(t, "id\n1\n", string(data))

	rel, err = store.SaveStream("abc/stream.csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.FileExists(t, store.Path(rel))

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))
	require.NoFileExists(t, store.Path(rel))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../outside.csv", "a/../../outside.csv", "/etc/passwd"} {
		_, err := store.Save(name, []byte("x"))
		require.ErrorIs(t, err, ErrInvalidPath, name)
	}
	_, err = store.Open("../outside.csv")
	require.ErrorIs(t, err, ErrInvalidPath)
	require.Empty(t, store.Path("../outside.csv"))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	oldRel, err := store.Save("old/report.xlsx", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new/report.xlsx", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(oldRel), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old/report.xlsx"}, deleted)
	require.FileExists(t, store.Path("new/report.xlsx"))
}
