package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/adapters/archive"
	"go.trai.ch/venvup/internal/core/domain"
)

func TestSource_ListVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"oll_test_top_level-2.0.0-py3-none-any.whl",
		"oll_test_top_level-2.0.1-py3-none-any.whl",
		"oll-test-top-level-2.0.1.tar.gz",
		"oll_dependency1-1.0-py3-none-any.whl",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "oll_test_top_level-9.9-py3-none-any.whl"), 0o755))

	set, err := archive.NewSource(dir).ListVersions(context.Background(), "oll-test-top-level")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2.0.0", "2.0.1"}, domain.Strings(set.Versions()))

	set, err = archive.NewSource(dir).ListVersions(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestSource_MissingDirectory(t *testing.T) {
	source := archive.NewSource(filepath.Join(t.TempDir(), "missing"))

	_, err := source.ListVersions(context.Background(), "pkg")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrArchiveNotFound.Error())

	require.Error(t, source.Ping(context.Background()))
	require.NoError(t, archive.NewSource(t.TempDir()).Ping(context.Background()))
}
