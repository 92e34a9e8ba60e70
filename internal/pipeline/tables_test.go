package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/log2csv/internal/model"
)

func participants(t *testing.T) model.Schema {
	t.Helper()
	s, ok := model.SchemaFor(model.KindParticipant)
	require.True(t, ok)
	return s
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp-*"))
	require.NoError(t, err)
	return matches
}

func TestTable_CommitWithRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_participants.csv")

	tbl, err := OpenTable(participants(t), path, false)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "final path must not exist before commit")

	require.NoError(t, tbl.Write([]string{"1", "34", "F"}))
	require.NoError(t, tbl.Write([]string{"2", "8", "M"}))
	assert.Equal(t, 2, tbl.Rows())

	written, err := tbl.Commit()
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local_id,part_age,part_gender\n1,34,F\n2,8,M\n", string(data))
	assert.Empty(t, tempFiles(t, dir))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestTable_CommitEmptyRemovesStaleOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_participants.csv")
	require.NoError(t, os.WriteFile(path, []byte("old,data\n"), 0644))

	tbl, err := OpenTable(participants(t), path, false)
	require.NoError(t, err)

	written, err := tbl.Commit()
	require.NoError(t, err)
	assert.False(t, written)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty table must leave no file behind")
	assert.Empty(t, tempFiles(t, dir))
}

func TestTable_CRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_participants.csv")

	tbl, err := OpenTable(participants(t), path, true)
	require.NoError(t, err)
	require.NoError(t, tbl.Write([]string{"1", "34", "F"}))
	_, err = tbl.Commit()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local_id,part_age,part_gender\r\n1,34,F\r\n", string(data))
}

func TestTable_DiscardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_participants.csv")

	tbl, err := OpenTable(participants(t), path, false)
	require.NoError(t, err)
	require.NoError(t, tbl.Write([]string{"1", "34", "F"}))

	tbl.Discard()
	tbl.Discard()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, tempFiles(t, dir))

	assert.Error(t, tbl.Write([]string{"2", "3", "M"}))
	_, err = tbl.Commit()
	assert.Error(t, err)
}

func TestTable_QuotesEmbeddedComma(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_participants.csv")

	tbl, err := OpenTable(participants(t), path, false)
	require.NoError(t, err)
	require.NoError(t, tbl.Write([]string{"1", "3,4", "F"}))
	_, err = tbl.Commit()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `1,"3,4",F`)
}

func TestOpenTable_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run_participants.csv")
	_, err := OpenTable(participants(t), path, false)
	assert.Error(t, err)
}
