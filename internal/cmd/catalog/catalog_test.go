package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLawsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"民法/1.民法典.md":      "第一条 甲。\n",
		"民法/司法解释/解释一.md":   "第一条 乙。\n",
		"刑法/刑法.docx":       "",
		"刑法/说明.xlsx":       "",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunCategories(t *testing.T) {
	var buf bytes.Buffer
	opts := &catalogOptions{lawsDir: testLawsDir(t), output: "plain", noColor: true, out: &buf}

	require.NoError(t, runCategories(context.Background(), opts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "刑法\t") || strings.HasPrefix(lines[0], "民法\t"))
}

func TestRunSubCategories(t *testing.T) {
	var buf bytes.Buffer
	opts := &catalogOptions{lawsDir: testLawsDir(t), output: "json", noColor: true, out: &buf}

	require.NoError(t, runSubCategories(context.Background(), opts, "民法"))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "民法/司法解释", rows[0]["id"])
}

func TestRunLaws(t *testing.T) {
	dir := testLawsDir(t)

	var buf bytes.Buffer
	opts := &catalogOptions{lawsDir: dir, output: "json", noColor: true, out: &buf}
	require.NoError(t, runLaws(context.Background(), opts, "刑法", false))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "刑法/刑法.docx", rows[0]["path"])

	buf.Reset()
	require.NoError(t, runLaws(context.Background(), opts, "民法", true))
	rows = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "民法/1.民法典.md", rows[0]["path"])
	assert.Equal(t, "民法/司法解释/解释一.md", rows[1]["path"])
}

func TestRunLaws_UnknownCategory(t *testing.T) {
	opts := &catalogOptions{lawsDir: testLawsDir(t), noColor: true, out: &bytes.Buffer{}}

	err := runLaws(context.Background(), opts, "商法", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunLaws_MissingLawsDir(t *testing.T) {
	opts := &catalogOptions{lawsDir: filepath.Join(t.TempDir(), "nope"), noColor: true, out: &bytes.Buffer{}}

	err := runLaws(context.Background(), opts, "民法", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "laws directory")
}

func TestRunSync_ThenQueryDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "lawref.db")

	var buf bytes.Buffer
	opts := &catalogOptions{lawsDir: testLawsDir(t), db: dbPath, noColor: true, out: &buf}
	require.NoError(t, runSync(ctx, opts))
	assert.Contains(t, buf.String(), "synced 3 categories and 3 laws")

	buf.Reset()
	opts.output = "json"
	require.NoError(t, runLaws(ctx, opts, "民法", true))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "民法/司法解释", rows[1]["category"])
}

func TestRunSync_RequiresDB(t *testing.T) {
	err := runSync(context.Background(), &catalogOptions{lawsDir: testLawsDir(t), out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
}

func TestNewCmdCatalog_Subcommands(t *testing.T) {
	cmd := NewCmdCatalog()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"categories", "subcategories", "laws", "sync"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("laws-dir"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}
