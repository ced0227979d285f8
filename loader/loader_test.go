package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.beancount",
		"2024-01-01 open Assets:Cash\ninclude \"accounts.beancount\"\n")

	files, err := New().Load(context.Background(), main)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(files))
	assert.Equal(t, main, files[0].Path)
	assert.Equal(t, 2, len(files[0].Tree.Entries))
}

func TestLoadFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "accounts.beancount", "2024-01-01 open Assets:Cash\n")
	writeFile(t, dir, "journal.beancount", "2024-01-02 * \"x\"\n  Assets:Cash  -1.00 USD\n  Expenses:Misc  1.00 USD\n")
	main := writeFile(t, dir, "main.beancount",
		"include \"accounts.beancount\"\ninclude \"journal.beancount\"\n")

	files, err := New(WithFollowIncludes()).Load(context.Background(), main)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(files))

	// Root first, includes in directive order.
	assert.Equal(t, main, files[0].Path)
	assert.Equal(t, filepath.Join(dir, "accounts.beancount"), files[1].Path)
	assert.Equal(t, filepath.Join(dir, "journal.beancount"), files[2].Path)

	// URIs key the symbol index.
	abs, _ := filepath.Abs(files[1].Path)
	assert.Equal(t, "file://"+abs, files[1].URI)
}

func TestLoadRelativeToIncludingFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	assert.NoError(t, os.Mkdir(sub, 0o755))

	writeFile(t, sub, "inner.beancount", "2024-01-01 open Assets:Cash\n")
	writeFile(t, sub, "outer.beancount", "include \"inner.beancount\"\n")
	main := writeFile(t, dir, "main.beancount", "include \"sub/outer.beancount\"\n")

	files, err := New(WithFollowIncludes()).Load(context.Background(), main)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(files))
	assert.Equal(t, filepath.Join(sub, "inner.beancount"), files[2].Path)
}

func TestLoadDeduplicatesAndBreaksCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.beancount", "2024-01-01 open Assets:Cash\n")
	writeFile(t, dir, "a.beancount", "include \"shared.beancount\"\ninclude \"b.beancount\"\n")
	writeFile(t, dir, "b.beancount", "include \"shared.beancount\"\ninclude \"a.beancount\"\n")
	main := writeFile(t, dir, "main.beancount", "include \"a.beancount\"\n")

	files, err := New(WithFollowIncludes()).Load(context.Background(), main)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(files)) // main, a, shared, b
}

func TestLoadMissingInclude(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.beancount", "include \"nope.beancount\"\n")

	_, err := New(WithFollowIncludes()).Load(context.Background(), main)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "main.beancount")
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.beancount"))
	assert.Error(t, err)
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.beancount", "2024-01-01 open Assets:Cash\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, main)
	assert.IsError(t, err, context.Canceled)
}
