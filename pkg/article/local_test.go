package article

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSource(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	csvDir := filepath.Join(root, "csv")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.MkdirAll(csvDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "a.csv"), []byte(sampleCSV), 0o644))

	src := NewLocalSource(docs)

	body, err := src.Fetch(context.Background(), catalog.Entry{Source: "../csv/a.csv", Row: 2})
	require.NoError(t, err)
	assert.Equal(t, "移住者向けの補助金", body)

	body, err = src.Fetch(context.Background(), catalog.Entry{Source: "../csv/a.csv", Row: 9})
	require.NoError(t, err)
	assert.Equal(t, "", body)

	_, err = src.Fetch(context.Background(), catalog.Entry{Source: "../csv/missing.csv", Row: 1})
	assert.Error(t, err)
}

func TestLocalSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalSource(t.TempDir()).Fetch(ctx, catalog.Entry{Source: "a.csv", Row: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		return e.ID, nil
	})
	body, err := src.Fetch(context.Background(), catalog.Entry{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", body)
}
