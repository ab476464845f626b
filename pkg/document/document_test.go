package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rubiojr/koho/pkg/article"
	"github.com/rubiojr/koho/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, title string) catalog.Entry {
	return catalog.Entry{
		ID:           id,
		ArticleTitle: title,
		Municipality: "北町",
		Date:         "2023.04.01",
		IssueTitle:   "広報きたまち4月号",
		Category:     "住宅",
		Source:       "../csv/" + id + ".csv",
		Row:          1,
	}
}

// bodies returns the entry ID prefixed with "body-".
var bodies = article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
	return "body-" + e.ID, nil
})

func TestRender(t *testing.T) {
	got := Render(entry("a", "空き家対策"), "相談窓口を開設します。")
	want := "# 空き家対策\n\n- 自治体: 北町\n- 日付: 2023.04.01\n- 号: 広報きたまち4月号\n- カテゴリ: 住宅\n\n相談窓口を開設します。"
	assert.Equal(t, want, got)
}

func TestAssembleSingleEntry(t *testing.T) {
	a := NewAssembler(bodies, Options{})
	doc, err := a.Assemble(context.Background(), []catalog.Entry{entry("a", "空き家対策")})
	require.NoError(t, err)
	assert.Equal(t, Render(entry("a", "空き家対策"), "body-a"), doc)
}

func TestAssembleJoinsWithBlankLines(t *testing.T) {
	a := NewAssembler(bodies, Options{})
	entries := []catalog.Entry{entry("a", "A"), entry("b", "B")}

	doc, err := a.Assemble(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, Render(entries[0], "body-a")+"\n\n"+Render(entries[1], "body-b"), doc)
}

func TestAssembleTrimsEmptyTrailingBody(t *testing.T) {
	empty := article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		return "", nil
	})
	doc, err := NewAssembler(empty, Options{}).Assemble(context.Background(), []catalog.Entry{entry("a", "A")})
	require.NoError(t, err)
	assert.Equal(t, "# A\n\n- 自治体: 北町\n- 日付: 2023.04.01\n- 号: 広報きたまち4月号\n- カテゴリ: 住宅", doc)
}

func TestAssembleNoEntries(t *testing.T) {
	doc, err := NewAssembler(bodies, Options{}).Assemble(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", doc)
}

func TestAssembleKeepsOrderWhenConcurrent(t *testing.T) {
	var entries []catalog.Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(fmt.Sprintf("e%02d", i), fmt.Sprintf("T%02d", i)))
	}

	// earlier entries finish last
	slow := article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		var n int
		fmt.Sscanf(e.ID, "e%d", &n)
		time.Sleep(time.Duration(12-n) * time.Millisecond)
		return "body-" + e.ID, nil
	})

	sequential, err := NewAssembler(bodies, Options{Concurrency: 1}).Assemble(context.Background(), entries)
	require.NoError(t, err)

	concurrent, err := NewAssembler(slow, Options{Concurrency: 4}).Assemble(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
}

func TestAssembleAbortStopsSequentialFetching(t *testing.T) {
	var calls atomic.Int32
	failing := article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		calls.Add(1)
		if e.ID == "b" {
			return "", fmt.Errorf("%s: %w", e.Source, article.ErrResourceUnavailable)
		}
		return "ok", nil
	})

	entries := []catalog.Entry{entry("a", "A"), entry("b", "B"), entry("c", "C"), entry("d", "D")}
	doc, err := NewAssembler(failing, Options{Concurrency: 1}).Assemble(context.Background(), entries)

	require.Error(t, err)
	assert.True(t, errors.Is(err, article.ErrResourceUnavailable))
	assert.Equal(t, "", doc)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAssemblePlaceholderPolicy(t *testing.T) {
	failing := article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		if e.ID == "b" {
			return "", errors.New("network down")
		}
		return "body-" + e.ID, nil
	})

	entries := []catalog.Entry{entry("a", "A"), entry("b", "B")}
	doc, err := NewAssembler(failing, Options{OnError: Placeholder}).Assemble(context.Background(), entries)

	require.NoError(t, err)
	assert.Equal(t, Render(entries[0], "body-a")+"\n\n"+Render(entries[1], PlaceholderBody), doc)
}

func TestAssemblePlaceholderStillHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := article.SourceFunc(func(ctx context.Context, e catalog.Entry) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	_, err := NewAssembler(cancelling, Options{OnError: Placeholder}).Assemble(ctx, []catalog.Entry{entry("a", "A")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "# 見出し")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# 見出し", string(data))
}
