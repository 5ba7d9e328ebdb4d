package cansource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestFixtureSourceReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	doc := `[
		{"offset_ms": 0, "type": "can", "name": "A", "value": 1.0},
		{"offset_ms": 5, "type": "can", "name": "B", "value": 2.0}
	]`
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	src, err := Open(path)
	assert.NoError(t, err)
	assert.NoError(t, src.Initialize(context.Background()))

	first, err := src.Poll()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(first))
	assert.Equal(t, "A", first[0].Source.Name)

	time.Sleep(8 * time.Millisecond)

	second, err := src.Poll()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(second))
	assert.Equal(t, "B", second[0].Source.Name)

	assert.NoError(t, src.Stop())
}
