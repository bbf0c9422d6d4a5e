package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_ImageURL(t *testing.T) {
	assert.Equal(t, "/static/block_ace/graph.svg", NewLocator("").ImageURL("graph"))
	assert.Equal(t, "https://cdn.example.com/static/block_ace/graph.svg", NewLocator("https://cdn.example.com/").ImageURL("graph"))
}

func TestLocator_Exists(t *testing.T) {
	l := NewLocator("")
	assert.True(t, l.Exists("graph"))
	assert.False(t, l.Exists("missing"))
}

func TestFS_ServesGraph(t *testing.T) {
	data, err := fs.ReadFile(FS(), "graph.svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}
