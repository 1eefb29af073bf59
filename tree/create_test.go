package tree

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("file at the focused root", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t, "existing.txt")
		require.NoError(t, p.Focus(ctx, root))
		var changes counter
		p.OnDidChange(changes.inc)

		node, err := p.Create(ctx, nil, "new.txt", File)
		assert.NoError(err)
		assert.Equal("/ws/project/new.txt", node.Path)
		assert.Equal(1, changes.count())

		fi, err := fsys.Stat("/ws/project/new.txt")
		assert.NoError(err)
		assert.False(fi.IsDir())
		assert.Equal(int64(0), fi.Size())
	})

	t.Run("folder inside a parent node", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t, "src/")
		require.NoError(t, p.Focus(ctx, root))
		var changes counter
		p.OnDidChange(changes.inc)

		parent := EntryNode("/ws/project/src")
		node, err := p.Create(ctx, &parent, "pkg", Directory)
		assert.NoError(err)
		assert.Equal("/ws/project/src/pkg", node.Path)
		assert.Equal(1, changes.count())

		isDir, err := afero.IsDir(fsys, "/ws/project/src/pkg")
		assert.NoError(err)
		assert.True(isDir)
	})

	t.Run("file parent resolves to its folder", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t, "src/main.go")
		require.NoError(t, p.Focus(ctx, root))

		parent := EntryNode("/ws/project/src/main.go")
		node, err := p.Create(ctx, &parent, "util.go", File)
		assert.NoError(err)
		assert.Equal("/ws/project/src/util.go", node.Path)
		exists, _ := afero.Exists(fsys, "/ws/project/src/util.go")
		assert.True(exists)
	})

	t.Run("nested name creates intermediate folders", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t)
		require.NoError(t, p.Focus(ctx, root))

		_, err := p.Create(ctx, nil, "a/b/c.txt", File)
		assert.NoError(err)
		isDir, _ := afero.IsDir(fsys, "/ws/project/a/b")
		assert.True(isDir)
	})

	t.Run("existing entry is never overwritten", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t, "keep.txt", "dir/")
		require.NoError(t, p.Focus(ctx, root))
		var changes counter
		p.OnDidChange(changes.inc)

		_, err := p.Create(ctx, nil, "keep.txt", File)
		assert.ErrorIs(err, ErrExists)
		var exists *ExistsError
		if assert.ErrorAs(err, &exists) {
			assert.Equal("/ws/project/keep.txt", exists.Path)
		}
		content, err := afero.ReadFile(fsys, "/ws/project/keep.txt")
		assert.NoError(err)
		assert.Equal("x", string(content))

		_, err = p.Create(ctx, nil, "dir", File)
		assert.ErrorIs(err, ErrExists)
		_, err = p.Create(ctx, nil, "keep.txt", Directory)
		assert.ErrorIs(err, ErrExists)
		assert.Equal(0, changes.count())
	})

	t.Run("no focus", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t)
		_, err := p.Create(ctx, nil, "a.txt", File)
		assert.ErrorIs(err, ErrNoFocus)
		exists, _ := afero.Exists(fsys, "/ws/project/a.txt")
		assert.False(exists)
	})

	t.Run("names are used verbatim", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t)
		require.NoError(t, p.Focus(ctx, root))

		node, err := p.Create(ctx, nil, " notes.md", File)
		assert.NoError(err)
		assert.Equal("/ws/project/ notes.md", node.Path)
		exists, _ := afero.Exists(fsys, "/ws/project/ notes.md")
		assert.True(exists)
		exists, _ = afero.Exists(fsys, "/ws/project/notes.md")
		assert.False(exists)

		_, err = p.Create(ctx, nil, "\t\n", Directory)
		assert.ErrorIs(err, ErrEmptyName)
	})

	t.Run("bad names", func(t *testing.T) {
		assert := assert.New(t)
		p, fsys, _, _ := newTestProvider(t, "sub/")
		require.NoError(t, p.Focus(ctx, root))

		_, err := p.Create(ctx, nil, "   ", File)
		assert.ErrorIs(err, ErrEmptyName)
		_, err = p.Create(ctx, nil, "../escape.txt", File)
		assert.ErrorIs(err, ErrInvalidName)
		_, err = p.Create(ctx, nil, "/etc/passwd", File)
		assert.ErrorIs(err, ErrInvalidName)
		_, err = p.Create(ctx, nil, ".", Directory)
		assert.ErrorIs(err, ErrInvalidName)

		outside := EntryNode("/ws")
		_, err = p.Create(ctx, &outside, "x.txt", File)
		assert.ErrorIs(err, ErrInvalidName)

		exists, _ := afero.Exists(fsys, "/ws/escape.txt")
		assert.False(exists)
	})
}
