package fsop

import (
	"context"
	"testing"

	"github.com/joeycumines/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFiber(t *testing.T, fn func(tk *fiber.Task)) {
	t.Helper()
	env := fiber.NewEnvironment(fiber.WithProcMin(1), fiber.WithProcMax(1))
	defer env.Close(context.Background())

	_, err := fiber.Go(env, func(tk *fiber.Task) int {
		fn(tk)
		return 0
	})
	require.NoError(t, err)
}

func TestFsop_CreateWriteReadFlush(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()

		h, err := Create(tk, b, "/greeting.txt", 0, 0o644)
		require.NoError(t, err)

		n, err := Write(tk, b, h, []byte("hello fiber"), 0)
		require.NoError(t, err)
		assert.Equal(t, 11, n)

		require.NoError(t, Flush(tk, b, h))

		h2, err := Open(tk, b, "/greeting.txt", 0)
		require.NoError(t, err)

		data, err := Read(tk, b, h2, 64, 0)
		require.NoError(t, err)
		assert.Equal(t, "hello fiber", string(data))

		require.NoError(t, Flush(tk, b, h2))
	})
}

func TestFsop_StatReportsSize(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		h, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)
		_, err = Write(tk, b, h, []byte("abcde"), 0)
		require.NoError(t, err)

		st, err := Stat(tk, b, "/f")
		require.NoError(t, err)
		assert.EqualValues(t, 5, st.Size)

		fst, err := Fstat(tk, b, h)
		require.NoError(t, err)
		assert.Equal(t, st.Ino, fst.Ino)
	})
}

func TestFsop_MkdirRmdirReaddir(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		require.NoError(t, Mkdir(tk, b, "/dir", 0o755))

		_, err := Create(tk, b, "/dir/a", 0, 0o644)
		require.NoError(t, err)
		_, err = Create(tk, b, "/dir/b", 0, 0o644)
		require.NoError(t, err)

		h, err := Opendir(tk, b, "/dir")
		require.NoError(t, err)

		entries, err := Readdir(tk, b, h)
		require.NoError(t, err)
		names := []string{entries[0].Name, entries[1].Name}
		assert.ElementsMatch(t, []string{"a", "b"}, names)

		require.Error(t, Rmdir(tk, b, "/dir"), "rmdir of a non-empty directory must fail")

		require.NoError(t, Unlink(tk, b, "/dir/a"))
		require.NoError(t, Unlink(tk, b, "/dir/b"))
		require.NoError(t, Rmdir(tk, b, "/dir"))
	})
}

func TestFsop_RenameAndLink(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		_, err := Create(tk, b, "/src", 0, 0o644)
		require.NoError(t, err)

		require.NoError(t, Rename(tk, b, "/src", "/dst"))
		_, err = Stat(tk, b, "/src")
		assert.Error(t, err)

		require.NoError(t, Link(tk, b, "/dst", "/dst2"))
		st, err := Stat(tk, b, "/dst2")
		require.NoError(t, err)
		assert.EqualValues(t, 2, st.Nlink)
	})
}

func TestFsop_SymlinkReadlink(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		require.NoError(t, Symlink(tk, b, "/target", "/link"))

		target, err := Readlink(tk, b, "/link")
		require.NoError(t, err)
		assert.Equal(t, "/target", target)
	})
}

func TestFsop_Xattrs(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		_, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)

		require.NoError(t, SetXattr(tk, b, "/f", "user.tag", []byte("v1"), 0))

		v, err := GetXattr(tk, b, "/f", "user.tag")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(v))

		names, err := ListXattr(tk, b, "/f")
		require.NoError(t, err)
		assert.Equal(t, []string{"user.tag"}, names)

		require.NoError(t, RemoveXattr(tk, b, "/f", "user.tag"))
		_, err = GetXattr(tk, b, "/f", "user.tag")
		assert.Error(t, err)
	})
}

func TestFsop_TruncateAndFtruncate(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		h, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)
		_, err = Write(tk, b, h, []byte("0123456789"), 0)
		require.NoError(t, err)

		require.NoError(t, Truncate(tk, b, "/f", 4))
		st, err := Stat(tk, b, "/f")
		require.NoError(t, err)
		assert.EqualValues(t, 4, st.Size)

		require.NoError(t, Ftruncate(tk, b, h, 8))
		st, err = Stat(tk, b, "/f")
		require.NoError(t, err)
		assert.EqualValues(t, 8, st.Size)
	})
}

func TestFsop_AccessAndStatfs(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		_, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)

		require.NoError(t, Access(tk, b, "/f", 0))
		assert.Error(t, Access(tk, b, "/missing", 0))

		vfs, err := Statfs(tk, b, "/")
		require.NoError(t, err)
		assert.NotZero(t, vfs.BlockSize)
	})
}

func TestFsop_FsyncAndFsyncDirAreNoopsOnMemBackend(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		h, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)
		assert.NoError(t, Fsync(tk, b, h, false))

		dh, err := Opendir(tk, b, "/")
		require.NoError(t, err)
		assert.NoError(t, FsyncDir(tk, b, dh, false))
	})
}

func TestFsop_ReaddirpIncludesStat(t *testing.T) {
	withFiber(t, func(tk *fiber.Task) {
		b := NewMemBackend()
		h, err := Create(tk, b, "/f", 0, 0o644)
		require.NoError(t, err)
		_, err = Write(tk, b, h, []byte("xyz"), 0)
		require.NoError(t, err)

		dh, err := Opendir(tk, b, "/")
		require.NoError(t, err)
		entries, err := Readdirp(tk, b, dh)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.EqualValues(t, 3, entries[0].Stat.Size)
	})
}

func TestFsop_OutsideFiber(t *testing.T) {
	b := NewMemBackend()
	_, err := Create(nil, b, "/f", 0, 0o644)
	require.NoError(t, err)
}
