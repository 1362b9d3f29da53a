//go:build unix

package fsop

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"
)

type osHandle struct {
	f *os.File
}

// OSBackend is a Backend rooted at a real directory on disk, backed
// directly by golang.org/x/sys/unix syscalls (rather than the os
// package's own wrappers) for every operation that has a direct unix
// equivalent.
//
// All paths passed to OSBackend methods are resolved relative to Root;
// OSBackend does not itself guard against path traversal (../) escaping
// Root, matching the C original's syncop layer, which trusts its caller
// to have already resolved symlinks and path components through the
// translator stack.
type OSBackend struct {
	Root string
}

// NewOSBackend returns an OSBackend rooted at root.
func NewOSBackend(root string) *OSBackend {
	return &OSBackend{Root: root}
}

func (b *OSBackend) resolve(path string) string {
	return filepath.Join(b.Root, path)
}

func toStat(st *unix.Stat_t) Stat {
	return Stat{
		Ino:   st.Ino,
		Mode:  uint32(st.Mode),
		Size:  st.Size,
		UID:   int(st.Uid),
		GID:   int(st.Gid),
		Nlink: uint32(st.Nlink),
		Atime: time.Unix(st.Atim.Sec, st.Atim.Nsec),
		Mtime: time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		Ctime: time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
	}
}

func (b *OSBackend) Lookup(path string, complete func(Stat, error)) {
	var st unix.Stat_t
	if err := unix.Stat(b.resolve(path), &st); err != nil {
		complete(Stat{}, err)
		return
	}
	complete(toStat(&st), nil)
}

func (b *OSBackend) Stat(path string, complete func(Stat, error)) {
	b.Lookup(path, complete)
}

func (b *OSBackend) Open(path string, flags int, complete func(Handle, error)) {
	fd, err := unix.Open(b.resolve(path), flags, 0)
	if err != nil {
		complete(nil, err)
		return
	}
	complete(&osHandle{f: os.NewFile(uintptr(fd), path)}, nil)
}

func (b *OSBackend) Opendir(path string, complete func(Handle, error)) {
	resolved := b.resolve(path)
	fd, err := unix.Open(resolved, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		complete(nil, err)
		return
	}
	// Readdir and Readdirp join this name against each entry to stat it,
	// so it must be the resolved on-disk path, not the caller's
	// Root-relative one.
	complete(&osHandle{f: os.NewFile(uintptr(fd), resolved)}, nil)
}

func (b *OSBackend) Create(path string, flags int, mode uint32, complete func(Handle, error)) {
	fd, err := unix.Open(b.resolve(path), flags|unix.O_CREAT, mode)
	if err != nil {
		complete(nil, err)
		return
	}
	complete(&osHandle{f: os.NewFile(uintptr(fd), path)}, nil)
}

func (b *OSBackend) Read(h Handle, size int, offset int64, complete func([]byte, error)) {
	buf := make([]byte, size)
	n, err := unix.Pread(int(h.(*osHandle).f.Fd()), buf, offset)
	if err != nil {
		complete(nil, err)
		return
	}
	complete(buf[:n], nil)
}

func (b *OSBackend) Write(h Handle, data []byte, offset int64, complete func(int, error)) {
	n, err := unix.Pwrite(int(h.(*osHandle).f.Fd()), data, offset)
	complete(n, err)
}

func (b *OSBackend) Unlink(path string, complete func(error)) {
	complete(unix.Unlink(b.resolve(path)))
}

func (b *OSBackend) Mkdir(path string, mode uint32, complete func(error)) {
	complete(unix.Mkdir(b.resolve(path), mode))
}

func (b *OSBackend) Rmdir(path string, complete func(error)) {
	complete(unix.Rmdir(b.resolve(path)))
}

func (b *OSBackend) Rename(oldpath, newpath string, complete func(error)) {
	complete(unix.Rename(b.resolve(oldpath), b.resolve(newpath)))
}

func (b *OSBackend) Link(oldpath, newpath string, complete func(error)) {
	complete(unix.Link(b.resolve(oldpath), b.resolve(newpath)))
}

func (b *OSBackend) Symlink(target, linkpath string, complete func(error)) {
	complete(unix.Symlink(target, b.resolve(linkpath)))
}

func (b *OSBackend) Readlink(path string, complete func(string, error)) {
	buf := make([]byte, unix.PathMax)
	n, err := unix.Readlink(b.resolve(path), buf)
	if err != nil {
		complete("", err)
		return
	}
	complete(string(buf[:n]), nil)
}

func (b *OSBackend) GetXattr(path, name string, complete func([]byte, error)) {
	size, err := unix.Getxattr(b.resolve(path), name, nil)
	if err != nil {
		complete(nil, err)
		return
	}
	buf := make([]byte, size)
	if size > 0 {
		if _, err := unix.Getxattr(b.resolve(path), name, buf); err != nil {
			complete(nil, err)
			return
		}
	}
	complete(buf, nil)
}

func (b *OSBackend) SetXattr(path, name string, value []byte, flags int, complete func(error)) {
	complete(unix.Setxattr(b.resolve(path), name, value, flags))
}

func (b *OSBackend) RemoveXattr(path, name string, complete func(error)) {
	complete(unix.Removexattr(b.resolve(path), name))
}

func (b *OSBackend) ListXattr(path string, complete func([]string, error)) {
	size, err := unix.Listxattr(b.resolve(path), nil)
	if err != nil {
		complete(nil, err)
		return
	}
	buf := make([]byte, size)
	if size > 0 {
		if _, err := unix.Listxattr(b.resolve(path), buf); err != nil {
			complete(nil, err)
			return
		}
	}
	var names []string
	start := 0
	for i, c := range buf {
		if c == 0 {
			if i > start {
				names = append(names, string(buf[start:i]))
			}
			start = i + 1
		}
	}
	complete(names, nil)
}

func (b *OSBackend) Fstat(h Handle, complete func(Stat, error)) {
	var st unix.Stat_t
	if err := unix.Fstat(int(h.(*osHandle).f.Fd()), &st); err != nil {
		complete(Stat{}, err)
		return
	}
	complete(toStat(&st), nil)
}

func (b *OSBackend) Statfs(path string, complete func(Statvfs, error)) {
	var st unix.Statfs_t
	if err := unix.Statfs(b.resolve(path), &st); err != nil {
		complete(Statvfs{}, err)
		return
	}
	complete(Statvfs{
		BlockSize:  uint64(st.Bsize),
		Blocks:     st.Blocks,
		BlocksFree: st.Bfree,
		Files:      st.Files,
		FilesFree:  st.Ffree,
	}, nil)
}

func (b *OSBackend) Fsync(h Handle, datasync bool, complete func(error)) {
	fd := int(h.(*osHandle).f.Fd())
	if datasync {
		complete(unix.Fdatasync(fd))
		return
	}
	complete(unix.Fsync(fd))
}

func (b *OSBackend) FsyncDir(h Handle, datasync bool, complete func(error)) {
	b.Fsync(h, datasync, complete)
}

func (b *OSBackend) Flush(h Handle, complete func(error)) {
	complete(h.(*osHandle).f.Close())
}

func (b *OSBackend) Truncate(path string, size int64, complete func(error)) {
	complete(unix.Truncate(b.resolve(path), size))
}

func (b *OSBackend) Ftruncate(h Handle, size int64, complete func(error)) {
	complete(unix.Ftruncate(int(h.(*osHandle).f.Fd()), size))
}

func (b *OSBackend) Access(path string, mode int, complete func(error)) {
	complete(unix.Access(b.resolve(path), uint32(mode)))
}

func (b *OSBackend) Readdir(h Handle, complete func([]Dirent, error)) {
	names, err := h.(*osHandle).f.Readdirnames(-1)
	if err != nil {
		complete(nil, err)
		return
	}
	sort.Strings(names)
	entries := make([]Dirent, 0, len(names))
	for _, name := range names {
		var st unix.Stat_t
		if err := unix.Lstat(filepath.Join(h.(*osHandle).f.Name(), name), &st); err != nil {
			continue
		}
		entries = append(entries, Dirent{Name: name, Ino: st.Ino})
	}
	complete(entries, nil)
}

func (b *OSBackend) Readdirp(h Handle, complete func([]DirentPlus, error)) {
	names, err := h.(*osHandle).f.Readdirnames(-1)
	if err != nil {
		complete(nil, err)
		return
	}
	sort.Strings(names)
	entries := make([]DirentPlus, 0, len(names))
	for _, name := range names {
		var st unix.Stat_t
		if err := unix.Lstat(filepath.Join(h.(*osHandle).f.Name(), name), &st); err != nil {
			continue
		}
		entries = append(entries, DirentPlus{Dirent: Dirent{Name: name, Ino: st.Ino}, Stat: toStat(&st)})
	}
	complete(entries, nil)
}
