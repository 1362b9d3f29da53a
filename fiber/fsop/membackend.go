package fsop

import (
	"os"
	"sort"
	"sync"
	"time"
)

var (
	errNotExist    = os.ErrNotExist
	errExist       = os.ErrExist
	errIsDir       = os.ErrInvalid
	errNotDir      = os.ErrInvalid
	errDirNotEmpty = os.ErrInvalid
)

type memNode struct {
	stat     Stat
	data     []byte
	target   string // symlink target
	dir      bool
	children map[string]string // name -> full path, directories only
	xattrs   map[string][]byte
}

type memHandle struct {
	path string
}

// MemBackend is an in-memory Backend, useful for tests and demos that do
// not need to touch a real filesystem. All completion callbacks are
// invoked synchronously, from the calling goroutine, before the
// triggering method returns; this is still a valid Backend because
// fiber.SyncOp tolerates synchronous completion.
//
// Safe for concurrent use.
type MemBackend struct {
	mu    sync.Mutex
	nodes map[string]*memNode
	nextI uint64
}

// NewMemBackend returns a MemBackend with an empty root directory.
func NewMemBackend() *MemBackend {
	b := &MemBackend{nodes: make(map[string]*memNode)}
	b.nextI = 1
	now := time.Now()
	b.nodes["/"] = &memNode{
		dir:      true,
		children: make(map[string]string),
		stat:     Stat{Ino: b.allocIno(), Mode: 0o755, Mtime: now, Ctime: now, Atime: now},
	}
	return b
}

func (b *MemBackend) allocIno() uint64 {
	b.nextI++
	return b.nextI
}

func dirOf(path string) string {
	i := len(path) - 1
	for i > 0 && path[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}

func baseOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	return path[i+1:]
}

func (b *MemBackend) Lookup(path string, complete func(Stat, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(Stat{}, errNotExist)
		return
	}
	complete(n.stat, nil)
}

func (b *MemBackend) Open(path string, flags int, complete func(Handle, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok || n.dir {
		complete(nil, errNotExist)
		return
	}
	complete(&memHandle{path: path}, nil)
}

func (b *MemBackend) Opendir(path string, complete func(Handle, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok || !n.dir {
		complete(nil, errNotDir)
		return
	}
	complete(&memHandle{path: path}, nil)
}

func (b *MemBackend) Create(path string, flags int, mode uint32, complete func(Handle, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.nodes[path]; ok {
		complete(nil, errExist)
		return
	}
	parent, ok := b.nodes[dirOf(path)]
	if !ok || !parent.dir {
		complete(nil, errNotExist)
		return
	}
	now := time.Now()
	b.nodes[path] = &memNode{
		stat: Stat{Ino: b.allocIno(), Mode: mode, Nlink: 1, Mtime: now, Ctime: now, Atime: now},
	}
	parent.children[baseOf(path)] = path
	complete(&memHandle{path: path}, nil)
}

func (b *MemBackend) Read(h Handle, size int, offset int64, complete func([]byte, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[h.(*memHandle).path]
	if !ok {
		complete(nil, errNotExist)
		return
	}
	if offset >= int64(len(n.data)) {
		complete(nil, nil)
		return
	}
	end := offset + int64(size)
	if end > int64(len(n.data)) {
		end = int64(len(n.data))
	}
	out := make([]byte, end-offset)
	copy(out, n.data[offset:end])
	complete(out, nil)
}

func (b *MemBackend) Write(h Handle, data []byte, offset int64, complete func(int, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[h.(*memHandle).path]
	if !ok {
		complete(0, errNotExist)
		return
	}
	end := offset + int64(len(data))
	if end > int64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[offset:end], data)
	n.stat.Size = int64(len(n.data))
	n.stat.Mtime = time.Now()
	complete(len(data), nil)
}

func (b *MemBackend) Unlink(path string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(errNotExist)
		return
	}
	if n.dir {
		complete(errIsDir)
		return
	}
	delete(b.nodes, path)
	if parent, ok := b.nodes[dirOf(path)]; ok {
		delete(parent.children, baseOf(path))
	}
	complete(nil)
}

func (b *MemBackend) Mkdir(path string, mode uint32, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.nodes[path]; ok {
		complete(errExist)
		return
	}
	parent, ok := b.nodes[dirOf(path)]
	if !ok || !parent.dir {
		complete(errNotExist)
		return
	}
	now := time.Now()
	b.nodes[path] = &memNode{
		dir:      true,
		children: make(map[string]string),
		stat:     Stat{Ino: b.allocIno(), Mode: mode, Mtime: now, Ctime: now, Atime: now},
	}
	parent.children[baseOf(path)] = path
	complete(nil)
}

func (b *MemBackend) Rmdir(path string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok || !n.dir {
		complete(errNotDir)
		return
	}
	if len(n.children) > 0 {
		complete(errDirNotEmpty)
		return
	}
	delete(b.nodes, path)
	if parent, ok := b.nodes[dirOf(path)]; ok {
		delete(parent.children, baseOf(path))
	}
	complete(nil)
}

func (b *MemBackend) Rename(oldpath, newpath string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[oldpath]
	if !ok {
		complete(errNotExist)
		return
	}
	newParent, ok := b.nodes[dirOf(newpath)]
	if !ok || !newParent.dir {
		complete(errNotExist)
		return
	}
	delete(b.nodes, oldpath)
	if oldParent, ok := b.nodes[dirOf(oldpath)]; ok {
		delete(oldParent.children, baseOf(oldpath))
	}
	b.nodes[newpath] = n
	newParent.children[baseOf(newpath)] = newpath
	complete(nil)
}

func (b *MemBackend) Link(oldpath, newpath string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[oldpath]
	if !ok || n.dir {
		complete(errNotExist)
		return
	}
	if _, ok := b.nodes[newpath]; ok {
		complete(errExist)
		return
	}
	parent, ok := b.nodes[dirOf(newpath)]
	if !ok || !parent.dir {
		complete(errNotExist)
		return
	}
	n.stat.Nlink++
	b.nodes[newpath] = n
	parent.children[baseOf(newpath)] = newpath
	complete(nil)
}

func (b *MemBackend) Symlink(target, linkpath string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.nodes[linkpath]; ok {
		complete(errExist)
		return
	}
	parent, ok := b.nodes[dirOf(linkpath)]
	if !ok || !parent.dir {
		complete(errNotExist)
		return
	}
	now := time.Now()
	b.nodes[linkpath] = &memNode{
		target: target,
		stat:   Stat{Ino: b.allocIno(), Mode: 0o777, Mtime: now, Ctime: now, Atime: now},
	}
	parent.children[baseOf(linkpath)] = linkpath
	complete(nil)
}

func (b *MemBackend) Readlink(path string, complete func(string, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok || n.target == "" {
		complete("", errNotExist)
		return
	}
	complete(n.target, nil)
}

func (b *MemBackend) GetXattr(path, name string, complete func([]byte, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(nil, errNotExist)
		return
	}
	v, ok := n.xattrs[name]
	if !ok {
		complete(nil, errNotExist)
		return
	}
	complete(v, nil)
}

func (b *MemBackend) SetXattr(path, name string, value []byte, flags int, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(errNotExist)
		return
	}
	if n.xattrs == nil {
		n.xattrs = make(map[string][]byte)
	}
	n.xattrs[name] = value
	complete(nil)
}

func (b *MemBackend) RemoveXattr(path, name string, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(errNotExist)
		return
	}
	delete(n.xattrs, name)
	complete(nil)
}

func (b *MemBackend) ListXattr(path string, complete func([]string, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(nil, errNotExist)
		return
	}
	names := make([]string, 0, len(n.xattrs))
	for k := range n.xattrs {
		names = append(names, k)
	}
	sort.Strings(names)
	complete(names, nil)
}

func (b *MemBackend) Stat(path string, complete func(Stat, error)) {
	b.Lookup(path, complete)
}

func (b *MemBackend) Fstat(h Handle, complete func(Stat, error)) {
	b.Lookup(h.(*memHandle).path, complete)
}

func (b *MemBackend) Statfs(path string, complete func(Statvfs, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	complete(Statvfs{BlockSize: 4096, Blocks: 1 << 20, BlocksFree: 1 << 19, Files: uint64(len(b.nodes)), FilesFree: 1 << 20}, nil)
}

func (b *MemBackend) Fsync(h Handle, datasync bool, complete func(error))    { complete(nil) }
func (b *MemBackend) FsyncDir(h Handle, datasync bool, complete func(error)) { complete(nil) }
func (b *MemBackend) Flush(h Handle, complete func(error))                  { complete(nil) }

func (b *MemBackend) Truncate(path string, size int64, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[path]
	if !ok {
		complete(errNotExist)
		return
	}
	b.truncateLocked(n, size)
	complete(nil)
}

func (b *MemBackend) Ftruncate(h Handle, size int64, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[h.(*memHandle).path]
	if !ok {
		complete(errNotExist)
		return
	}
	b.truncateLocked(n, size)
	complete(nil)
}

func (b *MemBackend) truncateLocked(n *memNode, size int64) {
	if size <= int64(len(n.data)) {
		n.data = n.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, n.data)
		n.data = grown
	}
	n.stat.Size = size
	n.stat.Mtime = time.Now()
}

func (b *MemBackend) Access(path string, mode int, complete func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.nodes[path]; !ok {
		complete(errNotExist)
		return
	}
	complete(nil)
}

func (b *MemBackend) Readdir(h Handle, complete func([]Dirent, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[h.(*memHandle).path]
	if !ok || !n.dir {
		complete(nil, errNotDir)
		return
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]Dirent, 0, len(names))
	for _, name := range names {
		child := b.nodes[n.children[name]]
		entries = append(entries, Dirent{Name: name, Ino: child.stat.Ino})
	}
	complete(entries, nil)
}

func (b *MemBackend) Readdirp(h Handle, complete func([]DirentPlus, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[h.(*memHandle).path]
	if !ok || !n.dir {
		complete(nil, errNotDir)
		return
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]DirentPlus, 0, len(names))
	for _, name := range names {
		child := b.nodes[n.children[name]]
		entries = append(entries, DirentPlus{Dirent: Dirent{Name: name, Ino: child.stat.Ino}, Stat: child.stat})
	}
	complete(entries, nil)
}
