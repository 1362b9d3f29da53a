package fsop

// Backend is the callback-driven filesystem underneath the synchronous
// wrappers in this package. It plays the role of the xlator_t/fops
// dispatch table that syncop.c calls through: every method starts an
// operation and must arrange for its completion callback to be invoked
// exactly once, from any goroutine, synchronously or asynchronously.
//
// Implementations are not required to be safe for concurrent use unless
// individually documented (MemBackend and OSBackend both are).
type Backend interface {
	Lookup(path string, complete func(Stat, error))
	Open(path string, flags int, complete func(Handle, error))
	Opendir(path string, complete func(Handle, error))
	Create(path string, flags int, mode uint32, complete func(Handle, error))
	Read(h Handle, size int, offset int64, complete func([]byte, error))
	Write(h Handle, data []byte, offset int64, complete func(int, error))
	Unlink(path string, complete func(error))
	Mkdir(path string, mode uint32, complete func(error))
	Rmdir(path string, complete func(error))
	Rename(oldpath, newpath string, complete func(error))
	Link(oldpath, newpath string, complete func(error))
	Symlink(target, linkpath string, complete func(error))
	Readlink(path string, complete func(string, error))
	GetXattr(path, name string, complete func([]byte, error))
	SetXattr(path, name string, value []byte, flags int, complete func(error))
	RemoveXattr(path, name string, complete func(error))
	ListXattr(path string, complete func([]string, error))
	Stat(path string, complete func(Stat, error))
	Fstat(h Handle, complete func(Stat, error))
	Statfs(path string, complete func(Statvfs, error))
	Fsync(h Handle, datasync bool, complete func(error))
	FsyncDir(h Handle, datasync bool, complete func(error))
	Flush(h Handle, complete func(error))
	Truncate(path string, size int64, complete func(error))
	Ftruncate(h Handle, size int64, complete func(error))
	Access(path string, mode int, complete func(error))
	Readdir(h Handle, complete func([]Dirent, error))
	Readdirp(h Handle, complete func([]DirentPlus, error))
}
