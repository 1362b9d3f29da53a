package fsop

import "github.com/joeycumines/fiber"

// Lookup resolves path to its metadata, the wrapper analogue of
// syncop_lookup.
func Lookup(t *fiber.Task, b Backend, path string) (Stat, error) {
	return fiber.SyncOp[Stat](t, func(complete func(Stat, error)) {
		b.Lookup(path, complete)
	})
}

// Open opens an existing file, returning a Handle for use with Read,
// Write, Fstat, Fsync, Flush, and Ftruncate. The wrapper analogue of
// syncop_open; the returned Handle's ownership passes to the caller, who
// must eventually release it by calling Flush.
func Open(t *fiber.Task, b Backend, path string, flags int) (Handle, error) {
	return fiber.SyncOp[Handle](t, func(complete func(Handle, error)) {
		b.Open(path, flags, complete)
	})
}

// Opendir opens a directory, returning a Handle for use with Readdir,
// Readdirp, and FsyncDir.
func Opendir(t *fiber.Task, b Backend, path string) (Handle, error) {
	return fiber.SyncOp[Handle](t, func(complete func(Handle, error)) {
		b.Opendir(path, complete)
	})
}

// Create creates and opens a new file, the wrapper analogue of
// syncop_create.
func Create(t *fiber.Task, b Backend, path string, flags int, mode uint32) (Handle, error) {
	return fiber.SyncOp[Handle](t, func(complete func(Handle, error)) {
		b.Create(path, flags, mode, complete)
	})
}

// Read reads up to size bytes at offset from h, the wrapper analogue of
// syncop_readv (collapsed from iovec to a single []byte, matching
// syncop_read's own wrapper over syncop_readv).
func Read(t *fiber.Task, b Backend, h Handle, size int, offset int64) ([]byte, error) {
	return fiber.SyncOp[[]byte](t, func(complete func([]byte, error)) {
		b.Read(h, size, offset, complete)
	})
}

// Write writes data at offset to h, returning the number of bytes
// written. The wrapper analogue of syncop_write.
func Write(t *fiber.Task, b Backend, h Handle, data []byte, offset int64) (int, error) {
	return fiber.SyncOp[int](t, func(complete func(int, error)) {
		b.Write(h, data, offset, complete)
	})
}

// Unlink removes a file, the wrapper analogue of syncop_unlink.
func Unlink(t *fiber.Task, b Backend, path string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Unlink(path, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Mkdir creates a directory, the wrapper analogue of syncop_mkdir.
func Mkdir(t *fiber.Task, b Backend, path string, mode uint32) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Mkdir(path, mode, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Rmdir removes an empty directory, the wrapper analogue of syncop_rmdir.
func Rmdir(t *fiber.Task, b Backend, path string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Rmdir(path, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Rename moves oldpath to newpath, the wrapper analogue of syncop_rename.
func Rename(t *fiber.Task, b Backend, oldpath, newpath string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Rename(oldpath, newpath, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Link creates a hard link at newpath pointing to oldpath, the wrapper
// analogue of syncop_link.
func Link(t *fiber.Task, b Backend, oldpath, newpath string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Link(oldpath, newpath, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Symlink creates a symbolic link at linkpath pointing to target, the
// wrapper analogue of syncop_symlink.
func Symlink(t *fiber.Task, b Backend, target, linkpath string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Symlink(target, linkpath, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Readlink reads the target of a symbolic link, the wrapper analogue of
// syncop_readlink.
func Readlink(t *fiber.Task, b Backend, path string) (string, error) {
	return fiber.SyncOp[string](t, func(complete func(string, error)) {
		b.Readlink(path, complete)
	})
}

// GetXattr reads one extended attribute, the wrapper analogue of
// syncop_getxattr.
func GetXattr(t *fiber.Task, b Backend, path, name string) ([]byte, error) {
	return fiber.SyncOp[[]byte](t, func(complete func([]byte, error)) {
		b.GetXattr(path, name, complete)
	})
}

// SetXattr sets one extended attribute, the wrapper analogue of
// syncop_setxattr.
func SetXattr(t *fiber.Task, b Backend, path, name string, value []byte, flags int) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.SetXattr(path, name, value, flags, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// RemoveXattr removes one extended attribute, the wrapper analogue of
// syncop_removexattr.
func RemoveXattr(t *fiber.Task, b Backend, path, name string) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.RemoveXattr(path, name, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// ListXattr lists the names of all extended attributes on path.
func ListXattr(t *fiber.Task, b Backend, path string) ([]string, error) {
	return fiber.SyncOp[[]string](t, func(complete func([]string, error)) {
		b.ListXattr(path, complete)
	})
}

// Stat retrieves path's metadata, the wrapper analogue of syncop_stat.
// Whether a symlink at path is followed is up to the Backend: OSBackend
// follows it, MemBackend reports the link itself.
func Stat(t *fiber.Task, b Backend, path string) (Stat, error) {
	return fiber.SyncOp[Stat](t, func(complete func(Stat, error)) {
		b.Stat(path, complete)
	})
}

// Fstat retrieves the metadata of an already-open handle, the wrapper
// analogue of syncop_fstat.
func Fstat(t *fiber.Task, b Backend, h Handle) (Stat, error) {
	return fiber.SyncOp[Stat](t, func(complete func(Stat, error)) {
		b.Fstat(h, complete)
	})
}

// Statfs retrieves filesystem-level capacity information, the wrapper
// analogue of syncop_statfs.
func Statfs(t *fiber.Task, b Backend, path string) (Statvfs, error) {
	return fiber.SyncOp[Statvfs](t, func(complete func(Statvfs, error)) {
		b.Statfs(path, complete)
	})
}

// Fsync flushes h's data (and, unless datasync, its metadata) to stable
// storage, the wrapper analogue of syncop_fsync.
func Fsync(t *fiber.Task, b Backend, h Handle, datasync bool) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Fsync(h, datasync, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// FsyncDir flushes a directory handle, the wrapper analogue of
// syncop_fsyncdir.
func FsyncDir(t *fiber.Task, b Backend, h Handle, datasync bool) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.FsyncDir(h, datasync, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Flush releases a file handle opened by Open or Create, the wrapper
// analogue of syncop_flush.
func Flush(t *fiber.Task, b Backend, h Handle) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Flush(h, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Truncate changes a file's size by path, the wrapper analogue of
// syncop_truncate.
func Truncate(t *fiber.Task, b Backend, path string, size int64) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Truncate(path, size, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Ftruncate changes an open file's size by handle, the wrapper analogue
// of syncop_ftruncate.
func Ftruncate(t *fiber.Task, b Backend, h Handle, size int64) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Ftruncate(h, size, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Access checks path's accessibility under mode, the wrapper analogue of
// syncop_access.
func Access(t *fiber.Task, b Backend, path string, mode int) error {
	_, err := fiber.SyncOp[struct{}](t, func(complete func(struct{}, error)) {
		b.Access(path, mode, func(err error) { complete(struct{}{}, err) })
	})
	return err
}

// Readdir lists the entries of an open directory handle, the wrapper
// analogue of syncop_readdir.
func Readdir(t *fiber.Task, b Backend, h Handle) ([]Dirent, error) {
	return fiber.SyncOp[[]Dirent](t, func(complete func([]Dirent, error)) {
		b.Readdir(h, complete)
	})
}

// Readdirp lists the entries of an open directory handle together with
// their metadata, the wrapper analogue of syncop_readdirp.
func Readdirp(t *fiber.Task, b Backend, h Handle) ([]DirentPlus, error) {
	return fiber.SyncOp[[]DirentPlus](t, func(complete func([]DirentPlus, error)) {
		b.Readdirp(h, complete)
	})
}
