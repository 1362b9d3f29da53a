// Package fsop wraps a pluggable, callback-driven filesystem backend with
// synchronous, fiber-friendly wrappers built on fiber.SyncOp.
//
// Each exported function (Lookup, Open, Opendir, Read, Write, Create, Unlink,
// Mkdir, Rmdir, Rename, Link, Symlink, Readlink, GetXattr, SetXattr,
// RemoveXattr, ListXattr, Stat, Fstat, Statfs, Fsync, FsyncDir, Flush,
// Truncate, Ftruncate, Access, Readdir, Readdirp) issues exactly one call
// against a Backend and blocks the calling fiber (or, outside a fiber,
// the calling goroutine) until the backend's completion callback fires.
// This is the Go analogue of GlusterFS's syncop_* functions, each of
// which wraps one subvol->fops->* call via the SYNCOP macro.
package fsop
