package fsop

import "time"

// Stat is the subset of file metadata the wrappers in this package
// surface, the Go analogue of GlusterFS's struct iatt.
type Stat struct {
	Ino   uint64
	Mode  uint32
	Size  int64
	UID   int
	GID   int
	Nlink uint32
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}

// Statvfs is filesystem-level capacity/usage information, the Go
// analogue of struct statvfs as returned by syncop_statfs.
type Statvfs struct {
	BlockSize  uint64
	Blocks     uint64
	BlocksFree uint64
	Files      uint64
	FilesFree  uint64
}

// Dirent is one directory entry as returned by Readdir.
type Dirent struct {
	Name string
	Ino  uint64
	Type uint32
}

// DirentPlus is one directory entry with its Stat pre-fetched, as
// returned by Readdirp (the "p" is for "plus", matching syncop_readdirp).
type DirentPlus struct {
	Dirent
	Stat Stat
}

// Handle is an opaque, backend-defined reference returned by Open,
// Create, and Opendir and threaded through subsequent operations on the
// same file or directory (Read, Write, Fstat, Fsync, Flush, Ftruncate,
// Readdir, Readdirp, FsyncDir). Backends may use any concrete type.
type Handle any
