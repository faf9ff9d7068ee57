package notefs

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/ryangreenup/sqlite-fuse/internal/db"
)

// MountOptions configures a mount beyond the database path and mount
// point themselves (spec.md §6.3).
type MountOptions struct {
	AllowRoot   bool
	AutoUnmount bool
	Debug       bool
}

// Mount opens store, builds the dispatcher and root node, and mounts
// the filesystem at mountpoint. The returned *fuse.Server is ready for
// Wait(), and the returned *db.Store must be closed by the caller
// after unmount.
func Mount(mountpoint string, dbPath string, opts MountOptions) (*fuse.Server, *db.Store, error) {
	store, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	server, err := MountFS(mountpoint, store, opts)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return server, store, nil
}

// MountFS mounts an already-open store at mountpoint. Split out from
// Mount so tests can pre-populate a store before the mount begins.
func MountFS(mountpoint string, store *db.Store, opts MountOptions) (*fuse.Server, error) {
	dispatcher := NewDispatcher(store, opts.Debug)
	root := newChild(dispatcher)

	var mountOpts []string
	if opts.AutoUnmount {
		mountOpts = append(mountOpts, "auto_unmount")
	}
	if opts.AllowRoot {
		mountOpts = append(mountOpts, "allow_root")
	}

	// SingleThreaded makes the server deliver one upcall at a time, which
	// the Dispatcher relies on.
	fuseOpts := fuse.MountOptions{
		Name:           "sqlite_fuse",
		FsName:         "sqlite_fuse",
		Options:        mountOpts,
		Debug:          opts.Debug,
		SingleThreaded: true,
	}

	fsOpts := &fs.Options{
		AttrTimeout:  timeoutPtr(attrTTL),
		EntryTimeout: timeoutPtr(attrTTL),
		MountOptions: fuseOpts,
	}

	return fs.Mount(mountpoint, root, fsOpts)
}

func timeoutPtr(d time.Duration) *time.Duration {
	return &d
}
