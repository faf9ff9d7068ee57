// Package registry implements the bidirectional inode-to-path mapping
// that gives this filesystem its own stable inode identity for the
// lifetime of a mount session, independent of the database's own
// identifiers.
package registry

import (
	"strings"
	"sync"
)

// RootIno is the reserved inode number of "/". It is never reassigned
// and is installed at construction.
const RootIno uint64 = 1

// Registry is a mutex-guarded path<->inode map. The zero value is not
// usable; construct with New.
type Registry struct {
	mu      sync.Mutex
	byPath  map[string]uint64
	byIno   map[uint64]string
	nextIno uint64
}

// New returns a Registry with only the root entry installed.
func New() *Registry {
	r := &Registry{
		byPath:  make(map[string]uint64),
		byIno:   make(map[uint64]string),
		nextIno: 2,
	}
	r.byPath["/"] = RootIno
	r.byIno[RootIno] = "/"
	return r
}

// LookupPath returns the logical path for ino, or false if ino is not
// currently known.
func (r *Registry) LookupPath(ino uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.byIno[ino]
	return path, ok
}

// LookupIno returns the inode currently mapped to path, or false.
func (r *Registry) LookupIno(path string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ino, ok := r.byPath[path]
	return ino, ok
}

// Intern returns the inode for path, allocating a new one if path has
// not been seen before.
func (r *Registry) Intern(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ino, ok := r.byPath[path]; ok {
		return ino
	}
	ino := r.nextIno
	r.nextIno++
	r.byPath[path] = ino
	r.byIno[ino] = path
	return ino
}

// Forget removes path (and its inode) from both directions, if
// present.
func (r *Registry) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ino, ok := r.byPath[path]
	if !ok {
		return
	}
	delete(r.byPath, path)
	delete(r.byIno, ino)
}

// RenameSubtree rewrites every currently-known path beginning with
// oldPrefix to begin with newPrefix instead, preserving each path's
// inode number. oldPrefix itself is rewritten too.
func (r *Registry) RenameSubtree(oldPrefix, newPrefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type rewrite struct {
		old, new string
		ino      uint64
	}
	var rewrites []rewrite
	for path, ino := range r.byPath {
		if path == oldPrefix {
			rewrites = append(rewrites, rewrite{path, newPrefix, ino})
			continue
		}
		if strings.HasPrefix(path, oldPrefix+"/") {
			tail := strings.TrimPrefix(path, oldPrefix)
			rewrites = append(rewrites, rewrite{path, newPrefix + tail, ino})
		}
	}
	for _, rw := range rewrites {
		delete(r.byPath, rw.old)
		r.byPath[rw.new] = rw.ino
		r.byIno[rw.ino] = rw.new
	}
}
