package notefs

import (
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Fixed attribute stubs: spec.md §6.4 states these are constants, not
// sourced from the request's Caller.
const (
	ownerUID  = 501
	ownerGID  = 20
	dirPerm   = 0755
	filePerm  = 0644
	blockSize = 512

	// attrTTL is the metadata TTL attached to lookup/create/mkdir
	// replies (spec.md §4.5).
	attrTTL = time.Second
)

// entryInfo is everything the attribute builder needs to fill a
// fuse.Attr, regardless of which upcall produced it.
type entryInfo struct {
	ino         uint64
	isDir       bool
	size        uint64
	createdTime int64
	updatedTime int64
}

func blockCount(size uint64) uint64 {
	return (size + blockSize - 1) / blockSize
}

// fillAttr assembles a per-entity attribute record the way spec.md
// §4.5 specifies: atime doubles as crtime (go-fuse's Attr has no
// separate crtime field), mtime and ctime both track updatedTime.
func fillAttr(a *fuse.Attr, info entryInfo) {
	a.Ino = info.ino
	created := time.Unix(info.createdTime, 0)
	updated := time.Unix(info.updatedTime, 0)
	a.SetTimes(&created, &updated, &updated)
	a.Owner = fuse.Owner{Uid: ownerUID, Gid: ownerGID}
	a.Blksize = blockSize
	a.Rdev = 0

	if info.isDir {
		a.Mode = syscall.S_IFDIR | dirPerm
		a.Nlink = 2
		a.Size = 0
		a.Blocks = 0
		return
	}
	a.Mode = syscall.S_IFREG | filePerm
	a.Nlink = 1
	a.Size = info.size
	a.Blocks = blockCount(info.size)
}

// fillEntryOut fills a lookup/mkdir/create reply, including the
// entry+attribute cache timeouts the kernel is allowed to rely on.
func fillEntryOut(out *fuse.EntryOut, info entryInfo) {
	fillAttr(&out.Attr, info)
	out.NodeId = info.ino
	out.SetEntryTimeout(attrTTL)
	out.SetAttrTimeout(attrTTL)
}

// fillAttrOut fills a plain getattr/setattr reply. No timeout is set
// here: the mount-wide fs.Options.AttrTimeout already governs how long
// the kernel may cache a bare attribute reply.
func fillAttrOut(out *fuse.AttrOut, info entryInfo) {
	fillAttr(&out.Attr, info)
}

// rootAttr returns the fixed directory attributes for inode 1: all
// timestamps at epoch, per spec.md §4.6.2.
func rootAttr(ino uint64) entryInfo {
	return entryInfo{ino: ino, isDir: true, createdTime: 0, updatedTime: 0}
}
