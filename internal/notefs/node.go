package notefs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Node is the single go-fuse node type for every entry this
// filesystem exposes, folder or note alike. It carries no logical
// path of its own: every upcall recovers the node's current path from
// the dispatcher's registry via its own StableAttr().Ino, so a rename
// elsewhere in the tree (which only rewrites the registry) is picked
// up automatically without walking or mutating any live Inode.
type Node struct {
	fs.Inode
	d *Dispatcher
}

var _ fs.NodeLookuper = (*Node)(nil)
var _ fs.NodeGetattrer = (*Node)(nil)
var _ fs.NodeReaddirer = (*Node)(nil)
var _ fs.NodeReader = (*Node)(nil)
var _ fs.NodeWriter = (*Node)(nil)
var _ fs.NodeOpener = (*Node)(nil)
var _ fs.NodeCreater = (*Node)(nil)
var _ fs.NodeMkdirer = (*Node)(nil)
var _ fs.NodeSetattrer = (*Node)(nil)
var _ fs.NodeUnlinker = (*Node)(nil)
var _ fs.NodeRmdirer = (*Node)(nil)
var _ fs.NodeRenamer = (*Node)(nil)
var _ fs.NodeFlusher = (*Node)(nil)
var _ fs.NodeReleaser = (*Node)(nil)

func newChild(d *Dispatcher) *Node {
	return &Node{d: d}
}

func stableAttrFor(info entryInfo) fs.StableAttr {
	mode := uint32(syscall.S_IFREG)
	if info.isDir {
		mode = syscall.S_IFDIR
	}
	return fs.StableAttr{Mode: mode, Ino: info.ino}
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	info, err := n.d.Lookup(ctx, n.StableAttr().Ino, name)
	if err != nil {
		return nil, errnoFor(err)
	}
	fillEntryOut(out, info)
	child := newChild(n.d)
	return n.NewInode(ctx, child, stableAttrFor(info)), 0
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := n.d.Getattr(ctx, n.StableAttr().Ino)
	if err != nil {
		return errnoFor(err)
	}
	fillAttrOut(out, info)
	return 0
}

// Readdir always appends ".." pointing at the root inode, per the
// registry's flat single-parent-pointer model (spec.md §9).
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children, err := n.d.Readdir(ctx, n.StableAttr().Ino)
	if err != nil {
		return nil, errnoFor(err)
	}

	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		mode := uint32(syscall.S_IFREG)
		if c.IsDir {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: c.Name, Ino: c.Ino, Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if err := n.d.Open(ctx, n.StableAttr().Ino); err != nil {
		return nil, 0, errnoFor(err)
	}
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.d.Read(ctx, n.StableAttr().Ino, off, len(dest))
	if err != nil {
		return nil, errnoFor(err)
	}
	return fuse.ReadResultData(data), 0
}

func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.d.Write(ctx, n.StableAttr().Ino, off, data)
	if err != nil {
		return 0, errnoFor(err)
	}
	return uint32(written), 0
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	info, err := n.d.Mkdir(ctx, n.StableAttr().Ino, name)
	if err != nil {
		return nil, errnoFor(err)
	}
	fillEntryOut(out, info)
	child := newChild(n.d)
	return n.NewInode(ctx, child, stableAttrFor(info)), 0
}

func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	info, err := n.d.Create(ctx, n.StableAttr().Ino, name)
	if err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	fillEntryOut(out, info)
	child := newChild(n.d)
	return n.NewInode(ctx, child, stableAttrFor(info)), nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	size, ok := in.GetSize()
	if !ok {
		info, err := n.d.Getattr(ctx, n.StableAttr().Ino)
		if err != nil {
			return errnoFor(err)
		}
		fillAttrOut(out, info)
		return 0
	}

	info, err := n.d.SetSize(ctx, n.StableAttr().Ino, size)
	if err != nil {
		return errnoFor(err)
	}
	fillAttrOut(out, info)
	return 0
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return errnoFor(n.d.Unlink(ctx, n.StableAttr().Ino, name))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return errnoFor(n.d.Rmdir(ctx, n.StableAttr().Ino, name))
}

func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	newParentNode, ok := newParent.(*Node)
	if !ok {
		return syscall.EINVAL
	}
	return errnoFor(n.d.Rename(ctx, n.StableAttr().Ino, name, newParentNode.StableAttr().Ino, newName))
}

func (n *Node) Flush(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return errnoFor(n.d.CheckKnown(n.StableAttr().Ino))
}

func (n *Node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return errnoFor(n.d.CheckKnown(n.StableAttr().Ino))
}
