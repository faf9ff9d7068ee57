package notefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ryangreenup/sqlite-fuse/internal/db"
	"github.com/ryangreenup/sqlite-fuse/internal/namecodec"
	"github.com/ryangreenup/sqlite-fuse/internal/registry"
)

// Dispatcher owns the inode registry and the store connection
// exclusively and implements every filesystem upcall by composing the
// name codec, path resolver, store adapter, and attribute builder. All
// calls run to completion before the next is dequeued by the node
// layer, so there is no internal locking beyond what the registry and
// the store already provide.
type Dispatcher struct {
	q     *db.Queries
	reg   *registry.Registry
	debug bool
}

// NewDispatcher wires a Dispatcher to an already-open store.
func NewDispatcher(store *db.Store, debug bool) *Dispatcher {
	return &Dispatcher{
		q:     store.Queries(),
		reg:   registry.New(),
		debug: debug,
	}
}

// ChildEntry is one row of a Readdir reply.
type ChildEntry struct {
	Name  string
	Ino   uint64
	IsDir bool
}

// splitPath divides a logical path into its parent and basename. path
// is always absolute; "/" itself is never split.
func splitPath(path string) (parent, base string) {
	idx := strings.LastIndex(path, "/")
	base = path[idx+1:]
	parent = path[:idx]
	if parent == "" {
		parent = "/"
	}
	return parent, base
}

// joinPath composes a child path under parent, avoiding a double
// slash when parent is the root.
func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func validateName(name string) error {
	if !utf8.ValidString(name) {
		return errInvalid(fmt.Errorf("name %q is not valid UTF-8", name))
	}
	return nil
}

// pathFor is the inode-to-path half of every upcall: an unknown inode
// is always ENOENT.
func (d *Dispatcher) pathFor(ino uint64) (string, error) {
	path, ok := d.reg.LookupPath(ino)
	if !ok {
		return "", errNoEntry()
	}
	return path, nil
}

// resolveParentFolderID walks dirPath component by component through
// the folders table, per spec.md §4.3.
func (d *Dispatcher) resolveParentFolderID(ctx context.Context, dirPath string) (string, error) {
	trimmed := strings.TrimPrefix(dirPath, "/")
	if trimmed == "" {
		return "", nil
	}
	parentID := ""
	for _, component := range strings.Split(trimmed, "/") {
		if component == "" {
			continue
		}
		folder, err := d.q.FindFolder(ctx, parentID, component)
		if errors.Is(err, sql.ErrNoRows) {
			return "", errNoEntry()
		}
		if err != nil {
			return "", errIO(err)
		}
		parentID = folder.ID
	}
	return parentID, nil
}

// probeResult is the raw shape of whatever probe found, before it is
// folded into an entryInfo (which additionally needs an inode).
type probeResult struct {
	id          string
	isDir       bool
	size        uint64
	body        string
	createdTime int64
	updatedTime int64
}

// probe looks up name under parentID, trying folders first so a
// folder shadows a note of the same name on collision (spec.md §3).
func (d *Dispatcher) probe(ctx context.Context, parentID, name string) (probeResult, error) {
	folder, err := d.q.FindFolder(ctx, parentID, name)
	if err == nil {
		return probeResult{id: folder.ID, isDir: true, createdTime: folder.CreatedTime, updatedTime: folder.UpdatedTime}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return probeResult{}, errIO(err)
	}

	title := namecodec.ToStoreTitle(name)
	note, err := d.q.FindNote(ctx, parentID, title)
	if err == nil {
		return probeResult{
			id: note.ID, isDir: false, size: uint64(len(note.Body)), body: note.Body,
			createdTime: note.CreatedTime, updatedTime: note.UpdatedTime,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return probeResult{}, errIO(err)
	}
	return probeResult{}, errNoEntry()
}

// Lookup implements spec.md §4.6.1.
func (d *Dispatcher) Lookup(ctx context.Context, parentIno uint64, name string) (entryInfo, error) {
	parentPath, err := d.pathFor(parentIno)
	if err != nil {
		return entryInfo{}, err
	}
	fullPath := joinPath(parentPath, name)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return entryInfo{}, err
	}

	res, err := d.probe(ctx, parentID, name)
	if err != nil {
		return entryInfo{}, err
	}

	ino := d.reg.Intern(fullPath)
	return entryInfo{ino: ino, isDir: res.isDir, size: res.size, createdTime: res.createdTime, updatedTime: res.updatedTime}, nil
}

// Getattr implements spec.md §4.6.2.
func (d *Dispatcher) Getattr(ctx context.Context, ino uint64) (entryInfo, error) {
	if ino == registry.RootIno {
		return rootAttr(ino), nil
	}

	path, err := d.pathFor(ino)
	if err != nil {
		return entryInfo{}, err
	}
	parentPath, base := splitPath(path)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return entryInfo{}, err
	}

	res, err := d.probe(ctx, parentID, base)
	if err != nil {
		return entryInfo{}, err
	}
	return entryInfo{ino: ino, isDir: res.isDir, size: res.size, createdTime: res.createdTime, updatedTime: res.updatedTime}, nil
}

// Read implements spec.md §4.6.3. Only the notes table is queried, so
// reading a folder path yields NoEntry unless a note with the same
// title exists under the same parent, in which case that note is read.
func (d *Dispatcher) Read(ctx context.Context, ino uint64, offset int64, size int) ([]byte, error) {
	path, err := d.pathFor(ino)
	if err != nil {
		return nil, err
	}
	parentPath, base := splitPath(path)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return nil, err
	}

	title := namecodec.ToStoreTitle(base)
	note, err := d.q.FindNote(ctx, parentID, title)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	body := []byte(note.Body)
	if offset >= int64(len(body)) {
		return []byte{}, nil
	}
	end := offset + int64(size)
	if end > int64(len(body)) {
		end = int64(len(body))
	}
	return body[offset:end], nil
}

// Readdir implements spec.md §4.6.4.
func (d *Dispatcher) Readdir(ctx context.Context, ino uint64) ([]ChildEntry, error) {
	path, err := d.pathFor(ino)
	if err != nil {
		return nil, err
	}

	parentID, err := d.resolveParentFolderID(ctx, path)
	if err != nil {
		return nil, err
	}

	entries := []ChildEntry{
		{Name: ".", Ino: ino, IsDir: true},
		{Name: "..", Ino: registry.RootIno, IsDir: true},
	}
	seen := map[string]bool{".": true, "..": true}

	folders, err := d.q.ListFolders(ctx, parentID)
	if err != nil {
		return nil, errIO(err)
	}
	for _, f := range folders {
		if seen[f.Title] {
			continue
		}
		seen[f.Title] = true
		childIno := d.reg.Intern(joinPath(path, f.Title))
		entries = append(entries, ChildEntry{Name: f.Title, Ino: childIno, IsDir: true})
	}

	notes, err := d.q.ListNotes(ctx, parentID)
	if err != nil {
		return nil, errIO(err)
	}
	for _, n := range notes {
		userName := namecodec.ToUserName(n.Title)
		if seen[userName] {
			continue
		}
		seen[userName] = true
		childIno := d.reg.Intern(joinPath(path, userName))
		entries = append(entries, ChildEntry{Name: userName, Ino: childIno, IsDir: false})
	}

	return entries, nil
}

// Mkdir implements spec.md §4.6.5.
func (d *Dispatcher) Mkdir(ctx context.Context, parentIno uint64, name string) (entryInfo, error) {
	if err := validateName(name); err != nil {
		return entryInfo{}, err
	}

	parentPath, err := d.pathFor(parentIno)
	if err != nil {
		return entryInfo{}, err
	}
	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return entryInfo{}, err
	}

	now := db.Now()
	id := uuid.New().String()
	if err := d.q.InsertFolder(ctx, db.InsertFolderParams{
		ID: id, Title: name, ParentID: parentID,
		CreatedTime: now, UpdatedTime: now, UserCreatedTime: now, UserUpdatedTime: now,
	}); err != nil {
		return entryInfo{}, errIO(err)
	}

	ino := d.reg.Intern(joinPath(parentPath, name))
	return entryInfo{ino: ino, isDir: true, createdTime: now, updatedTime: now}, nil
}

// Create implements spec.md §4.6.6 (open-with-create).
func (d *Dispatcher) Create(ctx context.Context, parentIno uint64, name string) (entryInfo, error) {
	if err := validateName(name); err != nil {
		return entryInfo{}, err
	}

	parentPath, err := d.pathFor(parentIno)
	if err != nil {
		return entryInfo{}, err
	}
	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return entryInfo{}, err
	}

	now := db.Now()
	id := uuid.New().String()
	title := namecodec.ToStoreTitle(name)
	if err := d.q.InsertNote(ctx, db.InsertNoteParams{
		ID: id, Title: title, ParentID: parentID, Body: "",
		CreatedTime: now, UpdatedTime: now, UserCreatedTime: now, UserUpdatedTime: now,
	}); err != nil {
		return entryInfo{}, errIO(err)
	}

	ino := d.reg.Intern(joinPath(parentPath, name))
	return entryInfo{ino: ino, isDir: false, size: 0, createdTime: now, updatedTime: now}, nil
}

// spliceWrite computes the new body bytes for write(offset, data)
// per spec.md §4.6.7's splice-or-extend rule.
func spliceWrite(current []byte, offset int64, data []byte) []byte {
	if offset == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	if int(offset) > len(current) {
		padded := make([]byte, int(offset)+len(data))
		copy(padded, current)
		copy(padded[offset:], data)
		return padded
	}
	if int(offset)+len(data) <= len(current) {
		out := make([]byte, len(current))
		copy(out, current)
		copy(out[offset:], data)
		return out
	}
	out := make([]byte, offset, int(offset)+len(data))
	copy(out, current[:offset])
	return append(out, data...)
}

// toStoredBody applies the lossy-UTF-8 decoding spec.md §9 calls out:
// the schema's body column is TEXT, so a non-UTF-8 write is replaced
// rather than rejected.
func toStoredBody(b []byte) string {
	s := string(b)
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// Write implements spec.md §4.6.7.
func (d *Dispatcher) Write(ctx context.Context, ino uint64, offset int64, data []byte) (int, error) {
	path, err := d.pathFor(ino)
	if err != nil {
		return 0, err
	}
	parentPath, base := splitPath(path)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return 0, err
	}

	title := namecodec.ToStoreTitle(base)
	note, err := d.q.FindNote(ctx, parentID, title)
	if err != nil {
		return 0, wrapStoreErr(err)
	}

	newBody := spliceWrite([]byte(note.Body), offset, data)
	now := db.Now()
	n, err := d.q.UpdateNoteBody(ctx, parentID, title, toStoredBody(newBody), now)
	if err != nil {
		return 0, errIO(err)
	}
	if n == 0 {
		return 0, errNoEntry()
	}
	return len(data), nil
}

// Open implements spec.md §4.6.8: verify the note exists, nothing
// more. Folders are never opened through this path.
func (d *Dispatcher) Open(ctx context.Context, ino uint64) error {
	path, err := d.pathFor(ino)
	if err != nil {
		return err
	}
	parentPath, base := splitPath(path)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return err
	}

	title := namecodec.ToStoreTitle(base)
	_, err = d.q.FindNote(ctx, parentID, title)
	return wrapStoreErr(err)
}

// SetSize implements the size-truncation half of spec.md §4.6.9.
func (d *Dispatcher) SetSize(ctx context.Context, ino uint64, size uint64) (entryInfo, error) {
	path, err := d.pathFor(ino)
	if err != nil {
		return entryInfo{}, err
	}
	parentPath, base := splitPath(path)

	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return entryInfo{}, err
	}

	title := namecodec.ToStoreTitle(base)
	note, err := d.q.FindNote(ctx, parentID, title)
	if err != nil {
		return entryInfo{}, wrapStoreErr(err)
	}

	current := []byte(note.Body)
	var newBody []byte
	switch {
	case int(size) < len(current):
		newBody = current[:size]
	case int(size) > len(current):
		newBody = make([]byte, size)
		copy(newBody, current)
	default:
		newBody = current
	}

	now := db.Now()
	n, err := d.q.UpdateNoteBody(ctx, parentID, title, toStoredBody(newBody), now)
	if err != nil {
		return entryInfo{}, errIO(err)
	}
	if n == 0 {
		return entryInfo{}, errNoEntry()
	}

	return entryInfo{ino: ino, isDir: false, size: uint64(len(newBody)), createdTime: note.CreatedTime, updatedTime: now}, nil
}

// Rename implements spec.md §4.6.10: try the notes table first (using
// codec-stripped titles), falling back to the folders table (using
// the unstripped name, since folders are never .md-suffixed).
func (d *Dispatcher) Rename(ctx context.Context, oldParentIno uint64, oldName string, newParentIno uint64, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}

	oldParentPath, err := d.pathFor(oldParentIno)
	if err != nil {
		return err
	}
	newParentPath, err := d.pathFor(newParentIno)
	if err != nil {
		return err
	}

	oldParentID, err := d.resolveParentFolderID(ctx, oldParentPath)
	if err != nil {
		return err
	}
	newParentID, err := d.resolveParentFolderID(ctx, newParentPath)
	if err != nil {
		return err
	}

	oldPath := joinPath(oldParentPath, oldName)
	newPath := joinPath(newParentPath, newName)
	now := db.Now()

	oldTitle := namecodec.ToStoreTitle(oldName)
	newTitle := namecodec.ToStoreTitle(newName)
	n, err := d.q.UpdateNoteTitleAndParent(ctx, newTitle, newParentID, oldParentID, oldTitle, now)
	if err != nil {
		return errIO(err)
	}
	if n >= 1 {
		d.reg.RenameSubtree(oldPath, newPath)
		return nil
	}

	n, err = d.q.UpdateFolderTitleAndParent(ctx, newName, newParentID, oldParentID, oldName, now)
	if err != nil {
		return errIO(err)
	}
	if n >= 1 {
		d.reg.RenameSubtree(oldPath, newPath)
		return nil
	}

	return errNoEntry()
}

// Unlink implements spec.md §4.6.11.
func (d *Dispatcher) Unlink(ctx context.Context, parentIno uint64, name string) error {
	parentPath, err := d.pathFor(parentIno)
	if err != nil {
		return err
	}
	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return err
	}

	title := namecodec.ToStoreTitle(name)
	n, err := d.q.DeleteNoteLatest(ctx, parentID, title)
	if err != nil {
		return errIO(err)
	}
	if n == 0 {
		return errNoEntry()
	}

	d.reg.Forget(joinPath(parentPath, name))
	return nil
}

// Rmdir implements spec.md §4.6.12.
func (d *Dispatcher) Rmdir(ctx context.Context, parentIno uint64, name string) error {
	parentPath, err := d.pathFor(parentIno)
	if err != nil {
		return err
	}
	parentID, err := d.resolveParentFolderID(ctx, parentPath)
	if err != nil {
		return err
	}

	folder, err := d.q.FindFolder(ctx, parentID, name)
	if err != nil {
		return wrapStoreErr(err)
	}

	folders, notes, err := d.q.CountChildren(ctx, folder.ID)
	if err != nil {
		return errIO(err)
	}
	if folders+notes > 0 {
		return errNotEmpty()
	}

	if err := d.q.DeleteFolderByID(ctx, folder.ID); err != nil {
		return errIO(err)
	}

	d.reg.Forget(joinPath(parentPath, name))
	return nil
}

// CheckKnown implements the shared half of flush/release (spec.md
// §4.6.13): no durable side effects, just reject unknown inodes.
func (d *Dispatcher) CheckKnown(ino uint64) error {
	if _, ok := d.reg.LookupPath(ino); !ok {
		return errNoEntry()
	}
	return nil
}
