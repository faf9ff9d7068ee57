package db

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, the way sqlc's
// generated querier interface is, so Queries can run against either a
// plain connection or an in-flight transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries is the typed query layer over the folders/notes schema.
type Queries struct {
	db dbtx
}

// New wraps a connection or transaction for typed access.
func New(db dbtx) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx instead of the original
// connection, for use inside Store.WithTx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const findFolderSQL = `SELECT id, title, parent_id, created_time, updated_time, user_created_time, user_updated_time, deleted_time
FROM folders WHERE parent_id = ? AND title = ? AND deleted_time = 0
ORDER BY user_updated_time DESC LIMIT 1`

// FindFolder returns the most recent undeleted folder matching
// (parentID, title). sql.ErrNoRows is returned when there is no match.
func (q *Queries) FindFolder(ctx context.Context, parentID, title string) (Folder, error) {
	row := q.db.QueryRowContext(ctx, findFolderSQL, parentID, title)
	var f Folder
	err := row.Scan(&f.ID, &f.Title, &f.ParentID, &f.CreatedTime, &f.UpdatedTime, &f.UserCreatedTime, &f.UserUpdatedTime, &f.DeletedTime)
	return f, err
}

const findNoteSQL = `SELECT id, title, parent_id, body, created_time, updated_time, user_created_time, user_updated_time, deleted_time
FROM notes WHERE parent_id = ? AND title = ? AND deleted_time = 0
ORDER BY user_updated_time DESC LIMIT 1`

// FindNote returns the most recent undeleted note matching
// (parentID, title), including its body.
func (q *Queries) FindNote(ctx context.Context, parentID, title string) (Note, error) {
	row := q.db.QueryRowContext(ctx, findNoteSQL, parentID, title)
	var n Note
	err := row.Scan(&n.ID, &n.Title, &n.ParentID, &n.Body, &n.CreatedTime, &n.UpdatedTime, &n.UserCreatedTime, &n.UserUpdatedTime, &n.DeletedTime)
	return n, err
}

const listFoldersSQL = `SELECT id, title FROM folders WHERE parent_id = ? AND deleted_time = 0 ORDER BY user_updated_time DESC`

// ListFolders lists the live child folders of parentID, most recently
// updated first.
func (q *Queries) ListFolders(ctx context.Context, parentID string) ([]FolderListItem, error) {
	rows, err := q.db.QueryContext(ctx, listFoldersSQL, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FolderListItem
	for rows.Next() {
		var it FolderListItem
		if err := rows.Scan(&it.ID, &it.Title); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const listNotesSQL = `SELECT id, title FROM notes WHERE parent_id = ? AND deleted_time = 0 ORDER BY user_updated_time DESC`

// ListNotes lists the live child notes of parentID, most recently
// updated first.
func (q *Queries) ListNotes(ctx context.Context, parentID string) ([]NoteListItem, error) {
	rows, err := q.db.QueryContext(ctx, listNotesSQL, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []NoteListItem
	for rows.Next() {
		var it NoteListItem
		if err := rows.Scan(&it.ID, &it.Title); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const insertFolderSQL = `INSERT INTO folders (id, title, parent_id, created_time, updated_time, user_created_time, user_updated_time, deleted_time)
VALUES (?, ?, ?, ?, ?, ?, ?, 0)`

// InsertFolder creates a new folder row.
func (q *Queries) InsertFolder(ctx context.Context, p InsertFolderParams) error {
	_, err := q.db.ExecContext(ctx, insertFolderSQL, p.ID, p.Title, p.ParentID, p.CreatedTime, p.UpdatedTime, p.UserCreatedTime, p.UserUpdatedTime)
	return err
}

const insertNoteSQL = `INSERT INTO notes (id, title, parent_id, body, created_time, updated_time, user_created_time, user_updated_time, deleted_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`

// InsertNote creates a new note row.
func (q *Queries) InsertNote(ctx context.Context, p InsertNoteParams) error {
	_, err := q.db.ExecContext(ctx, insertNoteSQL, p.ID, p.Title, p.ParentID, p.Body, p.CreatedTime, p.UpdatedTime, p.UserCreatedTime, p.UserUpdatedTime)
	return err
}

// updateNoteBodySQL targets the single latest undeleted row matching
// (parent_id, title) via a subquery on id, rather than the naive
// multi-row WHERE parent_id=? AND title=? update: with duplicate
// titles under one parent, the naive form silently rewrites every
// duplicate instead of just the one a reader or writer actually means.
const updateNoteBodySQL = `UPDATE notes SET body = ?, updated_time = ?, user_updated_time = ?
WHERE id = (SELECT id FROM notes WHERE parent_id = ? AND title = ? AND deleted_time = 0 ORDER BY user_updated_time DESC LIMIT 1)`

// UpdateNoteBody overwrites the body of the latest undeleted note
// matching (parentID, title) and returns the number of rows affected
// (0 or 1).
func (q *Queries) UpdateNoteBody(ctx context.Context, parentID, title, body string, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateNoteBodySQL, body, now, now, parentID, title)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteNoteLatestSQL = `DELETE FROM notes WHERE id = (SELECT id FROM notes WHERE parent_id = ? AND title = ? AND deleted_time = 0 ORDER BY user_updated_time DESC LIMIT 1)`

// DeleteNoteLatest physically removes the latest undeleted note
// matching (parentID, title) and returns the number of rows removed
// (0 or 1).
func (q *Queries) DeleteNoteLatest(ctx context.Context, parentID, title string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteNoteLatestSQL, parentID, title)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteFolderByIDSQL = `DELETE FROM folders WHERE id = ?`

// DeleteFolderByID physically removes a folder row by its identifier.
func (q *Queries) DeleteFolderByID(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteFolderByIDSQL, id)
	return err
}

// CountChildren returns the number of live child folders and notes
// under folderID, for the rmdir emptiness check.
func (q *Queries) CountChildren(ctx context.Context, folderID string) (folders, notes int64, err error) {
	if err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE parent_id = ? AND deleted_time = 0`, folderID).Scan(&folders); err != nil {
		return 0, 0, err
	}
	if err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE parent_id = ? AND deleted_time = 0`, folderID).Scan(&notes); err != nil {
		return 0, 0, err
	}
	return folders, notes, nil
}

// updateNoteTitleAndParentSQL is hardened the same way
// updateNoteBodySQL is: it rewrites only the single latest matching
// row, never every duplicate under (old_parent_id, old_title).
const updateNoteTitleAndParentSQL = `UPDATE notes SET title = ?, parent_id = ?, user_updated_time = ?
WHERE id = (SELECT id FROM notes WHERE parent_id = ? AND title = ? AND deleted_time = 0 ORDER BY user_updated_time DESC LIMIT 1)`

// UpdateNoteTitleAndParent renames/reparents the latest undeleted note
// matching (oldParentID, oldTitle) and returns rows affected (0 or 1).
func (q *Queries) UpdateNoteTitleAndParent(ctx context.Context, newTitle, newParentID, oldParentID, oldTitle string, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateNoteTitleAndParentSQL, newTitle, newParentID, now, oldParentID, oldTitle)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateFolderTitleAndParentSQL = `UPDATE folders SET title = ?, parent_id = ?, user_updated_time = ?
WHERE id = (SELECT id FROM folders WHERE parent_id = ? AND title = ? AND deleted_time = 0 ORDER BY user_updated_time DESC LIMIT 1)`

// UpdateFolderTitleAndParent renames/reparents the latest undeleted
// folder matching (oldParentID, oldTitle) and returns rows affected
// (0 or 1).
func (q *Queries) UpdateFolderTitleAndParent(ctx context.Context, newTitle, newParentID, oldParentID, oldTitle string, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateFolderTitleAndParentSQL, newTitle, newParentID, now, oldParentID, oldTitle)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
