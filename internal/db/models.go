package db

// Folder is a row of the folders table.
type Folder struct {
	ID              string
	Title           string
	ParentID        string
	CreatedTime     int64
	UpdatedTime     int64
	UserCreatedTime int64
	UserUpdatedTime int64
	DeletedTime     int64
}

// Note is a row of the notes table.
type Note struct {
	ID              string
	Title           string
	ParentID        string
	Body            string
	CreatedTime     int64
	UpdatedTime     int64
	UserCreatedTime int64
	UserUpdatedTime int64
	DeletedTime     int64
}

// FolderListItem is the projection list_folders returns: just enough
// to populate a directory listing and intern a child path.
type FolderListItem struct {
	ID    string
	Title string
}

// NoteListItem is the equivalent projection for notes.
type NoteListItem struct {
	ID    string
	Title string
}

// InsertFolderParams holds the fields written by insert_folder.
type InsertFolderParams struct {
	ID              string
	Title           string
	ParentID        string
	CreatedTime     int64
	UpdatedTime     int64
	UserCreatedTime int64
	UserUpdatedTime int64
}

// InsertNoteParams holds the fields written by insert_note.
type InsertNoteParams struct {
	ID              string
	Title           string
	ParentID        string
	Body            string
	CreatedTime     int64
	UpdatedTime     int64
	UserCreatedTime int64
	UserUpdatedTime int64
}
