package notefs

import (
	"database/sql"
	"errors"
	"syscall"
)

// kind categorizes an internal failure for mapping onto the syscall
// errno a kernel upcall reply expects.
type kind int

const (
	kindNoEntry kind = iota
	kindInvalid
	kindIO
	kindNotEmpty
)

// fsError pairs an internal failure kind with its underlying cause.
type fsError struct {
	kind kind
	err  error
}

func (e *fsError) Error() string {
	if e.err == nil {
		return "notefs error"
	}
	return e.err.Error()
}

func (e *fsError) Unwrap() error {
	return e.err
}

func errNoEntry() error {
	return &fsError{kind: kindNoEntry, err: errors.New("no such entry")}
}

func errInvalid(err error) error {
	return &fsError{kind: kindInvalid, err: err}
}

func errIO(err error) error {
	return &fsError{kind: kindIO, err: err}
}

func errNotEmpty() error {
	return &fsError{kind: kindNotEmpty, err: errors.New("directory not empty")}
}

// wrapStoreErr maps a raw store error onto the fsError taxonomy:
// sql.ErrNoRows always means the row the caller asked for is absent,
// every other error is an opaque store failure.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errNoEntry()
	}
	return errIO(err)
}

// errnoFor maps an internal failure onto the syscall.Errno a kernel
// upcall reply carries. A nil error maps to success.
func errnoFor(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var fe *fsError
	if errors.As(err, &fe) {
		switch fe.kind {
		case kindNoEntry:
			return syscall.ENOENT
		case kindInvalid:
			return syscall.EINVAL
		case kindNotEmpty:
			return syscall.ENOTEMPTY
		default:
			return syscall.EIO
		}
	}
	return syscall.EIO
}
