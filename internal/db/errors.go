package db

import (
	"errors"
	"strings"
)

// Sentinels the repositories branch on.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrIndexExists      = errors.New("db: index already exists")
	ErrSearchNotEnabled = errors.New("db: search module not available")
)

// Error is a failed command. Key is the first key or index name it touched.
type Error struct {
	Command string
	Key     string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	if e.Key != "" {
		b.WriteString(" ")
		b.WriteString(e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap annotates err with the command and key. A nil err stays nil.
func Wrap(command, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Command: command, Key: key, Err: err}
}
