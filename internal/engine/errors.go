package engine

import (
	"errors"
	"fmt"
)

var (
	ErrParse               = errors.New("parse error")
	ErrEmptyDataset        = errors.New("dataset is empty")
	ErrColumnCountMismatch = errors.New("column counts do not match")
	ErrInvalidSplitSize    = errors.New("rows per file must be greater than zero")
	ErrInvalidRowCount     = errors.New("row cut count must not be negative")
	ErrOutOfRange          = errors.New("cut line out of range")
)

// ParseError carries the parser's message verbatim.
type ParseError struct {
	File string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ColumnCountError names the first file whose column count disagrees with
// the first file of the batch.
type ColumnCountError struct {
	File string
	Want int
	Got  int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("%s has %d columns, expected %d: %s", e.File, e.Got, e.Want, ErrColumnCountMismatch)
}

func (e *ColumnCountError) Is(target error) bool {
	return target == ErrColumnCountMismatch
}
