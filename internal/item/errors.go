package item

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a rename failed.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindNotSupported
	ErrKindInvalidName
	ErrKindCollision
	ErrKindIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindNotSupported:
		return "not_supported"
	case ErrKindInvalidName:
		return "invalid_name"
	case ErrKindCollision:
		return "collision"
	case ErrKindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per ErrorKind. A *RenameError matches the sentinel of
// its kind with errors.Is.
var (
	ErrRenameNotSupported = errors.New("Trying to rename an item that does not support this operation.")
	ErrInvalidName        = errors.New("invalid item name")
	ErrNameCollision      = errors.New("item name already in use")
	ErrRenameIO           = errors.New("failed to move item directory")
)

// RenameError is returned by Controller.Rename. The item is unchanged
// whenever a RenameError is returned.
type RenameError struct {
	Kind    ErrorKind
	Item    string // full name of the item at the time of the call
	NewName string
	// Attempts is the number of directory moves tried (ErrKindIO only).
	Attempts int
	// Err is the underlying cause: the legality violation or the last
	// filesystem error.
	Err error
}

func (e *RenameError) Error() string {
	switch e.Kind {
	case ErrKindNotSupported:
		return ErrRenameNotSupported.Error()
	case ErrKindInvalidName:
		return fmt.Sprintf("invalid name %q: %v", e.NewName, e.Err)
	case ErrKindCollision:
		return fmt.Sprintf("an item named %q already exists", e.NewName)
	case ErrKindIO:
		if e.Attempts == 0 {
			return fmt.Sprintf("failed to rename %s to %q: %v", e.Item, e.NewName, e.Err)
		}
		return fmt.Sprintf("failed to rename %s to %q after %d attempts: %v", e.Item, e.NewName, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("rename %s to %q failed: %v", e.Item, e.NewName, e.Err)
	}
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for e.Kind.
func (e *RenameError) Is(target error) bool {
	switch e.Kind {
	case ErrKindNotSupported:
		return target == ErrRenameNotSupported
	case ErrKindInvalidName:
		return target == ErrInvalidName
	case ErrKindCollision:
		return target == ErrNameCollision
	case ErrKindIO:
		return target == ErrRenameIO
	}
	return false
}

// KindOf returns the ErrorKind carried by err, or ErrKindUnknown.
func KindOf(err error) ErrorKind {
	var re *RenameError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrKindUnknown
}
