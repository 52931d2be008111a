package cli

import (
	"errors"

	"github.com/aidanlsb/hangar/internal/config"
	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/journal"
	"github.com/aidanlsb/hangar/internal/workspace"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Workspace errors
	ErrWorkspaceNotFound = "WORKSPACE_NOT_FOUND"
	ErrConfigInvalid     = "CONFIG_INVALID"
	ErrJournalLocked     = "JOURNAL_LOCKED"

	// Item errors
	ErrItemNotFound    = "ITEM_NOT_FOUND"
	ErrNotContainer    = "NOT_CONTAINER"
	ErrUnknownKind     = "UNKNOWN_KIND"
	ErrJournalDisabled = "JOURNAL_DISABLED"

	// Rename errors
	ErrRenameNotSupported = "RENAME_NOT_SUPPORTED"
	ErrInvalidName        = "INVALID_NAME"
	ErrNameCollision      = "NAME_COLLISION"
	ErrRenameIOFailure    = "RENAME_IO_FAILURE"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnSaveFailed     = "SAVE_FAILED"
	WarnListenerFailed = "LISTENER_FAILED"
)

// errorCode picks the stable code for err.
func errorCode(err error) string {
	switch {
	case errors.Is(err, item.ErrRenameNotSupported):
		return ErrRenameNotSupported
	case errors.Is(err, item.ErrInvalidName):
		return ErrInvalidName
	case errors.Is(err, item.ErrNameCollision):
		return ErrNameCollision
	case errors.Is(err, item.ErrRenameIO):
		return ErrRenameIOFailure
	case errors.Is(err, workspace.ErrItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, workspace.ErrNotContainer):
		return ErrNotContainer
	case errors.Is(err, workspace.ErrNotWorkspace), errors.Is(err, config.ErrWorkspaceNotFound):
		return ErrWorkspaceNotFound
	case errors.Is(err, journal.ErrLocked):
		return ErrJournalLocked
	}
	return ErrInternal
}
