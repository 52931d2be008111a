package item

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Resolver maps an item name under a parent to its backing directory. It must
// be a pure function of its arguments.
type Resolver interface {
	RootDirOf(parent Container, name string) string
}

// reserver is implemented by containers that can hold a name for an
// in-flight rename.
type reserver interface {
	reserve(name string, it *Item) (release func(), ok bool)
}

// Observer is told about every finished rename attempt, successful or not.
type Observer interface {
	RenameFinished(it *Item, newName string, out Outcome, err error)
}

// Outcome describes a rename call.
type Outcome struct {
	OldName string
	NewName string
	// Changed is false for the no-op case where the name was already newName.
	Changed bool
	// Moved is true if a backing directory was relocated.
	Moved    bool
	Attempts int
	Waited   time.Duration
	Duration time.Duration

	// SaveErr and ListenerErrs are secondary failures reported after the
	// rename was committed. They never undo it.
	SaveErr      error
	ListenerErrs []error
}

// Warnings returns the secondary errors of a committed rename.
func (o Outcome) Warnings() []error {
	var out []error
	if o.SaveErr != nil {
		out = append(out, o.SaveErr)
	}
	return append(out, o.ListenerErrs...)
}

// Controller renames items. The zero value is usable: it has no backing
// directories, no persistence and no listeners.
type Controller struct {
	Resolver  Resolver
	Saver     Saver
	Listeners *Listeners
	Observer  Observer
	Policy    RetryPolicy
	Logger    *slog.Logger

	// NameCheck adds rules on top of CheckName, e.g. reserved names.
	NameCheck func(name string) error

	// Mover relocates a directory in a single step. Defaults to MoveDir.
	Mover func(oldDir, newDir string) error
}

// Rename renames it to newName.
//
// Checks run in this order, each failing without side effects: the kind must
// allow renaming; a rename to the current name succeeds as a no-op; newName
// must be legal; no other item in the parent may hold newName. The backing
// directory, if any, is then moved with bounded retries. Only after the move
// succeeds is the name updated, the item saved, the parent re-indexed and the
// listeners notified.
//
// Renames of an item and of its ancestors are serialized; renames in
// unrelated subtrees, siblings included, run concurrently.
func (c *Controller) Rename(it *Item, newName string) (out Outcome, err error) {
	release := HoldAncestors(it.Parent())
	defer release()
	it.renameMu.Lock()
	defer it.renameMu.Unlock()

	start := time.Now()
	if c.Observer != nil {
		defer func() {
			out.Duration = time.Since(start)
			c.Observer.RenameFinished(it, newName, out, err)
		}()
	}

	oldName := it.Name()
	fail := func(kind ErrorKind, cause error) (Outcome, error) {
		return Outcome{}, &RenameError{Kind: kind, Item: it.FullName(), NewName: newName, Err: cause}
	}

	if !it.Kind().NameEditable {
		return fail(ErrKindNotSupported, nil)
	}
	if newName == oldName {
		return Outcome{OldName: oldName, NewName: newName, Duration: time.Since(start)}, nil
	}
	if err := CheckName(newName); err != nil {
		return fail(ErrKindInvalidName, err)
	}
	if c.NameCheck != nil {
		if err := c.NameCheck(newName); err != nil {
			return fail(ErrKindInvalidName, err)
		}
	}

	parent := it.Parent()
	if parent != nil {
		if other, ok := parent.Child(newName); ok && other != it {
			return fail(ErrKindCollision, nil)
		}
		if r, ok := parent.(reserver); ok {
			release, ok := r.reserve(newName, it)
			if !ok {
				return fail(ErrKindCollision, nil)
			}
			defer release()
		}
	}

	out = Outcome{OldName: oldName, NewName: newName, Changed: true}
	if c.Resolver != nil {
		oldDir := c.Resolver.RootDirOf(parent, oldName)
		_, statErr := os.Stat(oldDir)
		if errors.Is(statErr, fs.ErrNotExist) {
			if err := c.checkParentDir(parent); err != nil {
				return fail(ErrKindIO, err)
			}
		} else {
			newDir := c.Resolver.RootDirOf(parent, newName)
			attempts, waited, moveErr := c.moveDir(oldDir, newDir)
			if moveErr != nil {
				return Outcome{}, &RenameError{
					Kind:     ErrKindIO,
					Item:     it.FullName(),
					NewName:  newName,
					Attempts: attempts,
					Err:      moveErr,
				}
			}
			out.Moved = true
			out.Attempts = attempts
			out.Waited = waited
		}
	}

	if err := it.forceSetName(newName); err != nil {
		// Unreachable: CheckName rejects empty names.
		return Outcome{}, err
	}

	saver := c.Saver
	if saver == nil {
		it.mu.RLock()
		saver = it.saver
		it.mu.RUnlock()
	}
	if saver != nil {
		if err := saver.Save(it); err != nil {
			out.SaveErr = fmt.Errorf("save %s: %w", it.FullName(), err)
			c.logger().Warn("renamed item could not be saved", "item", it.FullName(), "err", err)
		}
	}

	if parent != nil {
		parent.OnChildRenamed(oldName, newName, it)
	}
	out.ListenerErrs = c.Listeners.NotifyRenamed(it, oldName, newName)
	out.Duration = time.Since(start)

	c.logger().Info("item renamed",
		"item", it.FullName(), "old", oldName, "moved", out.Moved, "attempts", out.Attempts)
	return out, nil
}

// checkParentDir makes sure the directory of parent's owner exists. An item
// without a directory is only treated as never persisted when its parent's
// directory is where the resolver says it is.
func (c *Controller) checkParentDir(parent Container) error {
	owner := ownerOf(parent)
	if owner == nil {
		return nil
	}
	dir := c.Resolver.RootDirOf(owner.Parent(), owner.Name())
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("parent directory of %s: %w", owner.FullName(), err)
	}
	return nil
}

// moveDir moves oldDir to newDir, retrying under c.Policy. It returns the
// number of attempts, the total time spent waiting between them, and the last
// error if no attempt succeeded.
func (c *Controller) moveDir(oldDir, newDir string) (int, time.Duration, error) {
	mover := c.Mover
	if mover == nil {
		mover = MoveDir
	}

	attempts := 0
	var waited time.Duration
	op := func() error {
		attempts++
		err := mover(oldDir, newDir)
		if errors.Is(err, fs.ErrExist) {
			// Waiting will not make an occupied target go away.
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		waited += delay
		c.logger().Debug("directory move failed, retrying",
			"from", oldDir, "to", newDir, "attempt", attempts, "delay", delay, "err", err)
	}

	err := backoff.RetryNotify(op, c.Policy.newBackOff(), notify)
	return attempts, waited, err
}

// MoveDir renames oldDir to newDir in one filesystem operation. Unlike
// os.Rename it refuses to replace an existing newDir, even an empty one. On a
// case-insensitive filesystem newDir may name oldDir itself, as in Foo to foo;
// that is a rename of the directory, not a collision.
func MoveDir(oldDir, newDir string) error {
	if target, err := os.Lstat(newDir); err == nil {
		source, err := os.Lstat(oldDir)
		if err != nil || !os.SameFile(source, target) {
			return &os.LinkError{Op: "rename", Old: oldDir, New: newDir, Err: fs.ErrExist}
		}
	}
	return os.Rename(oldDir, newDir)
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
