package item

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// dirResolver places items at <root>/<full name>.
type dirResolver struct {
	root string
}

func (r dirResolver) RootDirOf(parent Container, name string) string {
	return filepath.Join(r.root, filepath.FromSlash(FullNameOf(parent, name)))
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Millisecond,
		Multiplier:      2,
		MaxInterval:     20 * time.Millisecond,
		MaxElapsed:      500 * time.Millisecond,
		MaxAttempts:     5,
	}
}

func mkdirItem(t *testing.T, r dirResolver, it *Item) string {
	t.Helper()
	dir := r.RootDirOf(it.Parent(), it.Name())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("kind: project\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func assertDir(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	if want && err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
	if !want && !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s to be absent, stat err = %v", path, err)
	}
}

func TestRenameNotEditable(t *testing.T) {
	it := newTestItem(t, KindComputed, nil, "NameNotEditableItem")
	c := &Controller{}

	for _, newName := range []string{"NewName", "NameNotEditableItem", "bad/name"} {
		_, err := c.Rename(it, newName)
		if err == nil {
			t.Fatalf("Rename(%q): expected error", newName)
		}
		if err.Error() != "Trying to rename an item that does not support this operation." {
			t.Errorf("unexpected message %q", err.Error())
		}
		if !errors.Is(err, ErrRenameNotSupported) || KindOf(err) != ErrKindNotSupported {
			t.Errorf("unexpected error kind for %v", err)
		}
		if it.Name() != "NameNotEditableItem" {
			t.Fatalf("name changed to %q", it.Name())
		}
	}
}

func TestRenameNotEditableTouchesNoFiles(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindComputed, root, "generated")
	dir := mkdirItem(t, r, it)

	moves := 0
	c := &Controller{Resolver: r, Mover: func(string, string) error { moves++; return nil }}
	if _, err := c.Rename(it, "other"); !errors.Is(err, ErrRenameNotSupported) {
		t.Fatalf("expected not supported, got %v", err)
	}
	if moves != 0 {
		t.Errorf("mover called %d times", moves)
	}
	assertDir(t, dir, true)
}

func TestRenameGenericItem(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "NomeAntigo")
	c := &Controller{}

	start := time.Now()
	out, err := c.Rename(it, "NovoNomeGenerico")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("rename took %v", elapsed)
	}
	if it.Name() != "NovoNomeGenerico" {
		t.Errorf("Name() = %q", it.Name())
	}
	if !out.Changed || out.Moved || out.OldName != "NomeAntigo" {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestRenameManyItemsIsFast(t *testing.T) {
	c := &Controller{}
	items := []*Item{
		newTestItem(t, KindComputed, nil, "NameNotEditableItem"),
		newTestItem(t, KindProject, nil, "Item2"),
		newTestItem(t, KindProject, nil, "Item3"),
		newTestItem(t, KindPipeline, nil, "Item4"),
		newTestItem(t, KindFolder, nil, "Item5"),
	}

	start := time.Now()
	for i, it := range items {
		_, _ = c.Rename(it, "NewName"+string(rune('1'+i)))
	}
	if elapsed := time.Since(start); elapsed > 2500*time.Millisecond {
		t.Errorf("renames took %v", elapsed)
	}
	if items[0].Name() != "NameNotEditableItem" {
		t.Errorf("non-editable item was renamed to %q", items[0].Name())
	}
	if items[4].Name() != "NewName5" {
		t.Errorf("Name() = %q", items[4].Name())
	}
}

func TestRenameToSameNameIsNoop(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "same")
	mkdirItem(t, r, it)

	moves, notified := 0, 0
	saver := &recordingSaver{}
	listeners := NewListeners(nil)
	listeners.Register("count", ListenerFunc(func(*Item, string, string) error {
		notified++
		return nil
	}))
	c := &Controller{
		Resolver:  r,
		Saver:     saver,
		Listeners: listeners,
		Mover:     func(string, string) error { moves++; return nil },
	}

	out, err := c.Rename(it, "same")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if out.Changed || out.Moved {
		t.Errorf("unexpected outcome %+v", out)
	}
	if moves != 0 || notified != 0 || len(saver.saved) != 0 {
		t.Errorf("side effects: moves=%d notified=%d saves=%d", moves, notified, len(saver.saved))
	}
}

func TestRenameInvalidName(t *testing.T) {
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "valid")
	c := &Controller{}

	for _, bad := range []string{"", "..", "a/b", "semi;colon", " lead"} {
		_, err := c.Rename(it, bad)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Rename(%q) = %v, want ErrInvalidName", bad, err)
		}
	}
	if it.Name() != "valid" || !root.HasChildNamed("valid") {
		t.Error("item changed after invalid renames")
	}
}

func TestRenameExtraNameCheck(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "valid")
	c := &Controller{NameCheck: func(name string) error {
		if name == "reserved" {
			return errors.New("reserved")
		}
		return nil
	}}
	if _, err := c.Rename(it, "reserved"); KindOf(err) != ErrKindInvalidName {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := c.Rename(it, "fine"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
}

func TestRenameCollision(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	a := newTestItem(t, KindProject, root, "a")
	b := newTestItem(t, KindProject, root, "b")
	dirA := mkdirItem(t, r, a)
	dirB := mkdirItem(t, r, b)

	c := &Controller{Resolver: r}
	_, err := c.Rename(a, "b")
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("expected collision, got %v", err)
	}
	if a.Name() != "a" || b.Name() != "b" {
		t.Errorf("names changed: %q %q", a.Name(), b.Name())
	}
	if got, _ := root.Child("b"); got != b {
		t.Error("index entry for b was replaced")
	}
	assertDir(t, dirA, true)
	assertDir(t, dirB, true)
}

func TestRenameMovesDirectory(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "old")
	oldDir := mkdirItem(t, r, it)

	saver := &recordingSaver{}
	var gotOld, gotNew string
	listeners := NewListeners(nil)
	listeners.Register("capture", ListenerFunc(func(_ *Item, oldName, newName string) error {
		gotOld, gotNew = oldName, newName
		return nil
	}))
	c := &Controller{Resolver: r, Saver: saver, Listeners: listeners, Policy: fastPolicy()}

	out, err := c.Rename(it, "new")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !out.Moved || out.Attempts != 1 || out.Waited != 0 {
		t.Errorf("unexpected outcome %+v", out)
	}
	newDir := filepath.Join(r.root, "new")
	assertDir(t, oldDir, false)
	assertDir(t, filepath.Join(newDir, "config.yaml"), true)

	if it.Name() != "new" {
		t.Errorf("Name() = %q", it.Name())
	}
	if root.HasChildNamed("old") || !root.HasChildNamed("new") {
		t.Error("parent index not updated")
	}
	if len(saver.saved) != 1 || saver.saved[0] != "new" {
		t.Errorf("saved %v, want [new]", saver.saved)
	}
	if gotOld != "old" || gotNew != "new" {
		t.Errorf("listener got %q -> %q", gotOld, gotNew)
	}
}

func TestRenameWithoutBackingDirectorySkipsMove(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "never-saved")

	moves := 0
	c := &Controller{Resolver: r, Mover: func(string, string) error { moves++; return nil }}
	out, err := c.Rename(it, "renamed")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if moves != 0 || out.Moved {
		t.Errorf("expected no move, got moves=%d outcome=%+v", moves, out)
	}
	if it.Name() != "renamed" {
		t.Errorf("Name() = %q", it.Name())
	}
}

func TestRenameUnderMissingParentDirectoryFails(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	team := newTestItem(t, KindFolder, NewRootFolder(), "team")
	api := newTestItem(t, KindProject, team.Children(), "api")

	moves := 0
	c := &Controller{Resolver: r, Mover: func(string, string) error { moves++; return nil }}
	_, err := c.Rename(api, "api2")
	if !errors.Is(err, ErrRenameIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected io failure for missing parent directory, got %v", err)
	}
	if moves != 0 || api.Name() != "api" {
		t.Errorf("moves=%d name=%q, want no change", moves, api.Name())
	}
	assertDir(t, filepath.Join(r.root, "team"), false)
}

func TestHoldAncestorsBlocksAncestorRename(t *testing.T) {
	team := newTestItem(t, KindFolder, NewRootFolder(), "team")
	backend := newTestItem(t, KindFolder, team.Children(), "backend")

	release := HoldAncestors(backend.Children())
	done := make(chan error, 1)
	go func() {
		_, err := (&Controller{}).Rename(team, "team2")
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("ancestor renamed while a descendant held it")
	case <-time.After(50 * time.Millisecond):
	}
	release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Rename: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ancestor rename never finished")
	}
	if backend.FullName() != "team2/backend" {
		t.Errorf("FullName() = %q", backend.FullName())
	}
}

func TestRenameRetriesTransientFailures(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "locked")
	mkdirItem(t, r, it)

	calls := 0
	c := &Controller{
		Resolver: r,
		Policy:   fastPolicy(),
		Mover: func(oldDir, newDir string) error {
			calls++
			if calls < 3 {
				return &os.LinkError{Op: "rename", Old: oldDir, New: newDir, Err: errors.New("sharing violation")}
			}
			return MoveDir(oldDir, newDir)
		},
	}

	out, err := c.Rename(it, "unlocked")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if out.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", out.Attempts)
	}
	// 1ms then 2ms with no randomization.
	if out.Waited != 3*time.Millisecond {
		t.Errorf("Waited = %v, want 3ms", out.Waited)
	}
	assertDir(t, filepath.Join(r.root, "unlocked"), true)
}

func TestRenameGivesUpAfterMaxAttempts(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "stuck")
	dir := mkdirItem(t, r, it)

	var calls int32
	lastErr := errors.New("still locked")
	notified := false
	listeners := NewListeners(nil)
	listeners.Register("n", ListenerFunc(func(*Item, string, string) error { notified = true; return nil }))
	c := &Controller{
		Resolver:  r,
		Listeners: listeners,
		Policy:    fastPolicy(),
		Mover: func(string, string) error {
			atomic.AddInt32(&calls, 1)
			return lastErr
		},
	}

	start := time.Now()
	_, err := c.Rename(it, "moved")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrRenameIO) {
		t.Fatalf("expected ErrRenameIO, got %v", err)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("expected last mover error to be wrapped, got %v", err)
	}
	var re *RenameError
	if !errors.As(err, &re) || re.Attempts != 5 {
		t.Errorf("unexpected rename error %#v", re)
	}
	if calls != 5 {
		t.Errorf("mover called %d times, want 5", calls)
	}
	if elapsed > fastPolicy().MaxElapsed+200*time.Millisecond {
		t.Errorf("retry loop ran for %v", elapsed)
	}
	if it.Name() != "stuck" || !root.HasChildNamed("stuck") || root.HasChildNamed("moved") {
		t.Error("item state changed after failed rename")
	}
	if notified {
		t.Error("listeners notified for failed rename")
	}
	assertDir(t, dir, true)

	// The reservation must be released on failure.
	other := newTestItem(t, KindProject, root, "moved")
	if other.Name() != "moved" {
		t.Fatal("unexpected name")
	}
}

func TestRenameBoundedByMaxElapsed(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "slow")
	dir := t.TempDir()

	c := &Controller{
		Resolver: fixedResolver{dir: dir},
		Policy: RetryPolicy{
			InitialInterval: 20 * time.Millisecond,
			Multiplier:      2,
			MaxInterval:     time.Second,
			MaxElapsed:      100 * time.Millisecond,
			MaxAttempts:     100,
		},
		Mover: func(string, string) error { return errors.New("busy") },
	}

	start := time.Now()
	_, err := c.Rename(it, "fast")
	if KindOf(err) != ErrKindIO {
		t.Fatalf("expected io failure, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("rename blocked for %v", elapsed)
	}
}

// fixedResolver maps every item to dir; used where only the retry loop matters.
type fixedResolver struct{ dir string }

func (r fixedResolver) RootDirOf(Container, string) string { return r.dir }

func TestRenameRefusesExistingTargetDirectory(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "src")
	srcDir := mkdirItem(t, r, it)
	stale := filepath.Join(r.root, "dst")
	if err := os.Mkdir(stale, 0o755); err != nil {
		t.Fatal(err)
	}

	c := &Controller{Resolver: r, Policy: fastPolicy()}
	_, err := c.Rename(it, "dst")
	if !errors.Is(err, ErrRenameIO) || !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected io failure caused by existing target, got %v", err)
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		t.Errorf("expected *os.LinkError in chain, got %T", errors.Unwrap(err))
	}
	var re *RenameError
	if errors.As(err, &re) && re.Attempts != 1 {
		t.Errorf("Attempts = %d, an occupied target should not be retried", re.Attempts)
	}
	assertDir(t, srcDir, true)
	if it.Name() != "src" {
		t.Errorf("Name() = %q", it.Name())
	}
}

func TestHoldBlocksOwnRename(t *testing.T) {
	it := newTestItem(t, KindProject, NewRootFolder(), "site")

	release := it.Hold()
	done := make(chan struct{})
	go func() {
		_, _ = (&Controller{}).Rename(it, "site2")
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("item renamed while held")
	case <-time.After(50 * time.Millisecond):
	}
	release()
	<-done
	if it.Name() != "site2" {
		t.Errorf("Name() = %q", it.Name())
	}
}

func TestMoveDirAllowsSameDirectory(t *testing.T) {
	// A case-only rename on a case-insensitive filesystem resolves newDir to
	// oldDir itself.
	dir := filepath.Join(t.TempDir(), "Foo")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := MoveDir(dir, dir); err != nil {
		t.Fatalf("MoveDir onto itself: %v", err)
	}
	assertDir(t, dir, true)
}

func TestRenameSaveFailureIsSecondary(t *testing.T) {
	it := newTestItem(t, KindProject, NewRootFolder(), "a")
	c := &Controller{Saver: &recordingSaver{err: errors.New("read-only")}}

	out, err := c.Rename(it, "b")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if out.SaveErr == nil || len(out.Warnings()) != 1 {
		t.Errorf("expected save warning, got %+v", out)
	}
	if it.Name() != "b" {
		t.Errorf("rename rolled back: %q", it.Name())
	}
}

func TestRenameUsesItemSaverByDefault(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "a")
	saver := &recordingSaver{}
	it.SetSaver(saver)

	if _, err := (&Controller{}).Rename(it, "b"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if len(saver.saved) != 1 {
		t.Errorf("saved %v", saver.saved)
	}
}

func TestRenameListenerFailureIsSecondary(t *testing.T) {
	it := newTestItem(t, KindProject, NewRootFolder(), "a")
	listeners := NewListeners(nil)
	listeners.Register("broken", ListenerFunc(func(*Item, string, string) error {
		return errors.New("index offline")
	}))
	c := &Controller{Listeners: listeners}

	out, err := c.Rename(it, "b")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if len(out.ListenerErrs) != 1 {
		t.Errorf("ListenerErrs = %v", out.ListenerErrs)
	}
	if it.Name() != "b" {
		t.Errorf("Name() = %q", it.Name())
	}
}

type recordingObserver struct {
	mu   sync.Mutex
	errs []error
	outs []Outcome
}

func (o *recordingObserver) RenameFinished(_ *Item, _ string, out Outcome, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outs = append(o.outs, out)
	o.errs = append(o.errs, err)
}

func TestRenameObserverSeesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	c := &Controller{Observer: obs}
	it := newTestItem(t, KindProject, nil, "a")

	_, _ = c.Rename(it, "b")
	_, _ = c.Rename(it, "bad/name")
	_, _ = c.Rename(it, "b")

	if len(obs.outs) != 3 {
		t.Fatalf("observer called %d times", len(obs.outs))
	}
	if obs.errs[0] != nil || KindOf(obs.errs[1]) != ErrKindInvalidName || obs.errs[2] != nil {
		t.Errorf("unexpected errors %v", obs.errs)
	}
	if !obs.outs[0].Changed || obs.outs[2].Changed {
		t.Errorf("unexpected outcomes %+v", obs.outs)
	}
}

func TestConcurrentRenamesOfSameItem(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	it := newTestItem(t, KindProject, root, "start")
	mkdirItem(t, r, it)

	c := &Controller{Resolver: r, Policy: fastPolicy()}
	targets := []string{"left", "right"}
	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, name := range targets {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, errs[i] = c.Rename(it, name)
		}(i, name)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Rename(%q): %v", targets[i], err)
		}
	}

	final := it.Name()
	if final != "left" && final != "right" {
		t.Fatalf("unexpected final name %q", final)
	}
	if root.Len() != 1 {
		t.Errorf("parent holds %d entries, want 1", root.Len())
	}
	if got, ok := root.Child(final); !ok || got != it {
		t.Error("parent index does not point at final name")
	}
	for _, name := range []string{"start", "left", "right"} {
		assertDir(t, filepath.Join(r.root, name), name == final)
	}
}

func TestConcurrentRenamesToSameName(t *testing.T) {
	r := dirResolver{root: t.TempDir()}
	root := NewRootFolder()
	a := newTestItem(t, KindProject, root, "a")
	b := newTestItem(t, KindProject, root, "b")
	mkdirItem(t, r, a)
	mkdirItem(t, r, b)

	c := &Controller{Resolver: r, Policy: fastPolicy()}
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, it := range []*Item{a, b} {
		wg.Add(1)
		go func(i int, it *Item) {
			defer wg.Done()
			_, errs[i] = c.Rename(it, "target")
		}(i, it)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNameCollision):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d renames succeeded, want exactly 1", succeeded)
	}
	winner, ok := root.Child("target")
	if !ok {
		t.Fatal("target not indexed")
	}
	loser := a
	if winner == a {
		loser = b
	}
	if loser.Name() == "target" {
		t.Error("losing item took the name")
	}
	assertDir(t, filepath.Join(r.root, loser.Name()), true)
	assertDir(t, filepath.Join(r.root, "target"), true)
	if root.Len() != 2 {
		t.Errorf("Len() = %d", root.Len())
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}.WithDefaults()
	d := DefaultRetryPolicy()
	if p.MaxAttempts != 3 || p.InitialInterval != d.InitialInterval || p.MaxElapsed != d.MaxElapsed {
		t.Errorf("WithDefaults() = %+v", p)
	}
	if d.InitialInterval >= 100*time.Millisecond || d.MaxElapsed > 5*time.Second {
		t.Errorf("default policy out of range: %+v", d)
	}
}
