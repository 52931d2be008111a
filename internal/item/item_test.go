package item

import (
	"errors"
	"testing"
)

type recordingSaver struct {
	saved []string
	err   error
}

func (s *recordingSaver) Save(it *Item) error {
	s.saved = append(s.saved, it.Name())
	return s.err
}

func newTestItem(t *testing.T, kind Kind, parent *Folder, name string) *Item {
	t.Helper()
	var c Container
	if parent != nil {
		c = parent
	}
	it, err := New(kind, c, name)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	if parent != nil {
		if err := parent.Add(it); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
	return it
}

func TestNewRejectsEmptyName(t *testing.T) {
	if _, err := New(KindProject, nil, ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestSetDisplayName(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "StubItem")
	saver := &recordingSaver{}
	it.SetSaver(saver)

	if err := it.SetDisplayName("testDisplayName"); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if got := it.DisplayName(); got != "testDisplayName" {
		t.Errorf("DisplayName() = %q, want %q", got, "testDisplayName")
	}
	if len(saver.saved) != 1 {
		t.Errorf("expected display name change to be saved once, got %d", len(saver.saved))
	}
}

func TestDisplayNameDefaultsToName(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "the item name")
	if got := it.DisplayName(); got != "the item name" {
		t.Errorf("DisplayName() = %q, want the name", got)
	}
	if got := it.DisplayNameOrEmpty(); got != "" {
		t.Errorf("DisplayNameOrEmpty() = %q, want empty", got)
	}
}

func TestSetDisplayNameClears(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "projectName")
	if err := it.SetDisplayName("displayName"); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if got := it.DisplayNameOrEmpty(); got != "displayName" {
		t.Fatalf("DisplayNameOrEmpty() = %q", got)
	}
	if err := it.SetDisplayName("   "); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if got := it.DisplayNameOrEmpty(); got != "" {
		t.Errorf("expected cleared display name, got %q", got)
	}
	if got := it.DisplayName(); got != "projectName" {
		t.Errorf("DisplayName() = %q, want fallback to name", got)
	}
}

func TestSetDisplayNameReportsSaveError(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "p")
	it.SetSaver(&recordingSaver{err: errors.New("disk full")})
	if err := it.SetDisplayName("P"); err == nil {
		t.Fatal("expected save error")
	}
}

func TestSearchNameIsName(t *testing.T) {
	it := newTestItem(t, KindProject, nil, "the item name jlrtlekjtekrjkjr")
	if it.SearchName() != it.Name() {
		t.Errorf("SearchName() = %q, want %q", it.SearchName(), it.Name())
	}
}

func TestFullNames(t *testing.T) {
	root := NewRootFolder()
	team := newTestItem(t, KindFolder, root, "team")
	backend := newTestItem(t, KindFolder, team.Children(), "backend")
	api := newTestItem(t, KindProject, backend.Children(), "api")

	if got := api.FullName(); got != "team/backend/api" {
		t.Errorf("FullName() = %q", got)
	}

	if err := team.SetDisplayName("Team"); err != nil {
		t.Fatal(err)
	}
	if err := api.SetDisplayName("API Server"); err != nil {
		t.Fatal(err)
	}
	if got := api.FullDisplayName(); got != "Team » backend » API Server" {
		t.Errorf("FullDisplayName() = %q", got)
	}

	if got := FullNameOf(backend.Children(), "worker"); got != "team/backend/worker" {
		t.Errorf("FullNameOf() = %q", got)
	}
}

func TestChildrenOnlyForContainers(t *testing.T) {
	if newTestItem(t, KindProject, nil, "p").Children() != nil {
		t.Error("project should not have children")
	}
	f := newTestItem(t, KindFolder, nil, "f")
	if f.Children() == nil || f.Children().Owner() != f {
		t.Error("folder should own its child folder")
	}
}

func TestLookupKind(t *testing.T) {
	k, ok := LookupKind("computed")
	if !ok || k.NameEditable {
		t.Fatalf("computed kind = %+v, %v", k, ok)
	}
	if _, ok := LookupKind("nope"); ok {
		t.Error("unexpected kind")
	}
	names := KindNames()
	if len(names) != 4 || names[0] != "computed" {
		t.Errorf("KindNames() = %v", names)
	}
}
