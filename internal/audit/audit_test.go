package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/hangar/internal/item"
)

func TestDisabledLoggerIsNoop(t *testing.T) {
	root := t.TempDir()
	l := New(root, false)
	if l.Enabled() {
		t.Fatal("expected disabled logger")
	}
	if err := l.Log(Entry{Operation: OpCreate, Item: "x"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, LogFile)); !os.IsNotExist(err) {
		t.Errorf("disabled logger created %s", LogFile)
	}
}

func TestLoggerRecordsItemChanges(t *testing.T) {
	root := t.TempDir()
	l := New(root, true)

	folder := item.NewRootFolder()
	team, err := item.New(item.KindFolder, folder, "team")
	if err != nil {
		t.Fatal(err)
	}
	api, err := item.New(item.KindProject, team.Children(), "api")
	if err != nil {
		t.Fatal(err)
	}

	if err := l.LogCreate(api); err != nil {
		t.Fatalf("LogCreate: %v", err)
	}
	if err := l.LogUpdate(api, "display_name", "", "API"); err != nil {
		t.Fatalf("LogUpdate: %v", err)
	}

	// Rename listeners see the item after the name was committed.
	c := &item.Controller{Listeners: item.NewListeners(nil)}
	c.Listeners.Register("audit", l)
	if _, err := c.Rename(api, "gateway"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	entries, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Operation != OpCreate || entries[0].Item != "team/api" || entries[0].Kind != "project" {
		t.Errorf("unexpected create entry %+v", entries[0])
	}
	rename := entries[2]
	if rename.Operation != OpRename || rename.Item != "team/gateway" {
		t.Errorf("unexpected rename entry %+v", rename)
	}
	if rename.Extra["previous"] != "team/api" {
		t.Errorf("previous = %v", rename.Extra["previous"])
	}
	change, ok := rename.Changes["name"].(map[string]any)
	if !ok || change["old"] != "api" || change["new"] != "gateway" {
		t.Errorf("unexpected changes %v", rename.Changes)
	}

	forItem, err := l.ReadForItem("team/api")
	if err != nil {
		t.Fatal(err)
	}
	if len(forItem) != 2 {
		t.Errorf("ReadForItem() returned %d entries", len(forItem))
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	root := t.TempDir()
	l := New(root, true)
	if err := l.Log(Entry{Operation: OpCreate, Item: "a"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(filepath.Join(root, LogFile), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n\n")
	_ = f.Close()
	if err := l.Log(Entry{Operation: OpCreate, Item: "b"}); err != nil {
		t.Fatal(err)
	}

	entries, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 || entries[1].Item != "b" {
		t.Errorf("entries = %+v", entries)
	}
}
