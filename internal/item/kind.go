package item

import "sort"

// Kind describes a family of items. Its capability flags are fixed when the
// kind is declared and never change at runtime.
type Kind struct {
	// Name is the identifier stored in an item's config.yaml.
	Name string

	// NameEditable reports whether items of this kind may be renamed.
	NameEditable bool

	// Container reports whether items of this kind hold child items.
	Container bool
}

// Built-in kinds.
var (
	KindProject  = Kind{Name: "project", NameEditable: true}
	KindFolder   = Kind{Name: "folder", NameEditable: true, Container: true}
	KindPipeline = Kind{Name: "pipeline", NameEditable: true}

	// KindComputed items get their names from whatever generated them
	// (a branch, a template expansion), so renaming is refused.
	KindComputed = Kind{Name: "computed"}
)

var builtinKinds = map[string]Kind{
	KindProject.Name:  KindProject,
	KindFolder.Name:   KindFolder,
	KindPipeline.Name: KindPipeline,
	KindComputed.Name: KindComputed,
}

// LookupKind returns the built-in kind with the given name.
func LookupKind(name string) (Kind, bool) {
	k, ok := builtinKinds[name]
	return k, ok
}

// KindNames returns the names of all built-in kinds, sorted.
func KindNames() []string {
	names := make([]string, 0, len(builtinKinds))
	for name := range builtinKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
