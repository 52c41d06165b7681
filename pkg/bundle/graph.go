// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"

	"github.com/luapack/luapack/internal/dag"
	"github.com/luapack/luapack/pkg/script"
	"github.com/luapack/luapack/pkg/types"

	"github.com/yuin/gopher-lua/ast"
)

const (
	// StateUnvisited is the zero state: the module has not been reached.
	StateUnvisited State = iota
	// StateInProgress marks a module whose body is being rewritten.
	StateInProgress
	// StateResolved marks a module whose id may be handed out freely.
	StateResolved
)

type (
	// State is the build state of one module record.
	State int

	// Record is one non-entry module of a bundle.
	Record struct {
		ID     types.ModuleID
		State  State
		Script *script.Ref
		// Chunk holds the rewritten statements once the module is built.
		Chunk []ast.Stmt
	}

	// Graph is the result of walking the require graph from an entry.
	Graph struct {
		// Entry is the entry script. It never has a Record.
		Entry *script.Ref
		// EntryChunk holds the entry's rewritten statements.
		EntryChunk []ast.Stmt

		byPath map[types.FilesystemPath]*Record
		byID   []*Record
		deps   *dag.Graph
		edges  map[types.FilesystemPath][]types.FilesystemPath
	}
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateInProgress:
		return "in-progress"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func newGraph(entry *script.Ref) *Graph {
	g := &Graph{
		Entry:  entry,
		byPath: make(map[types.FilesystemPath]*Record),
		deps:   dag.New(),
		edges:  make(map[types.FilesystemPath][]types.FilesystemPath),
	}
	g.deps.AddNode(string(entry.Path()))
	return g
}

// add registers a new record under the next id.
func (g *Graph) add(ref *script.Ref) *Record {
	rec := &Record{
		ID:     types.ModuleID(len(g.byID) + 1),
		State:  StateInProgress,
		Script: ref,
	}
	g.byPath[ref.Path()] = rec
	g.byID = append(g.byID, rec)
	g.deps.AddNode(string(ref.Path()))
	return rec
}

// addEdge records that from requires to.
func (g *Graph) addEdge(from, to types.FilesystemPath) {
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
	// Dependencies come first in the dag's order.
	g.deps.AddEdge(string(to), string(from))
}

// Lookup returns the record for a canonical path.
func (g *Graph) Lookup(path types.FilesystemPath) (*Record, bool) {
	rec, ok := g.byPath[path]
	return rec, ok
}

// Module returns the record with the given id. The entry id has no record.
func (g *Graph) Module(id types.ModuleID) (*Record, bool) {
	if id <= types.EntryModuleID || int(id) > len(g.byID) {
		return nil, false
	}
	return g.byID[id-1], true
}

// Records returns every module record in ascending id order.
func (g *Graph) Records() []*Record {
	out := make([]*Record, len(g.byID))
	copy(out, g.byID)
	return out
}

// Len returns the number of module records, not counting the entry.
func (g *Graph) Len() int { return len(g.byID) }

// Requires returns the scripts required by path, in first-require order.
func (g *Graph) Requires(path types.FilesystemPath) []types.FilesystemPath {
	out := make([]types.FilesystemPath, len(g.edges[path]))
	copy(out, g.edges[path])
	return out
}

// LoadOrder returns every script, entry included, with each script after
// the scripts it requires. A module that exported before requiring a
// module that requires it back makes the order impossible; that case is
// reported as a *dag.CycleError.
func (g *Graph) LoadOrder() ([]types.FilesystemPath, error) {
	order, err := g.deps.TopologicalSort()
	if err != nil {
		return nil, err
	}
	out := make([]types.FilesystemPath, len(order))
	for i, p := range order {
		out[i] = types.FilesystemPath(p)
	}
	return out, nil
}
