// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"bytes"
	"context"
	"errors"

	"github.com/luapack/luapack/pkg/resolve"
	"github.com/luapack/luapack/pkg/script"
	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// builder walks the require graph of one build. It is discarded with the
// build; nothing in it survives into the next one.
type builder struct {
	ctx      context.Context
	resolver *resolve.Resolver
	logger   *log.Logger
	graph    *Graph
	// stack is the chain of scripts currently being rewritten, entry first.
	stack []*script.Ref
}

func newBuilder(ctx context.Context, entry *script.Ref, resolver *resolve.Resolver, logger *log.Logger) *builder {
	return &builder{
		ctx:      ctx,
		resolver: resolver,
		logger:   logger,
		graph:    newGraph(entry),
	}
}

// build rewrites the entry and, through it, every reachable module.
func (b *builder) build() (*Graph, error) {
	entry := b.graph.Entry
	chunk, err := parseScript(entry)
	if err != nil {
		return nil, err
	}

	b.stack = append(b.stack, entry)
	rw := &rewriter{b: b, script: entry, id: types.EntryModuleID}
	if err := rw.rewrite(chunk); err != nil {
		return nil, err
	}
	b.stack = b.stack[:0]

	b.graph.EntryChunk = chunk
	b.logger.Debug("built entry", "path", entry.Path(), "modules", b.graph.Len())
	return b.graph, nil
}

// require resolves spec as seen from requirer and builds the target if it
// has not been reached yet. It returns the target's module id.
func (b *builder) require(requirer *script.Ref, spec types.Specifier, line int) (types.ModuleID, error) {
	target, err := b.resolver.Resolve(requirer, spec)
	if err != nil {
		return 0, notFound(requirer, spec, line, err)
	}
	b.graph.addEdge(requirer.Path(), target.Path())

	if target.Path() == b.graph.Entry.Path() {
		return 0, b.cycle(b.graph.Entry, requirer)
	}

	rec, ok := b.graph.Lookup(target.Path())
	if ok {
		switch rec.State {
		case StateResolved:
			return rec.ID, nil
		case StateInProgress:
			return 0, b.cycle(rec.Script, requirer)
		}
	}

	if err := b.ctx.Err(); err != nil {
		return 0, err
	}

	// The id is taken before descending so ids follow first-require order.
	rec = b.graph.add(target)
	b.logger.Debug("module", "id", rec.ID, "specifier", spec, "path", target.Path())

	chunk, err := parseScript(target)
	if err != nil {
		return 0, err
	}

	b.stack = append(b.stack, target)
	rw := &rewriter{b: b, script: target, id: rec.ID, record: rec}
	if err := rw.rewrite(chunk); err != nil {
		return 0, err
	}
	b.stack = b.stack[:len(b.stack)-1]

	rec.Chunk = chunk
	rec.State = StateResolved
	return rec.ID, nil
}

// cycle builds the error for re-entering module from requirer. The chain
// runs from module's position on the stack through requirer and back.
func (b *builder) cycle(module, requirer *script.Ref) error {
	var chain []types.FilesystemPath
	for i, s := range b.stack {
		if s.Path() == module.Path() {
			for _, link := range b.stack[i:] {
				chain = append(chain, link.Path())
			}
			break
		}
	}
	chain = append(chain, module.Path())
	return &CircularDependencyError{
		Module:   module.Path(),
		Requirer: requirer.Path(),
		Chain:    chain,
	}
}

func notFound(requirer *script.Ref, spec types.Specifier, line int, err error) error {
	e := &ModuleNotFoundError{Specifier: spec, Requirer: requirer.Path(), Line: line}
	var nf *resolve.NotFoundError
	switch {
	case errors.As(err, &nf):
		e.Tried = nf.Tried
	case errors.Is(err, types.ErrInvalidSpecifier):
		e.Cause = err
	default:
		// Storage or manifest failures are not resolution misses.
		return err
	}
	return e
}

func parseScript(ref *script.Ref) ([]ast.Stmt, error) {
	src, err := ref.Contents()
	if err != nil {
		return nil, err
	}
	chunk, err := parse.Parse(bytes.NewReader(src), ref.Name())
	if err != nil {
		return nil, &SyntaxError{File: ref.Path(), Cause: err}
	}
	return chunk, nil
}
