// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// prelude declares the loader ahead of the factories so their bodies can
// refer to it.
const prelude = `
local ` + LoaderName + `
local ` + RegistryName + ` = {}
local ` + CacheName + ` = {}
`

// loader runs a factory on first use and caches what it produced: its
// return value, else whatever it stored through module.exports, else true
// so a module without exports still runs only once.
const loader = LoaderName + ` = function(id)
  local cached = ` + CacheName + `[id]
  if cached ~= nil then
    return cached
  end
  local value = ` + RegistryName + `[id]()
  if value == nil then
    value = ` + CacheName + `[id]
  end
  if value == nil then
    value = true
  end
  ` + CacheName + `[id] = value
  return value
end
`

// Emit assembles the bundle program for g: the prelude, one factory per
// module in ascending id order, the loader, then the entry's statements.
func Emit(g *Graph) ([]ast.Stmt, error) {
	head, err := parseRuntime("prelude", prelude)
	if err != nil {
		return nil, err
	}
	load, err := parseRuntime("loader", loader)
	if err != nil {
		return nil, err
	}

	out := make([]ast.Stmt, 0, len(head)+g.Len()+len(load)+len(g.EntryChunk))
	out = append(out, head...)
	for _, rec := range g.Records() {
		out = append(out, factory(rec))
	}
	out = append(out, load...)
	out = append(out, g.EntryChunk...)
	return out, nil
}

// factory returns __luapack_modules[<id>] = function(...) <body> end.
func factory(rec *Record) ast.Stmt {
	return &ast.AssignStmt{
		Lhs: []ast.Expr{&ast.AttrGetExpr{
			Object: &ast.IdentExpr{Value: RegistryName},
			Key:    idLiteral(rec.ID),
		}},
		Rhs: []ast.Expr{&ast.FunctionExpr{
			ParList: &ast.ParList{HasVargs: true},
			Stmts:   rec.Chunk,
		}},
	}
}

func parseRuntime(name, src string) ([]ast.Stmt, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", name, err)
	}
	return chunk, nil
}
