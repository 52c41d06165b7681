// SPDX-License-Identifier: MPL-2.0

package luaprint

import (
	"errors"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

func mustParse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	chunk, err := parse.Parse(strings.NewReader(src), "test.lua")
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	return chunk
}

func mustPrint(t *testing.T, chunk []ast.Stmt, opts Options) string {
	t.Helper()
	out, err := String(chunk, opts)
	if err != nil {
		t.Fatalf("String() error: %v", err)
	}
	return out
}

// run executes src and returns the global "result" as a string.
func run(t *testing.T, src string) string {
	t.Helper()
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		t.Fatalf("executing:\n%s\nerror: %v", src, err)
	}
	return L.GetGlobal("result").String()
}

func TestString_Readable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"grouping kept", "x = (1 + 2) * 3", "x = (1 + 2) * 3\n"},
		{"left assoc right child", "x = 1 - (2 - 3)", "x = 1 - (2 - 3)\n"},
		{"left assoc left child", "x = (1 - 2) - 3", "x = 1 - 2 - 3\n"},
		{"concat is right assoc", "x = a .. (b .. c)", "x = a .. b .. c\n"},
		{"concat left group kept", "x = (a .. b) .. c", "x = (a .. b) .. c\n"},
		{"pow is right assoc", "x = 2 ^ (3 ^ 2)", "x = 2 ^ 3 ^ 2\n"},
		{"pow left group kept", "x = (2 ^ 3) ^ 2", "x = (2 ^ 3) ^ 2\n"},
		{"unary below pow", "x = -(y ^ 2)", "x = -y ^ 2\n"},
		{"negated base", "x = (-y) ^ 2", "x = (-y) ^ 2\n"},
		{"not of group", "x = not (a and b)", "x = not (a and b)\n"},
		{"and binds tighter than or", "x = a or (b and c)", "x = a or b and c\n"},
		{"or inside and", "x = (a or b) and c", "x = (a or b) and c\n"},
		{"truncating parens kept", "x = (f())", "x = (f())\n"},
		{"method call", "obj:send(1, \"two\")", "obj:send(1, \"two\")\n"},
		{"string call form", "require \"a.b\"", "require(\"a.b\")\n"},
		{"index on literal", "x = (\"abc\"):upper()", "x = (\"abc\"):upper()\n"},
		{"table keys", "t = {1, x = 2, [\"a b\"] = 3, [k] = 4}", "t = {1, x = 2, [\"a b\"] = 3, [k] = 4}\n"},
		{"keyword key", "t = {[\"end\"] = 1}; y = t[\"end\"]", "t = {[\"end\"] = 1}\ny = t[\"end\"]\n"},
		{"varargs", "function f(a, ...) return select(\"#\", ...) end", "function f(a, ...)\n  return select(\"#\", ...)\nend\n"},
		{"local function", "local function f(n) return n end", "local function f(n)\n  return n\nend\n"},
		{"empty body", "local f = function() end", "local function f() end\n"},
		{"elseif chain", "if a then x = 1 elseif b then x = 2 else x = 3 end",
			"if a then\n  x = 1\nelseif b then\n  x = 2\nelse\n  x = 3\nend\n"},
		{"numeric for", "for i = 10, 1, -1 do print(i) end", "for i = 10, 1, -1 do\n  print(i)\nend\n"},
		{"generic for", "for k, v in pairs(t) do break end", "for k, v in pairs(t) do\n  break\nend\n"},
		{"repeat", "repeat n = n - 1 until n == 0", "repeat\n  n = n - 1\nuntil n == 0\n"},
		{"paren statement is separated", "local a, b = nil, {}\n;(a or b).x = 1", "local a, b = nil, {}\n;(a or b).x = 1\n"},
		{"keyword after call", "if f() then x = \"a\" end", "if f() then\n  x = \"a\"\nend\n"},
		{"keyword after string", "while x == \"a\" do x = g() end", "while x == \"a\" do\n  x = g()\nend\n"},
		{"goto and label", "for i = 1, 3 do if i == 2 then goto skip end print(i) ::skip:: end",
			"for i = 1, 3 do\n  if i == 2 then\n    goto skip\n  end\n  print(i)\n  ::skip::\nend\n"},
		{"number literal kept", "x = 0x10 + 1e3", "x = 0x10 + 1e3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustPrint(t, mustParse(t, tt.src), Options{})
			if got != tt.want {
				t.Errorf("String() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestString_Minify(t *testing.T) {
	t.Parallel()

	src := "local x = 1\nif x > 0 then print(\"a\") else print(\"b\") end"
	got := mustPrint(t, mustParse(t, src), Options{Minify: true})
	want := `local x=1;if x>0 then print("a")else print("b")end`
	if got != want {
		t.Errorf("minified =\n%s\nwant\n%s", got, want)
	}
}

func TestString_MinifyTokenBoundaries(t *testing.T) {
	t.Parallel()

	src := `
local n = 1
local s = n .. 2
local m = 2 - -n
local d = 1 .. .5
result = s .. "|" .. m .. "|" .. d
`
	out := mustPrint(t, mustParse(t, src), Options{Minify: true})
	if strings.Contains(out, "--") {
		t.Errorf("minified output contains a comment marker: %s", out)
	}
	if got := run(t, out); got != "12|3|10.5" {
		t.Errorf("result = %q, want %q (output: %s)", got, "12|3|10.5", out)
	}
}

// The printed program, readable or minified, must behave like the source.
func TestString_BehaviorPreserved(t *testing.T) {
	t.Parallel()

	programs := map[string]string{
		"precedence": `
local y = 3
result = tostring((1 + 2) * 3 - 2 ^ 3 ^ 2 / (4 - -1)) .. "," .. tostring(-y ^ 2) .. "," .. tostring((-y) ^ 2)
`,
		"closures and recursion": `
local function fib(n) if n < 2 then return n end return fib(n - 1) + fib(n - 2) end
local counter = (function() local c = 0 return function() c = c + 1 return c end end)()
counter()
result = fib(10) .. ":" .. counter()
`,
		"varargs and truncation": `
local function two() return 1, 2 end
local function count(...) return select("#", ...) end
result = count(two()) .. count((two())) .. count(two(), two())
`,
		"methods": `
local Acc = {}
Acc.__index = Acc
function Acc.new(start) return setmetatable({n = start}, Acc) end
function Acc:add(k) self.n = self.n + k return self end
result = Acc.new(1):add(2):add(3).n
`,
		"tables and loops": `
local t = {10, 20, 30, x = "x", ["two words"] = 2, [4] = 40}
local sum = 0
for i, v in ipairs(t) do sum = sum + v end
for i = #t, 1, -2 do sum = sum + i end
local n = 0
while true do n = n + 1 if n > 3 then break end end
repeat n = n - 1 until n <= 0
result = sum .. t.x .. t["two words"] .. n
`,
		"string escapes": `
result = "q\"b\\s\n\t\0012" .. #"\1\0022"
`,
		"paren statement": `
local a, b = nil, {}
;(a or b).x = 7
result = b.x
`,
		"goto and labels": `
local s = 0
for i = 1, 5 do
  if i % 2 == 0 then goto continue end
  s = s + i
  ::continue::
end
result = tostring(s)
`,
		"logic": `
local a, b, c = false, nil, 3
result = tostring(a or b and c) .. tostring((a or b) and c) .. tostring(not a == true)
`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			want := run(t, src)
			chunk := mustParse(t, src)
			for _, opts := range []Options{{}, {Minify: true}, {Indent: "\t"}} {
				out := mustPrint(t, chunk, opts)
				if got := run(t, out); got != want {
					t.Errorf("opts %+v: result = %q, want %q\noutput:\n%s", opts, got, want, out)
				}
				// printing the reparsed output is stable
				again := mustPrint(t, mustParse(t, out), opts)
				if again != out {
					t.Errorf("opts %+v: output is not a fixed point:\n%s\n---\n%s", opts, out, again)
				}
			}
		})
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":       `""`,
		"plain":  `"plain"`,
		"a\"b":   `"a\"b"`,
		"back\\": `"back\\"`,
		"nl\n":   `"nl\n"`,
		"\x012":  `"\0012"`,
		"\x7f":   `"\127"`,
		"héllo":  `"héllo"`,
	}
	for in, want := range tests {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestIsName(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"x", "_private", "camelCase", "a1"} {
		if !IsName(s) {
			t.Errorf("IsName(%q) = false", s)
		}
	}
	for _, s := range []string{"", "1a", "end", "a-b", "a b", "héllo"} {
		if IsName(s) {
			t.Errorf("IsName(%q) = true", s)
		}
	}
}

func TestPrint_UnsupportedNode(t *testing.T) {
	t.Parallel()

	chunk := []ast.Stmt{&ast.FuncCallStmt{Expr: &ast.IdentExpr{Value: "x"}}}
	if _, err := String(chunk, Options{}); !errors.Is(err, ErrUnsupportedNode) {
		t.Errorf("String() error = %v, want ErrUnsupportedNode", err)
	}
}
