// Package fieldstreamlint reports typed schemas whose target field cannot be
// bound at run time: fieldstream.Typed[T](name) and MustTyped[T](name) where
// T has no string field with JSON name name.
package fieldstreamlint

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

const fieldstreamPath = "github.com/deepankarm/fieldstream/pkg/fieldstream"

// Analyzer checks the field name passed to fieldstream.Typed and MustTyped.
var Analyzer = &analysis.Analyzer{
	Name:     "fieldstreamlint",
	Doc:      "checks that fieldstream.Typed[T](name) names a string field of T",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	nolint := noLintLines(pass)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Path() != fieldstreamPath {
			return
		}
		if fn.Name() != "Typed" && fn.Name() != "MustTyped" {
			return
		}
		if len(call.Args) != 1 {
			return
		}

		pos := pass.Fset.Position(call.Pos())
		if nolint[pos.Filename][pos.Line] {
			return
		}

		typeArg := instanceTypeArg(pass, call.Fun)
		if typeArg == nil {
			return
		}

		// Only constant names can be checked statically.
		tv, ok := pass.TypesInfo.Types[call.Args[0]]
		if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
			return
		}
		name := constant.StringVal(tv.Value)

		structType, ok := typeArg.Underlying().(*types.Struct)
		if !ok {
			pass.Reportf(call.Pos(), "%s[%s] needs a struct type", fn.Name(), typeArg)
			return
		}

		field := findJSONField(structType, name)
		if field == nil {
			msg := fmt.Sprintf("%s has no field with JSON name %q", typeArg, name)
			if suggestions := findSimilarNames(structType, name); len(suggestions) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
			}
			pass.Reportf(call.Args[0].Pos(), "%s", msg)
			return
		}

		if basic, ok := field.Type().Underlying().(*types.Basic); !ok || basic.Kind() != types.String {
			pass.Reportf(call.Args[0].Pos(), "field %s of %s has type %s, want string",
				field.Name(), typeArg, field.Type())
		}
	})

	return nil, nil
}

// instanceTypeArg returns T for an instantiated Typed[T] or MustTyped[T].
func instanceTypeArg(pass *analysis.Pass, fun ast.Expr) types.Type {
	var id *ast.Ident
	switch f := ast.Unparen(fun).(type) {
	case *ast.IndexExpr:
		fun = f.X
	case *ast.IndexListExpr:
		fun = f.X
	}
	switch f := ast.Unparen(fun).(type) {
	case *ast.Ident:
		id = f
	case *ast.SelectorExpr:
		id = f.Sel
	default:
		return nil
	}

	inst, ok := pass.TypesInfo.Instances[id]
	if !ok || inst.TypeArgs.Len() != 1 {
		return nil
	}
	return inst.TypeArgs.At(0)
}

// jsonName returns the key encoding/json uses for field i of s, or "" when
// the field is never decoded on its own.
func jsonName(s *types.Struct, i int) string {
	field := s.Field(i)
	if !field.Exported() {
		return ""
	}
	tag := reflect.StructTag(s.Tag(i)).Get("json")
	if tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx != -1 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name()
	}
	return tag
}

// findJSONField searches s for the field decoded from key name, including
// fields promoted from untagged embedded structs.
func findJSONField(s *types.Struct, name string) *types.Var {
	return findJSONFieldRecursive(s, name, make(map[*types.Struct]bool))
}

func findJSONFieldRecursive(s *types.Struct, name string, visited map[*types.Struct]bool) *types.Var {
	if visited[s] {
		return nil
	}
	visited[s] = true

	for i := 0; i < s.NumFields(); i++ {
		field := s.Field(i)

		if field.Embedded() && reflect.StructTag(s.Tag(i)).Get("json") == "" {
			if embedded := embeddedStruct(field.Type()); embedded != nil {
				if found := findJSONFieldRecursive(embedded, name, visited); found != nil {
					return found
				}
			}
			continue
		}

		if jsonName(s, i) == name {
			return field
		}
	}
	return nil
}

func embeddedStruct(t types.Type) *types.Struct {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	s, _ := t.Underlying().(*types.Struct)
	return s
}

// findSimilarNames finds JSON names that differ from target by case, by one
// or two characters, or by a prefix or suffix.
func findSimilarNames(s *types.Struct, target string) []string {
	var suggestions []string
	targetLower := strings.ToLower(target)

	for i := 0; i < s.NumFields(); i++ {
		name := jsonName(s, i)
		if name == "" || name == target {
			continue
		}
		nameLower := strings.ToLower(name)

		similar := nameLower == targetLower ||
			strings.Contains(nameLower, targetLower) ||
			strings.Contains(targetLower, nameLower)
		if !similar && len(nameLower) == len(targetLower) {
			diffs := 0
			for j := 0; j < len(nameLower); j++ {
				if nameLower[j] != targetLower[j] {
					diffs++
				}
			}
			similar = diffs <= 2
		}
		if similar {
			suggestions = append(suggestions, fmt.Sprintf("%q", name))
		}
	}

	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// noLintLines returns, per file, the lines carrying a nolint:fieldstreamlint
// or nolint:all comment.
func noLintLines(pass *analysis.Pass) map[string]map[int]bool {
	lines := make(map[string]map[int]bool)
	for _, file := range pass.Files {
		for _, group := range file.Comments {
			for _, c := range group.List {
				if !strings.Contains(c.Text, "nolint:fieldstreamlint") && !strings.Contains(c.Text, "nolint:all") {
					continue
				}
				pos := pass.Fset.Position(c.Pos())
				if lines[pos.Filename] == nil {
					lines[pos.Filename] = make(map[int]bool)
				}
				lines[pos.Filename][pos.Line] = true
			}
		}
	}
	return lines
}
