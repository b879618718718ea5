package validation

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Lifecycle contract properties, named as they appear in violation messages.
const (
	PropInitExport    = "init export"
	PropDestroyExport = "destroy export"
	PropRunToolExport = "runTool export"
	PropDestroyGuard  = "destroy null guard"
)

// InitializerNames are the accepted names for the exported initializer.
var InitializerNames = []string{"init", "create", "mount"}

const (
	teardownName = "destroy"
	entryName    = "runTool"
)

// LifecycleReport is the parsed view of a module's lifecycle contract.
type LifecycleReport struct {
	HasInit    bool
	HasDestroy bool
	HasRunTool bool
	// DestroyGuarded is only meaningful when HasDestroy is true.
	DestroyGuarded bool
}

// Missing lists the properties that do not hold, in contract order. The null
// guard is only listed when a destroy export exists to carry it.
func (r LifecycleReport) Missing() []string {
	var missing []string
	if !r.HasInit {
		missing = append(missing, PropInitExport)
	}
	if !r.HasDestroy {
		missing = append(missing, PropDestroyExport)
	}
	if !r.HasRunTool {
		missing = append(missing, PropRunToolExport)
	}
	if r.HasDestroy && !r.DestroyGuarded {
		missing = append(missing, PropDestroyGuard)
	}
	return missing
}

// CheckRuntime verifies the lifecycle export contract of a script module and
// rejects modules that inject their own runtime container.
func CheckRuntime(mod Artifact) Outcome {
	var out Outcome
	if mod.Missing {
		out.add(Violation{
			Path:     mod.Path,
			Line:     1,
			Category: CategoryRuntime,
			Message:  "runtime module missing",
		}, CategoryRuntime)
		return out
	}

	src := []byte(mod.Text)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		out.add(Violation{
			Path:     mod.Path,
			Line:     1,
			Category: CategoryRuntime,
			Message:  fmt.Sprintf("runtime module could not be parsed: %v", err),
		}, CategoryRuntime)
		return out
	}
	defer tree.Close()
	root := tree.RootNode()

	for _, line := range runtimeContainerLines(root, src) {
		out.add(Violation{
			Path:     mod.Path,
			Line:     line,
			Category: CategoryRuntime,
			Message:  fmt.Sprintf("nested %s detected", MarkerRuntimeContainer),
		}, CategoryRuntime)
	}

	if missing := inspectLifecycle(root, src).Missing(); len(missing) > 0 {
		out.add(Violation{
			Path:     mod.Path,
			Line:     1,
			Category: CategoryRuntime,
			Message:  "runtime lifecycle contract incomplete: missing " + strings.Join(missing, ", "),
		}, CategoryRuntime)
	}
	return out
}

func inspectLifecycle(root *sitter.Node, src []byte) LifecycleReport {
	exports, bodies := collectExports(root, src)

	var r LifecycleReport
	for _, name := range InitializerNames {
		if _, ok := exports[name]; ok {
			r.HasInit = true
			break
		}
	}
	_, r.HasRunTool = exports[entryName]

	local, ok := exports[teardownName]
	r.HasDestroy = ok
	if body := bodies[local]; ok && body != nil {
		r.DestroyGuarded = hasNullGuard(body)
	}
	return r
}

// collectExports walks the top-level statements of a module. It returns the
// exported names mapped to their local binding ("" for re-exports from another
// module) and the function bodies of every top-level function binding.
func collectExports(root *sitter.Node, src []byte) (map[string]string, map[string]*sitter.Node) {
	exports := make(map[string]string)
	bodies := make(map[string]*sitter.Node)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "export_statement":
			if isDefaultExport(stmt) {
				continue
			}
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				for _, name := range declareFunctions(decl, src, bodies) {
					exports[name] = name
				}
				continue
			}
			reexport := stmt.ChildByFieldName("source") != nil
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				clause := stmt.NamedChild(j)
				if clause.Type() != "export_clause" {
					continue
				}
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					specifier := clause.NamedChild(k)
					if specifier.Type() != "export_specifier" {
						continue
					}
					nameNode := specifier.ChildByFieldName("name")
					if nameNode == nil {
						continue
					}
					local := nameNode.Content(src)
					exported := local
					if alias := specifier.ChildByFieldName("alias"); alias != nil {
						exported = alias.Content(src)
					}
					if reexport {
						local = ""
					}
					exports[exported] = local
				}
			}
		default:
			declareFunctions(stmt, src, bodies)
		}
	}
	return exports, bodies
}

func isDefaultExport(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if stmt.Child(i).Type() == "default" {
			return true
		}
	}
	return false
}

// declareFunctions records function bodies bound by decl and returns every
// name decl binds.
func declareFunctions(decl *sitter.Node, src []byte, bodies map[string]*sitter.Node) []string {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration", "class_declaration":
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		name := nameNode.Content(src)
		if decl.Type() != "class_declaration" {
			bodies[name] = decl.ChildByFieldName("body")
		}
		return []string{name}
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			nameNode := d.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nameNode.Content(src)
			names = append(names, name)
			if value := d.ChildByFieldName("value"); value != nil {
				switch value.Type() {
				case "arrow_function", "function", "function_expression", "generator_function":
					bodies[name] = value.ChildByFieldName("body")
				}
			}
		}
		return names
	}
	return nil
}

// hasNullGuard reports whether a function body checks its target before use:
// a negated if-condition, an equality test against null/undefined, or
// optional chaining.
func hasNullGuard(n *sitter.Node) bool {
	switch n.Type() {
	case "optional_chain":
		return true
	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Type() {
			case "==", "===", "!=", "!==":
				if isNullish(n.ChildByFieldName("left")) || isNullish(n.ChildByFieldName("right")) {
					return true
				}
			}
		}
	case "if_statement":
		if cond := n.ChildByFieldName("condition"); cond != nil && containsNegation(cond) {
			return true
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if hasNullGuard(n.Child(i)) {
			return true
		}
	}
	return false
}

func isNullish(n *sitter.Node) bool {
	return n != nil && (n.Type() == "null" || n.Type() == "undefined")
}

func containsNegation(n *sitter.Node) bool {
	if n.Type() == "unary_expression" {
		if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "!" {
			return true
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsNegation(n.Child(i)) {
			return true
		}
	}
	return false
}

// runtimeContainerLines finds the runtime-container marker inside string and
// template literals. Comments do not count.
func runtimeContainerLines(n *sitter.Node, src []byte) []int {
	var lines []int
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "string", "template_string":
			lit := n.Content(src)
			for _, off := range tokenOffsets(lit, MarkerRuntimeContainer) {
				lines = append(lines, lineAt(string(src), int(n.StartByte())+off))
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return lines
}
