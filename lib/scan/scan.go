// Package scan finds publisher declarations in Go source.
//
// It parses packages without type-checking and reports every
// hxasset.NewPublisher call whose directory argument is a string literal,
// along with the manager selected through a literal WithManager option.
// The init command uses it to seed a bundle file from existing code.
package scan

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ImportPath is the import path whose NewPublisher calls are reported.
const ImportPath = "github.com/pthm/hxasset"

// Declaration is a publisher found in source.
type Declaration struct {
	Package string // Package name
	Owner   string // e.g. "widgets.Chart" for a call inside a Chart method
	File    string
	Line    int
	Dir     string // Relative literals are joined with the package directory
	Manager string // Empty for the default manager
}

// Scanner walks packages looking for publisher declarations.
type Scanner struct {
	fset *token.FileSet
}

// New creates a scanner.
func New() *Scanner {
	return &Scanner{fset: token.NewFileSet()}
}

// Scan resolves the patterns ("./...", "./widgets", ...) to package
// directories and returns their declarations ordered by file and line.
func (s *Scanner) Scan(patterns ...string) ([]Declaration, error) {
	packages, err := findPackages(patterns)
	if err != nil {
		return nil, err
	}

	var decls []Declaration
	for _, pkg := range packages {
		found, err := s.scanPackage(pkg)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg, err)
		}
		decls = append(decls, found...)
	}

	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].File != decls[j].File {
			return decls[i].File < decls[j].File
		}
		return decls[i].Line < decls[j].Line
	})
	return decls, nil
}

// findPackages resolves package patterns to directory paths.
func findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		if !strings.HasSuffix(pattern, "/...") && pattern != "..." {
			packages = append(packages, pattern)
			continue
		}

		root := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if root == "" {
			root = "."
		}

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			base := d.Name()
			if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				packages = append(packages, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return packages, nil
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && isSource(entry.Name()) {
			return true
		}
	}
	return false
}

func isSource(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// scanPackage parses every non-test file in dir.
func (s *Scanner) scanPackage(dir string) ([]Declaration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var decls []Declaration
	for _, entry := range entries {
		if entry.IsDir() || !isSource(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		file, err := parser.ParseFile(s.fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		decls = append(decls, s.scanFile(dir, path, file)...)
	}
	return decls, nil
}

// scanFile reports the NewPublisher calls in one file.
func (s *Scanner) scanFile(dir, path string, file *ast.File) []Declaration {
	alias := importName(file)
	if alias == "" {
		return nil
	}
	pkg := file.Name.Name

	var decls []Declaration
	visit := func(owner string, root ast.Node) {
		ast.Inspect(root, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isCall(call, alias, "NewPublisher") || len(call.Args) == 0 {
				return true
			}
			lit, ok := stringLit(call.Args[0])
			if !ok {
				return true
			}
			if !filepath.IsAbs(lit) {
				lit = filepath.Join(dir, lit)
			}

			decl := Declaration{
				Package: pkg,
				Owner:   owner,
				File:    path,
				Line:    s.fset.Position(call.Pos()).Line,
				Dir:     lit,
			}
			for _, arg := range call.Args[1:] {
				opt, ok := arg.(*ast.CallExpr)
				if !ok || !isCall(opt, alias, "WithManager") || len(opt.Args) != 1 {
					continue
				}
				if name, ok := stringLit(opt.Args[0]); ok {
					decl.Manager = name
				}
			}
			decls = append(decls, decl)
			return true
		})
	}

	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Body != nil {
				visit(pkg+"."+funcOwner(d), d.Body)
			}
		case *ast.GenDecl:
			visit(pkg, d)
		}
	}
	return decls
}

// importName returns the local name under which file imports ImportPath,
// or "" when it does not.
func importName(file *ast.File) string {
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != ImportPath {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" {
				return ""
			}
			return imp.Name.Name
		}
		return filepath.Base(path)
	}
	return ""
}

// funcOwner names the receiver type of a method, or the function itself.
func funcOwner(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	expr := fn.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return fn.Name.Name
		}
	}
}

func isCall(call *ast.CallExpr, pkg, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == pkg
}

func stringLit(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}
