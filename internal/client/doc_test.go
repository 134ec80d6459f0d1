package client

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func TestExportedFuncsDocumented(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "client.go", nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !fn.Name.IsExported() {
			continue
		}
		if fn.Doc == nil {
			t.Errorf("%s has no doc comment", fn.Name.Name)
		}
	}
}
