package dsl

import "testing"

func TestParseSimpleStatement(t *testing.T) {
	p, err := NewParser("IS_A Dog Mammal\n", CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(prog.Nodes))
	}
	stmt, ok := prog.Nodes[0].(*Statement)
	if !ok {
		t.Fatalf("expected *Statement, got %T", prog.Nodes[0])
	}
	if op, ok := stmt.Operator.(*Ident); !ok || op.Name != "IS_A" {
		t.Fatalf("unexpected operator: %#v", stmt.Operator)
	}
	if len(stmt.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(stmt.Args))
	}
}

func TestParseDestinationAndReference(t *testing.T) {
	src := "@f1 IS_A Dog Mammal\nhasProperty $f1 Furry\n"
	p, err := NewParser(src, CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(prog.Nodes))
	}
}

func TestSSAViolation(t *testing.T) {
	src := "@f1 IS_A Dog Mammal\n@f1 IS_A Cat Mammal\n"
	p, err := NewParser(src, CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected SSA violation error")
	}
	if _, ok := err.(*SSAViolation); !ok {
		t.Fatalf("expected *SSAViolation, got %T: %v", err, err)
	}
}

func TestUnresolvedReference(t *testing.T) {
	p, err := NewParser("hasProperty $never IS_A\n", CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected unresolved reference error")
	}
	if _, ok := err.(*UnresolvedReference); !ok {
		t.Fatalf("expected *UnresolvedReference, got %T: %v", err, err)
	}
}

func TestMultipleDestinations(t *testing.T) {
	p, err := NewParser("@a @b IS_A Dog Mammal\n", CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected multiple-destination error")
	}
	if _, ok := err.(*MultipleDestinations); !ok {
		t.Fatalf("expected *MultipleDestinations, got %T: %v", err, err)
	}
}

func TestParseCompoundExpression(t *testing.T) {
	p, err := NewParser("prove (And (IS_A Dog Mammal) (IS_A Mammal Animal))\n", CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := prog.Nodes[0].(*Statement)
	if len(stmt.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(stmt.Args))
	}
	compound, ok := stmt.Args[0].(*Compound)
	if !ok {
		t.Fatalf("expected *Compound, got %T", stmt.Args[0])
	}
	if len(compound.Args) != 2 {
		t.Fatalf("expected 2 nested args, got %d", len(compound.Args))
	}
}

func TestParseGraphWithBareReturn(t *testing.T) {
	src := "graph MyOp ?x ?y\nreturn And ?x ?y\nend\n"
	p, err := NewParser(src, CommentOff)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	decl, ok := prog.Nodes[0].(*GraphDeclaration)
	if !ok {
		t.Fatalf("expected *GraphDeclaration, got %T", prog.Nodes[0])
	}
	compound, ok := decl.Return.(*Compound)
	if !ok {
		t.Fatalf("expected bare-return compound, got %T", decl.Return)
	}
	if op, ok := compound.Operator.(*Ident); !ok || op.Name != "And" {
		t.Fatalf("unexpected return operator: %#v", compound.Operator)
	}
}

func TestCommentPolicyRequire(t *testing.T) {
	src := "theory Animals begin\nIS_A Dog Mammal\nend\n"
	p, err := NewParser(src, CommentRequire)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected comment policy violation")
	}
	if _, ok := err.(*CommentPolicyViolation); !ok {
		t.Fatalf("expected *CommentPolicyViolation, got %T: %v", err, err)
	}
}
