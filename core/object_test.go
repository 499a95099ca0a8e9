package core

import "testing"

func mustTokenize(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	return toks
}

func TestStructureSimpleObjectWithRuntime(t *testing.T) {
	toks := mustTokenize(t, `
PUSH1 0x00
tag_1:
JUMPDEST
sub_0: assembly {
  STOP
}
`)
	root, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure failed: %v", err)
	}
	if root.Runtime == nil {
		t.Fatal("expected a nested runtime object")
	}
	if root.Runtime.Name != "sub_0" {
		t.Fatalf("expected runtime named sub_0, got %q", root.Runtime.Name)
	}
}

func TestStructureUndefinedLabelReference(t *testing.T) {
	toks := mustTokenize(t, `
tag 99
STOP
`)
	_, err := Structure(toks)
	se, ok := err.(*StructureError)
	if !ok {
		t.Fatalf("expected *StructureError, got %T (%v)", err, err)
	}
	if se.LabelID != 99 {
		t.Fatalf("expected error naming label 99, got %d", se.LabelID)
	}
}

func TestStructureDuplicateLabel(t *testing.T) {
	toks := mustTokenize(t, `
tag_1:
STOP
tag_1:
STOP
`)
	if _, err := Structure(toks); err == nil {
		t.Fatal("expected StructureError for duplicate label definition")
	}
}

func TestStructureMultipleRuntimesRejected(t *testing.T) {
	toks := mustTokenize(t, `
sub_0: assembly {
  STOP
}
sub_1: assembly {
  STOP
}
`)
	_, err := Structure(toks)
	if _, ok := err.(*StructureError); !ok {
		t.Fatalf("expected *StructureError for a second nested sub-object, got %T (%v)", err, err)
	}
}

func TestUnreferencedDataWarning(t *testing.T) {
	toks := mustTokenize(t, `
data_1 0xdeadbeef
STOP
`)
	root, err := Structure(toks)
	if err != nil {
		t.Fatalf("Structure failed: %v", err)
	}
	unused := root.UnreferencedData()
	if len(unused) != 1 || unused[0] != 1 {
		t.Fatalf("expected data id 1 reported unreferenced, got %v", unused)
	}
}
