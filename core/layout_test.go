package core

import (
	"testing"

	"github.com/holiman/uint256"
)

// buildLabelChain constructs a root object with n filler JUMPDEST ops followed
// by a label definition, a push of that label, and a trailing runtime
// marker — enough to exercise width widening as the filler grows the
// label's resolved offset across the single/double-byte boundary.
func buildLabelChain(fillerOps int, runtimeSize int) *Object {
	root := &Object{Name: "root"}
	for i := 0; i < fillerOps; i++ {
		root.Tokens = append(root.Tokens, Token{Kind: TokOp, Mnemonic: "JUMPDEST"})
	}
	root.Tokens = append(root.Tokens,
		Token{Kind: TokLabelDef, LabelID: 1},
		Token{Kind: TokPushLabel, LabelID: 1},
	)
	root.Runtime = &Object{Name: "sub_0", resolved: true, Size: runtimeSize, Code: make([]byte, runtimeSize)}
	root.Tokens = append(root.Tokens, Token{Kind: tokRuntime, Object: "sub_0"})
	return root
}

func TestLayoutConvergesSimpleChain(t *testing.T) {
	root := buildLabelChain(10, 5)
	if err := root.Layout(); err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if root.labelOffsets[1] != 10 {
		t.Fatalf("expected label 1 at offset 10, got %d", root.labelOffsets[1])
	}
	// 10 filler ops (1 byte each) + label def (0 bytes) + PUSH1<offset> (2
	// bytes, since offset 10 fits in 1 byte) + runtime (5 bytes).
	if root.Size != 10+2+5 {
		t.Fatalf("unexpected resolved size: %d", root.Size)
	}
}

func TestLayoutWidensAcross256Boundary(t *testing.T) {
	// Enough filler that the label's own resolved offset exceeds 255,
	// forcing its push width from 1 to 2 bytes (spec scenario S5).
	root := buildLabelChain(260, 1)
	if err := root.Layout(); err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if root.widths[261] != 2 {
		t.Fatalf("expected widened push width 2, got %d", root.widths[261])
	}
	if minimalWidthInt(root.labelOffsets[1]) != 2 {
		t.Fatalf("expected label offset to require 2 bytes, got offset %d", root.labelOffsets[1])
	}
}

func TestLayoutUndefinedLabelFails(t *testing.T) {
	root := &Object{
		Name: "root",
		Tokens: []Token{
			{Kind: TokPushLabel, LabelID: 7},
		},
	}
	if _, err := root.Assemble(); err == nil {
		t.Fatal("expected error from unresolved object")
	}
	err := root.Layout()
	if _, ok := err.(*StructureError); !ok {
		t.Fatalf("expected *StructureError for undefined label, got %T (%v)", err, err)
	}
}

func TestMinimalWidthInt(t *testing.T) {
	cases := []struct {
		v    int
		want int
	}{
		{0, 1},
		{1, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
	}
	for _, c := range cases {
		if got := minimalWidthInt(c.v); got != c.want {
			t.Errorf("minimalWidthInt(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestLiteralPushWidthRespectsDeclaredWidth(t *testing.T) {
	tok := Token{Kind: TokPush, Width: 4, Value: uint256.NewInt(1)}
	if w := literalPushWidth(tok); w != 4 {
		t.Fatalf("expected declared width 4, got %d", w)
	}
	tok0 := Token{Kind: TokPush, Width: pushZeroWidth, Value: uint256.NewInt(0)}
	if w := literalPushWidth(tok0); w != 0 {
		t.Fatalf("expected PUSH0 width 0, got %d", w)
	}
}
