// SPDX-License-Identifier: BUSL-1.1
//
// Structurer — groups a flat token stream into a tree of nested objects.
package core

// tokRuntime is an internal-only token kind, never produced by the
// tokenizer: the structurer rewrites each ObjectBegin/.../ObjectEnd run
// into a single tokRuntime marker in the parent's own token sequence,
// pointing at the resolved child Object. This keeps layout/assembly as a
// single flat walk over o.Tokens instead of a second tree traversal.
const tokRuntime TokenKind = -1

// Object is a named, recursive container of tokens. The root object is the
// deployment object; at most one nested runtime object is supported (more
// is a fatal StructureError).
type Object struct {
	Name string

	Tokens []Token

	DataDefs  map[int][]byte
	DataOrder []int

	Runtime *Object

	resolved bool // layout has converged (or the object was substituted)
	Size     int
	Code     []byte

	labelOffsets  map[int]int
	dataOffsets   map[int]int
	runtimeStart  int
	widths        map[int]int
}

// Structure builds an Object tree from a flat token stream. The returned
// Object is the root (deployment) object.
func Structure(toks []Token) (*Object, error) {
	root, rest, err := structureOne("<root>", toks)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &StructureError{Msg: "unbalanced object braces: trailing tokens after root object"}
	}
	return root, nil
}

// structureOne consumes a prefix of toks belonging to a single object (ending
// either at end-of-input or at the ObjectEnd matching an already-open
// object), returning the built Object and the unconsumed remainder.
func structureOne(name string, toks []Token) (*Object, []Token, error) {
	obj := &Object{
		Name:     name,
		DataDefs: map[int][]byte{},
	}
	labelSeen := map[int]bool{}
	dataSeen := map[int]bool{}
	labelRefs := map[int]bool{}
	dataRefs := map[int]bool{}
	objectRefs := map[string]bool{}

	i := 0
	for i < len(toks) {
		tok := toks[i]
		switch tok.Kind {
		case TokObjectEnd:
			if name == "<root>" {
				return nil, nil, &StructureError{Msg: "unbalanced object braces: unexpected closing }"}
			}
			// Belongs to our caller (the enclosing object); stop here.
			return finishObject(obj, labelSeen, dataSeen, labelRefs, dataRefs, objectRefs, toks[i+1:])

		case TokObjectBegin:
			if obj.Runtime != nil {
				return nil, nil, &StructureError{Object: tok.Object, Msg: "more than one nested sub-object is not supported"}
			}
			child, rest, err := structureOne(tok.Object, toks[i+1:])
			if err != nil {
				return nil, nil, err
			}
			obj.Runtime = child
			obj.Tokens = append(obj.Tokens, Token{Kind: tokRuntime, Object: tok.Object})
			toks = rest
			i = 0
			continue

		case TokLabelDef:
			if labelSeen[tok.LabelID] {
				return nil, nil, &StructureError{LabelID: tok.LabelID, Object: name, Msg: "duplicate label definition"}
			}
			labelSeen[tok.LabelID] = true
			obj.Tokens = append(obj.Tokens, tok)

		case TokDataBegin:
			if dataSeen[tok.DataID] {
				return nil, nil, &StructureError{LabelID: tok.DataID, Object: name, Msg: "duplicate data region definition"}
			}
			dataSeen[tok.DataID] = true
			obj.DataDefs[tok.DataID] = tok.Data
			obj.DataOrder = append(obj.DataOrder, tok.DataID)
			obj.Tokens = append(obj.Tokens, tok)

		case TokPushLabel:
			labelRefs[tok.LabelID] = true
			obj.Tokens = append(obj.Tokens, tok)

		case TokPushData:
			dataRefs[tok.DataID] = true
			obj.Tokens = append(obj.Tokens, tok)

		case TokPushObjectSize, TokPushObjectOffset:
			objectRefs[tok.Object] = true
			obj.Tokens = append(obj.Tokens, tok)

		default:
			obj.Tokens = append(obj.Tokens, tok)
		}
		i++
	}

	if name != "<root>" {
		return nil, nil, &StructureError{Object: name, Msg: "unbalanced object braces: missing closing }"}
	}
	return finishObject(obj, labelSeen, dataSeen, labelRefs, dataRefs, objectRefs, nil)
}

// UnreferencedData returns the data ids defined in this object but never
// pushed anywhere in it — a warning-level condition, not fatal.
func (o *Object) UnreferencedData() []int {
	used := map[int]bool{}
	for _, t := range o.Tokens {
		if t.Kind == TokPushData {
			used[t.DataID] = true
		}
	}
	var out []int
	for _, id := range o.DataOrder {
		if !used[id] {
			out = append(out, id)
		}
	}
	return out
}

func finishObject(obj *Object, labelSeen, dataSeen, labelRefs, dataRefs map[int]bool, objectRefs map[string]bool, rest []Token) (*Object, []Token, error) {
	for id := range labelRefs {
		if !labelSeen[id] {
			return nil, nil, &StructureError{LabelID: id, Object: obj.Name, Msg: "reference to undefined label"}
		}
	}
	for id := range dataRefs {
		if !dataSeen[id] {
			return nil, nil, &StructureError{LabelID: id, Object: obj.Name, Msg: "reference to undefined data region"}
		}
	}
	for name := range objectRefs {
		if obj.Runtime == nil || obj.Runtime.Name != name {
			return nil, nil, &StructureError{Object: name, Msg: "reference to undefined sub-object"}
		}
	}
	return obj, rest, nil
}
