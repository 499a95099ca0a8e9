// SPDX-License-Identifier: BUSL-1.1
//
// Assembler — emits concrete EVM bytecode for a laid-out Object.
package core

// Assemble emits o's bytecode. Layout must have already converged (o.Layout
// returned nil) — calling it before that produces an EncodingError, not a
// panic, since a caller-supplied Object could reach this in either order.
func (o *Object) Assemble() ([]byte, error) {
	if !o.resolved {
		return nil, &EncodingError{Msg: "object " + o.Name + " assembled before layout converged"}
	}
	if o.Code != nil {
		return o.Code, nil
	}

	buf := make([]byte, 0, o.Size)
	for i, t := range o.Tokens {
		switch t.Kind {
		case TokLabelDef, TokDataBegin:
			// No bytes at this position; DataBegin contents are appended
			// after all code, below.

		case TokOp:
			b, ok := opcodeTable[t.Mnemonic]
			if !ok {
				return nil, &EncodingError{Msg: "unknown mnemonic " + t.Mnemonic}
			}
			buf = append(buf, b)

		case TokPush:
			if t.Width == pushZeroWidth {
				buf = append(buf, push0Opcode)
				break
			}
			w := literalPushWidth(t)
			buf = append(buf, pushOpcode(w))
			buf = appendBigEndian(buf, t.Value.Bytes(), w)

		case tokRuntime:
			rt, err := o.Runtime.Assemble()
			if err != nil {
				return nil, err
			}
			buf = append(buf, rt...)

		case TokPushLabel:
			off, ok := o.labelOffsets[t.LabelID]
			if !ok {
				return nil, &StructureError{LabelID: t.LabelID, Object: o.Name, Msg: "reference to undefined label"}
			}
			w := o.widths[i]
			if minimalWidthInt(off) > w {
				return nil, &EncodingError{Msg: "resolved label offset does not fit declared width"}
			}
			buf = append(buf, pushOpcode(w))
			buf = appendIntBigEndian(buf, off, w)

		case TokPushData:
			off := o.dataOffsets[t.DataID]
			w := o.widths[i]
			if minimalWidthInt(off) > w {
				return nil, &EncodingError{Msg: "resolved data offset does not fit declared width"}
			}
			buf = append(buf, pushOpcode(w))
			buf = appendIntBigEndian(buf, off, w)

		case TokPushObjectSize:
			w := o.widths[i]
			if minimalWidthInt(o.Runtime.Size) > w {
				return nil, &EncodingError{Msg: "resolved object size does not fit declared width"}
			}
			buf = append(buf, pushOpcode(w))
			buf = appendIntBigEndian(buf, o.Runtime.Size, w)

		case TokPushObjectOffset:
			w := o.widths[i]
			if minimalWidthInt(o.runtimeStart) > w {
				return nil, &EncodingError{Msg: "resolved object offset does not fit declared width"}
			}
			buf = append(buf, pushOpcode(w))
			buf = appendIntBigEndian(buf, o.runtimeStart, w)
		}
	}

	for _, id := range o.DataOrder {
		buf = append(buf, o.DataDefs[id]...)
	}

	if len(buf) != o.Size {
		return nil, &EncodingError{Msg: "assembled length diverged from resolved layout size"}
	}
	o.Code = buf
	return buf, nil
}

func pushOpcode(width int) byte { return 0x5f + byte(width) }

// appendBigEndian appends v, which is already minimally-encoded big-endian,
// left-padded with zero bytes so that the total occupies width bytes.
func appendBigEndian(buf []byte, v []byte, width int) []byte {
	for i := 0; i < width-len(v); i++ {
		buf = append(buf, 0)
	}
	return append(buf, v...)
}

// appendIntBigEndian appends v encoded as a big-endian integer occupying
// exactly width bytes.
func appendIntBigEndian(buf []byte, v int, width int) []byte {
	start := len(buf)
	for i := 0; i < width; i++ {
		buf = append(buf, 0)
	}
	for i := 0; i < width; i++ {
		buf[start+width-1-i] = byte(v >> (8 * i))
	}
	return buf
}
