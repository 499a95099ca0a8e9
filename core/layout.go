// SPDX-License-Identifier: BUSL-1.1
//
// Labeler — iteratively assigns push widths and label offsets until a fixed
// point.
package core

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// maxLayoutIterations bounds the convergence loop. Widths are monotonically
// non-decreasing and capped at 32, so real inputs converge in far fewer
// iterations than this; hitting the cap indicates an implementation bug.
const maxLayoutIterations = 4096

// Layout resolves label offsets, data offsets, and minimal push widths for
// o and (bottom-up) any nested runtime object. It is safe
// to call again after SubstituteRuntime replaces o.Runtime.
func (o *Object) Layout() error {
	if o.Runtime != nil && !o.Runtime.resolved {
		if err := o.Runtime.Layout(); err != nil {
			return err
		}
	}

	widths := make(map[int]int, len(o.Tokens))
	for i, t := range o.Tokens {
		switch t.Kind {
		case TokPushLabel, TokPushData, TokPushObjectSize, TokPushObjectOffset:
			widths[i] = 1
		}
	}

	for iter := 0; ; iter++ {
		if iter >= maxLayoutIterations {
			return &LayoutError{Msg: "width resolution failed to converge within " + strconv.Itoa(maxLayoutIterations) + " iterations"}
		}

		pc := 0
		labelOffsets := map[int]int{}
		runtimeStart := -1

		for i, t := range o.Tokens {
			switch t.Kind {
			case TokLabelDef:
				labelOffsets[t.LabelID] = pc
			case TokOp:
				pc++
			case TokPush:
				pc += 1 + literalPushWidth(t)
			case tokRuntime:
				runtimeStart = pc
				pc += o.Runtime.Size
			case TokDataBegin:
				// Zero contribution here; the data region is appended
				// after all code, below.
			case TokPushLabel, TokPushData, TokPushObjectSize, TokPushObjectOffset:
				pc += 1 + widths[i]
			}
		}

		dataStart := pc
		dataOffsets := map[int]int{}
		cum := dataStart
		for _, id := range o.DataOrder {
			dataOffsets[id] = cum
			cum += len(o.DataDefs[id])
		}

		changed := false
		for i, t := range o.Tokens {
			var need int
			switch t.Kind {
			case TokPushLabel:
				off, ok := labelOffsets[t.LabelID]
				if !ok {
					return &StructureError{LabelID: t.LabelID, Object: o.Name, Msg: "reference to undefined label"}
				}
				need = minimalWidthInt(off)
			case TokPushData:
				need = minimalWidthInt(dataOffsets[t.DataID])
			case TokPushObjectSize:
				need = minimalWidthInt(o.Runtime.Size)
			case TokPushObjectOffset:
				need = minimalWidthInt(runtimeStart)
			default:
				continue
			}
			if need > widths[i] {
				widths[i] = need
				changed = true
			}
		}

		if !changed {
			o.labelOffsets = labelOffsets
			o.dataOffsets = dataOffsets
			o.runtimeStart = runtimeStart
			o.widths = widths
			o.Size = cum
			o.resolved = true
			logrus.WithFields(logrus.Fields{
				"object":     o.Name,
				"iterations": iter + 1,
				"size":       o.Size,
			}).Debug("layout converged")
			return nil
		}
	}
}

// minimalWidthInt returns the smallest w in {1..32} such that v fits in w
// big-endian bytes. Offset zero still occupies one byte: no PUSH0
// substitution is performed for label/data/object pushes.
func minimalWidthInt(v int) int {
	if v < 0 {
		v = 0
	}
	w := 0
	for x := v; x > 0; x >>= 8 {
		w++
	}
	if w == 0 {
		w = 1
	}
	if w > 32 {
		w = 32
	}
	return w
}

// literalPushWidth returns the number of immediate bytes a literal TokPush
// token will occupy: 0 for PUSH0, the declared width if fixed, or the
// value's minimal width otherwise.
func literalPushWidth(t Token) int {
	if t.Width == pushZeroWidth {
		return 0
	}
	if t.Width != pushMinWidth {
		return t.Width
	}
	b := t.Value.Bytes()
	if len(b) == 0 {
		return 1
	}
	return len(b)
}
