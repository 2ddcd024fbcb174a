package layout

import (
	"fortio.org/safecast"

	"zenc/internal/backend/ir"
)

func (e *LayoutEngine) computeLayout(t ir.Type, state *layoutState) (TypeLayout, *LayoutError) {
	switch tt := t.(type) {
	case *ir.IntType:
		if tt.Bits == 1 {
			return TypeLayout{Size: 1, Align: 1}, nil
		}
		return scalarLayoutBytes((tt.Bits + 7) / 8), nil

	case *ir.FloatType:
		return scalarLayoutBytes(tt.Bits / 8), nil

	case *ir.PtrType:
		return e.ptrLayout(), nil

	case *ir.VoidType:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}

	case *ir.FuncType:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}

	case *ir.ArrayType:
		if tt.Len < 0 {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNegativeLength, Type: t.String(), Value: int64(tt.Len)}
		}
		elem, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		stride := roundUp(elem.Size, elem.Align)
		return TypeLayout{Size: stride * tt.Len, Align: max(1, elem.Align)}, nil

	case *ir.StructType:
		if tt.Name != "" && tt.Fields == nil {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOpaque, Type: t.String()}
		}
		return e.structLayout(tt, state)
	}
	return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t.String()}
}

func (e *LayoutEngine) structLayout(st *ir.StructType, state *layoutState) (TypeLayout, *LayoutError) {
	offsets := make([]int, len(st.Fields))
	aligns := make([]int, len(st.Fields))
	off, maxAlign := 0, 1
	for i, f := range st.Fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		a := max(1, fl.Align)
		off = roundUp(off, a)
		offsets[i] = off
		aligns[i] = a
		off += fl.Size
		maxAlign = max(maxAlign, a)
	}
	return TypeLayout{
		Size:         roundUp(off, maxAlign),
		Align:        maxAlign,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	return TypeLayout{Size: e.Target.PtrSize, Align: e.Target.PtrAlign}
}

func scalarLayoutBytes(n int) TypeLayout {
	if n <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: n, Align: n}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	a, err := safecast.Conv[uint64](align)
	if err != nil {
		return n
	}
	u, err := safecast.Conv[uint64](n)
	if err != nil {
		return n
	}
	r, err := safecast.Conv[int]((u + a - 1) / a * a)
	if err != nil {
		return n
	}
	return r
}
