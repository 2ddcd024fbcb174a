package llvm

import (
	"zenc/internal/ast"
	"zenc/internal/backend/ir"
)

// registerCompilerIntrinsics installs the low-level compiler.* primitives:
// raw memory, pointer arithmetic and enum introspection.
func registerCompilerIntrinsics(m map[intrinsicKey]intrinsicFunc) {
	m[intrinsicKey{"compiler", "raw_allocate"}] = (*Compiler).emitRawAllocate
	m[intrinsicKey{"compiler", "raw_deallocate"}] = (*Compiler).emitRawDeallocate
	m[intrinsicKey{"compiler", "raw_reallocate"}] = (*Compiler).emitRawReallocate
	m[intrinsicKey{"compiler", "raw_ptr_offset"}] = (*Compiler).emitRawPtrOffset
	m[intrinsicKey{"compiler", "raw_ptr_cast"}] = (*Compiler).emitRawPtrCast
	m[intrinsicKey{"compiler", "null_ptr"}] = (*Compiler).emitNullPtr
	m[intrinsicKey{"compiler", "is_null"}] = (*Compiler).emitIsNull
	m[intrinsicKey{"compiler", "ptr_to_int"}] = (*Compiler).emitPtrToInt
	m[intrinsicKey{"compiler", "int_to_ptr"}] = (*Compiler).emitIntToPtr
	m[intrinsicKey{"compiler", "discriminant"}] = (*Compiler).emitDiscriminant
	m[intrinsicKey{"compiler", "get_payload"}] = (*Compiler).emitGetPayload
	m[intrinsicKey{"compiler", "memset"}] = (*Compiler).emitMemset
	m[intrinsicKey{"compiler", "memcpy"}] = (*Compiler).emitMemcpy
}

func rawBytePtr() *ast.Type { return ast.RawPtr(ast.U8()) }

func (c *Compiler) sizeArg(v value, what string) (ir.Value, error) {
	if !ir.IsInt(v.v.Type()) {
		return nil, typeMismatch(ast.Usize(), v.t, "%s must be an integer", what)
	}
	return resizeInt(c.fc.b, v.v, 64, v.t.IsSigned()), nil
}

func (c *Compiler) ptrArg(v value, what string) (ir.Value, error) {
	if !ir.IsPtr(v.v.Type()) {
		return nil, typeMismatch(rawBytePtr(), v.t, "%s must be a pointer", what)
	}
	return v.v, nil
}

func (c *Compiler) emitRawAllocate(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	size, err := c.sizeArg(args[0], "allocation size")
	if err != nil {
		return value{}, err
	}
	p, err := c.callRuntime("malloc", size)
	if err != nil {
		return value{}, err
	}
	return value{v: p, t: rawBytePtr()}, nil
}

// emitRawDeallocate accepts an optional size argument, which is ignored.
func (c *Compiler) emitRawDeallocate(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 2)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "deallocated value")
	if err != nil {
		return value{}, err
	}
	_, err = c.callRuntime("free", p)
	return voidValue(), err
}

// emitRawReallocate takes (ptr, new_size) or (ptr, old_size, new_size).
func (c *Compiler) emitRawReallocate(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 2, 3)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "reallocated value")
	if err != nil {
		return value{}, err
	}
	size, err := c.sizeArg(args[len(args)-1], "allocation size")
	if err != nil {
		return value{}, err
	}
	r, err := c.callRuntime("realloc", p, size)
	if err != nil {
		return value{}, err
	}
	return value{v: r, t: rawBytePtr()}, nil
}

// emitRawPtrOffset offsets by bytes.
func (c *Compiler) emitRawPtrOffset(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 2, 2)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "offset base")
	if err != nil {
		return value{}, err
	}
	off, err := c.sizeArg(args[1], "offset")
	if err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.GEP(ir.I8, p, off), t: args[0].t}, nil
}

func (c *Compiler) emitRawPtrCast(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "cast value")
	if err != nil {
		return value{}, err
	}
	return value{v: p, t: rawBytePtr()}, nil
}

func (c *Compiler) emitNullPtr(call *ast.CallExpr) (value, error) {
	if _, err := c.intrinsicArgs(call, 0, 0); err != nil {
		return value{}, err
	}
	return value{v: ir.Null(), t: rawBytePtr()}, nil
}

func (c *Compiler) emitIsNull(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "tested value")
	if err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.ICmp(ir.PredEQ, p, ir.Null()), t: ast.Bool()}, nil
}

func (c *Compiler) emitPtrToInt(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "converted value")
	if err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.Cast(ir.OpPtrToInt, p, ir.I64), t: ast.I64()}, nil
}

func (c *Compiler) emitIntToPtr(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	n, err := c.sizeArg(args[0], "address")
	if err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.Cast(ir.OpIntToPtr, n, ir.Ptr), t: rawBytePtr()}, nil
}

func (c *Compiler) enumArg(v value, what string) error {
	st, ok := v.v.Type().(*ir.StructType)
	if !ok || len(st.Fields) != 2 || !ir.Equal(st.Fields[0], ir.I64) || !ir.IsPtr(st.Fields[1]) {
		return typeMismatch(ast.EnumType("enum"), v.t, "%s must be an enum value", what)
	}
	return nil
}

func (c *Compiler) emitDiscriminant(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	if err := c.enumArg(args[0], "discriminant operand"); err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.ExtractValue(args[0].v, 0), t: ast.I64()}, nil
}

func (c *Compiler) emitGetPayload(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 1, 1)
	if err != nil {
		return value{}, err
	}
	if err := c.enumArg(args[0], "payload operand"); err != nil {
		return value{}, err
	}
	return value{v: c.fc.b.ExtractValue(args[0].v, 1), t: rawBytePtr()}, nil
}

func (c *Compiler) emitMemset(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 3, 3)
	if err != nil {
		return value{}, err
	}
	p, err := c.ptrArg(args[0], "memset destination")
	if err != nil {
		return value{}, err
	}
	if !ir.IsInt(args[1].v.Type()) {
		return value{}, typeMismatch(ast.U8(), args[1].t, "memset value must be an integer")
	}
	fill := resizeInt(c.fc.b, args[1].v, 32, false)
	n, err := c.sizeArg(args[2], "memset length")
	if err != nil {
		return value{}, err
	}
	_, err = c.callRuntime("memset", p, fill, n)
	return voidValue(), err
}

func (c *Compiler) emitMemcpy(call *ast.CallExpr) (value, error) {
	args, err := c.intrinsicArgs(call, 3, 3)
	if err != nil {
		return value{}, err
	}
	dst, err := c.ptrArg(args[0], "memcpy destination")
	if err != nil {
		return value{}, err
	}
	src, err := c.ptrArg(args[1], "memcpy source")
	if err != nil {
		return value{}, err
	}
	n, err := c.sizeArg(args[2], "memcpy length")
	if err != nil {
		return value{}, err
	}
	_, err = c.callRuntime("memcpy", dst, src, n)
	return voidValue(), err
}
