package llvm

import (
	"fmt"
	"sync/atomic"

	"zenc/internal/ast"
	"zenc/internal/backend/ir"
	"zenc/internal/diag"
	"zenc/internal/layout"
	"zenc/internal/symbols"
	"zenc/internal/trace"
)

// closureSeq numbers synthesized closure functions. It is the only state
// shared between Compiler instances.
var closureSeq atomic.Uint64

// Options configures a Compiler.
type Options struct {
	ModuleName string
	Triple     string
	// Reporter receives warnings such as CgnMainReturnsResult.
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// TraceParent is the span the codegen span is nested under.
	TraceParent uint64
}

// Compiler lowers one Program into one ir.Module. It is not safe for
// concurrent use; create one per compilation.
type Compiler struct {
	mod      *ir.Module
	layout   *layout.LayoutEngine
	reporter diag.Reporter
	tracer   trace.Tracer
	parent   uint64

	globals *symbols.Table[Symbol]
	structs map[string]*structInfo
	enums   map[string]*enumInfo
	funcs   map[string]*funcInfo
	// imports maps an alias to the std module it names.
	imports    map[string]string
	importList []string
	intrinsics map[intrinsicKey]intrinsicFunc

	fc *FunctionContext
}

func New(opts Options) *Compiler {
	name := opts.ModuleName
	if name == "" {
		name = "main"
	}
	mod := ir.NewModule(name)
	if opts.Triple != "" {
		mod.Triple = opts.Triple
	}
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	c := &Compiler{
		mod:        mod,
		layout:     layout.New(layout.X86_64LinuxGNU()),
		reporter:   rep,
		tracer:     tr,
		parent:     opts.TraceParent,
		globals:    symbols.NewTable[Symbol](),
		structs:    make(map[string]*structInfo),
		enums:      make(map[string]*enumInfo),
		funcs:      make(map[string]*funcInfo),
		imports:    make(map[string]string),
		intrinsics: builtinIntrinsics(),
	}
	for _, def := range builtinEnums() {
		c.registerEnum(def, true)
	}
	return c
}

// Module returns the module being built.
func (c *Compiler) Module() *ir.Module { return c.mod }

// Compile is a one-shot helper around New and CompileProgram.
func Compile(prog *ast.Program, opts Options) (*ir.Module, error) {
	c := New(opts)
	if err := c.CompileProgram(prog); err != nil {
		return nil, err
	}
	return c.mod, nil
}

// CompileProgram registers every type, then every signature, then compiles
// every body, so declarations may refer to each other in any order. The first
// error stops compilation.
func (c *Compiler) CompileProgram(prog *ast.Program) (err error) {
	span := trace.Begin(c.tracer, trace.ScopeModule, "codegen:"+c.mod.Name, c.parent)
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		span.End(detail)
	}()
	if prog == nil {
		return internalError("nil program")
	}

	for _, it := range prog.Items {
		if it.Kind == ast.ItemImport && it.Import != nil {
			c.addImport(it.Import)
		}
	}
	if err := c.registerTypes(prog); err != nil {
		return err
	}
	if err := c.declareAll(prog); err != nil {
		return err
	}
	for _, it := range prog.Items {
		switch it.Kind {
		case ast.ItemFunction:
			if err := c.compileFunction(c.funcs[it.Func.Name]); err != nil {
				return withSpan(err, it.Span)
			}
		case ast.ItemStruct:
			for _, m := range it.Struct.Methods {
				if err := c.compileFunction(c.funcs[methodName(it.Struct.Name, m.Name)]); err != nil {
					return withSpan(err, it.Span)
				}
			}
		}
	}
	if err := c.mod.Verify(); err != nil {
		return internalError("malformed module: %v", err)
	}
	return nil
}

// registerTypes is pass 1: structs as opaque names first, then their bodies,
// then enums.
func (c *Compiler) registerTypes(prog *ast.Program) error {
	for _, it := range prog.Items {
		if it.Kind != ast.ItemStruct || it.Struct == nil {
			continue
		}
		def := it.Struct
		if _, dup := c.structs[def.Name]; dup {
			return withSpan(typeError("duplicate struct %q", def.Name), it.Span)
		}
		si := &structInfo{
			name:   def.Name,
			def:    def,
			fields: def.Fields,
			index:  make(map[string]int, len(def.Fields)),
			ty:     c.mod.NamedStruct(def.Name),
		}
		c.structs[def.Name] = si
		_ = c.globals.Replace(def.Name, Symbol{Kind: SymType, Struct: si})
	}
	for _, it := range prog.Items {
		if it.Kind == ast.ItemEnum && it.Enum != nil {
			if ei, ok := c.enums[it.Enum.Name]; ok && !ei.builtin {
				return withSpan(typeError("duplicate enum %q", it.Enum.Name), it.Span)
			}
			c.registerEnum(it.Enum, false)
		}
	}
	for _, it := range prog.Items {
		if it.Kind != ast.ItemStruct || it.Struct == nil {
			continue
		}
		si := c.structs[it.Struct.Name]
		fields := make([]ir.Type, 0, len(si.fields))
		for i, f := range si.fields {
			ft, err := c.toIRType(f.Type)
			if err != nil {
				return withSpan(err, it.Span)
			}
			if ir.IsVoid(ft) {
				return withSpan(typeError("field %s.%s has type void", si.name, f.Name), it.Span)
			}
			if _, dup := si.index[f.Name]; dup {
				return withSpan(typeError("duplicate field %s.%s", si.name, f.Name), it.Span)
			}
			si.index[f.Name] = i
			fields = append(fields, ft)
		}
		si.ty.Fields = fields
		c.layout.Forget(si.ty)
	}
	return nil
}

// declareAll is pass 2: externals, functions and methods get signatures.
func (c *Compiler) declareAll(prog *ast.Program) error {
	for _, it := range prog.Items {
		var err error
		switch it.Kind {
		case ast.ItemExternal:
			_, err = c.declareExternal(it.Extern)
		case ast.ItemFunction:
			_, err = c.declareFunction(it.Func, it.Func.Name)
		case ast.ItemStruct:
			for _, m := range it.Struct.Methods {
				if _, err = c.declareFunction(m, methodName(it.Struct.Name, m.Name)); err != nil {
					break
				}
			}
		}
		if err != nil {
			return withSpan(err, it.Span)
		}
	}
	return nil
}

func methodName(structName, method string) string {
	return structName + "." + method
}

func (c *Compiler) addImport(imp *ast.ModuleImport) {
	alias := imp.Alias
	if alias == "" {
		alias = imp.Module()
	}
	if _, seen := c.imports[alias]; !seen {
		c.importList = append(c.importList, alias)
	}
	c.imports[alias] = imp.Module()
}

// importMarker is the value of the i64 local bound to an import alias.
func importMarker(module string) int64 {
	switch module {
	case "io":
		return 1
	case "math":
		return 2
	case "core":
		return 3
	case "GPA", "gpa":
		return 4
	case "AsyncPool", "async_pool":
		return 5
	case "build":
		return 7
	}
	return 0
}

func (c *Compiler) tracePoint(name, detail string) {
	trace.Point(c.tracer, trace.ScopeNode, name, detail, c.parent)
}

func (c *Compiler) warn(code diag.Code, sp *ast.Function, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if sp != nil && !sp.Span.Empty() {
		s := sp.Span
		diag.ReportWarning(c.reporter, code, &s, msg).Emit()
		return
	}
	diag.ReportWarning(c.reporter, code, nil, msg).Emit()
}
