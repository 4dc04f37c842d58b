package codegen

// VarKind is the declared kind of a variable. Emitted code treats every
// variable as a 64-bit integer slot; the other kinds are accepted
// syntactically and collapse to integer semantics.
type VarKind int

const (
	VarInt VarKind = iota
	VarFloat
	VarString
	VarArray
	VarObject
)

// Variable maps a name to its storage: a frame offset for locals (negative)
// and parameters (positive, 16 and up), or an absolute address for globals.
type Variable struct {
	Name        string
	Kind        VarKind
	IsParam     bool
	IsGlobal    bool
	StackOffset int32  // frame-relative; locals negative, params >= 16
	GlobalAddr  uint64 // absolute; globals only
}

// Function is a user function: its parameter names, the code offset of its
// emitted body, and the source byte range the body occupies.
type Function struct {
	Name       string
	Params     []string
	CodeOffset int
	BodyPos    int
	BodyEnd    int
}

// FindVar scans the variable table newest-first and returns the first match,
// which yields inner-scope-first lookup without explicit scope frames.
func (g *CodeGen) FindVar(name string) *Variable {
	for i := len(g.vars) - 1; i >= 0; i-- {
		if g.vars[i].Name == name {
			return &g.vars[i]
		}
	}
	return nil
}

// AddVar allocates storage for a new variable: an 8-byte frame slot when
// compiling a function body, otherwise the next 8-byte global slot at
// GlobalBase.
func (g *CodeGen) AddVar(name string, kind VarKind) *Variable {
	if len(g.vars) >= MaxVars {
		g.overflow.vars++
		return nil
	}
	v := Variable{Name: clipIdent(name), Kind: kind}
	if g.inFunction {
		g.stackSize += 8
		v.StackOffset = -g.stackSize
	} else {
		v.IsGlobal = true
		v.GlobalAddr = GlobalBase + g.globalBytes
		g.globalBytes += 8
	}
	g.vars = append(g.vars, v)
	return &g.vars[len(g.vars)-1]
}

// BindParam adds a parameter entry at a fixed positive frame offset. Used
// while emitting function bodies; parameters are never globals.
func (g *CodeGen) BindParam(name string, offset int32) {
	if len(g.vars) >= MaxVars {
		g.overflow.vars++
		return
	}
	g.vars = append(g.vars, Variable{
		Name:        clipIdent(name),
		Kind:        VarInt,
		IsParam:     true,
		StackOffset: offset,
	})
}

// FindFunc is a linear scan over the function table.
func (g *CodeGen) FindFunc(name string) *Function {
	for i := range g.funcs {
		if g.funcs[i].Name == name {
			return &g.funcs[i]
		}
	}
	return nil
}

// RegisterFunc returns the function entry for name, creating it if needed.
// Pass 1 and Pass 2 both walk every fn declaration, so registration must be
// idempotent by name: the second walk re-captures the same body range into
// the existing entry.
func (g *CodeGen) RegisterFunc(name string) *Function {
	if fn := g.FindFunc(name); fn != nil {
		fn.Params = fn.Params[:0]
		fn.BodyPos = 0
		fn.BodyEnd = 0
		return fn
	}
	if len(g.funcs) >= MaxFuncs {
		g.overflow.funcs++
		return nil
	}
	g.funcs = append(g.funcs, Function{Name: clipIdent(name)})
	return &g.funcs[len(g.funcs)-1]
}

// Funcs returns the function table for the body-emission pass.
func (g *CodeGen) Funcs() []Function { return g.funcs }

// FuncAt returns a pointer into the function table.
func (g *CodeGen) FuncAt(i int) *Function { return &g.funcs[i] }

// BeginFunctionScope marks the start of a function body: local allocation
// switches to frame slots. It returns the state EndFunctionScope restores.
func (g *CodeGen) BeginFunctionScope() (savedVars int, savedStack int32) {
	savedVars, savedStack = len(g.vars), g.stackSize
	g.inFunction = true
	return savedVars, savedStack
}

// EndFunctionScope drops the body's locals and parameters and restores
// top-level (global) allocation.
func (g *CodeGen) EndFunctionScope(savedVars int, savedStack int32) {
	g.vars = g.vars[:savedVars]
	g.stackSize = savedStack
	g.inFunction = false
}

// clipIdent bounds identifier names to the table's storage limit.
func clipIdent(name string) string {
	if len(name) > MaxIdent-1 {
		return name[:MaxIdent-1]
	}
	return name
}
