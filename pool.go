package bfs

// variablePool is the cache: it exclusively owns every Variable ever
// created by a System and recycles released ones. Growth of the free list
// is the ordinary doubling behavior of append; no separate bound is kept,
// matching spec's "nominal size, growth doubles the backing array" with
// Go's native slice growth instead of a hand-rolled doubling routine.
type variablePool struct {
	free []*Variable
}

func newVariablePool() *variablePool {
	return &variablePool{}
}

func (p *variablePool) acquire(kind VarKind) *Variable {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		v.kind = kind
		return v
	}
	return &Variable{kind: kind, definitionRowIndex: -1}
}

func (p *variablePool) release(v *Variable) {
	v.name = ""
	v.anchor = nil
	v.kind = Unknown
	v.strength = Low
	v.id = 0
	v.definitionRowIndex = -1
	v.usageInRowCount = 0
	v.computedValue = 0
	v.clientEquations = v.clientEquations[:0]
	v.clearStrengths()
	p.free = append(p.free, v)
}

// rowPool is the row-side counterpart of the Cache: rows are exclusively
// owned by the tableau, and released rows are returned here for reuse.
type rowPool struct {
	free []*Row
}

func newRowPool() *rowPool {
	return &rowPool{}
}

func (p *rowPool) acquire() *Row {
	if n := len(p.free); n > 0 {
		r := p.free[n-1]
		p.free = p.free[:n-1]
		r.used = true
		return r
	}
	r := &Row{used: true}
	r.body = newSparseRow(r)
	return r
}

func (p *rowPool) release(r *Row) {
	if !r.used {
		return
	}
	r.detachClients()
	r.used = false
	r.key = nil
	r.constant = 0
	r.body.clear()
	p.free = append(p.free, r)
}
