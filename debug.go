package bfs

// Snapshot is a read-only, dump-friendly view of a System's current
// tableau state, used for diagnostics (internal/dump, cmd/bfsdemo -debug)
// without exposing the pool/pointer internals.
type Snapshot struct {
	Rows      []RowSnapshot
	Variables []VariableSnapshot
}

// RowSnapshot describes one row of the tableau.
type RowSnapshot struct {
	Index    int32
	Key      string
	Constant float32
	Terms    map[string]float32
}

// VariableSnapshot describes one live variable.
type VariableSnapshot struct {
	ID       VarID
	Name     string
	Kind     string
	Strength string
	Value    float32
}

func variableLabel(v *Variable) string {
	if v == nil {
		return "<nil>"
	}
	if v.name != "" {
		return v.name
	}
	return v.kind.String() + "#" + itoa(int(v.id))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Snapshot captures the current tableau for debugging/dumping.
func (t *System) Snapshot() Snapshot {
	s := Snapshot{
		Rows:      make([]RowSnapshot, 0, t.numRows),
		Variables: make([]VariableSnapshot, 0, len(t.indexedVariables)-1),
	}

	for i := int32(0); i < t.numRows; i++ {
		row := t.rows[i]
		terms := make(map[string]float32, row.body.size)
		row.body.forEach(func(v *Variable, coeff float32) {
			terms[variableLabel(v)] = coeff
		})
		s.Rows = append(s.Rows, RowSnapshot{
			Index:    i,
			Key:      variableLabel(row.key),
			Constant: row.constant,
			Terms:    terms,
		})
	}

	for i := 1; i < len(t.indexedVariables); i++ {
		v := t.indexedVariables[i]
		if v == nil {
			continue
		}
		s.Variables = append(s.Variables, VariableSnapshot{
			ID:       v.id,
			Name:     v.name,
			Kind:     v.kind.String(),
			Strength: v.strength.String(),
			Value:    v.computedValue,
		})
	}

	return s
}
