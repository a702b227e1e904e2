package bfs

// goalRow is the multi-strength objective. Unlike an ordinary Row it
// carries, per participating variable, a coefficient *per strength level*
// rather than a single float — each Variable already owns that vector
// (strengthVector), so goalRow itself only needs to track which variables
// currently participate, in insertion order, for deterministic scans.
type goalRow struct {
	vars    []*Variable
	present map[*Variable]bool
}

func newGoalRow() *goalRow {
	return &goalRow{present: make(map[*Variable]bool)}
}

func (g *goalRow) reset() {
	for _, v := range g.vars {
		v.clearStrengths()
	}
	g.vars = g.vars[:0]
	g.present = make(map[*Variable]bool)
}

func (g *goalRow) addSymbol(v *Variable, level Strength, coeff float32) {
	if zero(coeff) {
		return
	}
	if !g.present[v] {
		g.present[v] = true
		g.vars = append(g.vars, v)
	}
	v.strengthVector[level] += coeff
}

func (g *goalRow) removeVariable(v *Variable) {
	if !g.present[v] {
		return
	}
	delete(g.present, v)
	for i, x := range g.vars {
		if x == v {
			g.vars = append(g.vars[:i], g.vars[i+1:]...)
			return
		}
	}
}

// coeffOf returns the value of v's first (most significant) nonzero
// strength level, or 0 if the vector is all-zero.
func coeffOf(v *Variable) float32 {
	for k := 0; k < int(MaxStrength); k++ {
		x := v.strengthVector[k]
		if !zero(x) {
			return x
		}
	}
	return 0
}

// findPivotCandidate scans all participating variables (skipping those in
// avoid) and returns the one whose most significant nonzero strength-level
// coefficient is negative, preferring the candidate whose decisive level is
// the most significant (lowest index = highest priority). A variable whose
// decisive level is positive is not a candidate at all ("if a value
// > 0 at level k, break").
func (g *goalRow) findPivotCandidate(avoid map[*Variable]bool) *Variable {
	var best *Variable
	bestLevel := -1

	for _, v := range g.vars {
		if avoid[v] {
			continue
		}

		level := -1
		var val float32
		for k := 0; k < int(MaxStrength); k++ {
			x := v.strengthVector[k]
			if !zero(x) {
				level, val = k, x
				break
			}
		}
		if level == -1 || val >= 0 {
			continue
		}

		if best == nil || level < bestLevel {
			best, bestLevel = v, level
		}
	}

	return best
}

// substituteVariable replaces v, wherever it appears in the goal, with
// defRow's body scaled by v's per-level coefficients, then clears v's
// absorbed vector.
func (g *goalRow) substituteVariable(v *Variable, defRow *Row) {
	if !g.present[v] {
		return
	}

	var levels [MaxStrength]float32
	copy(levels[:], v.strengthVector[:])
	v.clearStrengths()
	g.removeVariable(v)

	terms := defRow.body.snapshot()
	for k := 0; k < int(MaxStrength); k++ {
		coeff := levels[k]
		if zero(coeff) {
			continue
		}
		for _, t := range terms {
			g.addSymbol(t.v, Strength(k), coeff*t.coeff)
		}
	}
}

// updateFromSystem walks every existing row in index order and, if its key
// variable currently participates in the goal, substitutes the row's
// definition in ("for each existing row i, substitute into the goal").
func (g *goalRow) updateFromSystem(t *System) {
	for i := int32(0); i < t.numRows; i++ {
		row := t.rows[i]
		if row.key == nil {
			continue
		}
		g.substituteVariable(row.key, row)
	}
}
