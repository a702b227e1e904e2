package bfs

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// System is the linear system / tableau: it holds the rows keyed by
// variables and runs addConstraint/enforceBFS/optimize/computeValues. Pools
// are attached per-instance, so independent Systems never share state and
// may be used concurrently with each other (never concurrently with
// themselves).
type System struct {
	id uuid.UUID
	log *zap.SugaredLogger

	varPool *variablePool
	rowPool *rowPool

	numColumns int32
	maxColumns int32
	indexedVariables []*Variable

	rows    []*Row
	numRows int32
	maxRows int32

	goal *goalRow

	anchors map[any]*Variable
	edits   map[*Variable]*edit

	errorVars  []*Variable
	infeasible []int32
}

type edit struct {
	marker *Variable
	other  *Variable
	value  float32
}

// Option configures a System at construction time.
type Option func(*System)

// WithLogger attaches a structured logger to the System. Debug lines
// written through it carry the System's session id; the pivoting and
// phase code does not write any, so the solver stays silent either way.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *System) { s.log = l }
}

const initialCapacity = 64

// NewSystem creates an empty tableau with its own pools.
func NewSystem(opts ...Option) *System {
	s := &System{
		id:         uuid.New(),
		varPool:    newVariablePool(),
		rowPool:    newRowPool(),
		numColumns: 1,
		maxColumns: initialCapacity,
		maxRows:    initialCapacity,
		goal:       newGoalRow(),
		anchors:    make(map[any]*Variable),
		edits:      make(map[*Variable]*edit),
	}
	s.indexedVariables = make([]*Variable, 1, s.maxColumns)
	s.rows = make([]*Row, 0, s.maxRows)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns this System's session identifier, useful for correlating log
// lines across multiple concurrently-running Systems.
func (t *System) ID() uuid.UUID { return t.id }

func (t *System) logf(msg string, args ...any) {
	if t.log == nil {
		return
	}
	t.log.Debugw(msg, "system", t.id, "args", args)
}

// newVariable acquires a Variable from the pool and assigns it the next
// column id, growing the column index space if needed.
func (t *System) newVariable(kind VarKind) *Variable {
	if t.numColumns >= t.maxColumns {
		t.growColumns()
	}
	v := t.varPool.acquire(kind)
	v.id = VarID(t.numColumns)
	t.indexedVariables = append(t.indexedVariables, v)
	t.numColumns++
	return v
}

func (t *System) growColumns() {
	newMax := t.maxColumns * 2
	newVars := make([]*Variable, len(t.indexedVariables), newMax)
	copy(newVars, t.indexedVariables)
	t.indexedVariables = newVars
	t.maxColumns = newMax
}

func (t *System) ensureRowCapacity() {
	if t.numRows+1 >= t.maxRows {
		t.maxRows *= 2
	}
}

// CreateObjectVariable associates an opaque client handle with a new (or
// pre-existing, for the same handle) Unrestricted variable.
func (t *System) CreateObjectVariable(anchor any) *Variable {
	if v, ok := t.anchors[anchor]; ok {
		return v
	}
	v := t.newVariable(Unrestricted)
	v.anchor = anchor
	t.anchors[anchor] = v
	return v
}

// CreateSlackVariable creates a fresh Slack variable.
func (t *System) CreateSlackVariable() *Variable {
	return t.newVariable(Slack)
}

// CreateErrorVariable creates a fresh Error variable at the given strength
// and registers it so Minimize picks it up when rebuilding the goal.
func (t *System) CreateErrorVariable(strength Strength) *Variable {
	v := t.newVariable(Error)
	v.strength = strength
	t.errorVars = append(t.errorVars, v)
	return v
}

func (t *System) ownsVariable(v *Variable) bool {
	if v == nil || v.id <= 0 || int(v.id) >= len(t.indexedVariables) {
		return false
	}
	return t.indexedVariables[v.id] == v
}

// commit runs the addConstraint algorithm on a row built by the façade in
// equations.go.
func (t *System) commit(row *Row) error {
	t.ensureRowCapacity()

	row.body.updateFromSystem(row, t)
	row.ensurePositiveConstant()

	candidate := row.pickRowVariable()
	if candidate == nil {
		// Balanced +/- error variables make discarding an uninterpretable
		// row safe for the layout use-case.
		t.rowPool.release(row)
		return nil
	}

	row.pivot(candidate)

	idx := t.numRows
	t.rows = append(t.rows, row)
	t.numRows++
	candidate.definitionRowIndex = idx

	row.updateClientEquations()

	for _, client := range candidate.snapshotClientEquations() {
		if client == row {
			continue
		}
		client.body.updateFromRow(client, row, true)
		client.updateClientEquations()
	}

	return nil
}

// AddConstraintEQ adds `a = constant`.
func (t *System) AddConstraintEQ(a *Variable, constant float32) error {
	if !t.ownsVariable(a) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.eq(a, constant))
}

// AddConstraintEQVars adds `a = b + margin`.
func (t *System) AddConstraintEQVars(a, b *Variable, margin float32, withError bool, strength Strength) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.eqVars(a, b, margin, withError, strength))
}

// AddConstraintLE adds `a <= b + margin`.
func (t *System) AddConstraintLE(a, b *Variable, margin float32, withError bool, strength Strength) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.le(a, b, margin, withError, strength))
}

// AddConstraintGE adds `a >= b + margin`.
func (t *System) AddConstraintGE(a, b *Variable, margin float32, withError bool, strength Strength) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.ge(a, b, margin, withError, strength))
}

// AddConstraintCentering adds `(1-bias)*(a-b-marginA) = bias*(c-d-marginB)`.
func (t *System) AddConstraintCentering(a, b *Variable, marginA, bias float32, c, d *Variable, marginB float32, withError bool, strength Strength) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) || !t.ownsVariable(c) || !t.ownsVariable(d) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.centering(a, b, marginA, bias, c, d, marginB, withError, strength))
}

// AddConstraintPercent adds `a = b + (percent/100)*(c - b)`.
func (t *System) AddConstraintPercent(a, b, c *Variable, percent int32, withError bool) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) || !t.ownsVariable(c) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.dimensionPercent(a, b, c, percent, withError))
}

// AddConstraintRatio adds `a = b + ratio*(c - d)`.
func (t *System) AddConstraintRatio(a, b, c, d *Variable, ratio float32, withError bool) error {
	if !t.ownsVariable(a) || !t.ownsVariable(b) || !t.ownsVariable(c) || !t.ownsVariable(d) {
		return ErrBadTermInConstraint
	}
	return t.commit(t.dimensionRatio(a, b, c, d, ratio, withError))
}

// Reset returns every row and variable to their pools and resets the
// column/row counters.
func (t *System) Reset() {
	for i := int32(0); i < t.numRows; i++ {
		t.rowPool.release(t.rows[i])
	}
	for i := 1; i < len(t.indexedVariables); i++ {
		if v := t.indexedVariables[i]; v != nil {
			t.varPool.release(v)
		}
	}

	t.rows = t.rows[:0]
	t.numRows = 0
	t.numColumns = 1
	t.indexedVariables = t.indexedVariables[:1]
	t.anchors = make(map[any]*Variable)
	t.edits = make(map[*Variable]*edit)
	t.errorVars = t.errorVars[:0]
	t.infeasible = t.infeasible[:0]
	t.goal.reset()
}

// ValueFor returns the last value computed for v by Minimize.
func (t *System) ValueFor(v *Variable) float32 {
	if v == nil {
		return 0
	}
	return v.computedValue
}

// ValueForObject returns the last value computed for the variable
// associated with anchor via CreateObjectVariable, truncated to an int32
// as the widget layout layer expects pixel-grid coordinates.
func (t *System) ValueForObject(anchor any) int32 {
	v, ok := t.anchors[anchor]
	if !ok {
		return 0
	}
	return int32(v.computedValue)
}

// isStrongKey classifies a restricted row's key for the Strong/Weak
// preference used by enforceBFS and optimize. Required inequalities (Slack
// keys) and error variables of Medium strength or stronger are treated as
// Strong; weaker error variables are Weak. This resolves a classification
// ambiguity (see DESIGN.md) in favor of repairing required/strong
// constraints before cosmetic ones.
func isStrongKey(v *Variable) bool {
	if v.kind == Slack {
		return true
	}
	if v.kind == Error {
		return v.strength <= Medium
	}
	return false
}

func (t *System) hasInfeasibleRow() bool {
	for i := int32(0); i < t.numRows; i++ {
		r := t.rows[i]
		if r.key.kind.Restricted() && r.constant < 0 {
			return true
		}
	}
	return false
}

// pivotRowOnColumn re-keys the row at index ri on the variable occupying
// column colID, then substitutes the new definition into every other row
// and into the goal.
func (t *System) pivotRowOnColumn(ri int32, colID int32) {
	row := t.rows[ri]
	newKey := t.indexedVariables[colID]

	if row.key != nil {
		row.key.definitionRowIndex = -1
	}
	row.pivot(newKey)
	newKey.definitionRowIndex = ri

	for i := int32(0); i < t.numRows; i++ {
		if i == ri {
			continue
		}
		other := t.rows[i]
		other.body.updateFromRow(other, row, true)
	}
	t.goal.substituteVariable(newKey, row)
}

// enforceBFS is Phase I: it repairs restricted rows whose constant is
// negative via a dual-simplex sweep.
func (t *System) enforceBFS() error {
	limit := 8 * int(t.numColumns)

	for iter := 0; ; iter++ {
		if !t.hasInfeasibleRow() {
			return nil
		}
		if iter >= limit {
			return ErrIterationLimit
		}

		rowStrong, colStrong := int32(-1), int32(-1)
		rowWeak, colWeak := int32(-1), int32(-1)
		ratioStrong, ratioWeak := float32(math.MaxFloat32), float32(math.MaxFloat32)

		for ri := int32(0); ri < t.numRows; ri++ {
			row := t.rows[ri]
			if !row.key.kind.Restricted() || row.constant >= 0 {
				continue
			}
			for j := int32(1); j < t.numColumns; j++ {
				v := t.indexedVariables[j]
				if v == nil || v == row.key {
					continue
				}
				a := row.body.get(v)
				if a <= 0 {
					continue
				}
				ratio := coeffOf(v) / a
				if isStrongKey(row.key) {
					if ratio < ratioStrong {
						ratioStrong, rowStrong, colStrong = ratio, ri, j
					}
				} else {
					if ratio < ratioWeak {
						ratioWeak, rowWeak, colWeak = ratio, ri, j
					}
				}
			}
		}

		var pivotRow, pivotCol int32
		switch {
		case rowStrong != -1:
			pivotRow, pivotCol = rowStrong, colStrong
		case rowWeak != -1:
			pivotRow, pivotCol = rowWeak, colWeak
		default:
			// No qualifying pair: stop even though still infeasible. The
			// solver does not throw here; the layout layer tolerates
			// residual infeasibility.
			return ErrInfeasible
		}

		t.pivotRowOnColumn(pivotRow, pivotCol)
	}
}

// optimize is Phase II: it repeatedly pivots on the goal's most-negative
// (per strength) candidate until no candidate remains. The termination
// condition "tested set size == numColumns" is a known heuristic: it does
// not itself guarantee optimality, and is left as-is rather than replaced
// with a stronger proof-of-optimality check.
func (t *System) optimize() error {
	tested := make(map[*Variable]bool)
	limit := 8 * int(t.numColumns)

	for iter := 0; ; iter++ {
		if iter >= limit {
			return ErrIterationLimit
		}

		candidate := t.goal.findPivotCandidate(tested)
		if candidate == nil {
			return nil
		}
		tested[candidate] = true
		if len(tested) >= int(t.numColumns) {
			return nil
		}

		exitRowStrong, exitRowWeak := int32(-1), int32(-1)
		ratioStrong, ratioWeak := float32(math.MaxFloat32), float32(math.MaxFloat32)

		for i := int32(0); i < t.numRows; i++ {
			r := t.rows[i]
			if !r.key.kind.Restricted() {
				continue
			}
			a := r.body.get(candidate)
			if a >= 0 {
				continue
			}
			ratio := r.constant / (-a)
			if isStrongKey(r.key) {
				if ratio < ratioStrong {
					ratioStrong, exitRowStrong = ratio, i
				}
			} else {
				if ratio < ratioWeak {
					ratioWeak, exitRowWeak = ratio, i
				}
			}
		}

		exitRow := exitRowStrong
		if exitRow == -1 {
			exitRow = exitRowWeak
		}
		if exitRow == -1 {
			return nil
		}

		t.pivotRowOnColumn(exitRow, int32(candidate.id))
	}
}

// computeValues assigns each row's constant to its key variable. Variables
// that are not a row's key keep their default (0) value.
func (t *System) computeValues() {
	for i := int32(0); i < t.numRows; i++ {
		if key := t.rows[i].key; key != nil {
			key.computedValue = t.rows[i].constant
		}
	}
}

func (t *System) rebuildGoal() {
	t.goal.reset()
	for _, e := range t.errorVars {
		t.goal.addSymbol(e, e.strength, 1.0)
	}
	t.goal.updateFromSystem(t)
}

// Minimize rebuilds the goal from every currently-live error variable and
// runs Phase I / Phase II. It always populates ValueFor for every variable
// that currently keys a row, even when it returns a non-nil error
// (best-effort propagation policy).
func (t *System) Minimize() error {
	t.rebuildGoal()

	if len(t.goal.vars) == 0 {
		t.computeValues()
		return nil
	}

	if err := t.enforceBFS(); err != nil {
		t.computeValues()
		return err
	}
	if err := t.optimize(); err != nil {
		t.computeValues()
		return err
	}

	t.computeValues()
	return nil
}

// Edit registers v as editable at the given strength, so later Suggest
// calls can adjust its target value without a full constraint rebuild.
func (t *System) Edit(v *Variable, strength Strength) error {
	if strength == Fixed {
		return ErrBadPriority
	}
	if !t.ownsVariable(v) {
		return ErrBadTermInConstraint
	}

	row := t.rowPool.acquire()
	populateEqual(row, v, 0)
	t.addError(row, strength)
	if err := t.commit(row); err != nil {
		return err
	}

	// The two error variables just attached are the last two entries
	// appended to errorVars by addError.
	n := len(t.errorVars)
	marker, other := t.errorVars[n-2], t.errorVars[n-1]
	t.edits[v] = &edit{marker: marker, other: other, value: 0}
	return nil
}

func (t *System) markIfInfeasible(idx int32) {
	if t.rows[idx].constant < 0 {
		t.infeasible = append(t.infeasible, idx)
	}
}

// Suggest adjusts the target value of a variable registered via Edit and
// repairs any rows that become infeasible as a result via a dual-simplex
// sweep.
func (t *System) Suggest(v *Variable, value float32) error {
	e, ok := t.edits[v]
	if !ok {
		return ErrBadEditVariable
	}

	delta := value - e.value
	e.value = value

	switch {
	case e.marker.definitionRowIndex >= 0:
		idx := e.marker.definitionRowIndex
		t.rows[idx].constant -= delta
		t.markIfInfeasible(idx)
	case e.other.definitionRowIndex >= 0:
		idx := e.other.definitionRowIndex
		t.rows[idx].constant -= delta
		t.markIfInfeasible(idx)
	default:
		for i := int32(0); i < t.numRows; i++ {
			row := t.rows[i]
			coeff := row.body.get(e.marker)
			if zero(coeff) {
				continue
			}
			row.constant += coeff * delta
			t.markIfInfeasible(i)
		}
	}

	return t.repairInfeasible()
}

// repairInfeasible drains the infeasible list built up by Suggest, pivoting
// each offending row against the goal via a ratio test, dual-simplex style.
func (t *System) repairInfeasible() error {
	limit := 8 * int(t.numColumns)

	for iter := 0; len(t.infeasible) > 0; iter++ {
		if iter >= limit {
			return ErrIterationLimit
		}

		idx := t.infeasible[len(t.infeasible)-1]
		t.infeasible = t.infeasible[:len(t.infeasible)-1]
		if idx < 0 || idx >= t.numRows {
			continue
		}

		row := t.rows[idx]
		if row.constant >= 0 {
			continue
		}

		entryCol := int32(-1)
		ratio := float32(math.MaxFloat32)
		for _, term := range row.body.snapshot() {
			if term.coeff <= 0 {
				continue
			}
			r := coeffOf(term.v) / term.coeff
			if r < ratio {
				ratio, entryCol = r, int32(term.v.id)
			}
		}
		if entryCol == -1 {
			// Best-effort: no repair possible, leave this row infeasible.
			continue
		}

		t.pivotRowOnColumn(idx, entryCol)
	}

	return nil
}
