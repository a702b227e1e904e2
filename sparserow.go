package bfs

// epsilon is the near-zero snap-to-zero tolerance used consistently
// throughout the tableau.
const epsilon float32 = 0.001

func zero(v float32) bool {
	if v < 0 {
		return -v < epsilon
	}
	return v < epsilon
}

// noSlot marks the absence of a linked-list entry.
const noSlot int32 = -1

// sparseRow is an ordered sparse map variable -> coefficient, backed
// by three parallel arrays threaded as a singly linked list so that
// insertion keeps ids sorted without shifting a dense array. Deletions
// mark a slot empty and push it onto a free-list (reusing the `next`
// array as free-list links) so the next insertion reuses it in O(1).
type sparseRow struct {
	owner *Row

	vars   []*Variable
	coeffs []float32
	next   []int32

	head     int32
	freeSlot int32
	size     int32
}

func newSparseRow(owner *Row) *sparseRow {
	return &sparseRow{owner: owner, head: noSlot, freeSlot: noSlot}
}

func (s *sparseRow) clear() {
	s.vars = s.vars[:0]
	s.coeffs = s.coeffs[:0]
	s.next = s.next[:0]
	s.head = noSlot
	s.freeSlot = noSlot
	s.size = 0
}

type sparseTerm struct {
	v     *Variable
	coeff float32
}

// snapshot copies the current (variable, coefficient) pairs in id order.
// Callers that mutate the row while iterating its contents must snapshot
// first.
func (s *sparseRow) snapshot() []sparseTerm {
	out := make([]sparseTerm, 0, s.size)
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		out = append(out, sparseTerm{v: s.vars[cur], coeff: s.coeffs[cur]})
	}
	return out
}

func (s *sparseRow) forEach(fn func(v *Variable, coeff float32)) {
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		fn(s.vars[cur], s.coeffs[cur])
	}
}

func (s *sparseRow) allocSlot() int32 {
	if s.freeSlot != noSlot {
		slot := s.freeSlot
		s.freeSlot = s.next[slot]
		return slot
	}
	s.vars = append(s.vars, nil)
	s.coeffs = append(s.coeffs, 0)
	s.next = append(s.next, noSlot)
	return int32(len(s.vars) - 1)
}

func (s *sparseRow) pushFree(slot int32) {
	s.vars[slot] = nil
	s.next[slot] = s.freeSlot
	s.freeSlot = slot
}

// setCoeff inserts or overwrites v's coefficient, keeping ids sorted, and
// performs usage/client-equation bookkeeping for a newly-inserted entry.
func (s *sparseRow) setCoeff(v *Variable, val float32) {
	prev := noSlot
	cur := s.head
	for cur != noSlot {
		e := s.vars[cur]
		if e.id == v.id {
			s.coeffs[cur] = val
			return
		}
		if e.id > v.id {
			break
		}
		prev = cur
		cur = s.next[cur]
	}

	slot := s.allocSlot()
	s.vars[slot] = v
	s.coeffs[slot] = val
	s.next[slot] = cur
	if prev == noSlot {
		s.head = slot
	} else {
		s.next[prev] = slot
	}
	s.size++

	v.usageInRowCount++
	if s.owner != nil {
		v.addClientEquation(s.owner)
	}
}

// put sets v's coefficient to val, removing the entry if val snaps to zero.
func (s *sparseRow) put(v *Variable, val float32) {
	if zero(val) {
		s.remove(v, false)
		return
	}
	s.setCoeff(v, val)
}

// add implements `put(var, get(var)+v)` semantics; if the result snaps to
// zero the entry is removed, optionally clearing the client-equation edge.
func (s *sparseRow) add(v *Variable, delta float32, removeFromDef bool) {
	cur := s.get(v)
	next := cur + delta
	if zero(next) {
		s.remove(v, removeFromDef)
		return
	}
	s.setCoeff(v, next)
}

// remove deletes v's entry (if present), returning its previous coefficient
// (0 if absent).
func (s *sparseRow) remove(v *Variable, removeFromDef bool) float32 {
	prev := noSlot
	cur := s.head
	for cur != noSlot {
		e := s.vars[cur]
		if e.id == v.id {
			prevVal := s.coeffs[cur]
			if prev == noSlot {
				s.head = s.next[cur]
			} else {
				s.next[prev] = s.next[cur]
			}
			s.pushFree(cur)
			s.size--
			v.usageInRowCount--
			if removeFromDef {
				v.removeClientEquation(s.owner)
			}
			return prevVal
		}
		if e.id > v.id {
			break
		}
		prev = cur
		cur = s.next[cur]
	}
	return 0
}

func (s *sparseRow) get(v *Variable) float32 {
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		e := s.vars[cur]
		if e.id == v.id {
			return s.coeffs[cur]
		}
		if e.id > v.id {
			break
		}
	}
	return 0
}

func (s *sparseRow) contains(v *Variable) bool {
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		e := s.vars[cur]
		if e.id == v.id {
			return true
		}
		if e.id > v.id {
			break
		}
	}
	return false
}

func (s *sparseRow) invert() {
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		s.coeffs[cur] = -s.coeffs[cur]
	}
}

// divideBy divides every coefficient by amount, removing any entry whose
// result snaps to zero (I4: rows never store near-zero coefficients).
func (s *sparseRow) divideBy(amount float32) {
	terms := s.snapshot()
	for _, t := range terms {
		v := t.coeff / amount
		if zero(v) {
			s.remove(t.v, true)
		} else {
			s.setCoeff(t.v, v)
		}
	}
}

func (s *sparseRow) hasPositiveValue() bool {
	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		if s.coeffs[cur] > 0 {
			return true
		}
	}
	return false
}

// updateFromRow substitutes defRow's definition into self wherever
// defRow's key variable appears in self's body.
func (s *sparseRow) updateFromRow(self, defRow *Row, removeFromDef bool) {
	key := defRow.key
	if key == nil {
		return
	}
	a := s.get(key)
	if zero(a) {
		return
	}
	s.remove(key, removeFromDef)

	terms := defRow.body.snapshot()
	for _, t := range terms {
		s.add(t.v, t.coeff*a, true)
	}
	self.constant += defRow.constant * a
}

// updateFromSystem repeatedly substitutes in the definition row of any body
// variable that is currently the key of some row in the tableau, until no
// body variable is itself a row's key. This must run unconditionally —
// every already-keyed variable has to be eliminated from a new row's body
// before subject selection runs, or chooseSubject can hand back a variable
// that is already basic elsewhere.
func (s *sparseRow) updateFromSystem(self *Row, t *System) {
	for {
		changed := false
		for _, term := range s.snapshot() {
			idx := term.v.definitionRowIndex
			if idx < 0 {
				continue
			}
			defRow := t.rows[idx]
			s.updateFromRow(self, defRow, true)
			changed = true
		}
		if !changed {
			return
		}
	}
}

// chooseSubject implements the subject-selection rule:
//
//  1. an Unrestricted variable with a negative coefficient is chosen
//     immediately;
//  2. otherwise, the first Unrestricted variable seen is a fallback;
//  3. otherwise, a Slack/Error variable with a negative coefficient is a
//     fallback restricted candidate;
//  4. ties among restricted fallbacks go to the "new" variable (used in at
//     most one row so far) with the smaller coefficient.
func (s *sparseRow) chooseSubject(self *Row) *Variable {
	var unrestrictedFallback *Variable
	var restrictedFallback *Variable
	var restrictedFallbackCoeff float32

	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		v := s.vars[cur]
		c := s.coeffs[cur]

		if v.kind == Unrestricted {
			if c < 0 {
				return v
			}
			if unrestrictedFallback == nil {
				unrestrictedFallback = v
			}
			continue
		}

		if v.kind.Restricted() && c < 0 {
			if restrictedFallback == nil || isBetterSubjectCandidate(v, c, restrictedFallback, restrictedFallbackCoeff) {
				restrictedFallback, restrictedFallbackCoeff = v, c
			}
		}
	}

	if unrestrictedFallback != nil {
		return unrestrictedFallback
	}
	return restrictedFallback
}

func isBetterSubjectCandidate(v *Variable, c float32, best *Variable, bestCoeff float32) bool {
	vNew := v.usageInRowCount <= 1
	bestNew := best.usageInRowCount <= 1
	if vNew != bestNew {
		return vNew
	}
	return c < bestCoeff
}

// pickPivotCandidate returns the Slack/Error entry with the most negative
// coefficient, excluding variables in avoid or equal to exclude.
func (s *sparseRow) pickPivotCandidate(avoid map[*Variable]bool, exclude *Variable) *Variable {
	var best *Variable
	var bestCoeff float32

	for cur := s.head; cur != noSlot; cur = s.next[cur] {
		v := s.vars[cur]
		if !v.kind.Restricted() {
			continue
		}
		if v == exclude || avoid[v] {
			continue
		}
		c := s.coeffs[cur]
		if best == nil || c < bestCoeff {
			best, bestCoeff = v, c
		}
	}

	if best != nil && bestCoeff < 0 {
		return best
	}
	return nil
}
