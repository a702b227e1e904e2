package bfs

// Row represents the linear equation `key = constant + sum(coeff_i * var_i)`
// Before it is pivoted into BFS its key is unset and it is read as
// the raw equation `0 = constant + sum(coeff_i * var_i)`.
type Row struct {
	key      *Variable
	constant float32
	body     *sparseRow

	used bool
}

// Key returns the row's pivoted key variable, or nil if the row has not
// been pivoted (or was discarded during construction).
func (r *Row) Key() *Variable { return r.key }

// Constant returns the row's right-hand-side constant.
func (r *Row) Constant() float32 { return r.constant }

// populateEqual builds the raw row for `a = v`.
func populateEqual(r *Row, a *Variable, v float32) {
	if v >= 0 {
		r.constant = v
		r.body.add(a, -1, false)
	} else {
		r.constant = -v
		r.body.add(a, 1, false)
	}
}

// populateEqualVariables builds the raw row for `a = b + margin`.
func populateEqualVariables(r *Row, a, b *Variable, margin float32) {
	if margin >= 0 {
		r.constant = margin
		r.body.add(a, -1, false)
		r.body.add(b, 1, false)
	} else {
		r.constant = -margin
		r.body.add(a, 1, false)
		r.body.add(b, -1, false)
	}
}

// populateGreaterThan builds the raw row for `a >= b + margin`, augmented
// with slack.
func populateGreaterThan(r *Row, a, b, slack *Variable, margin float32) {
	if margin >= 0 {
		r.constant = margin
		r.body.add(a, -1, false)
		r.body.add(b, 1, false)
		r.body.add(slack, 1, false)
	} else {
		r.constant = -margin
		r.body.add(a, 1, false)
		r.body.add(b, -1, false)
		r.body.add(slack, -1, false)
	}
}

// populateLessThan builds the raw row for `a <= b + margin`, augmented
// with slack (slack sign negated relative to populateGreaterThan).
func populateLessThan(r *Row, a, b, slack *Variable, margin float32) {
	if margin >= 0 {
		r.constant = margin
		r.body.add(a, -1, false)
		r.body.add(b, 1, false)
		r.body.add(slack, -1, false)
	} else {
		r.constant = -margin
		r.body.add(a, 1, false)
		r.body.add(b, -1, false)
		r.body.add(slack, 1, false)
	}
}

// populateCentering builds the raw row for
// `(1-bias)*(a - b - marginA) = bias*(c - d - marginB)`. When bias is
// exactly 0.5 the row is scaled to the simplified symmetric integer form
// (matching the "if b == c, collapses to a + d - 2*b" case when
// margins are zero and b, c refer to the same variable).
func populateCentering(r *Row, a, b *Variable, marginA float32, bias float32, c, d *Variable, marginB float32) {
	if bias == 0.5 {
		r.body.add(a, -1, false)
		r.body.add(b, 1, false)
		r.body.add(c, 1, false)
		r.body.add(d, -1, false)
		r.constant = marginA - marginB
		return
	}

	oneMinusBias := 1 - bias
	r.body.add(a, -oneMinusBias, false)
	r.body.add(b, oneMinusBias, false)
	r.body.add(c, bias, false)
	r.body.add(d, -bias, false)
	r.constant = oneMinusBias*marginA - bias*marginB
}

// populateDimensionPercent builds the raw row for `a = b + p*(c - b)`.
func populateDimensionPercent(r *Row, a, b, c *Variable, p float32) {
	r.body.add(a, -1, false)
	r.body.add(b, 1-p, false)
	r.body.add(c, p, false)
}

// populateDimensionRatio builds the raw row for `a = b + ratio*(c - d)`.
func populateDimensionRatio(r *Row, a, b, c, d *Variable, ratio float32) {
	r.body.add(a, -1, false)
	r.body.add(b, 1, false)
	r.body.add(c, ratio, false)
	r.body.add(d, -ratio, false)
}

// ensurePositiveConstant negates the whole row if its constant is negative.
func (r *Row) ensurePositiveConstant() {
	if r.constant < 0 {
		r.constant = -r.constant
		r.body.invert()
	}
}

// pickRowVariable chooses a pivot candidate for this row per the subject
// selection rule, without pivoting.
func (r *Row) pickRowVariable() *Variable {
	return r.body.chooseSubject(r)
}

// pivot divides the row by -coefficient(v) so that v becomes the row's
// key: `v = constant + sum(others)`. If the row already has a key, that key
// first moves into the body with coefficient -1.
func (r *Row) pivot(v *Variable) {
	if r.key != nil {
		r.body.setCoeff(r.key, -1)
	}
	coeff := r.body.get(v)
	r.body.remove(v, true)

	divisor := -coeff
	if divisor != 1 {
		r.body.divideBy(divisor)
		r.constant /= divisor
	}
	r.key = v
}

// updateClientEquations (re-)registers this row as a client equation of
// every variable still present in its body.
func (r *Row) updateClientEquations() {
	r.body.forEach(func(v *Variable, _ float32) {
		v.addClientEquation(r)
	})
}

// detachClients unregisters this row from every variable currently
// referencing it, so releasing the row back to the pool never leaves a
// dangling client-equation edge.
func (r *Row) detachClients() {
	for _, term := range r.body.snapshot() {
		term.v.removeClientEquation(r)
	}
}
