package bfs

// This file is the equation construction façade: it turns the
// high-level constraint forms into raw rows, attaching error
// variables when the constraint is a soft (non-Required) goal term.

func (t *System) eq(a *Variable, constant float32) *Row {
	row := t.rowPool.acquire()
	populateEqual(row, a, constant)
	return row
}

func (t *System) eqVars(a, b *Variable, margin float32, withError bool, strength Strength) *Row {
	row := t.rowPool.acquire()
	populateEqualVariables(row, a, b, margin)
	if withError {
		t.addError(row, strength)
	}
	return row
}

// ge builds `a >= b + margin`. A soft ge only ever needs to forgive a
// shortfall (a landing below b+margin), so it attaches a single error
// variable rather than a symmetric pair.
func (t *System) ge(a, b *Variable, margin float32, withError bool, strength Strength) *Row {
	slack := t.CreateSlackVariable()
	row := t.rowPool.acquire()
	populateGreaterThan(row, a, b, slack, margin)
	if withError {
		t.addSingleError(row, -row.body.get(slack), strength)
	}
	return row
}

// le builds `a <= b + margin`. A soft le only ever needs to forgive an
// overshoot (a landing above b+margin), so it attaches a single error
// variable rather than a symmetric pair.
func (t *System) le(a, b *Variable, margin float32, withError bool, strength Strength) *Row {
	slack := t.CreateSlackVariable()
	row := t.rowPool.acquire()
	populateLessThan(row, a, b, slack, margin)
	if withError {
		t.addSingleError(row, -row.body.get(slack), strength)
	}
	return row
}

func (t *System) centering(a, b *Variable, marginA, bias float32, c, d *Variable, marginB float32, withError bool, strength Strength) *Row {
	row := t.rowPool.acquire()
	populateCentering(row, a, b, marginA, bias, c, d, marginB)
	if withError {
		t.addError(row, strength)
	}
	return row
}

// defaultSoftStrength is used by the percent/ratio façade forms, whose
// external interface takes no explicit strength.
const defaultSoftStrength = High

func (t *System) dimensionPercent(a, b, c *Variable, percent int32, withError bool) *Row {
	row := t.rowPool.acquire()
	populateDimensionPercent(row, a, b, c, float32(percent)/100.0)
	if withError {
		t.addError(row, defaultSoftStrength)
	}
	return row
}

func (t *System) dimensionRatio(a, b, c, d *Variable, ratio float32, withError bool) *Row {
	row := t.rowPool.acquire()
	populateDimensionRatio(row, a, b, c, d, ratio)
	if withError {
		t.addError(row, defaultSoftStrength)
	}
	return row
}

// addError attaches the e+/e- error variable pair to row, each weighted
// into the goal at the given strength.
func (t *System) addError(row *Row, strength Strength) {
	ep := t.CreateErrorVariable(strength)
	en := t.CreateErrorVariable(strength)
	row.body.add(ep, 1, false)
	row.body.add(en, -1, false)
}

// addSingleError attaches one signed error variable to row.
func (t *System) addSingleError(row *Row, sign float32, strength Strength) {
	e := t.CreateErrorVariable(strength)
	row.body.add(e, sign, false)
}
