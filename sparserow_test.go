package bfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVar(id int32, kind VarKind) *Variable {
	return &Variable{id: VarID(id), kind: kind, definitionRowIndex: -1}
}

func TestSparseRowSetCoeffKeepsIDsSorted(t *testing.T) {
	row := &Row{}
	s := newSparseRow(row)
	row.body = s

	v3 := newTestVar(3, Unrestricted)
	v1 := newTestVar(1, Unrestricted)
	v2 := newTestVar(2, Unrestricted)

	s.setCoeff(v3, 1)
	s.setCoeff(v1, 2)
	s.setCoeff(v2, 3)

	var ids []int32
	s.forEach(func(v *Variable, _ float32) { ids = append(ids, int32(v.id)) })
	require.Equal(t, []int32{1, 2, 3}, ids)
}

func TestSparseRowAddRemovesOnSnapToZero(t *testing.T) {
	row := &Row{}
	s := newSparseRow(row)
	row.body = s

	v := newTestVar(1, Unrestricted)
	s.setCoeff(v, 5)
	require.True(t, s.contains(v))

	s.add(v, -5, true)
	require.False(t, s.contains(v))
	require.EqualValues(t, 0, v.usageInRowCount)
}

func TestSparseRowFreeSlotReuse(t *testing.T) {
	row := &Row{}
	s := newSparseRow(row)
	row.body = s

	v1 := newTestVar(1, Unrestricted)
	v2 := newTestVar(2, Unrestricted)
	v3 := newTestVar(3, Unrestricted)

	s.setCoeff(v1, 1)
	s.setCoeff(v2, 2)
	require.EqualValues(t, 2, len(s.vars))

	s.remove(v1, false)
	require.EqualValues(t, 2, len(s.vars), "slot should be reused, not grown")

	s.setCoeff(v3, 3)
	require.EqualValues(t, 2, len(s.vars))
	require.True(t, s.contains(v3))
}

// P8: usage_in_row_count tracks exactly how many rows reference a variable,
// and no stored coefficient ever sits within epsilon of zero.
func TestSparseRowUsageCountMatchesMembership(t *testing.T) {
	rowA := &Row{}
	rowB := &Row{}
	sa := newSparseRow(rowA)
	sb := newSparseRow(rowB)
	rowA.body, rowB.body = sa, sb

	v := newTestVar(1, Unrestricted)
	sa.setCoeff(v, 2)
	sb.setCoeff(v, 3)
	require.EqualValues(t, 2, v.usageInRowCount)

	sa.remove(v, false)
	require.EqualValues(t, 1, v.usageInRowCount)

	for _, c := range sb.coeffs[:sb.size] {
		require.False(t, zero(c))
	}
}

func TestChooseSubjectPrefersUnrestrictedNegative(t *testing.T) {
	row := &Row{}
	s := newSparseRow(row)
	row.body = s

	slack := newTestVar(1, Slack)
	unrestricted := newTestVar(2, Unrestricted)

	s.setCoeff(slack, -1)
	s.setCoeff(unrestricted, -1)

	require.Same(t, unrestricted, s.chooseSubject(row))
}

func TestChooseSubjectFallsBackToRestrictedNegative(t *testing.T) {
	row := &Row{}
	s := newSparseRow(row)
	row.body = s

	slack := newTestVar(1, Slack)
	s.setCoeff(slack, -2)

	require.Same(t, slack, s.chooseSubject(row))
}
