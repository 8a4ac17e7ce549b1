// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package parquet

import (
	"bytes"
	"math"
	"slices"

	"github.com/Teradata/iceberg"
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/google/uuid"
)

const (
	rowsMightMatch, rowsCannotMatch = true, false

	// DefaultInPredicateLimit is the number of values in a set predicate
	// above which the filter skips comparing the set against the column
	// bounds and keeps the row group.
	DefaultInPredicateLimit = 200
)

// Option configures a MetricsRowGroupFilter.
type Option func(*MetricsRowGroupFilter)

// WithInPredicateLimit overrides DefaultInPredicateLimit.
func WithInPredicateLimit(n int) Option {
	return func(f *MetricsRowGroupFilter) { f.inPredicateLimit = n }
}

// MetricsRowGroupFilter decides whether a row group might contain rows
// matching a filter expression, using only the column statistics stored in
// the parquet footer. ShouldRead returns false only when the statistics
// prove that no row in the group can satisfy the expression, so a false
// result means the row group can be skipped without reading any data.
//
// The bound expression is immutable and a filter may be shared across
// goroutines, one call per row group.
type MetricsRowGroupFilter struct {
	expr             iceberg.BooleanExpression
	inPredicateLimit int
}

// NewMetricsRowGroupFilter rewrites the expression to remove negations,
// binds it against the schema, and returns a filter ready to test row
// groups. Binding errors, such as a reference to a field the schema does
// not contain, are returned to the caller.
func NewMetricsRowGroupFilter(sc *iceberg.Schema, expr iceberg.BooleanExpression, caseSensitive bool, opts ...Option) (*MetricsRowGroupFilter, error) {
	rewritten, err := iceberg.RewriteNotExpr(expr)
	if err != nil {
		return nil, err
	}

	bound, err := iceberg.BindExpr(sc, rewritten, caseSensitive)
	if err != nil {
		return nil, err
	}

	f := &MetricsRowGroupFilter{
		expr:             bound,
		inPredicateLimit: DefaultInPredicateLimit,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// ShouldRead reports whether the row group described by stats might contain
// rows matching the filter expression. An empty row group never matches.
// Malformed or missing statistics never produce an error: every state that
// cannot disprove a match keeps the row group.
func (f *MetricsRowGroupFilter) ShouldRead(stats *RowGroupStats) bool {
	if stats == nil || stats.NumRows <= 0 {
		return rowsCannotMatch
	}

	res, err := iceberg.VisitExpr(f.expr, &metricsEval{
		stats:            stats,
		inPredicateLimit: f.inPredicateLimit,
	})
	if err != nil {
		return rowsMightMatch
	}

	return res
}

// ShouldReadRowGroup builds a statistics snapshot from the row group's
// parquet metadata and evaluates the filter against it.
func (f *MetricsRowGroupFilter) ShouldReadRowGroup(fileSchema *schema.Schema, rg *metadata.RowGroupMetaData) (bool, error) {
	stats, err := RowGroupStatsFromMeta(fileSchema, rg)
	if err != nil {
		return false, err
	}

	return f.ShouldRead(stats), nil
}

type metricsEval struct {
	stats            *RowGroupStats
	inPredicateLimit int
}

func (*metricsEval) VisitTrue() bool  { return rowsMightMatch }
func (*metricsEval) VisitFalse() bool { return rowsCannotMatch }

// negations are normally rewritten onto the leaves before binding, but a
// raw NOT is still handled
func (*metricsEval) VisitNot(child bool) bool { return !child }

func (*metricsEval) VisitAnd(left, right bool) bool { return left && right }
func (*metricsEval) VisitOr(left, right bool) bool  { return left || right }

func (m *metricsEval) VisitUnbound(iceberg.UnboundPredicate) bool {
	panic("found unbound predicate when evaluating row group metrics")
}

func (m *metricsEval) VisitBound(pred iceberg.BoundPredicate) bool {
	return iceberg.VisitBoundPredicate(pred, m)
}

func (m *metricsEval) colStats(ref iceberg.BoundReference) (ColumnStats, bool) {
	st, ok := m.stats.Columns[ref.Field().ID]

	return st, ok
}

func allNulls(st ColumnStats) bool {
	return st.NullCount != nil && *st.NullCount == st.ValueCount
}

// boundsUndefined reports whether the recorded min/max cannot be trusted:
// either bound is absent, or the null count is known yet no non-null value
// was ever recorded, a state older writers produced for columns whose only
// values were NaN.
func boundsUndefined(st ColumnStats) bool {
	if st.NullCount != nil && !st.HasNonNull {
		return true
	}

	return st.LowerBound == nil || st.UpperBound == nil
}

func mayContainNull(st ColumnStats) bool {
	return st.NullCount == nil || *st.NullCount > 0
}

func isNested(t iceberg.Type) bool {
	_, ok := t.(iceberg.NestedType)

	return ok
}

func isNan(v iceberg.Literal) bool {
	switch v := v.(type) {
	case iceberg.Float32Literal:
		return math.IsNaN(float64(v))
	case iceberg.Float64Literal:
		return math.IsNaN(float64(v))
	default:
		return false
	}
}

// decodeBound converts a stored bound to a literal of the reference's type.
// A bound that cannot be decoded, or that decodes to NaN, is unusable for
// pruning and reports !ok.
func decodeBound(typ iceberg.Type, data []byte) (iceberg.Literal, bool) {
	lit, err := iceberg.LiteralFromBytes(typ, data)
	if err != nil {
		return nil, false
	}

	if isNan(lit) {
		return nil, false
	}

	return lit, true
}

func getCmp[T iceberg.LiteralType](b iceberg.TypedLiteral[T]) func(iceberg.Literal, iceberg.Literal) int {
	cmp := b.Comparator()

	return func(l1, l2 iceberg.Literal) int {
		return cmp(l1.(iceberg.TypedLiteral[T]).Value(), l2.(iceberg.TypedLiteral[T]).Value())
	}
}

func getCmpLiteral(boundary iceberg.Literal) func(iceberg.Literal, iceberg.Literal) int {
	switch l := boundary.(type) {
	case iceberg.TypedLiteral[bool]:
		return getCmp(l)
	case iceberg.TypedLiteral[int32]:
		return getCmp(l)
	case iceberg.TypedLiteral[int64]:
		return getCmp(l)
	case iceberg.TypedLiteral[float32]:
		return getCmp(l)
	case iceberg.TypedLiteral[float64]:
		return getCmp(l)
	case iceberg.TypedLiteral[iceberg.Date]:
		return getCmp(l)
	case iceberg.TypedLiteral[iceberg.Time]:
		return getCmp(l)
	case iceberg.TypedLiteral[iceberg.Timestamp]:
		return getCmp(l)
	case iceberg.TypedLiteral[[]byte]:
		return getCmp(l)
	case iceberg.TypedLiteral[string]:
		return getCmp(l)
	case iceberg.TypedLiteral[uuid.UUID]:
		return getCmp(l)
	case iceberg.TypedLiteral[iceberg.Decimal]:
		return getCmp(l)
	}
	panic(iceberg.ErrType)
}

func removeBoundCmp[T iceberg.LiteralType](bound iceberg.Literal, vals []iceberg.Literal, cmpToDelete int) []iceberg.Literal {
	val := bound.(iceberg.TypedLiteral[T])
	cmp := val.Comparator()

	return slices.DeleteFunc(vals, func(v iceberg.Literal) bool {
		return cmp(val.Value(), v.(iceberg.TypedLiteral[T]).Value()) == cmpToDelete
	})
}

func removeBoundCheck(bound iceberg.Literal, vals []iceberg.Literal, toDelete int) []iceberg.Literal {
	switch bound.Type().(type) {
	case iceberg.BooleanType:
		return removeBoundCmp[bool](bound, vals, toDelete)
	case iceberg.Int32Type:
		return removeBoundCmp[int32](bound, vals, toDelete)
	case iceberg.Int64Type:
		return removeBoundCmp[int64](bound, vals, toDelete)
	case iceberg.Float32Type:
		return removeBoundCmp[float32](bound, vals, toDelete)
	case iceberg.Float64Type:
		return removeBoundCmp[float64](bound, vals, toDelete)
	case iceberg.DateType:
		return removeBoundCmp[iceberg.Date](bound, vals, toDelete)
	case iceberg.TimeType:
		return removeBoundCmp[iceberg.Time](bound, vals, toDelete)
	case iceberg.TimestampType, iceberg.TimestampTzType:
		return removeBoundCmp[iceberg.Timestamp](bound, vals, toDelete)
	case iceberg.BinaryType, iceberg.FixedType:
		return removeBoundCmp[[]byte](bound, vals, toDelete)
	case iceberg.StringType:
		return removeBoundCmp[string](bound, vals, toDelete)
	case iceberg.UUIDType:
		return removeBoundCmp[uuid.UUID](bound, vals, toDelete)
	case iceberg.DecimalType:
		return removeBoundCmp[iceberg.Decimal](bound, vals, toDelete)
	}
	panic(iceberg.ErrType)
}

func prefixBytes(lit iceberg.Literal) []byte {
	if val, ok := lit.(iceberg.TypedLiteral[string]); ok {
		return []byte(val.Value())
	}

	return lit.(iceberg.TypedLiteral[[]byte]).Value()
}

func (m *metricsEval) VisitIsNull(t iceberg.BoundTerm) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	// a column missing from the row group is inferred to be all null,
	// which satisfies IsNull
	st, ok := m.colStats(ref)
	if !ok {
		return rowsMightMatch
	}

	if st.NullCount != nil && *st.NullCount == 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitNotNull(t iceberg.BoundTerm) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	// nested columns have no chunk of their own, so statistics cannot
	// prove anything about them
	if isNested(ref.Type()) {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitIsNan(t iceberg.BoundTerm) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	// min/max say nothing about NaN presence
	return rowsMightMatch
}

func (m *metricsEval) VisitNotNan(iceberg.BoundTerm) bool {
	// no statistic distinguishes NaN values
	return rowsMightMatch
}

func (m *metricsEval) VisitLess(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	lower, ok := decodeBound(ref.Type(), st.LowerBound)
	if !ok {
		return rowsMightMatch
	}

	if getCmpLiteral(lower)(lower, lit) >= 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitLessEqual(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	lower, ok := decodeBound(ref.Type(), st.LowerBound)
	if !ok {
		return rowsMightMatch
	}

	if getCmpLiteral(lower)(lower, lit) > 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitGreater(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	upper, ok := decodeBound(ref.Type(), st.UpperBound)
	if !ok {
		return rowsMightMatch
	}

	if getCmpLiteral(upper)(upper, lit) <= 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitGreaterEqual(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	upper, ok := decodeBound(ref.Type(), st.UpperBound)
	if !ok {
		return rowsMightMatch
	}

	if getCmpLiteral(upper)(upper, lit) < 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitEqual(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	if isNested(ref.Type()) {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	lower, ok := decodeBound(ref.Type(), st.LowerBound)
	if !ok {
		return rowsMightMatch
	}

	cmp := getCmpLiteral(lower)
	if cmp(lower, lit) > 0 {
		return rowsCannotMatch
	}

	upper, ok := decodeBound(ref.Type(), st.UpperBound)
	if !ok {
		return rowsMightMatch
	}

	if cmp(upper, lit) < 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitNotEqual(iceberg.BoundTerm, iceberg.Literal) bool {
	// bounds are not necessarily a min or max value, so notEq(col, X)
	// with bounds (X, Y) doesn't guarantee that X is a value in col
	return rowsMightMatch
}

func (m *metricsEval) VisitIn(t iceberg.BoundTerm, s iceberg.Set[iceberg.Literal]) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	if isNested(ref.Type()) {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if s.Len() > m.inPredicateLimit {
		// skip evaluating the predicate if the number of values is too big
		return rowsMightMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	lower, ok := decodeBound(ref.Type(), st.LowerBound)
	if !ok {
		return rowsMightMatch
	}

	values := removeBoundCheck(lower, s.Members(), 1)
	if len(values) == 0 {
		return rowsCannotMatch
	}

	upper, ok := decodeBound(ref.Type(), st.UpperBound)
	if !ok {
		return rowsMightMatch
	}

	values = removeBoundCheck(upper, values, -1)
	if len(values) == 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitNotIn(iceberg.BoundTerm, iceberg.Set[iceberg.Literal]) bool {
	// like notEq, bounds cannot prove that any member of the set is
	// absent from the column
	return rowsMightMatch
}

func (m *metricsEval) VisitStartsWith(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	st, ok := m.colStats(ref)
	if !ok {
		return rowsCannotMatch
	}

	if allNulls(st) {
		return rowsCannotMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	prefix := prefixBytes(lit)

	// bounds shorter than the prefix still order correctly against it,
	// so truncating to the prefix length is enough for both checks
	if bytes.Compare(truncateBinary(st.LowerBound, len(prefix)), prefix) > 0 {
		return rowsCannotMatch
	}

	if bytes.Compare(truncateBinary(st.UpperBound, len(prefix)), prefix) < 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitNotStartsWith(t iceberg.BoundTerm, lit iceberg.Literal) bool {
	ref, ok := t.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	// unlike the other non-null-requiring predicates, a missing column
	// stays might-match here: the column could be added by a later
	// schema change, and nulls never start with the prefix anyway
	st, ok := m.colStats(ref)
	if !ok {
		return rowsMightMatch
	}

	if mayContainNull(st) {
		return rowsMightMatch
	}

	if boundsUndefined(st) {
		return rowsMightMatch
	}

	// notStartsWith matches unless every value must start with the
	// prefix, which is only proven when both bounds do
	prefix := prefixBytes(lit)
	if bytes.HasPrefix(st.LowerBound, prefix) && bytes.HasPrefix(st.UpperBound, prefix) {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

// columnBounds holds the decoded bounds of both sides of a reference to
// reference comparison, plus a comparator for their shared type.
type columnBounds struct {
	cmp                    func(iceberg.Literal, iceberg.Literal) int
	leftLower, leftUpper   iceberg.Literal
	rightLower, rightUpper iceberg.Literal
}

// compareColumns gathers the statistics needed to compare the bounds of two
// column references. The outcomes shared by every comparison operator are
// folded in here: a type mismatch or unusable bounds keep the row group,
// while a side that is missing or entirely null can never satisfy any of
// the comparison operators.
func (m *metricsEval) compareColumns(left, right iceberg.BoundTerm, cannotMatchWhen func(columnBounds) bool) bool {
	lref, ok := left.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	rref, ok := right.(iceberg.BoundReference)
	if !ok {
		return rowsMightMatch
	}

	if !lref.Type().Equals(rref.Type()) || isNested(lref.Type()) {
		return rowsMightMatch
	}

	lst, lok := m.colStats(lref)
	rst, rok := m.colStats(rref)
	if !lok || !rok {
		return rowsCannotMatch
	}

	if allNulls(lst) || allNulls(rst) {
		return rowsCannotMatch
	}

	if boundsUndefined(lst) || boundsUndefined(rst) {
		return rowsMightMatch
	}

	var cb columnBounds
	if cb.leftLower, ok = decodeBound(lref.Type(), lst.LowerBound); !ok {
		return rowsMightMatch
	}
	if cb.leftUpper, ok = decodeBound(lref.Type(), lst.UpperBound); !ok {
		return rowsMightMatch
	}
	if cb.rightLower, ok = decodeBound(rref.Type(), rst.LowerBound); !ok {
		return rowsMightMatch
	}
	if cb.rightUpper, ok = decodeBound(rref.Type(), rst.UpperBound); !ok {
		return rowsMightMatch
	}

	cb.cmp = getCmpLiteral(cb.leftLower)
	if cannotMatchWhen(cb) {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitLessColumn(left, right iceberg.BoundTerm) bool {
	return m.compareColumns(left, right, func(cb columnBounds) bool {
		// left < right is impossible when every left value is at least
		// as large as every right value
		return cb.cmp(cb.leftLower, cb.rightUpper) >= 0
	})
}

func (m *metricsEval) VisitLessEqualColumn(left, right iceberg.BoundTerm) bool {
	return m.compareColumns(left, right, func(cb columnBounds) bool {
		return cb.cmp(cb.leftLower, cb.rightUpper) > 0
	})
}

// visitFlippedColumn evaluates a comparison with its operands swapped and
// the operator flipped, so the greater-than forms share the less-than rules.
func (m *metricsEval) visitFlippedColumn(op iceberg.Operation, left, right iceberg.BoundTerm) bool {
	switch op.FlipLR() {
	case iceberg.OpLT:
		return m.VisitLessColumn(right, left)
	case iceberg.OpLTEQ:
		return m.VisitLessEqualColumn(right, left)
	}

	return rowsMightMatch
}

func (m *metricsEval) VisitGreaterColumn(left, right iceberg.BoundTerm) bool {
	return m.visitFlippedColumn(iceberg.OpGT, left, right)
}

func (m *metricsEval) VisitGreaterEqualColumn(left, right iceberg.BoundTerm) bool {
	return m.visitFlippedColumn(iceberg.OpGTEQ, left, right)
}

func (m *metricsEval) VisitEqualColumn(left, right iceberg.BoundTerm) bool {
	return m.compareColumns(left, right, func(cb columnBounds) bool {
		return cb.cmp(cb.leftLower, cb.rightUpper) > 0 ||
			cb.cmp(cb.leftUpper, cb.rightLower) < 0
	})
}

func (m *metricsEval) VisitNotEqualColumn(left, right iceberg.BoundTerm) bool {
	// bounds cannot prove that both columns hold a single shared value
	// in every row
	return rowsMightMatch
}
