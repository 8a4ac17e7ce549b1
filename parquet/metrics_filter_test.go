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

package parquet_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Teradata/iceberg"
	"github.com/Teradata/iceberg/parquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = iceberg.NewSchema(0,
	iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.PrimitiveTypes.Int32, Required: true},
	iceberg.NestedField{ID: 2, Name: "id2", Type: iceberg.PrimitiveTypes.Int32},
	iceberg.NestedField{ID: 3, Name: "name", Type: iceberg.PrimitiveTypes.String},
	iceberg.NestedField{ID: 4, Name: "other_name", Type: iceberg.PrimitiveTypes.String},
	iceberg.NestedField{ID: 5, Name: "measurement", Type: iceberg.PrimitiveTypes.Float64},
	iceberg.NestedField{ID: 6, Name: "addr", Type: &iceberg.StructType{
		FieldList: []iceberg.NestedField{
			{ID: 7, Name: "street", Type: iceberg.PrimitiveTypes.String},
		},
	}},
)

func i64(v int64) *int64 { return &v }

func encInt32(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func encFloat64(v float64) []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))
}

// int32 column with null-free values in [lo, hi]
func intCol(lo, hi int32, count int64) parquet.ColumnStats {
	return parquet.ColumnStats{
		ValueCount: count,
		NullCount:  i64(0),
		HasNonNull: true,
		LowerBound: encInt32(lo),
		UpperBound: encInt32(hi),
	}
}

func strCol(lo, hi string, nulls, count int64) parquet.ColumnStats {
	return parquet.ColumnStats{
		ValueCount: count,
		NullCount:  i64(nulls),
		HasNonNull: true,
		LowerBound: []byte(lo),
		UpperBound: []byte(hi),
	}
}

func rowGroup(numRows int64, cols map[int]parquet.ColumnStats) *parquet.RowGroupStats {
	return &parquet.RowGroupStats{NumRows: numRows, Columns: cols}
}

func shouldRead(t *testing.T, expr iceberg.BooleanExpression, stats *parquet.RowGroupStats, opts ...parquet.Option) bool {
	t.Helper()

	f, err := parquet.NewMetricsRowGroupFilter(testSchema, expr, true, opts...)
	require.NoError(t, err)

	return f.ShouldRead(stats)
}

func TestZeroRowsCannotMatch(t *testing.T) {
	stats := rowGroup(0, map[int]parquet.ColumnStats{1: intCol(10, 20, 0)})

	exprs := []iceberg.BooleanExpression{
		iceberg.AlwaysTrue{},
		iceberg.IsNull(iceberg.Reference("name")),
		iceberg.NotNull(iceberg.Reference("name")),
		iceberg.EqualTo(iceberg.Reference("id"), int32(15)),
		iceberg.NotEqualTo(iceberg.Reference("id"), int32(15)),
	}
	for _, e := range exprs {
		assert.False(t, shouldRead(t, e, stats), e.String())
	}

	assert.False(t, shouldRead(t, iceberg.AlwaysTrue{}, nil))
}

func TestMissingColumn(t *testing.T) {
	// only id has stats, every other column is absent from the row group
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})

	tests := []struct {
		expr iceberg.BooleanExpression
		read bool
	}{
		{iceberg.NotNull(iceberg.Reference("name")), false},
		{iceberg.EqualTo(iceberg.Reference("name"), "abc"), false},
		{iceberg.LessThan(iceberg.Reference("id2"), int32(5)), false},
		{iceberg.GreaterThan(iceberg.Reference("id2"), int32(5)), false},
		{iceberg.IsIn(iceberg.Reference("id2"), int32(1), int32(2)), false},
		{iceberg.StartsWith(iceberg.Reference("name"), "ab"), false},
		{iceberg.IsNaN(iceberg.Reference("measurement")), false},
		// a wholly absent column is inferred all-null
		{iceberg.IsNull(iceberg.Reference("name")), true},
		// documented asymmetry: notStartsWith backs off instead of
		// treating the absent column as all-null
		{iceberg.NotStartsWith(iceberg.Reference("name"), "ab"), true},
		{iceberg.NotNaN(iceberg.Reference("measurement")), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.read, shouldRead(t, tt.expr, stats), tt.expr.String())
	}
}

func TestAllNullColumn(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		3: {ValueCount: 100, NullCount: i64(100)},
	})

	tests := []struct {
		expr iceberg.BooleanExpression
		read bool
	}{
		{iceberg.NotNull(iceberg.Reference("name")), false},
		{iceberg.EqualTo(iceberg.Reference("name"), "abc"), false},
		{iceberg.LessThan(iceberg.Reference("name"), "abc"), false},
		{iceberg.GreaterThanEqual(iceberg.Reference("name"), "abc"), false},
		{iceberg.StartsWith(iceberg.Reference("name"), "ab"), false},
		{iceberg.IsIn(iceberg.Reference("name"), "a", "b"), false},
		{iceberg.IsNull(iceberg.Reference("name")), true},
		{iceberg.NotEqualTo(iceberg.Reference("name"), "abc"), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.read, shouldRead(t, tt.expr, stats), tt.expr.String())
	}
}

func TestBoundsUndefined(t *testing.T) {
	// null count known but no non-null value recorded: any min/max bytes
	// that survived are stale and must be ignored
	stale := parquet.ColumnStats{
		ValueCount: 100,
		NullCount:  i64(50),
		HasNonNull: false,
		LowerBound: encInt32(10),
		UpperBound: encInt32(20),
	}
	stats := rowGroup(100, map[int]parquet.ColumnStats{2: stale})

	exprs := []iceberg.BooleanExpression{
		iceberg.EqualTo(iceberg.Reference("id2"), int32(100)),
		iceberg.LessThan(iceberg.Reference("id2"), int32(5)),
		iceberg.GreaterThan(iceberg.Reference("id2"), int32(100)),
		iceberg.IsIn(iceberg.Reference("id2"), int32(100), int32(200)),
	}
	for _, e := range exprs {
		assert.True(t, shouldRead(t, e, stats), e.String())
	}

	// missing a single bound is just as untrustworthy
	oneSided := parquet.ColumnStats{
		ValueCount: 100,
		NullCount:  i64(0),
		HasNonNull: true,
		LowerBound: encInt32(10),
	}
	stats = rowGroup(100, map[int]parquet.ColumnStats{2: oneSided})
	assert.True(t, shouldRead(t, iceberg.GreaterThan(iceberg.Reference("id2"), int32(100)), stats))
}

func TestRangeCutoffs(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})

	tests := []struct {
		expr iceberg.BooleanExpression
		read bool
	}{
		{iceberg.LessThan(iceberg.Reference("id"), int32(10)), false},
		{iceberg.LessThan(iceberg.Reference("id"), int32(11)), true},
		{iceberg.LessThanEqual(iceberg.Reference("id"), int32(9)), false},
		{iceberg.LessThanEqual(iceberg.Reference("id"), int32(10)), true},
		{iceberg.GreaterThan(iceberg.Reference("id"), int32(20)), false},
		{iceberg.GreaterThan(iceberg.Reference("id"), int32(19)), true},
		{iceberg.GreaterThanEqual(iceberg.Reference("id"), int32(21)), false},
		{iceberg.GreaterThanEqual(iceberg.Reference("id"), int32(20)), true},
		{iceberg.GreaterThan(iceberg.Reference("id"), int32(25)), false},
		{iceberg.GreaterThan(iceberg.Reference("id"), int32(15)), true},
		{iceberg.EqualTo(iceberg.Reference("id"), int32(5)), false},
		{iceberg.EqualTo(iceberg.Reference("id"), int32(25)), false},
		{iceberg.EqualTo(iceberg.Reference("id"), int32(10)), true},
		{iceberg.EqualTo(iceberg.Reference("id"), int32(20)), true},
		{iceberg.EqualTo(iceberg.Reference("id"), int32(15)), true},
		{iceberg.NotEqualTo(iceberg.Reference("id"), int32(15)), true},
		{iceberg.NotEqualTo(iceberg.Reference("id"), int32(5)), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.read, shouldRead(t, tt.expr, stats), tt.expr.String())
	}
}

func TestBooleanConnectives(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})

	cannot := iceberg.GreaterThan(iceberg.Reference("id"), int32(25))
	might := iceberg.GreaterThan(iceberg.Reference("id"), int32(15))

	assert.False(t, shouldRead(t, iceberg.NewAnd(cannot, might), stats))
	assert.True(t, shouldRead(t, iceberg.NewOr(cannot, might), stats))
	assert.False(t, shouldRead(t, iceberg.NewOr(cannot, cannot), stats))
	assert.True(t, shouldRead(t, iceberg.NewNot(cannot), stats))
	assert.False(t, shouldRead(t, iceberg.NewNot(iceberg.LessThan(iceberg.Reference("id"), int32(100))), stats))
}

func TestInPredicateLimit(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})

	outside := make([]int32, 0, 201)
	for i := range int32(201) {
		outside = append(outside, 100+i)
	}

	// 200 values outside the bounds prune the row group, one more skips
	// the bounds check entirely
	assert.False(t, shouldRead(t, iceberg.IsIn(iceberg.Reference("id"), outside[:200]...), stats))
	assert.True(t, shouldRead(t, iceberg.IsIn(iceberg.Reference("id"), outside...), stats))

	assert.False(t, shouldRead(t, iceberg.IsIn(iceberg.Reference("id"), outside...), stats,
		parquet.WithInPredicateLimit(300)))

	assert.True(t, shouldRead(t, iceberg.IsIn(iceberg.Reference("id"), int32(15), int32(100)), stats))
	assert.True(t, shouldRead(t, iceberg.NotIn(iceberg.Reference("id"), outside[:200]...), stats))
}

func TestStartsWithTruncatedBounds(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("app", "apple", 0, 100),
	})

	// bounds are truncated to the prefix length before comparing:
	// trunc("app") = "app" <= "appl" and trunc("apple") = "appl" == prefix
	assert.True(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "appl"), stats))
	assert.False(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "appz"), stats))
	assert.False(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "ao"), stats))
	assert.True(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "app"), stats))

	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("Alan", "Alice", 0, 100),
	})
	assert.True(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "Al"), stats))

	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("Bob", "Carl", 0, 100),
	})
	assert.False(t, shouldRead(t, iceberg.StartsWith(iceberg.Reference("name"), "Al"), stats))
}

func TestNotStartsWith(t *testing.T) {
	ref := iceberg.Reference("name")

	// both bounds share the prefix: every value must start with it
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("apple", "approve", 0, 100),
	})
	assert.False(t, shouldRead(t, iceberg.NotStartsWith(ref, "app"), stats))
	assert.True(t, shouldRead(t, iceberg.NotStartsWith(ref, "apple"), stats))

	// only the lower bound shares the prefix
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("apple", "banana", 0, 100),
	})
	assert.True(t, shouldRead(t, iceberg.NotStartsWith(ref, "app"), stats))

	// a possible null never starts with the prefix
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("apple", "approve", 5, 100),
	})
	assert.True(t, shouldRead(t, iceberg.NotStartsWith(ref, "app"), stats))

	// unknown null count is treated as possibly null
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: {ValueCount: 100, HasNonNull: true, LowerBound: []byte("apple"), UpperBound: []byte("approve")},
	})
	assert.True(t, shouldRead(t, iceberg.NotStartsWith(ref, "app"), stats))
}

func TestNullCountCutoffs(t *testing.T) {
	// null-free column cannot contain a null
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("a", "z", 0, 100),
	})
	assert.False(t, shouldRead(t, iceberg.IsNull(iceberg.Reference("name")), stats))
	assert.True(t, shouldRead(t, iceberg.NotNull(iceberg.Reference("name")), stats))

	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: strCol("a", "z", 1, 100),
	})
	assert.True(t, shouldRead(t, iceberg.IsNull(iceberg.Reference("name")), stats))

	// unknown null count cannot rule a null out
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		3: {ValueCount: 100, HasNonNull: true, LowerBound: []byte("a"), UpperBound: []byte("z")},
	})
	assert.True(t, shouldRead(t, iceberg.IsNull(iceberg.Reference("name")), stats))
}

func TestNaN(t *testing.T) {
	ref := iceberg.Reference("measurement")

	stats := rowGroup(100, map[int]parquet.ColumnStats{
		5: {
			ValueCount: 100,
			NullCount:  i64(0),
			HasNonNull: true,
			LowerBound: encFloat64(1.5),
			UpperBound: encFloat64(99.5),
		},
	})
	// min/max cannot disprove NaN presence
	assert.True(t, shouldRead(t, iceberg.IsNaN(ref), stats))
	assert.True(t, shouldRead(t, iceberg.NotNaN(ref), stats))

	stats = rowGroup(100, map[int]parquet.ColumnStats{
		5: {ValueCount: 100, NullCount: i64(100)},
	})
	assert.False(t, shouldRead(t, iceberg.IsNaN(ref), stats))
}

func TestNaNBoundsUnreliable(t *testing.T) {
	// a NaN min/max, as written by old writers, must not be used to prune
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		5: {
			ValueCount: 100,
			NullCount:  i64(0),
			HasNonNull: true,
			LowerBound: encFloat64(math.NaN()),
			UpperBound: encFloat64(math.NaN()),
		},
	})

	assert.True(t, shouldRead(t, iceberg.LessThan(iceberg.Reference("measurement"), 1.0), stats))
	assert.True(t, shouldRead(t, iceberg.GreaterThan(iceberg.Reference("measurement"), 1.0), stats))
	assert.True(t, shouldRead(t, iceberg.EqualTo(iceberg.Reference("measurement"), 1.0), stats))
}

func TestColumnComparison(t *testing.T) {
	id, id2 := iceberg.Reference("id"), iceberg.Reference("id2")

	disjoint := rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		2: intCol(30, 40, 100),
	})

	tests := []struct {
		expr iceberg.BooleanExpression
		read bool
	}{
		{iceberg.GreaterThanColumn(id, id2), false},
		{iceberg.GreaterThanEqualColumn(id, id2), false},
		{iceberg.GreaterThanColumn(id2, id), true},
		{iceberg.GreaterThanEqualColumn(id2, id), true},
		{iceberg.LessThanColumn(id, id2), true},
		{iceberg.LessThanEqualColumn(id, id2), true},
		{iceberg.LessThanColumn(id2, id), false},
		{iceberg.LessThanEqualColumn(id2, id), false},
		{iceberg.EqualToColumn(id, id2), false},
		{iceberg.NotEqualToColumn(id, id2), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.read, shouldRead(t, tt.expr, disjoint), tt.expr.String())
	}

	// touching bounds: id max == id2 min
	touching := rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		2: intCol(20, 40, 100),
	})
	assert.False(t, shouldRead(t, iceberg.GreaterThanColumn(id, id2), touching))
	assert.True(t, shouldRead(t, iceberg.GreaterThanEqualColumn(id, id2), touching))
	assert.True(t, shouldRead(t, iceberg.EqualToColumn(id, id2), touching))
	assert.False(t, shouldRead(t, iceberg.LessThanColumn(id2, id), touching))
	assert.True(t, shouldRead(t, iceberg.LessThanEqualColumn(id2, id), touching))
}

func TestColumnComparisonDegradedCases(t *testing.T) {
	id, id2 := iceberg.Reference("id"), iceberg.Reference("id2")

	// mismatched types cannot be compared, keep the row group
	stats := rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		3: strCol("a", "z", 0, 100),
	})
	assert.True(t, shouldRead(t, iceberg.GreaterThanColumn(id, iceberg.Reference("name")), stats))

	// a missing side means that side is wholly null
	stats = rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})
	assert.False(t, shouldRead(t, iceberg.LessThanColumn(id, id2), stats))

	// notEq between references is never refutable by min/max bounds,
	// even with a side missing entirely
	assert.True(t, shouldRead(t, iceberg.NotEqualToColumn(id, id2), stats))

	// same for an all-null side
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		2: {ValueCount: 100, NullCount: i64(100)},
	})
	assert.False(t, shouldRead(t, iceberg.LessThanColumn(id, id2), stats))

	// undefined bounds on either side keep the row group
	stats = rowGroup(100, map[int]parquet.ColumnStats{
		1: intCol(10, 20, 100),
		2: {ValueCount: 100, NullCount: i64(50), HasNonNull: false},
	})
	assert.True(t, shouldRead(t, iceberg.LessThanColumn(id, id2), stats))
}

func TestNestedTypeMightMatch(t *testing.T) {
	// struct columns have no chunk of their own, statistics cannot prove
	// anything about them
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})
	assert.True(t, shouldRead(t, iceberg.NotNull(iceberg.Reference("addr")), stats))
}

func TestBindingFastPaths(t *testing.T) {
	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})

	// id is required with no optional parent, so isNull folds away
	assert.False(t, shouldRead(t, iceberg.IsNull(iceberg.Reference("id")), stats))
	assert.True(t, shouldRead(t, iceberg.NotNull(iceberg.Reference("id")), stats))

	// a literal above int32 range folds the comparison
	assert.True(t, shouldRead(t, iceberg.LessThan(iceberg.Reference("id"), int64(math.MaxInt64)), stats))
	assert.False(t, shouldRead(t, iceberg.GreaterThan(iceberg.Reference("id"), int64(math.MaxInt64)), stats))
}

func TestFilterBindErrors(t *testing.T) {
	_, err := parquet.NewMetricsRowGroupFilter(testSchema,
		iceberg.EqualTo(iceberg.Reference("nonexistent"), int32(1)), true)
	assert.ErrorIs(t, err, iceberg.ErrInvalidSchema)

	// case-insensitive binding resolves the reference instead
	f, err := parquet.NewMetricsRowGroupFilter(testSchema,
		iceberg.EqualTo(iceberg.Reference("ID"), int32(5)), false)
	require.NoError(t, err)

	stats := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})
	assert.False(t, f.ShouldRead(stats))
}

func TestFilterIsReusableAcrossRowGroups(t *testing.T) {
	f, err := parquet.NewMetricsRowGroupFilter(testSchema,
		iceberg.GreaterThan(iceberg.Reference("id"), int32(25)), true)
	require.NoError(t, err)

	a := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 20, 100)})
	b := rowGroup(100, map[int]parquet.ColumnStats{1: intCol(10, 30, 100)})

	assert.False(t, f.ShouldRead(a))
	assert.True(t, f.ShouldRead(b))
	assert.False(t, f.ShouldRead(a))
}
