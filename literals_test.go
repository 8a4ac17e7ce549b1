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

package iceberg_test

import (
	"math"
	"testing"

	"github.com/Teradata/iceberg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparatorOrdering(t *testing.T) {
	i32 := iceberg.Int32Literal(5).Comparator()
	assert.Equal(t, 0, i32(5, 5))
	assert.Equal(t, -1, i32(4, 5))
	assert.Equal(t, 1, i32(6, 5))

	str := iceberg.StringLiteral("a").Comparator()
	assert.Equal(t, -1, str("app", "appl"))
	assert.Equal(t, 1, str("b", "appl"))

	bin := iceberg.BinaryLiteral(nil).Comparator()
	assert.Equal(t, 1, bin([]byte{0xff}, []byte("z")))
	assert.Equal(t, -1, bin([]byte{}, []byte{0x00}))
}

func TestLiteralFromBytes(t *testing.T) {
	tests := []struct {
		typ      iceberg.Type
		data     []byte
		expected iceberg.Literal
	}{
		{iceberg.PrimitiveTypes.Int32, []byte{0x0a, 0x00, 0x00, 0x00}, iceberg.Int32Literal(10)},
		{iceberg.PrimitiveTypes.Int64, []byte{0x0a, 0, 0, 0, 0, 0, 0, 0}, iceberg.Int64Literal(10)},
		{iceberg.PrimitiveTypes.String, []byte("hello"), iceberg.StringLiteral("hello")},
		{iceberg.PrimitiveTypes.Binary, []byte{0x01, 0x02}, iceberg.BinaryLiteral{0x01, 0x02}},
		{iceberg.PrimitiveTypes.Bool, []byte{0x01}, iceberg.BoolLiteral(true)},
	}

	for _, tt := range tests {
		lit, err := iceberg.LiteralFromBytes(tt.typ, tt.data)
		require.NoError(t, err)
		assert.True(t, lit.Equals(tt.expected), tt.expected.String())
	}

	_, err := iceberg.LiteralFromBytes(iceberg.PrimitiveTypes.Int32, nil)
	assert.ErrorIs(t, err, iceberg.ErrInvalidBinSerialization)
}

func TestLiteralRoundTrip(t *testing.T) {
	lits := []iceberg.Literal{
		iceberg.Int32Literal(-7),
		iceberg.Int64Literal(math.MaxInt64),
		iceberg.Float64Literal(3.25),
		iceberg.StringLiteral("iceberg"),
	}

	for _, lit := range lits {
		data, err := lit.MarshalBinary()
		require.NoError(t, err)

		got, err := iceberg.LiteralFromBytes(lit.Type(), data)
		require.NoError(t, err)
		assert.True(t, got.Equals(lit), lit.String())
	}
}

func TestLiteralCasting(t *testing.T) {
	lit, err := iceberg.Int32Literal(5).To(iceberg.PrimitiveTypes.Int64)
	require.NoError(t, err)
	assert.True(t, lit.Equals(iceberg.Int64Literal(5)))

	above, err := iceberg.Int64Literal(math.MaxInt64).To(iceberg.PrimitiveTypes.Int32)
	require.NoError(t, err)
	_, ok := above.(iceberg.AboveMaxLiteral)
	assert.True(t, ok)

	below, err := iceberg.Int64Literal(math.MinInt64).To(iceberg.PrimitiveTypes.Int32)
	require.NoError(t, err)
	_, ok = below.(iceberg.BelowMinLiteral)
	assert.True(t, ok)

	// identity cast
	s, err := iceberg.StringLiteral("x").To(iceberg.PrimitiveTypes.String)
	require.NoError(t, err)
	assert.True(t, s.Equals(iceberg.StringLiteral("x")))
}

func TestNaNFloatLiterals(t *testing.T) {
	f32 := iceberg.Float32Literal(float32(math.NaN()))
	f64 := iceberg.Float64Literal(math.NaN())

	assert.True(t, math.IsNaN(float64(f32.Value())))
	assert.True(t, math.IsNaN(f64.Value()))

	data, err := f64.MarshalBinary()
	require.NoError(t, err)
	got, err := iceberg.LiteralFromBytes(iceberg.PrimitiveTypes.Float64, data)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(got.(iceberg.Float64Literal))))
}
