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
	"testing"

	"github.com/Teradata/iceberg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableSchemaNested = iceberg.NewSchema(1,
	iceberg.NestedField{ID: 1, Name: "foo", Type: iceberg.PrimitiveTypes.String},
	iceberg.NestedField{ID: 2, Name: "bar", Type: iceberg.PrimitiveTypes.Int32, Required: true},
	iceberg.NestedField{ID: 3, Name: "baz", Type: iceberg.PrimitiveTypes.Bool},
	iceberg.NestedField{ID: 4, Name: "qux", Type: &iceberg.ListType{
		ElementID: 5, Element: iceberg.PrimitiveTypes.String, ElementRequired: true,
	}, Required: true},
	iceberg.NestedField{ID: 6, Name: "location", Type: &iceberg.StructType{
		FieldList: []iceberg.NestedField{
			{ID: 7, Name: "latitude", Type: iceberg.PrimitiveTypes.Float32, Required: true},
			{ID: 8, Name: "longitude", Type: iceberg.PrimitiveTypes.Float32, Required: true},
		},
	}},
)

func TestSchemaFindField(t *testing.T) {
	f, ok := tableSchemaNested.FindFieldByName("bar")
	require.True(t, ok)
	assert.Equal(t, 2, f.ID)
	assert.True(t, f.Required)

	f, ok = tableSchemaNested.FindFieldByName("location.latitude")
	require.True(t, ok)
	assert.Equal(t, 7, f.ID)

	_, ok = tableSchemaNested.FindFieldByName("BAR")
	assert.False(t, ok)

	f, ok = tableSchemaNested.FindFieldByNameCaseInsensitive("BAR")
	require.True(t, ok)
	assert.Equal(t, 2, f.ID)

	f, ok = tableSchemaNested.FindFieldByID(8)
	require.True(t, ok)
	assert.Equal(t, "longitude", f.Name)

	_, ok = tableSchemaNested.FindFieldByID(100)
	assert.False(t, ok)
}

func TestSchemaFindColumnName(t *testing.T) {
	name, ok := tableSchemaNested.FindColumnName(7)
	require.True(t, ok)
	assert.Equal(t, "location.latitude", name)

	name, ok = tableSchemaNested.FindColumnName(1)
	require.True(t, ok)
	assert.Equal(t, "foo", name)

	_, ok = tableSchemaNested.FindColumnName(100)
	assert.False(t, ok)
}

func TestSchemaHighestFieldID(t *testing.T) {
	assert.Equal(t, 8, tableSchemaNested.HighestFieldID())

	flat := iceberg.NewSchema(0,
		iceberg.NestedField{ID: 10, Name: "a", Type: iceberg.PrimitiveTypes.Int64},
	)
	assert.Equal(t, 10, flat.HighestFieldID())
}

func TestFieldHasOptionalParent(t *testing.T) {
	// location is optional, so its required children can still be missing
	assert.True(t, tableSchemaNested.FieldHasOptionalParent(7))
	assert.True(t, tableSchemaNested.FieldHasOptionalParent(8))

	// top level fields have no parent
	assert.False(t, tableSchemaNested.FieldHasOptionalParent(2))

	// qux is required, so its element has no optional parent
	assert.False(t, tableSchemaNested.FieldHasOptionalParent(5))
}

func TestSchemaEquality(t *testing.T) {
	same := iceberg.NewSchema(1, tableSchemaNested.Fields()...)
	assert.True(t, tableSchemaNested.Equals(same))

	// the schema id is not part of equality
	differentID := iceberg.NewSchema(2, tableSchemaNested.Fields()...)
	assert.True(t, tableSchemaNested.Equals(differentID))

	flat := iceberg.NewSchema(1,
		iceberg.NestedField{ID: 1, Name: "foo", Type: iceberg.PrimitiveTypes.String},
	)
	assert.False(t, tableSchemaNested.Equals(flat))
	assert.False(t, tableSchemaNested.Equals(nil))
}

func TestSchemaIndexes(t *testing.T) {
	byID, err := iceberg.IndexByID(tableSchemaNested)
	require.NoError(t, err)
	assert.Len(t, byID, 8)
	assert.Equal(t, "latitude", byID[7].Name)

	byName, err := iceberg.IndexByName(tableSchemaNested)
	require.NoError(t, err)
	assert.Equal(t, 7, byName["location.latitude"])
	assert.Equal(t, 5, byName["qux.element"])

	parents, err := iceberg.IndexParents(tableSchemaNested)
	require.NoError(t, err)
	assert.Equal(t, 6, parents[7])
	assert.Equal(t, 4, parents[5])
}
