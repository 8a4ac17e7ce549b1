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
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/apache/arrow-go/v18/parquet/schema"
)

// ColumnStats is the per-column summary for a single row group: the number
// of values stored for the column, the null count when the writer recorded
// one, and the encoded min/max bounds when available.
//
// HasNonNull reports whether the statistics actually recorded a non-null
// value. If the null count is known but no non-null value was ever recorded,
// any min/max bytes that happen to be present cannot be trusted.
type ColumnStats struct {
	ValueCount int64
	NullCount  *int64
	HasNonNull bool
	LowerBound []byte
	UpperBound []byte
}

// RowGroupStats is a snapshot of one row group's column statistics, keyed by
// field id. A field id absent from Columns means the column is entirely
// missing from the row group, so all of its values are inferred to be null.
//
// A snapshot is built fresh per row group and is read-only once built.
type RowGroupStats struct {
	NumRows int64
	Columns map[int]ColumnStats
}

// RowGroupStatsFromMeta builds a RowGroupStats snapshot from a parquet row
// group's metadata. Columns whose schema node carries no field id are
// skipped, which causes them to read as missing during evaluation.
func RowGroupStatsFromMeta(fileSchema *schema.Schema, rg *metadata.RowGroupMetaData) (*RowGroupStats, error) {
	out := &RowGroupStats{
		NumRows: rg.NumRows(),
		Columns: make(map[int]ColumnStats, rg.NumColumns()),
	}

	for i := range rg.NumColumns() {
		fieldID := int(fileSchema.Column(i).SchemaNode().FieldID())
		if fieldID < 0 {
			continue
		}

		colMeta, err := rg.ColumnChunk(i)
		if err != nil {
			return nil, err
		}

		cs := ColumnStats{ValueCount: colMeta.NumValues()}
		if set, err := colMeta.StatsSet(); err == nil && set {
			stats, err := colMeta.Statistics()
			if err == nil && stats != nil {
				if stats.HasNullCount() {
					nulls := stats.NullCount()
					cs.NullCount = &nulls
				}

				if stats.HasMinMax() {
					cs.HasNonNull = true
					cs.LowerBound = stats.EncodeMin()
					cs.UpperBound = stats.EncodeMax()
				}
			}
		}

		out.Columns[fieldID] = cs
	}

	return out, nil
}
