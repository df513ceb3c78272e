// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/penny-vault/pvstocks/data"
)

// TableStats describes the contents of a single table
type TableStats struct {
	Table          string    `db:"table_name"`
	NumRecords     int64     `db:"num_records"`
	NumTickers     int64     `db:"num_tickers"`
	LastGeneration time.Time `db:"last_generation"`
}

// Stats returns row counts, ticker counts and the latest generation of every table
func (myLibrary *Library) Stats(ctx context.Context) ([]*TableStats, error) {
	if myLibrary.Pool == nil {
		return nil, ErrNotConnected
	}

	tables := data.AllTables()
	queries := make([]string, len(tables))
	for idx, table := range tables {
		queries[idx] = fmt.Sprintf(`SELECT '%[1]s' AS table_name,
	count(*) AS num_records,
	count(DISTINCT ticker) AS num_tickers,
	coalesce(max(timestamp_generated), '0001-01-01'::timestamp) AS last_generation
FROM %[2]s`, table, table.Identifier().Sanitize())
	}

	var stats []*TableStats
	if err := pgxscan.Select(ctx, myLibrary.Pool, &stats, strings.Join(queries, "\nUNION ALL\n")); err != nil {
		return nil, err
	}

	return stats, nil
}

// LastUpdated returns the most recent generation written to any table
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	stats, err := myLibrary.Stats(ctx)
	if err != nil {
		return time.Time{}, err
	}

	var lastUpdated time.Time
	for _, tbl := range stats {
		if tbl.LastGeneration.After(lastUpdated) {
			lastUpdated = tbl.LastGeneration
		}
	}

	return lastUpdated, nil
}
