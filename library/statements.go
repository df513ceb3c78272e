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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog/log"
)

var statementColumns = []string{"ticker", "date", "timestamp_generated", "data"}

// LatestStatementDate returns the most recent persisted fiscal period end
// date for ticker. The boolean is false when nothing has been stored yet.
func (myLibrary *Library) LatestStatementDate(ctx context.Context, table data.Table, ticker string) (time.Time, bool, error) {
	if !table.IsDated() {
		return time.Time{}, false, fmt.Errorf("%w: %s has no statement date", ErrInvalidTable, table)
	}

	if myLibrary.Pool == nil {
		return time.Time{}, false, ErrNotConnected
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	defer conn.Release()

	var latest *time.Time
	sql := fmt.Sprintf("SELECT max(date) FROM %s WHERE ticker = $1", table.Identifier().Sanitize())
	if err := conn.QueryRow(ctx, sql, ticker).Scan(&latest); err != nil {
		return time.Time{}, false, err
	}

	if latest == nil {
		return time.Time{}, false, nil
	}

	return data.DateOnly(*latest), true, nil
}

// HasRecord reports if any row exists for ticker in table
func (myLibrary *Library) HasRecord(ctx context.Context, table data.Table, ticker string) (bool, error) {
	if !table.Valid() {
		return false, fmt.Errorf("%w: %s", data.ErrUnknownTable, table)
	}

	if myLibrary.Pool == nil {
		return false, ErrNotConnected
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	var exists bool
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE ticker = $1)", table.Identifier().Sanitize())
	if err := conn.QueryRow(ctx, sql, ticker).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Upload appends records to table in a single transaction. Every record is
// stamped with the generation timestamp. Uploading zero records is a no-op
// and does not touch the database.
func (myLibrary *Library) Upload(ctx context.Context, table data.Table, records []*data.StatementRecord, generation time.Time) error {
	if len(records) == 0 {
		return nil
	}

	if !table.IsStatement() {
		return fmt.Errorf("%w: cannot upload statements to %s", ErrInvalidTable, table)
	}

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		record.TimestampGenerated = generation

		payload, err := record.JSON()
		if err != nil {
			log.Error().Err(err).Object("Record", record).Msg("could not serialize record fields")
			return err
		}

		var date any
		if record.HasDate() {
			date = record.Date
		}

		rows = append(rows, []any{record.Ticker, date, generation, payload})
	}

	return myLibrary.copyRows(ctx, table, statementColumns, rows)
}

// copyRows bulk inserts rows into table with COPY inside a transaction
func (myLibrary *Library) copyRows(ctx context.Context, table data.Table, columns []string, rows [][]any) error {
	if myLibrary.Pool == nil {
		return ErrNotConnected
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer rollback(ctx, tx)

	count, err := tx.CopyFrom(ctx, table.Identifier(), columns, pgx.CopyFromRows(rows))
	if err != nil {
		log.Error().Err(err).Stringer("Table", table).Msg("copy into table failed")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Stringer("Table", table).Int64("NumRecords", count).Msg("uploaded records")
	return nil
}
