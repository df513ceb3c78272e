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

	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog/log"
)

// RefreshView rebuilds the <table>_latest materialized view which holds the
// most recent generation's row per ticker, creating it first if needed. The
// refresh rescans the whole table.
func (myLibrary *Library) RefreshView(ctx context.Context, table data.Table) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %s", data.ErrUnknownTable, table)
	}

	if myLibrary.Pool == nil {
		return ErrNotConnected
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	orderBy := "ticker, timestamp_generated DESC"
	if table.IsStatement() {
		orderBy += ", date DESC NULLS LAST"
	}

	createSQL := fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS %[1]s AS
SELECT DISTINCT ON (ticker) * FROM %[2]s ORDER BY %[3]s`,
		table.LatestIdentifier().Sanitize(), table.Identifier().Sanitize(), orderBy)
	if _, err := conn.Exec(ctx, createSQL); err != nil {
		log.Error().Err(err).Stringer("Table", table).Msg("could not create latest view")
		return err
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf("REFRESH MATERIALIZED VIEW %s", table.LatestIdentifier().Sanitize())); err != nil {
		log.Error().Err(err).Stringer("Table", table).Msg("could not refresh latest view")
		return err
	}

	log.Debug().Stringer("Table", table).Msg("refreshed latest view")
	return nil
}
