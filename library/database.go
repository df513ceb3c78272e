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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotConnected = errors.New("library is not connected to a database")
	ErrInvalidTable = errors.New("table not valid for operation")
)

// Library is a financial data store backed by PostgreSQL
type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	sql := fmt.Sprintf("SELECT name, owner FROM %s LIMIT 1", pgx.Identifier{data.Schema, "library"}.Sanitize())
	if err := conn.QueryRow(ctx, sql).Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			pool.Close()
			return nil, err
		}

		log.Warn().Str("DatabaseURL", dbURL).Msg("library has not been initialized; run `pvstocks init`")
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	if myLibrary.Pool == nil {
		return ErrNotConnected
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	sql := fmt.Sprintf(`INSERT INTO %s ("name", "owner") VALUES ($1, $2)`, pgx.Identifier{data.Schema, "library"}.Sanitize())
	_, err = conn.Exec(ctx, sql, myLibrary.Name, myLibrary.Owner)
	return err
}

// rollback is deferred by every write transaction so an early return undoes
// partial work
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil {
		if !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("error rollingback tx")
		}
	}
}
