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
package data

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Schema is the database schema every pvstocks table lives in
const Schema = "financial_data"

var ErrUnknownTable = errors.New("unknown table")

// Table names a persisted data category. Only the constants below are valid
// table names; they are the only identifiers ever interpolated into SQL.
type Table string

const (
	BalanceSheet Table = "balance_sheet"
	Financials   Table = "financials"
	CashFlow     Table = "cash_flow"
	CompanyInfo  Table = "company_info"
	KeyStats     Table = "key_stats"
	MagicFormula Table = "magic_formula"
	Indicators   Table = "indicators"
)

// StatementTables lists the tables filled by the sync run in the order they
// are uploaded
var StatementTables = []Table{KeyStats, CompanyInfo, CashFlow, Financials, BalanceSheet}

// IndicatorTables lists the tables filled by the indicator calculator
var IndicatorTables = []Table{MagicFormula, Indicators}

// AllTables returns every table known to pvstocks
func AllTables() []Table {
	tables := make([]Table, 0, len(StatementTables)+len(IndicatorTables))
	tables = append(tables, StatementTables...)
	tables = append(tables, IndicatorTables...)
	return tables
}

// ParseTable converts a user supplied name into a Table
func ParseTable(name string) (Table, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tbl := range AllTables() {
		if string(tbl) == name {
			return tbl, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// Valid reports if the table is in the allow-list
func (tbl Table) Valid() bool {
	for _, known := range AllTables() {
		if known == tbl {
			return true
		}
	}

	return false
}

// IsStatement is true for tables that hold raw provider payloads
func (tbl Table) IsStatement() bool {
	for _, known := range StatementTables {
		if known == tbl {
			return true
		}
	}

	return false
}

// IsDated is true for statement types that carry a fiscal period end date
func (tbl Table) IsDated() bool {
	return tbl == BalanceSheet || tbl == Financials || tbl == CashFlow
}

// Identifier returns the schema qualified table identifier
func (tbl Table) Identifier() pgx.Identifier {
	return pgx.Identifier{Schema, string(tbl)}
}

// LatestIdentifier returns the identifier of the materialized view holding
// the most recent row per ticker
func (tbl Table) LatestIdentifier() pgx.Identifier {
	return pgx.Identifier{Schema, string(tbl) + "_latest"}
}

func (tbl Table) String() string {
	return string(tbl)
}
