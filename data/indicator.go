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
	"time"

	"github.com/rs/zerolog"
)

// IndicatorInput is the latest persisted row of each statement type for a
// single ticker
type IndicatorInput struct {
	Ticker       string `db:"ticker"`
	CompanyInfo  Fields `db:"company_info"`
	BalanceSheet Fields `db:"balance_sheet"`
	KeyStats     Fields `db:"key_stats"`
	Financials   Fields `db:"financials"`
	CashFlow     Fields `db:"cash_flow"`
}

// Merged combines all statement types into a single field set. When the same
// field appears in more than one statement the value is taken from the first
// of key stats, balance sheet, financials, cash flow and company info.
func (input *IndicatorInput) Merged() Fields {
	merged := make(Fields)
	for _, fields := range []Fields{input.KeyStats, input.BalanceSheet, input.Financials, input.CashFlow, input.CompanyInfo} {
		merged.Merge(fields)
	}

	if input.Ticker != "" {
		merged["ticker"] = input.Ticker
	}

	return merged
}

// MagicFormulaRecord holds the Greenblatt magic formula metrics for a ticker
type MagicFormulaRecord struct {
	Ticker                    string    `db:"ticker"`
	SectorKey                 string    `db:"sector_key"`
	EarningsYield             float64   `db:"earnings_yield"`
	ReturnOnCapital           float64   `db:"return_on_capital"`
	EarningsYieldRank         float64   `db:"earnings_yield_rank"`
	ReturnOnCapitalRank       float64   `db:"return_on_capital_rank"`
	EarningsYieldRankSector   float64   `db:"earnings_yield_rank_sector"`
	ReturnOnCapitalRankSector float64   `db:"return_on_capital_rank_sector"`
	TotalRank                 float64   `db:"total_rank"`
	TotalSectorRank           float64   `db:"total_sector_rank"`
	TimestampGenerated        time.Time `db:"timestamp_generated"`
}

// IndicatorRecord holds the Graham number and Peter Lynch fair value for a ticker
type IndicatorRecord struct {
	Ticker                       string    `db:"ticker"`
	GrahamNumber                 float64   `db:"graham_number"`
	CurrentPriceGrahamComparison float64   `db:"current_price_graham_comparison"`
	PeterLynchValue              float64   `db:"peter_lynch_value"`
	CurrentPriceLynchComparison  float64   `db:"current_price_lynch_comparison"`
	TimestampGenerated           time.Time `db:"timestamp_generated"`
}

// MagicFormulaColumns is the column order used when copying magic formula records
var MagicFormulaColumns = []string{
	"ticker",
	"sector_key",
	"earnings_yield",
	"return_on_capital",
	"earnings_yield_rank",
	"return_on_capital_rank",
	"earnings_yield_rank_sector",
	"return_on_capital_rank_sector",
	"total_rank",
	"total_sector_rank",
	"timestamp_generated",
}

// IndicatorColumns is the column order used when copying indicator records
var IndicatorColumns = []string{
	"ticker",
	"graham_number",
	"current_price_graham_comparison",
	"peter_lynch_value",
	"current_price_lynch_comparison",
	"timestamp_generated",
}

// Row returns the record values in MagicFormulaColumns order
func (record *MagicFormulaRecord) Row() []any {
	return []any{
		record.Ticker,
		record.SectorKey,
		record.EarningsYield,
		record.ReturnOnCapital,
		record.EarningsYieldRank,
		record.ReturnOnCapitalRank,
		record.EarningsYieldRankSector,
		record.ReturnOnCapitalRankSector,
		record.TotalRank,
		record.TotalSectorRank,
		record.TimestampGenerated,
	}
}

// Row returns the record values in IndicatorColumns order
func (record *IndicatorRecord) Row() []any {
	return []any{
		record.Ticker,
		record.GrahamNumber,
		record.CurrentPriceGrahamComparison,
		record.PeterLynchValue,
		record.CurrentPriceLynchComparison,
		record.TimestampGenerated,
	}
}

func (record *MagicFormulaRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", record.Ticker).
		Str("SectorKey", record.SectorKey).
		Float64("EarningsYield", record.EarningsYield).
		Float64("ReturnOnCapital", record.ReturnOnCapital).
		Float64("TotalRank", record.TotalRank).
		Float64("TotalSectorRank", record.TotalSectorRank)
}

func (record *IndicatorRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", record.Ticker).
		Float64("GrahamNumber", record.GrahamNumber).
		Float64("PeterLynchValue", record.PeterLynchValue)
}
