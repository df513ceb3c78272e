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

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/penny-vault/pvstocks/data"
)

// LoadIndicatorInputs joins the latest company info, balance sheet, key
// stats, financials and cash flow rows of every ticker. Tickers missing any
// one of the statement types are not returned.
func (myLibrary *Library) LoadIndicatorInputs(ctx context.Context) ([]*data.IndicatorInput, error) {
	if myLibrary.Pool == nil {
		return nil, ErrNotConnected
	}

	sql := fmt.Sprintf(`SELECT ci.ticker AS ticker,
	ci.data AS company_info,
	bs.data AS balance_sheet,
	ks.data AS key_stats,
	fi.data AS financials,
	cf.data AS cash_flow
FROM %[1]s ci
INNER JOIN %[2]s bs ON ci.ticker = bs.ticker
INNER JOIN %[3]s ks ON ci.ticker = ks.ticker
INNER JOIN %[4]s fi ON ci.ticker = fi.ticker
INNER JOIN %[5]s cf ON ci.ticker = cf.ticker
ORDER BY ci.ticker`,
		data.CompanyInfo.LatestIdentifier().Sanitize(),
		data.BalanceSheet.LatestIdentifier().Sanitize(),
		data.KeyStats.LatestIdentifier().Sanitize(),
		data.Financials.LatestIdentifier().Sanitize(),
		data.CashFlow.LatestIdentifier().Sanitize(),
	)

	var inputs []*data.IndicatorInput
	if err := pgxscan.Select(ctx, myLibrary.Pool, &inputs, sql); err != nil {
		return nil, err
	}

	return inputs, nil
}

// SaveMagicFormula appends a generation of magic formula records
func (myLibrary *Library) SaveMagicFormula(ctx context.Context, records []*data.MagicFormulaRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for idx, record := range records {
		rows[idx] = record.Row()
	}

	return myLibrary.copyRows(ctx, data.MagicFormula, data.MagicFormulaColumns, rows)
}

// SaveIndicators appends a generation of Graham / Lynch indicator records
func (myLibrary *Library) SaveIndicators(ctx context.Context, records []*data.IndicatorRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for idx, record := range records {
		rows[idx] = record.Row()
	}

	return myLibrary.copyRows(ctx, data.Indicators, data.IndicatorColumns, rows)
}
