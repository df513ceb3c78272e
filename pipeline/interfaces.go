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
package pipeline

import (
	"context"
	"time"

	"github.com/penny-vault/pvstocks/data"
)

// Source supplies statement records for a ticker
type Source interface {
	FetchStatement(ctx context.Context, ticker string, table data.Table, lastDateOnly bool) ([]*data.StatementRecord, error)
}

// Store persists statement records and answers freshness questions
type Store interface {
	LatestStatementDate(ctx context.Context, table data.Table, ticker string) (time.Time, bool, error)
	HasRecord(ctx context.Context, table data.Table, ticker string) (bool, error)
	Upload(ctx context.Context, table data.Table, records []*data.StatementRecord, generation time.Time) error
	RefreshView(ctx context.Context, table data.Table) error
}

// IndicatorStore loads indicator inputs and persists indicator generations
type IndicatorStore interface {
	LoadIndicatorInputs(ctx context.Context) ([]*data.IndicatorInput, error)
	SaveMagicFormula(ctx context.Context, records []*data.MagicFormulaRecord) error
	SaveIndicators(ctx context.Context, records []*data.IndicatorRecord) error
	RefreshView(ctx context.Context, table data.Table) error
}
