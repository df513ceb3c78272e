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
	"github.com/penny-vault/pvstocks/indicator"
	"github.com/rs/zerolog/log"
)

// IndicatorSummary holds the generations written by a calculator run
type IndicatorSummary struct {
	NumInputs    int
	MagicFormula []*data.MagicFormulaRecord
	Indicators   []*data.IndicatorRecord
}

// Calculator derives valuation indicators from the latest persisted statements
type Calculator struct {
	store IndicatorStore
	now   func() time.Time
}

func NewCalculator(store IndicatorStore, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}

	return &Calculator{
		store: store,
		now:   now,
	}
}

// Run computes and stores a new magic formula generation followed by a new
// Graham / Lynch generation, refreshing each table's latest view.
func (calc *Calculator) Run(ctx context.Context) (*IndicatorSummary, error) {
	inputs, err := calc.store.LoadIndicatorInputs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not load indicator inputs")
		return nil, err
	}

	fields := make([]data.Fields, len(inputs))
	for idx, input := range inputs {
		fields[idx] = input.Merged()
	}

	summary := &IndicatorSummary{NumInputs: len(inputs)}

	summary.MagicFormula = indicator.MagicFormula(fields, calc.now())
	if err := calc.store.SaveMagicFormula(ctx, summary.MagicFormula); err != nil {
		return summary, err
	}

	if err := calc.store.RefreshView(ctx, data.MagicFormula); err != nil {
		return summary, err
	}

	summary.Indicators = indicator.Indicators(fields, calc.now())
	if err := calc.store.SaveIndicators(ctx, summary.Indicators); err != nil {
		return summary, err
	}

	if err := calc.store.RefreshView(ctx, data.Indicators); err != nil {
		return summary, err
	}

	log.Info().Int("NumInputs", summary.NumInputs).Int("NumMagicFormula", len(summary.MagicFormula)).
		Int("NumIndicators", len(summary.Indicators)).Msg("indicators calculated")

	return summary, nil
}
