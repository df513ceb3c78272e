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
package indicator

import (
	"math"
	"time"

	"github.com/penny-vault/pvstocks/data"
)

// GrahamValue holds the Graham number of a ticker
type GrahamValue struct {
	GrahamNumber                 float64
	CurrentPriceGrahamComparison float64
}

// LynchValue holds the Peter Lynch fair value of a ticker
type LynchValue struct {
	PeterLynchValue             float64
	CurrentPriceLynchComparison float64
}

// Graham computes sqrt(22.5 * eps * book value) and the ratio of the current
// price to it. The boolean is false when trailing_eps, book_value or
// current_price is missing.
func Graham(fields data.Fields) (GrahamValue, bool) {
	eps, ok1 := fields.Float("trailing_eps")
	bookValue, ok2 := fields.Float("book_value")
	price, ok3 := fields.Float("current_price")
	if !(ok1 && ok2 && ok3) {
		return GrahamValue{}, false
	}

	graham := math.Sqrt(22.5 * eps * bookValue)
	return GrahamValue{
		GrahamNumber:                 graham,
		CurrentPriceGrahamComparison: price / graham,
	}, true
}

// Lynch computes eps * (earnings growth + 1) and the ratio of the current
// price to it. A missing earnings_growth counts as zero growth.
func Lynch(fields data.Fields) (LynchValue, bool) {
	eps, ok1 := fields.Float("trailing_eps")
	price, ok2 := fields.Float("current_price")
	if !(ok1 && ok2) {
		return LynchValue{}, false
	}

	growth, ok := fields.Float("earnings_growth")
	if !ok {
		growth = 0
	}

	lynch := eps * (growth + 1)
	return LynchValue{
		PeterLynchValue:             lynch,
		CurrentPriceLynchComparison: price / lynch,
	}, true
}

// Indicators computes the Graham and Lynch values of every input that has
// the fields both require
func Indicators(inputs []data.Fields, generation time.Time) []*data.IndicatorRecord {
	records := make([]*data.IndicatorRecord, 0, len(inputs))
	for _, fields := range inputs {
		ticker, ok := fields.String("ticker")
		if !ok || ticker == "" {
			continue
		}

		graham, ok := Graham(fields)
		if !ok {
			continue
		}

		lynch, ok := Lynch(fields)
		if !ok {
			continue
		}

		records = append(records, &data.IndicatorRecord{
			Ticker:                       ticker,
			GrahamNumber:                 graham.GrahamNumber,
			CurrentPriceGrahamComparison: graham.CurrentPriceGrahamComparison,
			PeterLynchValue:              lynch.PeterLynchValue,
			CurrentPriceLynchComparison:  lynch.CurrentPriceLynchComparison,
			TimestampGenerated:           generation,
		})
	}

	return records
}
