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
	"time"

	"github.com/penny-vault/pvstocks/data"
)

// MagicFormula computes Greenblatt's earnings yield and return on capital
// for every input with the required fields and ranks them across the whole
// universe and within each sector. Inputs missing a required field are
// skipped.
func MagicFormula(inputs []data.Fields, generation time.Time) []*data.MagicFormulaRecord {
	records := make([]*data.MagicFormulaRecord, 0, len(inputs))
	for _, fields := range inputs {
		ticker, ok := fields.String("ticker")
		if !ok || ticker == "" {
			continue
		}

		sectorKey, ok := fields.String("sector_key")
		if !ok {
			continue
		}

		ev, ok1 := fields.Float("enterprise_value")
		ebit, ok2 := fields.Float("ebit")
		workingCapital, ok3 := fields.Float("working_capital")
		netTangibleAssets, ok4 := fields.Float("net_tangible_assets")
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}

		records = append(records, &data.MagicFormulaRecord{
			Ticker:             ticker,
			SectorKey:          sectorKey,
			EarningsYield:      ebit / ev,
			ReturnOnCapital:    ebit / (workingCapital + netTangibleAssets),
			TimestampGenerated: generation,
		})
	}

	rankMagicFormula(records)
	return records
}

func rankMagicFormula(records []*data.MagicFormulaRecord) {
	earningsYield := make([]float64, len(records))
	returnOnCapital := make([]float64, len(records))
	sectors := make(map[string][]int)
	for idx, record := range records {
		earningsYield[idx] = record.EarningsYield
		returnOnCapital[idx] = record.ReturnOnCapital
		sectors[record.SectorKey] = append(sectors[record.SectorKey], idx)
	}

	eyRank := RankDescending(earningsYield)
	rocRank := RankDescending(returnOnCapital)
	for idx, record := range records {
		record.EarningsYieldRank = eyRank[idx]
		record.ReturnOnCapitalRank = rocRank[idx]
		record.TotalRank = eyRank[idx] + rocRank[idx]
	}

	for _, members := range sectors {
		sectorEY := make([]float64, len(members))
		sectorROC := make([]float64, len(members))
		for pos, idx := range members {
			sectorEY[pos] = earningsYield[idx]
			sectorROC[pos] = returnOnCapital[idx]
		}

		sectorEYRank := RankDescending(sectorEY)
		sectorROCRank := RankDescending(sectorROC)
		for pos, idx := range members {
			record := records[idx]
			record.EarningsYieldRankSector = sectorEYRank[pos]
			record.ReturnOnCapitalRankSector = sectorROCRank[pos]
			record.TotalSectorRank = sectorEYRank[pos] + sectorROCRank[pos]
		}
	}
}
