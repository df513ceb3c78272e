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
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// MagicFormulaRow is the parquet layout of a magic formula record
type MagicFormulaRow struct {
	Ticker                    string  `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SectorKey                 string  `parquet:"name=sector_key, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	EarningsYield             float64 `parquet:"name=earnings_yield, type=DOUBLE"`
	ReturnOnCapital           float64 `parquet:"name=return_on_capital, type=DOUBLE"`
	EarningsYieldRank         float64 `parquet:"name=earnings_yield_rank, type=DOUBLE"`
	ReturnOnCapitalRank       float64 `parquet:"name=return_on_capital_rank, type=DOUBLE"`
	EarningsYieldRankSector   float64 `parquet:"name=earnings_yield_rank_sector, type=DOUBLE"`
	ReturnOnCapitalRankSector float64 `parquet:"name=return_on_capital_rank_sector, type=DOUBLE"`
	TotalRank                 float64 `parquet:"name=total_rank, type=DOUBLE"`
	TotalSectorRank           float64 `parquet:"name=total_sector_rank, type=DOUBLE"`
	TimestampGenerated        int64   `parquet:"name=timestamp_generated, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// IndicatorRow is the parquet layout of a Graham / Lynch indicator record
type IndicatorRow struct {
	Ticker                       string  `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	GrahamNumber                 float64 `parquet:"name=graham_number, type=DOUBLE"`
	CurrentPriceGrahamComparison float64 `parquet:"name=current_price_graham_comparison, type=DOUBLE"`
	PeterLynchValue              float64 `parquet:"name=peter_lynch_value, type=DOUBLE"`
	CurrentPriceLynchComparison  float64 `parquet:"name=current_price_lynch_comparison, type=DOUBLE"`
	TimestampGenerated           int64   `parquet:"name=timestamp_generated, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// FileName returns the export file name for table generated at asOf
func FileName(dir string, table data.Table, asOf time.Time) string {
	name := slug.Make(fmt.Sprintf("%s %s", table, asOf.Format("2006-01-02")))
	return filepath.Join(dir, name+".parquet")
}

// WriteMagicFormula saves records to fn as a ZSTD compressed parquet file
func WriteMagicFormula(records []*data.MagicFormulaRecord, fn string) error {
	rows := make([]any, len(records))
	for idx, record := range records {
		rows[idx] = &MagicFormulaRow{
			Ticker:                    record.Ticker,
			SectorKey:                 record.SectorKey,
			EarningsYield:             record.EarningsYield,
			ReturnOnCapital:           record.ReturnOnCapital,
			EarningsYieldRank:         record.EarningsYieldRank,
			ReturnOnCapitalRank:       record.ReturnOnCapitalRank,
			EarningsYieldRankSector:   record.EarningsYieldRankSector,
			ReturnOnCapitalRankSector: record.ReturnOnCapitalRankSector,
			TotalRank:                 record.TotalRank,
			TotalSectorRank:           record.TotalSectorRank,
			TimestampGenerated:        record.TimestampGenerated.UnixMilli(),
		}
	}

	return writeParquet(fn, new(MagicFormulaRow), rows)
}

// WriteIndicators saves records to fn as a ZSTD compressed parquet file
func WriteIndicators(records []*data.IndicatorRecord, fn string) error {
	rows := make([]any, len(records))
	for idx, record := range records {
		rows[idx] = &IndicatorRow{
			Ticker:                       record.Ticker,
			GrahamNumber:                 record.GrahamNumber,
			CurrentPriceGrahamComparison: record.CurrentPriceGrahamComparison,
			PeterLynchValue:              record.PeterLynchValue,
			CurrentPriceLynchComparison:  record.CurrentPriceLynchComparison,
			TimestampGenerated:           record.TimestampGenerated.UnixMilli(),
		}
	}

	return writeParquet(fn, new(IndicatorRow), rows)
}

func writeParquet(fn string, schema any, rows []any) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, schema, 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("parquet write failed for record")
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("parquet write failed")
		return err
	}

	log.Info().Str("FileName", fn).Int("NumRecords", len(rows)).Msg("parquet write finished")
	return nil
}
