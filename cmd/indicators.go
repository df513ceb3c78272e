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
package cmd

import (
	"context"
	"time"

	"github.com/penny-vault/pvstocks/backblaze"
	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/export"
	"github.com/penny-vault/pvstocks/library"
	"github.com/penny-vault/pvstocks/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportIndicators bool

// indicatorsCmd represents the indicators command
var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Recompute the Magic Formula, Graham Number and Peter Lynch value",
	Long: `The indicators sub-command recomputes valuation indicators from the latest
statements stored in the database without downloading anything. With --export
the new generations are also written to parquet files in export.dir and, when
backblaze credentials are configured, uploaded to the backblaze bucket.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		calc := pipeline.NewCalculator(myLibrary, time.Now)
		summary, err := calc.Run(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not calculate indicators")
		}

		if exportIndicators {
			if err := exportSummary(summary, time.Now()); err != nil {
				log.Fatal().Err(err).Msg("export failed")
			}
		}
	},
}

// exportSummary writes the indicator generations to parquet and uploads them
// to backblaze if it is configured
func exportSummary(summary *pipeline.IndicatorSummary, asOf time.Time) error {
	dir := viper.GetString("export.dir")

	magicFormulaFn := export.FileName(dir, data.MagicFormula, asOf)
	if err := export.WriteMagicFormula(summary.MagicFormula, magicFormulaFn); err != nil {
		return err
	}

	indicatorsFn := export.FileName(dir, data.Indicators, asOf)
	if err := export.WriteIndicators(summary.Indicators, indicatorsFn); err != nil {
		return err
	}

	config := backblaze.Config{
		ApplicationID:  viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
		Bucket:         viper.GetString("backblaze.bucket"),
	}

	if !config.Enabled() {
		log.Info().Str("Dir", dir).Msg("backblaze is not configured; leaving exports on disk")
		return nil
	}

	return backblaze.Upload(config, asOf.Format("2006"), magicFormulaFn, indicatorsFn)
}

func init() {
	rootCmd.AddCommand(indicatorsCmd)
	indicatorsCmd.Flags().BoolVar(&exportIndicators, "export", false, "write results to parquet and upload them to backblaze")
}
