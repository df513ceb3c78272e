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

	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh [TABLE...]",
	Short: "Rebuild the latest materialized views",
	Long: `The refresh sub-command rebuilds the <table>_latest materialized views. With no
arguments every table is refreshed. Valid tables are balance_sheet, financials,
cash_flow, company_info, key_stats, magic_formula and indicators.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		tables, err := parseTables(args)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid table")
		}

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		for _, table := range tables {
			if err := myLibrary.RefreshView(ctx, table); err != nil {
				log.Fatal().Err(err).Stringer("Table", table).Msg("could not refresh view")
			}
			log.Info().Stringer("Table", table).Msg("view refreshed")
		}
	},
}

func parseTables(args []string) ([]data.Table, error) {
	if len(args) == 0 {
		return data.AllTables(), nil
	}

	tables := make([]data.Table, 0, len(args))
	for _, arg := range args {
		table, err := data.ParseTable(arg)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, nil
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
