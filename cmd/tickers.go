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
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

type tickerRow struct {
	Ticker string `csv:"Ticker"`
}

// readTickersFile loads the Ticker column of a CSV file
func readTickersFile(fn string) ([]string, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var rows []*tickerRow
	if err := gocsv.UnmarshalFile(fh, &rows); err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		tickers = append(tickers, row.Ticker)
	}

	return tickers, nil
}

// collectTickers merges command line tickers, the tickers file and the
// configured tickers. The result is upper cased with duplicates removed and
// keeps the order tickers were first seen.
func collectTickers(args []string, tickersFile string, configured []string) ([]string, error) {
	all := make([]string, 0, len(args)+len(configured))
	all = append(all, args...)

	if tickersFile != "" {
		fromFile, err := readTickersFile(tickersFile)
		if err != nil {
			return nil, err
		}
		all = append(all, fromFile...)
	}

	if len(all) == 0 {
		all = append(all, configured...)
	}

	return normalizeTickers(all), nil
}

func normalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	normalized := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" || seen[ticker] {
			continue
		}

		seen[ticker] = true
		normalized = append(normalized, ticker)
	}

	return normalized
}
