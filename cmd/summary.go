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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/pipeline"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// renderRunSummary formats the result of a run for the terminal
func renderRunSummary(syncSummary *pipeline.SyncSummary, indicatorSummary *pipeline.IndicatorSummary, runTime time.Duration) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder

	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	fmt.Fprintf(&sb, "%s\n\nRun ID: %s\nRun Time: %s\n\n",
		lipgloss.NewStyle().Bold(true).Render("PVSTOCKS RUN"),
		keyword(syncSummary.RunID.String()),
		keyword(durafmt.Parse(runTime.Round(time.Second)).String()),
	)

	fmt.Fprintln(&sb, lipgloss.NewStyle().Bold(true).Render("Tickers"))
	fmt.Fprintf(&sb, "\nProcessed: %s", keyword(p.Sprintf("%d", syncSummary.NumTickers)))
	fmt.Fprintf(&sb, "\nUploaded: %s", keyword(p.Sprintf("%d", syncSummary.NumUploaded)))
	fmt.Fprintf(&sb, "\nKey stats only: %s", keyword(p.Sprintf("%d", syncSummary.NumStatsOnly)))
	fmt.Fprintf(&sb, "\nNo data: %s", keyword(p.Sprintf("%d", syncSummary.NumSkippedEmpty)))
	fmt.Fprintf(&sb, "\nFailed: %s\n\n", keyword(p.Sprintf("%d", syncSummary.NumSkippedError)))

	fmt.Fprintln(&sb, lipgloss.NewStyle().Bold(true).Render("Records"))
	for _, table := range data.StatementTables {
		fmt.Fprintf(&sb, "\n%s: %s", table, keyword(p.Sprintf("%d", syncSummary.NumRecords[table])))
	}

	if indicatorSummary != nil {
		fmt.Fprintf(&sb, "\n%s: %s", data.MagicFormula, keyword(p.Sprintf("%d", len(indicatorSummary.MagicFormula))))
		fmt.Fprintf(&sb, "\n%s: %s", data.Indicators, keyword(p.Sprintf("%d", len(indicatorSummary.Indicators))))
	}

	failed := make([]string, 0, syncSummary.NumSkippedError)
	for _, result := range syncSummary.Results {
		if result.Outcome == pipeline.SkippedError {
			failed = append(failed, result.Ticker)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(&sb, "\n\n%s\n\n%s", lipgloss.NewStyle().Bold(true).Render("Failed Tickers"), strings.Join(failed, ", "))
	}

	return lipgloss.NewStyle().
		Width(60).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(sb.String())
}
