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
	"net/url"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	stats, err := myLibrary.Stats(ctx)
	if err != nil {
		return "", err
	}

	return renderSummary(myLibrary.Name, myLibrary.Owner, redactURL(myLibrary.DBUrl), stats), nil
}

func renderSummary(name, owner, dbURL string, stats []*TableStats) string {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if name == "" {
		name = "pvstocks"
	}

	builder.WriteString(fmt.Sprintf("# %s\n", name))
	builder.WriteString("## Details\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", dbURL))
	if owner != "" {
		builder.WriteString(fmt.Sprintf("Owner: %s\n\n", owner))
	}

	var lastUpdated time.Time
	var totalRecords int64
	for _, tbl := range stats {
		totalRecords += tbl.NumRecords
		if tbl.LastGeneration.After(lastUpdated) {
			lastUpdated = tbl.LastGeneration
		}
	}

	builder.WriteString(p.Sprintf("  * Total Records: %d\n\n", totalRecords))

	if lastUpdated.IsZero() || lastUpdated.Year() <= 1 {
		builder.WriteString("Last Updated: Never\n\n")
	} else {
		age := timeago.English.Format(lastUpdated)
		builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Local().Format("01/02/2006")))
	}

	builder.WriteString("## Tables\n\n")
	builder.WriteString("| Table | Records | Tickers | Last Generation |\n")
	builder.WriteString("|-------|--------:|--------:|-----------------|\n")
	for _, tbl := range stats {
		generated := "never"
		if tbl.LastGeneration.Year() > 1 {
			generated = tbl.LastGeneration.Local().Format("2006-01-02 15:04")
		}

		builder.WriteString(p.Sprintf("| %s | %d | %d | %s |\n", tbl.Table, tbl.NumRecords, tbl.NumTickers, generated))
	}

	return builder.String()
}

// redactURL hides the password of a database connection string
func redactURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil || parsed.User == nil {
		return dbURL
	}

	return parsed.Redacted()
}
