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
package data_test

import (
	"math"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/data"
)

var _ = Describe("SnakeCase", func() {
	DescribeTable("normalizes provider field names",
		func(input, expected string) {
			Expect(data.SnakeCase(input)).To(Equal(expected))
		},
		Entry("camel case", "totalCurrentAssets", "total_current_assets"),
		Entry("title case with spaces", "Net Tangible Assets", "net_tangible_assets"),
		Entry("acronym", "EBIT", "ebit"),
		Entry("acronym followed by word", "EBITDAMargins", "ebitda_margins"),
		Entry("leading digits", "52WeekChange", "52_week_change"),
		Entry("trailing acronym", "trailingPE", "trailingpe"),
		Entry("trailing digit", "address1", "address1"),
		Entry("already snake case", "sector_key", "sector_key"),
		Entry("lower case word after space", "Net income", "net_income"),
		Entry("punctuation", "Cash & Equivalents", "cash____equivalents"),
	)
})

var _ = Describe("Table", func() {
	It("parses known tables", func() {
		tbl, err := data.ParseTable(" Balance_Sheet ")
		Expect(err).ToNot(HaveOccurred())
		Expect(tbl).To(Equal(data.BalanceSheet))
	})

	It("rejects unknown tables", func() {
		_, err := data.ParseTable("users; DROP TABLE users")
		Expect(err).To(MatchError(data.ErrUnknownTable))
		Expect(data.Table("bogus").Valid()).To(BeFalse())
	})

	It("classifies tables", func() {
		Expect(data.BalanceSheet.IsDated()).To(BeTrue())
		Expect(data.KeyStats.IsDated()).To(BeFalse())
		Expect(data.CompanyInfo.IsStatement()).To(BeTrue())
		Expect(data.MagicFormula.IsStatement()).To(BeFalse())
		Expect(data.AllTables()).To(HaveLen(7))
	})

	It("quotes identifiers", func() {
		Expect(data.CashFlow.Identifier().Sanitize()).To(Equal(`"financial_data"."cash_flow"`))
		Expect(data.CashFlow.LatestIdentifier().Sanitize()).To(Equal(`"financial_data"."cash_flow_latest"`))
	})
})

var _ = Describe("Fields", func() {
	It("reads numeric values", func() {
		fields := data.Fields{
			"float":   12.5,
			"int":     3,
			"int64":   int64(7),
			"number":  json.Number("1.25"),
			"string":  "abc",
			"nan":     math.NaN(),
			"missing": nil,
		}

		for key, expected := range map[string]float64{"float": 12.5, "int": 3, "int64": 7, "number": 1.25} {
			val, ok := fields.Float(key)
			Expect(ok).To(BeTrue(), key)
			Expect(val).To(Equal(expected), key)
		}

		for _, key := range []string{"string", "nan", "missing", "absent"} {
			_, ok := fields.Float(key)
			Expect(ok).To(BeFalse(), key)
		}
	})

	It("reads string values", func() {
		fields := data.Fields{"sector_key": "technology", "num": 1.0}
		sector, ok := fields.String("sector_key")
		Expect(ok).To(BeTrue())
		Expect(sector).To(Equal("technology"))
		_, ok = fields.String("num")
		Expect(ok).To(BeFalse())
	})

	It("merges with precedence given to existing keys", func() {
		input := &data.IndicatorInput{
			Ticker:       "AAPL",
			KeyStats:     data.Fields{"enterprise_value": 100.0},
			BalanceSheet: data.Fields{"enterprise_value": 1.0, "working_capital": 5.0},
			Financials:   data.Fields{"ebit": 10.0, "working_capital": 2.0},
			CompanyInfo:  data.Fields{"sector_key": "technology", "ebit": 1.0},
		}

		merged := input.Merged()
		Expect(merged).To(HaveKeyWithValue("enterprise_value", 100.0))
		Expect(merged).To(HaveKeyWithValue("working_capital", 5.0))
		Expect(merged).To(HaveKeyWithValue("ebit", 10.0))
		Expect(merged).To(HaveKeyWithValue("sector_key", "technology"))
		Expect(merged).To(HaveKeyWithValue("ticker", "AAPL"))
	})
})

var _ = Describe("StatementRecord", func() {
	It("finds the latest date", func() {
		records := []*data.StatementRecord{
			{Ticker: "AAPL", Date: time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)},
			{Ticker: "AAPL", Date: time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)},
			{Ticker: "AAPL", Date: time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)},
		}

		Expect(data.LatestDate(records)).To(Equal(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)))
		Expect(data.LatestDate(nil).IsZero()).To(BeTrue())
	})

	It("serializes fields to json", func() {
		record := &data.StatementRecord{Ticker: "AAPL", Fields: data.Fields{"ebit": 10.0}}
		payload, err := record.JSON()
		Expect(err).ToNot(HaveOccurred())
		Expect(payload).To(MatchJSON(`{"ebit": 10}`))

		empty := &data.StatementRecord{Ticker: "AAPL"}
		payload, err = empty.JSON()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(payload)).To(Equal("{}"))
	})

	It("strips the time of day", func() {
		ts := time.Date(2024, 3, 31, 18, 45, 0, 0, time.UTC)
		Expect(data.DateOnly(ts)).To(Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	})
})
