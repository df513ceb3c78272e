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
package indicator_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/indicator"
)

var _ = Describe("Graham", func() {
	It("computes the graham number", func() {
		graham, ok := indicator.Graham(data.Fields{"trailing_eps": 5.0, "book_value": 20.0, "current_price": 30.0})
		Expect(ok).To(BeTrue())
		Expect(graham.GrahamNumber).To(BeNumerically("~", math.Sqrt(2250), 1e-9))
		Expect(graham.GrahamNumber).To(BeNumerically("~", 47.43, 0.01))
		Expect(graham.CurrentPriceGrahamComparison).To(BeNumerically("~", 0.6325, 0.0001))
	})

	It("requires every input", func() {
		_, ok := indicator.Graham(data.Fields{"trailing_eps": 5.0, "current_price": 30.0})
		Expect(ok).To(BeFalse())
	})

	It("yields NaN for a negative product", func() {
		graham, ok := indicator.Graham(data.Fields{"trailing_eps": -5.0, "book_value": 20.0, "current_price": 30.0})
		Expect(ok).To(BeTrue())
		Expect(math.IsNaN(graham.GrahamNumber)).To(BeTrue())
	})
})

var _ = Describe("Lynch", func() {
	It("computes the peter lynch value", func() {
		lynch, ok := indicator.Lynch(data.Fields{"trailing_eps": 2.0, "earnings_growth": 0.15, "current_price": 24.0})
		Expect(ok).To(BeTrue())
		Expect(lynch.PeterLynchValue).To(BeNumerically("~", 2.3, 1e-12))
		Expect(lynch.CurrentPriceLynchComparison).To(BeNumerically("~", 10.43, 0.01))
	})

	It("defaults earnings growth to zero", func() {
		lynch, ok := indicator.Lynch(data.Fields{"trailing_eps": 2.0, "current_price": 24.0})
		Expect(ok).To(BeTrue())
		Expect(lynch.PeterLynchValue).To(Equal(2.0))
		Expect(lynch.CurrentPriceLynchComparison).To(Equal(12.0))
	})

	It("requires eps and price", func() {
		_, ok := indicator.Lynch(data.Fields{"trailing_eps": 2.0})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Indicators", func() {
	generation := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	It("includes tickers that satisfy graham and lynch", func() {
		records := indicator.Indicators([]data.Fields{
			{"ticker": "AAA", "trailing_eps": 5.0, "book_value": 20.0, "current_price": 30.0, "earnings_growth": 0.1},
			{"ticker": "BBB", "trailing_eps": 2.0, "current_price": 24.0},
			{"trailing_eps": 5.0, "book_value": 20.0, "current_price": 30.0},
		}, generation)

		Expect(records).To(HaveLen(1))
		Expect(records[0].Ticker).To(Equal("AAA"))
		Expect(records[0].PeterLynchValue).To(BeNumerically("~", 5.5, 1e-12))
		Expect(records[0].TimestampGenerated).To(Equal(generation))
	})

	It("keeps a ticker excluded from the magic formula", func() {
		fields := data.Fields{
			"ticker":           "AAA",
			"sector_key":       "technology",
			"ebit":             100.0,
			"enterprise_value": 1000.0,
			"working_capital":  50.0,
			"trailing_eps":     5.0,
			"book_value":       20.0,
			"current_price":    30.0,
		}

		Expect(indicator.MagicFormula([]data.Fields{fields}, generation)).To(BeEmpty())
		Expect(indicator.Indicators([]data.Fields{fields}, generation)).To(HaveLen(1))
	})
})
