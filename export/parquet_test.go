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
package export_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/export"
)

var _ = Describe("Parquet export", func() {
	var (
		dir        string
		generation time.Time
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		generation = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	})

	It("builds dated file names", func() {
		fn := export.FileName("/tmp/out", data.MagicFormula, generation)
		Expect(fn).To(HavePrefix("/tmp/out/magic"))
		Expect(fn).To(HaveSuffix("2024-11-01.parquet"))
	})

	It("writes magic formula records", func() {
		fn := export.FileName(dir, data.MagicFormula, generation)
		records := []*data.MagicFormulaRecord{
			{Ticker: "AAPL", SectorKey: "technology", EarningsYield: 0.1, ReturnOnCapital: 1, TotalRank: 2, TimestampGenerated: generation},
			{Ticker: "XOM", SectorKey: "energy", EarningsYield: 0.2, ReturnOnCapital: 0.5, TotalRank: 2, TimestampGenerated: generation},
		}
		Expect(export.WriteMagicFormula(records, fn)).To(Succeed())

		fr, err := local.NewLocalFileReader(fn)
		Expect(err).ToNot(HaveOccurred())
		defer fr.Close()

		pr, err := reader.NewParquetReader(fr, new(export.MagicFormulaRow), 1)
		Expect(err).ToNot(HaveOccurred())
		defer pr.ReadStop()

		Expect(pr.GetNumRows()).To(Equal(int64(2)))
		rows := make([]export.MagicFormulaRow, 2)
		Expect(pr.Read(&rows)).To(Succeed())
		Expect(rows[0].Ticker).To(Equal("AAPL"))
		Expect(rows[1].SectorKey).To(Equal("energy"))
		Expect(rows[0].TimestampGenerated).To(Equal(generation.UnixMilli()))
	})

	It("writes indicator records", func() {
		fn := export.FileName(dir, data.Indicators, generation)
		records := []*data.IndicatorRecord{
			{Ticker: "AAPL", GrahamNumber: 47.43, PeterLynchValue: 2.3, TimestampGenerated: generation},
		}
		Expect(export.WriteIndicators(records, fn)).To(Succeed())

		info, err := os.Stat(fn)
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})
})
