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
package pipeline_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstocks/data"
	"github.com/penny-vault/pvstocks/pipeline"
)

var _ = Describe("Syncer", func() {
	var (
		ctx        context.Context
		source     *fakeSource
		store      *fakeStore
		syncer     *pipeline.Syncer
		generation time.Time
		fiscalYear time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = newFakeSource()
		store = newFakeStore()
		generation = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
		fiscalYear = time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)
		syncer = pipeline.NewSyncer(source, store, pipeline.WithClock(func() time.Time { return generation }))
	})

	Context("with an empty store", func() {
		BeforeEach(func() {
			source.addTicker("AAPL", fiscalYear)
			source.addTicker("MSFT", fiscalYear)
		})

		It("fetches and uploads every statement type", func() {
			summary, err := syncer.Run(ctx, []string{"AAPL", "MSFT"})
			Expect(err).ToNot(HaveOccurred())

			Expect(summary.NumTickers).To(Equal(2))
			Expect(summary.NumUploaded).To(Equal(2))
			Expect(summary.NumStatsOnly).To(Equal(0))
			Expect(summary.Generation).To(Equal(generation))

			Expect(store.uploadedTables()).To(Equal(data.StatementTables))
			for _, upload := range store.uploads {
				Expect(upload.Generation).To(Equal(generation))
				Expect(upload.Records).To(HaveLen(2))
			}

			for _, table := range data.StatementTables {
				Expect(store.count(table, "AAPL")).To(Equal(1), string(table))
				Expect(summary.NumRecords[table]).To(Equal(2))
			}

			Expect(store.refreshed).To(ConsistOf(data.StatementTables))
		})

		It("treats storage read failures as nothing stored", func() {
			store.readErr = errRead

			summary, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.NumUploaded).To(Equal(1))
			Expect(summary.NumStatsOnly).To(Equal(0))
			Expect(source.fetched("AAPL")).To(ContainElement(data.CompanyInfo))
			Expect(store.uploadedTables()).To(HaveLen(5))
		})
	})

	Context("with up to date statements", func() {
		BeforeEach(func() {
			source.addTicker("AAPL", fiscalYear)
			_, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).ToNot(HaveOccurred())

			source.calls = nil
			store.uploads = nil
			store.refreshed = nil
		})

		It("only refreshes key stats", func() {
			summary, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).ToNot(HaveOccurred())

			Expect(summary.NumUploaded).To(Equal(1))
			Expect(summary.NumStatsOnly).To(Equal(1))
			Expect(summary.Results[0].StatsOnly).To(BeTrue())

			Expect(source.fetched("AAPL")).To(Equal([]data.Table{data.BalanceSheet, data.KeyStats}))
			Expect(store.uploadedTables()).To(Equal([]data.Table{data.KeyStats}))
			Expect(store.count(data.BalanceSheet, "AAPL")).To(Equal(1))
			Expect(store.count(data.KeyStats, "AAPL")).To(Equal(2))
			Expect(store.refreshed).To(ConsistOf(data.StatementTables))
		})

		It("refetches statements when a newer period is published without refetching company info", func() {
			source.addTicker("AAPL", fiscalYear.AddDate(1, 0, 0))

			summary, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.NumStatsOnly).To(Equal(0))

			Expect(source.fetched("AAPL")).ToNot(ContainElement(data.CompanyInfo))
			Expect(store.uploadedTables()).To(Equal([]data.Table{data.KeyStats, data.CashFlow, data.Financials, data.BalanceSheet}))
			Expect(store.count(data.CompanyInfo, "AAPL")).To(Equal(1))
			Expect(store.count(data.BalanceSheet, "AAPL")).To(Equal(2))
		})

		It("refetches when one statement type lags behind", func() {
			store.rows[data.CashFlow] = nil

			summary, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.NumStatsOnly).To(Equal(0))
			Expect(source.fetched("AAPL")).To(ContainElements(data.Financials, data.CashFlow))
		})
	})

	Context("when a ticker cannot be processed", func() {
		BeforeEach(func() {
			source.addTicker("AAPL", fiscalYear)
			source.addTicker("BAD", fiscalYear)
			source.addTicker("MSFT", fiscalYear)
		})

		It("skips tickers without a balance sheet", func() {
			source.statements["BAD"][data.BalanceSheet] = nil

			summary, err := syncer.Run(ctx, []string{"AAPL", "BAD", "MSFT"})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.NumSkippedEmpty).To(Equal(1))
			Expect(summary.Results[1].Outcome).To(Equal(pipeline.SkippedEmpty))
			Expect(source.fetched("BAD")).To(Equal([]data.Table{data.BalanceSheet}))

			for _, table := range data.StatementTables {
				Expect(store.count(table, "BAD")).To(Equal(0))
			}
		})

		It("continues with the next ticker after a fetch error", func() {
			source.failures[fetchCall{Ticker: "BAD", Table: data.CashFlow}] = errFetch

			summary, err := syncer.Run(ctx, []string{"AAPL", "BAD", "MSFT"})
			Expect(err).ToNot(HaveOccurred())

			Expect(summary.NumUploaded).To(Equal(2))
			Expect(summary.NumSkippedError).To(Equal(1))
			Expect(summary.Results[1].Outcome).To(Equal(pipeline.SkippedError))
			Expect(summary.Results[1].Err).To(MatchError(errFetch))

			Expect(store.count(data.BalanceSheet, "MSFT")).To(Equal(1))
			for _, table := range data.StatementTables {
				Expect(store.count(table, "BAD")).To(Equal(0), string(table))
			}
		})

		It("never uploads an empty batch", func() {
			for _, ticker := range []string{"AAPL", "BAD", "MSFT"} {
				source.statements[ticker][data.CompanyInfo] = nil
			}

			_, err := syncer.Run(ctx, []string{"AAPL", "BAD", "MSFT"})
			Expect(err).ToNot(HaveOccurred())
			Expect(store.uploadedTables()).ToNot(ContainElement(data.CompanyInfo))
		})

		It("uploads nothing when every ticker is empty", func() {
			summary, err := syncer.Run(ctx, []string{"UNKNOWN"})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.NumSkippedEmpty).To(Equal(1))
			Expect(store.uploads).To(BeEmpty())
		})
	})

	Context("when the store rejects writes", func() {
		It("aborts the run", func() {
			source.addTicker("AAPL", fiscalYear)
			store.uploadErr = errWrite

			_, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).To(MatchError(errWrite))
			Expect(store.refreshed).To(BeEmpty())
		})

		It("reports view refresh failures", func() {
			source.addTicker("AAPL", fiscalYear)
			store.refreshErr = errWrite

			_, err := syncer.Run(ctx, []string{"AAPL"})
			Expect(err).To(MatchError(errWrite))
		})
	})

	It("stops when the context is cancelled", func() {
		source.addTicker("AAPL", fiscalYear)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := syncer.Run(cancelled, []string{"AAPL"})
		Expect(err).To(MatchError(context.Canceled))
		Expect(store.uploads).To(BeEmpty())
	})
})

var _ = Describe("Outcome", func() {
	It("has a readable name", func() {
		Expect(pipeline.Uploaded.String()).To(Equal("uploaded"))
		Expect(pipeline.SkippedEmpty.String()).To(Equal("skipped-empty"))
		Expect(pipeline.SkippedError.String()).To(Equal("skipped-error"))
	})
})
