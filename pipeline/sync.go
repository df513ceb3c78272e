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
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome is the terminal state of a ticker within a sync run
type Outcome int

const (
	Uploaded Outcome = iota
	SkippedEmpty
	SkippedError
)

func (outcome Outcome) String() string {
	switch outcome {
	case Uploaded:
		return "uploaded"
	case SkippedEmpty:
		return "skipped-empty"
	case SkippedError:
		return "skipped-error"
	default:
		return fmt.Sprintf("outcome(%d)", int(outcome))
	}
}

// TickerResult records what happened to a single ticker
type TickerResult struct {
	Ticker    string
	Outcome   Outcome
	StatsOnly bool
	Err       error
}

// SyncSummary describes a completed sync run
type SyncSummary struct {
	RunID      uuid.UUID
	Generation time.Time
	StartTime  time.Time
	EndTime    time.Time

	NumTickers      int
	NumUploaded     int
	NumStatsOnly    int
	NumSkippedEmpty int
	NumSkippedError int

	NumRecords map[data.Table]int
	Results    []*TickerResult
}

// Batches accumulates statement records per table until they are uploaded
type Batches map[data.Table][]*data.StatementRecord

// Add appends records to the batch for table
func (batches Batches) Add(table data.Table, records ...*data.StatementRecord) {
	if len(records) == 0 {
		return
	}

	batches[table] = append(batches[table], records...)
}

// Merge appends every batch of other
func (batches Batches) Merge(other Batches) {
	for table, records := range other {
		batches.Add(table, records...)
	}
}

// Syncer downloads statements for a list of tickers, fetching only what is
// newer than the store's contents, and bulk uploads the result
type Syncer struct {
	source       Source
	store        Store
	lastDateOnly bool
	runID        uuid.UUID
	now          func() time.Time
}

type SyncOption func(*Syncer)

// WithAllDates fetches every available statement date instead of only the latest
func WithAllDates(allDates bool) SyncOption {
	return func(syncer *Syncer) {
		syncer.lastDateOnly = !allDates
	}
}

// WithRunID tags the run's logs and summary with id
func WithRunID(id uuid.UUID) SyncOption {
	return func(syncer *Syncer) {
		syncer.runID = id
	}
}

// WithClock overrides the source of generation timestamps
func WithClock(now func() time.Time) SyncOption {
	return func(syncer *Syncer) {
		syncer.now = now
	}
}

func NewSyncer(source Source, store Store, opts ...SyncOption) *Syncer {
	syncer := &Syncer{
		source:       source,
		store:        store,
		lastDateOnly: true,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(syncer)
	}

	return syncer
}

// Run processes every ticker in order. Fetch failures only skip the
// affected ticker; a failure writing to the store aborts the run.
func (syncer *Syncer) Run(ctx context.Context, tickers []string) (*SyncSummary, error) {
	runID := syncer.runID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	summary := &SyncSummary{
		RunID:      runID,
		StartTime:  syncer.now(),
		NumTickers: len(tickers),
		NumRecords: make(map[data.Table]int),
		Results:    make([]*TickerResult, 0, len(tickers)),
	}

	logger := log.With().Str("RunID", summary.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Int("NumTickers", len(tickers)).Bool("LastDateOnly", syncer.lastDateOnly).Msg("starting sync")

	batches := make(Batches)
	for idx, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		progress := fmt.Sprintf("%d/%d", idx+1, len(tickers))
		result, pending := syncer.syncTicker(ctx, ticker)
		summary.Results = append(summary.Results, result)

		switch result.Outcome {
		case Uploaded:
			batches.Merge(pending)
			summary.NumUploaded++
			if result.StatsOnly {
				summary.NumStatsOnly++
			}
			logger.Info().Str("Ticker", ticker).Str("Progress", progress).Bool("StatsOnly", result.StatsOnly).Msg("data processed successfully")
		case SkippedEmpty:
			summary.NumSkippedEmpty++
			logger.Info().Str("Ticker", ticker).Str("Progress", progress).Msg("no data available; skipping")
		case SkippedError:
			summary.NumSkippedError++
			logger.Error().Err(result.Err).Str("Ticker", ticker).Str("Progress", progress).Msg("error processing ticker")
		}
	}

	summary.Generation = syncer.now()
	for _, table := range data.StatementTables {
		records := batches[table]
		if len(records) == 0 {
			continue
		}

		if err := syncer.store.Upload(ctx, table, records, summary.Generation); err != nil {
			logger.Error().Err(err).Stringer("Table", table).Msg("upload failed")
			return summary, err
		}

		summary.NumRecords[table] = len(records)
	}

	for _, table := range data.StatementTables {
		if err := syncer.store.RefreshView(ctx, table); err != nil {
			logger.Error().Err(err).Stringer("Table", table).Msg("refresh view failed")
			return summary, err
		}
	}

	summary.EndTime = syncer.now()
	logger.Info().
		Int("NumUploaded", summary.NumUploaded).
		Int("NumStatsOnly", summary.NumStatsOnly).
		Int("NumSkippedEmpty", summary.NumSkippedEmpty).
		Int("NumSkippedError", summary.NumSkippedError).
		Msg("sync finished")

	return summary, nil
}

// syncTicker gathers the records to upload for ticker. The returned batches
// are only meaningful when the outcome is Uploaded.
func (syncer *Syncer) syncTicker(ctx context.Context, ticker string) (*TickerResult, Batches) {
	result := &TickerResult{Ticker: ticker}
	pending := make(Batches)

	fail := func(err error) (*TickerResult, Batches) {
		result.Outcome = SkippedError
		result.Err = err
		return result, nil
	}

	balanceSheet, err := syncer.source.FetchStatement(ctx, ticker, data.BalanceSheet, syncer.lastDateOnly)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", data.BalanceSheet, err))
	}

	if len(balanceSheet) == 0 {
		result.Outcome = SkippedEmpty
		return result, nil
	}

	lastDateAPI := data.LatestDate(balanceSheet)
	if syncer.isCovered(ctx, data.BalanceSheet, ticker, lastDateAPI) &&
		syncer.isCovered(ctx, data.Financials, ticker, lastDateAPI) &&
		syncer.isCovered(ctx, data.CashFlow, ticker, lastDateAPI) {
		stats, err := syncer.source.FetchStatement(ctx, ticker, data.KeyStats, syncer.lastDateOnly)
		if err != nil {
			return fail(fmt.Errorf("fetch %s: %w", data.KeyStats, err))
		}

		pending.Add(data.KeyStats, stats...)
		result.Outcome = Uploaded
		result.StatsOnly = true
		return result, pending
	}

	for _, table := range []data.Table{data.Financials, data.CashFlow} {
		records, err := syncer.source.FetchStatement(ctx, ticker, table, syncer.lastDateOnly)
		if err != nil {
			return fail(fmt.Errorf("fetch %s: %w", table, err))
		}
		pending.Add(table, records...)
	}

	if !syncer.hasCompanyInfo(ctx, ticker) {
		info, err := syncer.source.FetchStatement(ctx, ticker, data.CompanyInfo, syncer.lastDateOnly)
		if err != nil {
			return fail(fmt.Errorf("fetch %s: %w", data.CompanyInfo, err))
		}
		pending.Add(data.CompanyInfo, info...)
	}

	stats, err := syncer.source.FetchStatement(ctx, ticker, data.KeyStats, syncer.lastDateOnly)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", data.KeyStats, err))
	}

	pending.Add(data.KeyStats, stats...)
	pending.Add(data.BalanceSheet, balanceSheet...)

	result.Outcome = Uploaded
	return result, pending
}

// isCovered reports if the store already holds a statement dated on or after
// lastDateAPI. Read failures count as nothing stored.
func (syncer *Syncer) isCovered(ctx context.Context, table data.Table, ticker string, lastDateAPI time.Time) bool {
	persisted, ok, err := syncer.store.LatestStatementDate(ctx, table, ticker)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("Ticker", ticker).Stringer("Table", table).Msg("could not read latest statement date; assuming none")
		return false
	}

	return ok && !data.DateOnly(lastDateAPI).After(data.DateOnly(persisted))
}

func (syncer *Syncer) hasCompanyInfo(ctx context.Context, ticker string) bool {
	exists, err := syncer.store.HasRecord(ctx, data.CompanyInfo, ticker)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("Ticker", ticker).Msg("could not check for company info; assuming none")
		return false
	}

	return exists
}
