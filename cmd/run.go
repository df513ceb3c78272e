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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvstocks/healthcheck"
	"github.com/penny-vault/pvstocks/library"
	"github.com/penny-vault/pvstocks/pipeline"
	"github.com/penny-vault/pvstocks/provider"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	tickersFile string
	allDates    bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [TICKER...]",
	Short: "Download new financial statements and recompute indicators",
	Long: `The run sub-command downloads financial statements for each ticker, uploads
anything newer than what the database already holds, refreshes the latest
views and then recomputes the valuation indicators.

Tickers are read from the command line, from a CSV file with a Ticker column
(--tickers-file) or from the tickers key of the config file. When a schedule
is given (--schedule or the schedule config key) run stays in the foreground
and executes at each scheduled time.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		tickers, err := collectTickers(args, tickersFile, viper.GetStringSlice("tickers"))
		if err != nil {
			log.Fatal().Err(err).Str("TickersFile", tickersFile).Msg("could not read tickers")
		}

		if len(tickers) == 0 {
			log.Fatal().Msg("no tickers given; pass them as arguments, with --tickers-file, or set tickers in the config file")
		}

		if schedule := viper.GetString("schedule"); schedule != "" {
			runScheduled(ctx, schedule, tickers)
			return
		}

		if err := runOnce(ctx, tickers); err != nil {
			log.Fatal().Err(err).Msg("run failed")
		}
	},
}

// runOnce syncs tickers and recomputes indicators
func runOnce(ctx context.Context, tickers []string) error {
	runID := uuid.New()
	checkID := viper.GetString("healthchecks.check_id")
	startTime := time.Now()

	if checkID != "" {
		// ping failures are logged by healthcheck and never stop a run
		_ = healthcheck.Start(ctx, checkID, runID.String())
	}

	syncSummary, indicatorSummary, err := syncAndCalculate(ctx, runID, tickers)
	if err != nil {
		if checkID != "" {
			_ = healthcheck.Fail(ctx, checkID, runID.String(), err.Error())
		}
		return err
	}

	runTime := time.Since(startTime)
	if checkID != "" {
		msg := fmt.Sprintf("uploaded %d of %d tickers in %s", syncSummary.NumUploaded, syncSummary.NumTickers, runTime)
		_ = healthcheck.Success(ctx, checkID, runID.String(), msg)
	}

	fmt.Println(renderRunSummary(syncSummary, indicatorSummary, runTime))
	return nil
}

func syncAndCalculate(ctx context.Context, runID uuid.UUID, tickers []string) (*pipeline.SyncSummary, *pipeline.IndicatorSummary, error) {
	myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
	if err != nil {
		log.Error().Err(err).Msg("could not connect to library")
		return nil, nil, err
	}
	defer myLibrary.Close()

	source := provider.NewYahoo(
		provider.WithRateLimit(viper.GetInt("yahoo.rate_limit")),
		provider.WithUserAgent(viper.GetString("yahoo.user_agent")),
	)

	syncer := pipeline.NewSyncer(source, myLibrary, pipeline.WithAllDates(allDates), pipeline.WithRunID(runID))
	syncSummary, err := syncer.Run(ctx, tickers)
	if err != nil {
		return syncSummary, nil, err
	}

	calc := pipeline.NewCalculator(myLibrary, time.Now)
	indicatorSummary, err := calc.Run(ctx)
	if err != nil {
		return syncSummary, indicatorSummary, err
	}

	return syncSummary, indicatorSummary, nil
}

// runScheduled runs in the foreground executing a run at each scheduled
// time until interrupted. A run that is still going when the next one is
// due causes the next one to be skipped.
func runScheduled(ctx context.Context, schedule string, tickers []string) {
	ensureHealthCheck(ctx, schedule)

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := scheduler.AddFunc(schedule, func() {
		if err := runOnce(ctx, tickers); err != nil {
			log.Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("Schedule", schedule).Msg("invalid schedule")
	}

	scheduler.Start()
	log.Info().Str("Schedule", schedule).Int("NumTickers", len(tickers)).Msg("waiting for scheduled runs")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("stopping scheduler; waiting for running jobs to finish")
	<-scheduler.Stop().Done()

	if apiKey, checkID := viper.GetString("healthchecks.apikey"), viper.GetString("healthchecks.check_id"); apiKey != "" && checkID != "" {
		if err := healthcheck.Pause(ctx, apiKey, checkID); err != nil {
			log.Warn().Err(err).Str("CheckID", checkID).Msg("could not pause health check")
		}
	}
}

// ensureHealthCheck provisions a health check for the schedule when an API
// key is configured but no check exists yet
func ensureHealthCheck(ctx context.Context, schedule string) {
	apiKey := viper.GetString("healthchecks.apikey")
	if apiKey == "" || viper.GetString("healthchecks.check_id") != "" {
		return
	}

	hostname, _ := os.Hostname()
	checkID, err := healthcheck.Create(ctx, apiKey,
		fmt.Sprintf("pvstocks run (%s)", hostname),
		slug.Make(fmt.Sprintf("pvstocks run %s", hostname)),
		[]string{"pvstocks"},
		schedule,
	)
	if err != nil {
		log.Warn().Err(err).Msg("could not create health check")
		return
	}

	viper.Set("healthchecks.check_id", checkID)
	log.Info().Str("CheckID", checkID).Msg("created health check; add healthchecks.check_id to your config file to reuse it")
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&tickersFile, "tickers-file", "", "CSV file with a Ticker column")
	runCmd.Flags().BoolVar(&allDates, "all-dates", false, "fetch every available statement date instead of only the latest")

	runCmd.Flags().String("schedule", "", "cron schedule to run on, e.g. \"0 6 * * 1-5\"")
	if err := viper.BindPFlag("schedule", runCmd.Flags().Lookup("schedule")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for schedule failed")
	}
}
