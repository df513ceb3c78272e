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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrStatus    = errors.New("status code is invalid")
	ErrNoCheckID = errors.New("health check id is empty")
)

// APIURL and PingURL are the healthchecks.io management and ping endpoints
var (
	APIURL  = "https://healthchecks.io/api/v3"
	PingURL = "https://hc-ping.com"
)

type createReq struct {
	Name        string   `json:"name"`
	Description string   `json:"desc,omitempty"`
	Grace       int      `json:"grace"`
	Schedule    string   `json:"schedule"`
	Slug        string   `json:"slug"`
	Tags        string   `json:"tags"`
	Timezone    string   `json:"tz"`
	Unique      []string `json:"unique"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

func newClient(apiKey string) *resty.Client {
	return resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", apiKey)
}

// Create a healthchecks.io check for a cron schedule and return its id. An
// existing check with the same slug is reused.
func Create(ctx context.Context, apiKey, name, slug string, tags []string, schedule string) (string, error) {
	command := createReq{
		Name:     name,
		Slug:     slug,
		Tags:     strings.Join(tags, " "),
		Grace:    3600,
		Schedule: schedule,
		Timezone: "America/New_York",
		Unique:   []string{"slug"},
	}

	result := createResp{}

	resp, err := newClient(apiKey).R().
		SetContext(ctx).
		SetBody(command).
		SetResult(&result).
		Post(APIURL + "/checks/")
	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	return checkID[len(checkID)-1], nil
}

// Pause monitoring of a health check
func Pause(ctx context.Context, apiKey, id string) error {
	if id == "" {
		return ErrNoCheckID
	}

	resp, err := newClient(apiKey).R().
		SetContext(ctx).
		Post(fmt.Sprintf("%s/checks/%s/pause", APIURL, id))
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

// Start signals that a run has begun
func Start(ctx context.Context, id string, runID string) error {
	return ping(ctx, id, "/start", runID, "")
}

// Success signals that a run completed; msg is attached as the ping body
func Success(ctx context.Context, id string, runID string, msg string) error {
	return ping(ctx, id, "", runID, msg)
}

// Fail signals that a run failed; msg is attached as the ping body
func Fail(ctx context.Context, id string, runID string, msg string) error {
	return ping(ctx, id, "/fail", runID, msg)
}

func ping(ctx context.Context, id, suffix, runID, msg string) error {
	if id == "" {
		return ErrNoCheckID
	}

	req := resty.New().SetTimeout(10 * time.Second).R().SetContext(ctx)
	if runID != "" {
		req.SetQueryParam("rid", runID)
	}

	if msg != "" {
		req.SetBody(msg)
	}

	resp, err := req.Post(fmt.Sprintf("%s/%s%s", PingURL, id, suffix))
	if err != nil {
		log.Warn().Err(err).Str("CheckID", id).Msg("health check ping failed")
		return err
	}

	if resp.StatusCode() >= 300 {
		log.Warn().Int("StatusCode", resp.StatusCode()).Str("CheckID", id).Msg("health check ping rejected")
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
