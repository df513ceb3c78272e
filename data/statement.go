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
package data

import (
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Fields holds the provider supplied attributes of a record keyed by their
// snake_case name. The set of keys is not fixed.
type Fields map[string]any

// StatementRecord is one row of financial data for a single ticker
type StatementRecord struct {
	Ticker             string
	Date               time.Time
	TimestampGenerated time.Time
	Fields             Fields
}

// Float returns the numeric value stored under key. Missing, null, NaN and
// non-numeric values report false.
func (fields Fields) Float(key string) (float64, bool) {
	val, ok := fields[key]
	if !ok || val == nil {
		return 0, false
	}

	var num float64
	switch v := val.(type) {
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int32:
		num = float64(v)
	case int64:
		num = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		num = f
	default:
		return 0, false
	}

	if math.IsNaN(num) {
		return 0, false
	}

	return num, true
}

// String returns the string stored under key
func (fields Fields) String(key string) (string, bool) {
	val, ok := fields[key]
	if !ok || val == nil {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}

// Merge copies every key of other that is not already present in fields
func (fields Fields) Merge(other Fields) {
	for k, v := range other {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
}

// HasDate reports if the record carries a fiscal period end date
func (record *StatementRecord) HasDate() bool {
	return !record.Date.IsZero()
}

// JSON serializes the record fields for storage
func (record *StatementRecord) JSON() ([]byte, error) {
	if record.Fields == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(record.Fields)
}

// MarshalZerologObject implements the zerolog marshaler so the record can be
// logged with .Object()
func (record *StatementRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", record.Ticker)
	if record.HasDate() {
		e.Str("Date", record.Date.Format("2006-01-02"))
	}
	e.Int("NumFields", len(record.Fields))
}

// DateOnly strips the time of day from t and moves it to UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LatestDate returns the most recent date in records
func LatestDate(records []*StatementRecord) time.Time {
	var latest time.Time
	for _, record := range records {
		if record.Date.After(latest) {
			latest = record.Date
		}
	}

	return latest
}
