/*
 * Copyright 2025 The BTEB Results Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	gorp "gopkg.in/gorp.v2"
)

func init() {
	RegisterModel("lookup_log", LookupLog{}, "ID", true)
}

// Lookup outcomes recorded in the audit log.
const (
	LookupOutcomeHit      = "hit"
	LookupOutcomeNotFound = "not_found"
	LookupOutcomeError    = "error"
)

// LookupLog defines one audit row per search request.
type LookupLog struct {
	ID         int64  `db:"id"`
	RequestID  string `db:"request_id"`
	Program    string `db:"program"`
	Regulation string `db:"regulation"`
	RollNumber string `db:"roll_number"`
	Outcome    string `db:"outcome"`
	HitSource  string `db:"hit_source"`
	Tried      string `db:"tried"`
	ElapsedMS  int64  `db:"elapsed_ms"`
	Created    int64  `db:"created"`
}

// AddLookupLog appends an audit row for a finished search.
func AddLookupLog(db *gorp.DbMap, requestID string, key Key,
	outcome string, hitSource string, tried []string, elapsed time.Duration) (l *LookupLog, err error) {
	l = &LookupLog{
		RequestID:  requestID,
		Program:    key.Program,
		Regulation: key.Regulation,
		RollNumber: key.RollNo,
		Outcome:    outcome,
		HitSource:  hitSource,
		Tried:      strings.Join(tried, ","),
		ElapsedMS:  elapsed.Milliseconds(),
		Created:    time.Now().Unix(),
	}
	err = db.Insert(l)
	if err != nil {
		err = errors.Wrapf(err, "add lookup log failed")
	}
	return
}

// LookupStats summarizes the audit log for the stats endpoint.
type LookupStats struct {
	Total    int64 `json:"total"`
	Hits     int64 `json:"hits"`
	NotFound int64 `json:"not_found"`
	Errors   int64 `json:"errors"`
}

// GetLookupStats aggregates outcome counts over the audit log.
func GetLookupStats(db *gorp.DbMap) (stats *LookupStats, err error) {
	stats = &LookupStats{}

	if stats.Total, err = db.SelectInt(
		`SELECT COUNT(1) FROM "lookup_log"`); err != nil {
		err = errors.Wrapf(err, "count lookup log failed")
		return
	}
	if stats.Hits, err = db.SelectInt(
		`SELECT COUNT(1) FROM "lookup_log" WHERE "outcome" = ?`, LookupOutcomeHit); err != nil {
		err = errors.Wrapf(err, "count lookup hits failed")
		return
	}
	if stats.NotFound, err = db.SelectInt(
		`SELECT COUNT(1) FROM "lookup_log" WHERE "outcome" = ?`, LookupOutcomeNotFound); err != nil {
		err = errors.Wrapf(err, "count lookup misses failed")
		return
	}
	if stats.Errors, err = db.SelectInt(
		`SELECT COUNT(1) FROM "lookup_log" WHERE "outcome" = ?`, LookupOutcomeError); err != nil {
		err = errors.Wrapf(err, "count lookup errors failed")
		return
	}

	return
}
