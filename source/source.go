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

// Package source implements the ordered multi-source fallback lookup:
// a chain of hosted database projects and external web APIs tried in a
// fixed order with a per-source timeout, first match wins.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rafsaan123/probable-meme/model"
)

var (
	// ErrNotFound indicates the key has no record in a source.
	ErrNotFound = errors.New("record not found")

	// ErrSourceNotExists indicates an unknown source name.
	ErrSourceNotExists = errors.New("source not exists")
)

// Source is a single lookup target in the fallback chain.
type Source interface {
	// Name returns the configured source name.
	Name() string
	// Description returns the human readable source description.
	Description() string
	// Lookup fetches the record for key, returning ErrNotFound on miss.
	Lookup(ctx context.Context, key model.Key) (*model.Result, error)
	// Ping probes the source for connectivity.
	Ping(ctx context.Context) error
}

// Reporter is implemented by sources that can answer metadata queries
// beyond plain lookups. Database projects implement it, web APIs do not.
type Reporter interface {
	// Regulations lists regulation years available for a program.
	Regulations(ctx context.Context, program string) ([]string, error)
	// Stats reports table row counts and sample institutes.
	Stats(ctx context.Context) (*Stats, error)
}

// CGPASource is implemented by sources that store cumulative GPA rows.
type CGPASource interface {
	// LookupCGPA fetches cumulative GPA rows for a student.
	LookupCGPA(ctx context.Context, key model.Key, instituteCode string) ([]model.CGPARecord, error)
}

// Stats reports row counts of one database project.
type Stats struct {
	TotalPrograms    int64             `json:"total_programs"`
	TotalRegulations int64             `json:"total_regulations"`
	TotalInstitutes  int64             `json:"total_institutes"`
	TotalStudents    int64             `json:"total_students"`
	TotalGPARecords  int64             `json:"total_gpa_records"`
	SampleInstitutes []model.Institute `json:"sample_institutes"`
}

// NotFoundError reports chain exhaustion together with the sources that
// were attempted, in order.
type NotFoundError struct {
	Key       model.Key
	Attempted []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s/%s/%s not found in any source (tried: %s)",
		e.Key.Program, e.Key.Regulation, e.Key.RollNo, strings.Join(e.Attempted, ", "))
}
