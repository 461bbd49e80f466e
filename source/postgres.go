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

package source

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
)

// Database is a hosted database project source backed by postgres.
type Database struct {
	name        string
	description string
	db          *sql.DB
}

// NewDatabase opens a database project source from its config.
// The connection is established lazily, a failing project only
// surfaces when the chain reaches it.
func NewDatabase(cfg *config.SourceConfig) (d *Database, err error) {
	var db *sql.DB
	if db, err = sql.Open("pgx", cfg.DSN); err != nil {
		err = errors.Wrapf(err, "open database project %s failed", cfg.Name)
		return
	}

	// hosted projects throttle aggressively, keep the pool small
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	d = &Database{
		name:        cfg.Name,
		description: cfg.Description,
		db:          db,
	}

	return
}

// Name implements Source.
func (d *Database) Name() string {
	return d.name
}

// Description implements Source.
func (d *Database) Description() string {
	return d.description
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping implements Source by probing the students table.
func (d *Database) Ping(ctx context.Context) (err error) {
	if err = d.db.PingContext(ctx); err != nil {
		err = errors.Wrapf(err, "ping project %s failed", d.name)
		return
	}

	var one int
	err = d.db.QueryRowContext(ctx,
		`SELECT 1 FROM "programs" LIMIT 1`).Scan(&one)
	if err == sql.ErrNoRows {
		// empty but reachable
		err = nil
	}
	if err != nil {
		err = errors.Wrapf(err, "probe project %s failed", d.name)
	}
	return
}

// Lookup implements Source. It fetches the student row for the key,
// then the matching institute row and the per-semester GPA rows.
func (d *Database) Lookup(ctx context.Context, key model.Key) (res *model.Result, err error) {
	var student model.Student
	err = d.db.QueryRowContext(ctx,
		`SELECT "roll_number", "program_name", "regulation_year", "institute_code", "created_at"
		   FROM "students"
		  WHERE "program_name" = $1 AND "regulation_year" = $2 AND "roll_number" = $3
		  LIMIT 1`,
		key.Program, key.Regulation, key.RollNo).Scan(
		&student.RollNumber, &student.ProgramName, &student.RegulationYear,
		&student.InstituteCode, &student.CreatedAt)
	if err == sql.ErrNoRows {
		err = ErrNotFound
		return
	}
	if err != nil {
		err = errors.Wrapf(err, "query student in %s failed", d.name)
		return
	}

	res = &model.Result{
		Student: &student,
		Source:  d.name,
	}

	if res.Institute, err = d.lookupInstitute(ctx, key, student.InstituteCode); err != nil {
		// institute data is decoration, a miss never hides the student hit
		log.WithError(err).WithFields(log.Fields{
			"source":    d.name,
			"institute": student.InstituteCode,
		}).Warning("institute lookup failed")
		err = nil
	}

	if res.GPARecords, err = d.lookupGPA(ctx, key, student.InstituteCode); err != nil {
		err = errors.Wrapf(err, "query gpa records in %s failed", d.name)
		return
	}

	return
}

func (d *Database) lookupInstitute(ctx context.Context, key model.Key, code string) (inst *model.Institute, err error) {
	inst = &model.Institute{}
	err = d.db.QueryRowContext(ctx,
		`SELECT "institute_code", "name", "district"
		   FROM "institutes"
		  WHERE "program_name" = $1 AND "regulation_year" = $2 AND "institute_code" = $3
		  LIMIT 1`,
		key.Program, key.Regulation, code).Scan(&inst.Code, &inst.Name, &inst.District)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return
}

func (d *Database) lookupGPA(ctx context.Context, key model.Key, code string) (records []model.GPARecord, err error) {
	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx,
		`SELECT "semester", "gpa", "is_reference", "ref_subjects", "created_at"
		   FROM "gpa_records"
		  WHERE "program_name" = $1 AND "regulation_year" = $2
		    AND "institute_code" = $3 AND "roll_number" = $4
		  ORDER BY "semester"`,
		key.Program, key.Regulation, code, key.RollNo)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      model.GPARecord
			gpa      sql.NullFloat64
			subjects []byte
		)
		if err = rows.Scan(&rec.Semester, &gpa, &rec.IsReference, &subjects, &rec.CreatedAt); err != nil {
			return
		}
		if gpa.Valid {
			v := gpa.Float64
			rec.GPA = &v
		}
		if len(subjects) > 0 {
			if jerr := json.Unmarshal(subjects, &rec.RefSubjects); jerr != nil {
				log.WithError(jerr).WithField("source", d.name).
					Warning("malformed ref_subjects column")
			}
		}
		records = append(records, rec)
	}

	err = rows.Err()
	return
}

// LookupCGPA implements CGPASource.
func (d *Database) LookupCGPA(ctx context.Context, key model.Key, instituteCode string) (records []model.CGPARecord, err error) {
	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx,
		`SELECT "semester", "cgpa", "created_at"
		   FROM "cgpa_records"
		  WHERE "program_name" = $1 AND "regulation_year" = $2
		    AND "institute_code" = $3 AND "roll_number" = $4`,
		key.Program, key.Regulation, instituteCode, key.RollNo)
	if err != nil {
		err = errors.Wrapf(err, "query cgpa records in %s failed", d.name)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      model.CGPARecord
			semester sql.NullInt64
			cgpa     sql.NullFloat64
		)
		if err = rows.Scan(&semester, &cgpa, &rec.CreatedAt); err != nil {
			return
		}
		if semester.Valid {
			v := int(semester.Int64)
			rec.Semester = &v
		}
		if cgpa.Valid {
			v := cgpa.Float64
			rec.CGPA = &v
		}
		records = append(records, rec)
	}

	err = rows.Err()
	return
}

// Regulations implements Reporter.
func (d *Database) Regulations(ctx context.Context, program string) (years []string, err error) {
	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx,
		`SELECT "year" FROM "regulations" WHERE "program_name" = $1 ORDER BY "year"`,
		program)
	if err != nil {
		err = errors.Wrapf(err, "query regulations in %s failed", d.name)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var year string
		if err = rows.Scan(&year); err != nil {
			return
		}
		years = append(years, year)
	}

	err = rows.Err()
	return
}

// Stats implements Reporter.
func (d *Database) Stats(ctx context.Context) (stats *Stats, err error) {
	stats = &Stats{}

	counts := []struct {
		table  string
		target *int64
	}{
		{"programs", &stats.TotalPrograms},
		{"regulations", &stats.TotalRegulations},
		{"institutes", &stats.TotalInstitutes},
		{"students", &stats.TotalStudents},
		{"gpa_records", &stats.TotalGPARecords},
	}

	for _, c := range counts {
		err = d.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM "`+c.table+`"`).Scan(c.target)
		if err != nil {
			err = errors.Wrapf(err, "count %s in %s failed", c.table, d.name)
			return
		}
	}

	var rows *sql.Rows
	rows, err = d.db.QueryContext(ctx,
		`SELECT "institute_code", "name", "district" FROM "institutes" LIMIT 10`)
	if err != nil {
		err = errors.Wrapf(err, "sample institutes in %s failed", d.name)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var inst model.Institute
		if err = rows.Scan(&inst.Code, &inst.Name, &inst.District); err != nil {
			return
		}
		stats.SampleInstitutes = append(stats.SampleInstitutes, inst)
	}

	err = rows.Err()
	return
}
