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
	"time"
)

// Key is the composite lookup key for a result record.
type Key struct {
	Program    string `json:"program"`
	Regulation string `json:"regulation"`
	RollNo     string `json:"rollNo"`
}

// Student defines a student row as stored in a result database project.
type Student struct {
	RollNumber     string    `json:"roll_number"`
	ProgramName    string    `json:"program_name"`
	RegulationYear string    `json:"regulation_year"`
	InstituteCode  string    `json:"institute_code"`
	CreatedAt      time.Time `json:"created_at"`
}

// Institute defines an institute row attached to a student record.
type Institute struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	District string `json:"district"`
}

// GPARecord defines a single semester result row. GPA is nil for
// referred (failed) semesters, which render as "ref" in responses.
type GPARecord struct {
	Semester    int       `json:"semester"`
	GPA         *float64  `json:"gpa"`
	IsReference bool      `json:"is_reference"`
	RefSubjects []string  `json:"ref_subjects"`
	CreatedAt   time.Time `json:"created_at"`
}

// CGPARecord defines a cumulative GPA row. Semester is nil for the
// final cumulative record.
type CGPARecord struct {
	Semester  *int      `json:"semester"`
	CGPA      *float64  `json:"cgpa"`
	CreatedAt time.Time `json:"created_at"`
}

// Result aggregates everything a single source returned for a key.
type Result struct {
	Student    *Student     `json:"student"`
	Institute  *Institute   `json:"institute"`
	GPARecords []GPARecord  `json:"gpa_records"`
	CGPAs      []CGPARecord `json:"cgpa_records"`

	// Source names the source that produced the hit.
	Source string `json:"source"`
}
