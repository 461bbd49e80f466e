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
	"strconv"
	"time"
)

// RefGPA is the GPA placeholder rendered for referred semesters.
const RefGPA = "ref"

// SemesterResult is the wire form of one semester row, shaped for the
// mobile client.
type SemesterResult struct {
	PublishedAt time.Time      `json:"publishedAt"`
	Semester    string         `json:"semester"`
	Passed      bool           `json:"passed"`
	GPA         string         `json:"gpa"`
	Result      SemesterDetail `json:"result"`
}

// SemesterDetail carries the GPA together with referred subjects.
type SemesterDetail struct {
	GPA         string   `json:"gpa"`
	RefSubjects []string `json:"ref_subjects"`
}

// CGPAResult is the wire form of one cumulative GPA row.
type CGPAResult struct {
	Semester    string    `json:"semester"`
	CGPA        *string   `json:"cgpa"`
	PublishedAt time.Time `json:"publishedAt"`
}

// InstituteResult is the wire form of the institute block.
type InstituteResult struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	District string `json:"district"`
}

// SearchResponse is the full payload for a successful lookup.
type SearchResponse struct {
	Time            time.Time        `json:"time"`
	Roll            string           `json:"roll"`
	Regulation      string           `json:"regulation"`
	Exam            string           `json:"exam"`
	FoundInSource   string           `json:"found_in_source"`
	SourcesSearched []string         `json:"sources_searched"`
	InstituteData   InstituteResult  `json:"instituteData"`
	ResultData      []SemesterResult `json:"resultData"`
	CGPAData        []CGPAResult     `json:"cgpaData"`
}

// FormatGPA renders a GPA pointer for the client, mapping referred
// semesters to the "ref" placeholder.
func FormatGPA(gpa *float64) string {
	if gpa == nil {
		return RefGPA
	}
	return strconv.FormatFloat(*gpa, 'f', -1, 64)
}

// NewSearchResponse shapes a chain hit into the client payload.
func NewSearchResponse(key Key, res *Result, attempted []string) (resp *SearchResponse) {
	resp = &SearchResponse{
		Roll:            key.RollNo,
		Regulation:      key.Regulation,
		Exam:            key.Program,
		FoundInSource:   res.Source,
		SourcesSearched: attempted,
		InstituteData: InstituteResult{
			Code:     res.Student.InstituteCode,
			Name:     "Unknown",
			District: "Unknown",
		},
		ResultData: []SemesterResult{},
		CGPAData:   []CGPAResult{},
	}

	if res.Student != nil {
		resp.Time = res.Student.CreatedAt
	}

	if res.Institute != nil {
		resp.InstituteData.Name = res.Institute.Name
		resp.InstituteData.District = res.Institute.District
		if res.Institute.Code != "" {
			resp.InstituteData.Code = res.Institute.Code
		}
	}

	for _, rec := range res.GPARecords {
		gpa := FormatGPA(rec.GPA)
		refSubjects := rec.RefSubjects
		if refSubjects == nil {
			refSubjects = []string{}
		}
		resp.ResultData = append(resp.ResultData, SemesterResult{
			PublishedAt: rec.CreatedAt,
			Semester:    strconv.Itoa(rec.Semester),
			Passed:      !rec.IsReference,
			GPA:         gpa,
			Result: SemesterDetail{
				GPA:         gpa,
				RefSubjects: refSubjects,
			},
		})
	}

	for _, rec := range res.CGPAs {
		cr := CGPAResult{
			Semester:    "Final",
			PublishedAt: rec.CreatedAt,
		}
		if rec.Semester != nil {
			cr.Semester = strconv.Itoa(*rec.Semester)
		}
		if rec.CGPA != nil {
			s := strconv.FormatFloat(*rec.CGPA, 'f', -1, 64)
			cr.CGPA = &s
		}
		resp.CGPAData = append(resp.CGPAData, cr)
	}

	return
}
