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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewSearchResponse(t *testing.T) {
	key := Key{Program: "Diploma in Engineering", Regulation: "2022", RollNo: "721942"}
	published := time.Date(2024, 8, 17, 10, 0, 0, 0, time.UTC)

	Convey("NewSearchResponse", t, func() {
		gpa1 := 3.18
		cgpa := 3.42
		sem := 8

		res := &Result{
			Student: &Student{
				RollNumber:    "721942",
				InstituteCode: "50218",
				CreatedAt:     published,
			},
			Institute: &Institute{Code: "50218", Name: "Dhaka Polytechnic", District: "Dhaka"},
			GPARecords: []GPARecord{
				{Semester: 1, GPA: &gpa1, CreatedAt: published},
				{Semester: 2, IsReference: true, RefSubjects: []string{"66422", "65931"}, CreatedAt: published},
			},
			CGPAs: []CGPARecord{
				{Semester: &sem, CGPA: &cgpa, CreatedAt: published},
				{CreatedAt: published},
			},
			Source: "secondary",
		}

		resp := NewSearchResponse(key, res, []string{"primary", "secondary"})

		Convey("carries the lookup key and provenance", func() {
			So(resp.Roll, ShouldEqual, "721942")
			So(resp.Regulation, ShouldEqual, "2022")
			So(resp.Exam, ShouldEqual, "Diploma in Engineering")
			So(resp.FoundInSource, ShouldEqual, "secondary")
			So(resp.SourcesSearched, ShouldResemble, []string{"primary", "secondary"})
			So(resp.Time, ShouldResemble, published)
		})

		Convey("shapes the institute block", func() {
			So(resp.InstituteData.Code, ShouldEqual, "50218")
			So(resp.InstituteData.Name, ShouldEqual, "Dhaka Polytechnic")
			So(resp.InstituteData.District, ShouldEqual, "Dhaka")
		})

		Convey("renders gpa rows with ref placeholders", func() {
			So(resp.ResultData, ShouldHaveLength, 2)

			So(resp.ResultData[0].Semester, ShouldEqual, "1")
			So(resp.ResultData[0].Passed, ShouldBeTrue)
			So(resp.ResultData[0].GPA, ShouldEqual, "3.18")
			So(resp.ResultData[0].Result.RefSubjects, ShouldBeEmpty)

			So(resp.ResultData[1].Semester, ShouldEqual, "2")
			So(resp.ResultData[1].Passed, ShouldBeFalse)
			So(resp.ResultData[1].GPA, ShouldEqual, RefGPA)
			So(resp.ResultData[1].Result.RefSubjects, ShouldResemble, []string{"66422", "65931"})
		})

		Convey("renders cgpa rows, final when semester is absent", func() {
			So(resp.CGPAData, ShouldHaveLength, 2)

			So(resp.CGPAData[0].Semester, ShouldEqual, "8")
			So(*resp.CGPAData[0].CGPA, ShouldEqual, "3.42")

			So(resp.CGPAData[1].Semester, ShouldEqual, "Final")
			So(resp.CGPAData[1].CGPA, ShouldBeNil)
		})

		Convey("falls back to placeholders without institute data", func() {
			bare := &Result{
				Student: &Student{RollNumber: "721942", InstituteCode: "50218", CreatedAt: published},
				Source:  "primary",
			}

			resp := NewSearchResponse(key, bare, []string{"primary"})
			So(resp.InstituteData.Code, ShouldEqual, "50218")
			So(resp.InstituteData.Name, ShouldEqual, "Unknown")
			So(resp.InstituteData.District, ShouldEqual, "Unknown")
			So(resp.ResultData, ShouldBeEmpty)
			So(resp.CGPAData, ShouldBeEmpty)
		})
	})
}

func TestFormatGPA(t *testing.T) {
	Convey("FormatGPA", t, func() {
		v := 4.0
		So(FormatGPA(&v), ShouldEqual, "4")

		v = 2.96
		So(FormatGPA(&v), ShouldEqual, "2.96")

		So(FormatGPA(nil), ShouldEqual, RefGPA)
	})
}
