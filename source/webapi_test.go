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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/rafsaan123/probable-meme/config"
)

const hubPayload = `{
	"success": true,
	"time": "2024-08-17T10:00:00Z",
	"roll": "721942",
	"regulation": "2022",
	"exam": "diploma-in-engineering",
	"instituteData": {"code": "50218", "name": "Dhaka Polytechnic", "district": "Dhaka"},
	"resultData": [
		{"publishedAt": "2024-08-17T10:00:00Z", "semester": "1", "passed": true, "result": "3.18"},
		{"publishedAt": "2024-08-17T10:00:00Z", "semester": 2, "passed": false, "result": "ref"}
	]
}`

func newHubAPI(baseURL string) *WebAPI {
	return NewWebAPI(&config.WebAPIConfig{
		Name:     "resulthub",
		BaseURL:  baseURL,
		Endpoint: "/results/individual/{roll}",
		Params: map[string]string{
			"exam":       "{program}",
			"regulation": "{regulation}",
		},
		Timeout:  5,
		Priority: 1,
	})
}

func TestWebAPILookup(t *testing.T) {
	Convey("web api lookup", t, func() {
		var (
			gotPath  string
			gotQuery map[string][]string
			status   int
			payload  string
		)

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query()
			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, payload)
		}))
		defer ts.Close()

		w := newHubAPI(ts.URL)

		Convey("expands placeholders into the request", func() {
			status, payload = http.StatusOK, hubPayload

			res, err := w.Lookup(context.Background(), testKey)
			So(err, ShouldBeNil)

			So(gotPath, ShouldEqual, "/results/individual/721942")
			So(gotQuery["exam"], ShouldResemble, []string{"diploma-in-engineering"})
			So(gotQuery["regulation"], ShouldResemble, []string{"2022"})

			So(res.Source, ShouldEqual, "resulthub")
			So(res.Student.RollNumber, ShouldEqual, "721942")
			So(res.Student.InstituteCode, ShouldEqual, "50218")
			So(res.Institute.Name, ShouldEqual, "Dhaka Polytechnic")
			So(res.Institute.District, ShouldEqual, "Dhaka")

			So(res.GPARecords, ShouldHaveLength, 2)
			So(res.GPARecords[0].Semester, ShouldEqual, 1)
			So(*res.GPARecords[0].GPA, ShouldEqual, 3.18)
			So(res.GPARecords[0].IsReference, ShouldBeFalse)
			So(res.GPARecords[1].Semester, ShouldEqual, 2)
			So(res.GPARecords[1].GPA, ShouldBeNil)
			So(res.GPARecords[1].IsReference, ShouldBeTrue)
		})

		Convey("maps 404 to a plain miss", func() {
			status = http.StatusNotFound

			_, err := w.Lookup(context.Background(), testKey)
			So(errors.Cause(err), ShouldEqual, ErrNotFound)
		})

		Convey("maps an unsuccessful body to a miss", func() {
			status, payload = http.StatusOK, `{"success": false}`

			_, err := w.Lookup(context.Background(), testKey)
			So(errors.Cause(err), ShouldEqual, ErrNotFound)
		})

		Convey("surfaces unexpected statuses as errors", func() {
			status = http.StatusBadGateway

			_, err := w.Lookup(context.Background(), testKey)
			So(err, ShouldNotBeNil)
			So(errors.Cause(err), ShouldNotEqual, ErrNotFound)
		})

		Convey("ping accepts both hits and misses", func() {
			status, payload = http.StatusOK, hubPayload
			So(w.Ping(context.Background()), ShouldBeNil)

			status = http.StatusNotFound
			So(w.Ping(context.Background()), ShouldBeNil)

			status = http.StatusInternalServerError
			So(w.Ping(context.Background()), ShouldNotBeNil)
		})
	})
}
