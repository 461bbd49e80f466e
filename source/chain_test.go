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
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/rafsaan123/probable-meme/model"
)

var testKey = model.Key{
	Program:    "Diploma in Engineering",
	Regulation: "2022",
	RollNo:     "721942",
}

type fakeSource struct {
	name  string
	res   *model.Result
	err   error
	block bool
	calls int
}

func (f *fakeSource) Name() string        { return f.name }
func (f *fakeSource) Description() string { return "fake " + f.name }

func (f *fakeSource) Lookup(ctx context.Context, key model.Key) (*model.Result, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeSource) Ping(ctx context.Context) error {
	if f.err != nil && errors.Cause(f.err) != ErrNotFound {
		return f.err
	}
	return nil
}

type fakeCGPASource struct {
	fakeSource
	cgpa []model.CGPARecord
}

func (f *fakeCGPASource) LookupCGPA(ctx context.Context, key model.Key, instituteCode string) ([]model.CGPARecord, error) {
	if f.err != nil && errors.Cause(f.err) != ErrNotFound {
		return nil, f.err
	}
	return f.cgpa, nil
}

func hitResult(name string) *model.Result {
	return &model.Result{
		Student: &model.Student{
			RollNumber:     testKey.RollNo,
			ProgramName:    testKey.Program,
			RegulationYear: testKey.Regulation,
			InstituteCode:  "50218",
		},
		Source: name,
	}
}

func TestChainLookup(t *testing.T) {
	Convey("Lookup over an ordered chain", t, func() {
		Convey("returns the first hit without consulting later sources", func() {
			s1 := &fakeSource{name: "primary", err: ErrNotFound}
			s2 := &fakeSource{name: "secondary", res: hitResult("secondary")}
			s3 := &fakeSource{name: "tertiary", res: hitResult("tertiary")}

			chain, err := NewChain(time.Second, []Source{s1, s2, s3}, "", nil)
			So(err, ShouldBeNil)

			res, attempted, err := chain.Lookup(context.Background(), testKey)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, "secondary")
			So(attempted, ShouldResemble, []string{"primary", "secondary"})
			So(s3.calls, ShouldEqual, 0)
		})

		Convey("treats a source error as a miss and moves on", func() {
			s1 := &fakeSource{name: "primary", err: errors.New("connection refused")}
			s2 := &fakeSource{name: "secondary", res: hitResult("secondary")}

			chain, err := NewChain(time.Second, []Source{s1, s2}, "", nil)
			So(err, ShouldBeNil)

			res, attempted, err := chain.Lookup(context.Background(), testKey)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, "secondary")
			So(attempted, ShouldResemble, []string{"primary", "secondary"})
		})

		Convey("reports every attempted source on exhaustion", func() {
			s1 := &fakeSource{name: "primary", err: ErrNotFound}
			s2 := &fakeSource{name: "secondary", err: ErrNotFound}
			w1 := &fakeSource{name: "resulthub", err: ErrNotFound}

			chain, err := NewChain(time.Second, []Source{s1, s2}, "", []Source{w1})
			So(err, ShouldBeNil)

			res, attempted, err := chain.Lookup(context.Background(), testKey)
			So(res, ShouldBeNil)
			So(attempted, ShouldResemble, []string{"primary", "secondary", "resulthub"})

			nfe, ok := err.(*NotFoundError)
			So(ok, ShouldBeTrue)
			So(nfe.Attempted, ShouldResemble, []string{"primary", "secondary", "resulthub"})
			So(nfe.Error(), ShouldContainSubstring, "primary, secondary, resulthub")
		})

		Convey("consults web apis only after all database projects miss", func() {
			s1 := &fakeSource{name: "primary", err: ErrNotFound}
			w1 := &fakeSource{name: "resulthub", res: hitResult("resulthub")}

			chain, err := NewChain(time.Second, []Source{s1}, "", []Source{w1})
			So(err, ShouldBeNil)

			res, attempted, err := chain.Lookup(context.Background(), testKey)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, "resulthub")
			So(attempted, ShouldResemble, []string{"primary", "resulthub"})
		})

		Convey("a stalled source is cut off by the per-source timeout", func() {
			s1 := &fakeSource{name: "primary", block: true}
			s2 := &fakeSource{name: "secondary", res: hitResult("secondary")}

			chain, err := NewChain(50*time.Millisecond, []Source{s1, s2}, "", nil)
			So(err, ShouldBeNil)

			start := time.Now()
			res, attempted, err := chain.Lookup(context.Background(), testKey)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, "secondary")
			So(attempted, ShouldResemble, []string{"primary", "secondary"})
			So(time.Since(start), ShouldBeLessThan, time.Second)
		})

		Convey("a cancelled request stops the chain", func() {
			s1 := &fakeSource{name: "primary", err: ErrNotFound}

			chain, err := NewChain(time.Second, []Source{s1}, "", nil)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, _, err = chain.Lookup(ctx, testKey)
			So(err, ShouldEqual, context.Canceled)
			So(s1.calls, ShouldEqual, 0)
		})
	})
}

func TestChainCGPA(t *testing.T) {
	Convey("LookupCGPA follows the same search order", t, func() {
		recs := []model.CGPARecord{{CGPA: float64Ptr(3.42)}}

		s1 := &fakeCGPASource{fakeSource: fakeSource{name: "primary"}}
		s2 := &fakeSource{name: "secondary"} // no cgpa support
		s3 := &fakeCGPASource{fakeSource: fakeSource{name: "tertiary"}, cgpa: recs}

		chain, err := NewChain(time.Second, []Source{s1, s2, s3}, "", nil)
		So(err, ShouldBeNil)

		got, foundIn := chain.LookupCGPA(context.Background(), testKey, "50218")
		So(foundIn, ShouldEqual, "tertiary")
		So(got, ShouldResemble, recs)

		Convey("and yields nothing when every project is empty", func() {
			chain, err := NewChain(time.Second, []Source{s1, s2}, "", nil)
			So(err, ShouldBeNil)

			got, foundIn := chain.LookupCGPA(context.Background(), testKey, "50218")
			So(foundIn, ShouldEqual, "")
			So(got, ShouldBeNil)
		})
	})
}

func TestChainCurrent(t *testing.T) {
	Convey("current source selection", t, func() {
		s1 := &fakeSource{name: "primary"}
		s2 := &fakeSource{name: "secondary"}

		Convey("defaults to the first project", func() {
			chain, err := NewChain(time.Second, []Source{s1, s2}, "", nil)
			So(err, ShouldBeNil)
			So(chain.CurrentName(), ShouldEqual, "primary")
		})

		Convey("honors the configured current source", func() {
			chain, err := NewChain(time.Second, []Source{s1, s2}, "secondary", nil)
			So(err, ShouldBeNil)

			cur, err := chain.Current()
			So(err, ShouldBeNil)
			So(cur.Name(), ShouldEqual, "secondary")
		})

		Convey("rejects an unknown configured current source", func() {
			_, err := NewChain(time.Second, []Source{s1}, "nope", nil)
			So(errors.Cause(err), ShouldEqual, ErrSourceNotExists)
		})

		Convey("switches between declared projects only", func() {
			chain, err := NewChain(time.Second, []Source{s1, s2}, "", nil)
			So(err, ShouldBeNil)

			So(chain.SwitchTo("secondary"), ShouldBeNil)
			So(chain.CurrentName(), ShouldEqual, "secondary")

			err = chain.SwitchTo("nope")
			So(errors.Cause(err), ShouldEqual, ErrSourceNotExists)
			So(chain.CurrentName(), ShouldEqual, "secondary")
		})
	})
}

func float64Ptr(v float64) *float64 {
	return &v
}
