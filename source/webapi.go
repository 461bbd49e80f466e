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
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/sling"
	"github.com/pkg/errors"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
)

const webAPIUserAgent = "BTEB-Results-App/1.0"

// webAPIProbeKey is a known-published record used for connectivity probes.
var webAPIProbeKey = model.Key{
	Program:    "Diploma in Engineering",
	Regulation: "2022",
	RollNo:     "721942",
}

// WebAPI is an external results service consulted after all database
// projects miss.
type WebAPI struct {
	name        string
	description string
	baseURL     string
	endpoint    string
	params      map[string]string
	priority    int
	client      *http.Client
}

// NewWebAPI builds a web API source from its config.
func NewWebAPI(cfg *config.WebAPIConfig) *WebAPI {
	return &WebAPI{
		name:        cfg.Name,
		description: cfg.Description,
		baseURL:     cfg.BaseURL,
		endpoint:    cfg.Endpoint,
		params:      cfg.Params,
		priority:    cfg.Priority,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Name implements Source.
func (w *WebAPI) Name() string {
	return w.name
}

// Description implements Source.
func (w *WebAPI) Description() string {
	return w.description
}

// Priority orders web APIs within the fallback tail.
func (w *WebAPI) Priority() int {
	return w.priority
}

// BaseURL returns the configured service base url.
func (w *WebAPI) BaseURL() string {
	return w.baseURL
}

// expand substitutes the {roll}, {regulation} and {program} placeholders.
func expand(tpl string, key model.Key) string {
	program := strings.ReplaceAll(strings.ToLower(key.Program), " ", "-")
	r := strings.NewReplacer(
		"{roll}", key.RollNo,
		"{regulation}", key.Regulation,
		"{program}", program,
	)
	return r.Replace(tpl)
}

func (w *WebAPI) requestPath(key model.Key) string {
	path := expand(w.endpoint, key)

	query := url.Values{}
	for k, v := range w.params {
		query.Set(k, expand(v, key))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	return path
}

// hubSemester is one semester row as returned by the results service.
// Semester and Result arrive as either strings or bare numbers.
type hubSemester struct {
	PublishedAt string          `json:"publishedAt"`
	Semester    json.RawMessage `json:"semester"`
	Passed      *bool           `json:"passed"`
	Result      json.RawMessage `json:"result"`
}

type hubInstitute struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	District string `json:"district"`
}

type hubResponse struct {
	Success       bool          `json:"success"`
	Time          string        `json:"time"`
	Roll          string        `json:"roll"`
	Regulation    string        `json:"regulation"`
	Exam          string        `json:"exam"`
	InstituteData hubInstitute  `json:"instituteData"`
	ResultData    []hubSemester `json:"resultData"`
}

// Lookup implements Source.
func (w *WebAPI) Lookup(ctx context.Context, key model.Key) (res *model.Result, err error) {
	var (
		body hubResponse
		resp *http.Response
	)

	req, err := sling.New().
		Client(w.client).
		Base(w.baseURL).
		Set("User-Agent", webAPIUserAgent).
		Set("Accept", "application/json").
		Get(w.requestPath(key)).
		Request()
	if err != nil {
		err = errors.Wrapf(err, "build request for web api %s failed", w.name)
		return
	}

	if resp, err = w.client.Do(req.WithContext(ctx)); err != nil {
		err = errors.Wrapf(err, "request web api %s failed", w.name)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		err = ErrNotFound
		return
	case resp.StatusCode != http.StatusOK:
		err = errors.Errorf("web api %s returned status %d", w.name, resp.StatusCode)
		return
	}

	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = errors.Wrapf(err, "decode web api %s response failed", w.name)
		return
	}

	if !body.Success {
		err = ErrNotFound
		return
	}

	res = w.convert(&body, key)
	return
}

// convert reshapes a results service payload into the canonical record.
func (w *WebAPI) convert(body *hubResponse, key model.Key) (res *model.Result) {
	student := &model.Student{
		RollNumber:     body.Roll,
		ProgramName:    body.Exam,
		RegulationYear: body.Regulation,
		InstituteCode:  body.InstituteData.Code,
		CreatedAt:      parseTime(body.Time),
	}
	if student.RollNumber == "" {
		student.RollNumber = key.RollNo
	}
	if student.ProgramName == "" {
		student.ProgramName = key.Program
	}
	if student.RegulationYear == "" {
		student.RegulationYear = key.Regulation
	}

	res = &model.Result{
		Student: student,
		Institute: &model.Institute{
			Code:     body.InstituteData.Code,
			Name:     body.InstituteData.Name,
			District: body.InstituteData.District,
		},
		Source: w.name,
	}

	for _, row := range body.ResultData {
		passed := true
		if row.Passed != nil {
			passed = *row.Passed
		}

		rec := model.GPARecord{
			Semester:    parseSemester(row.Semester),
			CreatedAt:   parseTime(row.PublishedAt),
			RefSubjects: []string{},
		}

		raw := rawString(row.Result)
		if gpa, perr := strconv.ParseFloat(raw, 64); perr == nil && raw != "" {
			v := gpa
			rec.GPA = &v
		}
		rec.IsReference = !passed || raw == model.RefGPA

		res.GPARecords = append(res.GPARecords, rec)
	}

	return
}

// Ping implements Source by querying a known-published record. A miss
// still proves the service is answering.
func (w *WebAPI) Ping(ctx context.Context) (err error) {
	req, err := sling.New().
		Client(w.client).
		Base(w.baseURL).
		Set("User-Agent", webAPIUserAgent).
		Get(w.requestPath(webAPIProbeKey)).
		Request()
	if err != nil {
		err = errors.Wrapf(err, "build probe for web api %s failed", w.name)
		return
	}

	resp, err := w.client.Do(req.WithContext(ctx))
	if err != nil {
		err = errors.Wrapf(err, "probe web api %s failed", w.name)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		err = errors.Errorf("web api %s probe returned status %d", w.name, resp.StatusCode)
	}
	return
}

// rawString unwraps a raw json value into its bare string form.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return strings.TrimSpace(string(raw))
}

func parseSemester(raw json.RawMessage) int {
	s := rawString(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return 1
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
