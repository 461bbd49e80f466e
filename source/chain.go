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
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
)

// Chain drives the ordered fallback search: database projects in the
// configured search order first, then web APIs by priority. The first
// hit wins and later sources are never consulted.
type Chain struct {
	timeout  time.Duration
	projects []Source
	webAPIs  []Source

	mu      sync.RWMutex
	current string
}

// NewChain assembles a chain from already constructed sources. The
// projects slice is the search order.
func NewChain(timeout time.Duration, projects []Source, current string, webAPIs []Source) (c *Chain, err error) {
	if timeout <= 0 {
		timeout = config.DefaultSourceTimeout * time.Second
	}

	c = &Chain{
		timeout:  timeout,
		projects: projects,
		webAPIs:  webAPIs,
		current:  current,
	}

	if current != "" {
		if _, err = c.Get(current); err != nil {
			return nil, err
		}
	} else if len(projects) > 0 {
		c.current = projects[0].Name()
	}

	return
}

// BuildChain constructs the chain described by the proxy config.
func BuildChain(cfg *config.Config) (c *Chain, err error) {
	var projects []Source
	for _, name := range cfg.SearchOrder {
		sc := cfg.GetSource(name)
		if sc == nil {
			err = errors.Wrapf(ErrSourceNotExists, "source %s", name)
			return
		}

		var d *Database
		if d, err = NewDatabase(sc); err != nil {
			return
		}
		projects = append(projects, d)
	}

	apiConfigs := make([]*config.WebAPIConfig, len(cfg.WebAPIs))
	copy(apiConfigs, cfg.WebAPIs)
	sort.SliceStable(apiConfigs, func(i, j int) bool {
		return apiConfigs[i].Priority < apiConfigs[j].Priority
	})

	var webAPIs []Source
	for _, wc := range apiConfigs {
		webAPIs = append(webAPIs, NewWebAPI(wc))
	}

	return NewChain(cfg.SourceTimeoutDuration(), projects, cfg.CurrentSource, webAPIs)
}

// Timeout returns the per-source lookup timeout.
func (c *Chain) Timeout() time.Duration {
	return c.timeout
}

// Projects returns the database project sources in search order.
func (c *Chain) Projects() []Source {
	return c.projects
}

// WebAPIs returns the web API sources in priority order.
func (c *Chain) WebAPIs() []Source {
	return c.webAPIs
}

// Get returns the database project with the given name.
func (c *Chain) Get(name string) (s Source, err error) {
	for _, p := range c.projects {
		if p.Name() == name {
			return p, nil
		}
	}
	err = errors.Wrapf(ErrSourceNotExists, "source %s", name)
	return
}

// Current returns the active database project used for metadata queries.
func (c *Chain) Current() (s Source, err error) {
	c.mu.RLock()
	name := c.current
	c.mu.RUnlock()

	if name == "" {
		err = errors.Wrap(ErrSourceNotExists, "no current source")
		return
	}
	return c.Get(name)
}

// CurrentName returns the active database project name.
func (c *Chain) CurrentName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SwitchTo changes the active database project.
func (c *Chain) SwitchTo(name string) (err error) {
	if _, err = c.Get(name); err != nil {
		return
	}

	c.mu.Lock()
	c.current = name
	c.mu.Unlock()

	log.WithField("source", name).Info("switched current source")
	return
}

// lookupOne runs a single source lookup under the per-source timeout.
func (c *Chain) lookupOne(ctx context.Context, s Source, key model.Key) (res *model.Result, err error) {
	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err = s.Lookup(sctx, key)
	lookupDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		lookupCounter.WithLabelValues(s.Name(), "hit").Inc()
	case errors.Cause(err) == ErrNotFound:
		lookupCounter.WithLabelValues(s.Name(), "miss").Inc()
	default:
		lookupCounter.WithLabelValues(s.Name(), "error").Inc()
	}

	return
}

// Lookup tries every source in order and returns the first hit together
// with the names of all attempted sources. A source failure counts as a
// miss and the chain moves on. Exhaustion yields a NotFoundError listing
// every attempted source.
func (c *Chain) Lookup(ctx context.Context, key model.Key) (res *model.Result, attempted []string, err error) {
	attempted = []string{}

	for _, s := range append(append([]Source{}, c.projects...), c.webAPIs...) {
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		attempted = append(attempted, s.Name())

		res, err = c.lookupOne(ctx, s, key)
		if err == nil {
			log.WithFields(log.Fields{
				"source": s.Name(),
				"roll":   key.RollNo,
			}).Info("record found")
			chainCounter.WithLabelValues("hit").Inc()
			return
		}

		if errors.Cause(err) != ErrNotFound {
			log.WithError(err).WithField("source", s.Name()).
				Warning("source lookup failed, trying next")
		}
	}

	res = nil
	chainCounter.WithLabelValues("miss").Inc()
	err = &NotFoundError{Key: key, Attempted: attempted}
	return
}

// LookupCGPA searches cumulative GPA rows across database projects in
// the same order as record lookups, independent of which project held
// the student row. First hit wins.
func (c *Chain) LookupCGPA(ctx context.Context, key model.Key, instituteCode string) (records []model.CGPARecord, foundIn string) {
	for _, s := range c.projects {
		cs, ok := s.(CGPASource)
		if !ok {
			continue
		}

		sctx, cancel := context.WithTimeout(ctx, c.timeout)
		recs, err := cs.LookupCGPA(sctx, key, instituteCode)
		cancel()

		if err != nil {
			log.WithError(err).WithField("source", s.Name()).
				Warning("cgpa lookup failed, trying next")
			continue
		}
		if len(recs) > 0 {
			return recs, s.Name()
		}
	}

	return nil, ""
}

// Close releases all closable sources.
func (c *Chain) Close() {
	for _, s := range append(append([]Source{}, c.projects...), c.webAPIs...) {
		if closer, ok := s.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
