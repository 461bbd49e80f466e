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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resultproxy",
			Subsystem: "chain",
			Name:      "source_lookups_total",
			Help:      "Per-source lookup attempts partitioned by outcome.",
		},
		[]string{"source", "outcome"},
	)

	lookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resultproxy",
			Subsystem: "chain",
			Name:      "source_lookup_duration_seconds",
			Help:      "Per-source lookup latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"source"},
	)

	chainCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resultproxy",
			Subsystem: "chain",
			Name:      "searches_total",
			Help:      "Whole-chain searches partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)
