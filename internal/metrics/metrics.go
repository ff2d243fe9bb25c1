/*
Copyright 2025 The traitcalc Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exports search statistics as Prometheus metrics.
//
// Metrics are registered on a caller-owned registry, never on the global
// one. A CLI run has no scrape endpoint, so the registry is dumped in the
// text exposition format with WriteText or WriteFile.
package metrics

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/traitcalc/traitcalc/internal/utils"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

const (
	namespace = "traitcalc"
	subsystem = "search"

	labelTeamSize = "team_size"
	labelOutcome  = "outcome"

	outcomeComplete  = "complete"
	outcomeTruncated = "truncated"
)

// SearchMetrics records solver statistics. It implements solver.Observer.
type SearchMetrics struct {
	registry *prometheus.Registry

	nodes        *prometheus.CounterVec
	costPrunes   *prometheus.CounterVec
	regionPrunes *prometheus.CounterVec
	sizePrunes   *prometheus.CounterVec
	leaves       *prometheus.CounterVec
	accepted     *prometheus.CounterVec
	sizeSeconds  *prometheus.HistogramVec

	runs         *prometheus.CounterVec
	runSeconds   prometheus.Histogram
	compositions prometheus.Gauge
}

var _ solver.Observer = (*SearchMetrics)(nil)

// NewSearchMetrics creates the search metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewSearchMetrics(reg *prometheus.Registry) (*SearchMetrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, []string{labelTeamSize})
	}

	m := &SearchMetrics{
		registry:     reg,
		nodes:        counter("nodes_visited_total", "Search tree nodes visited."),
		costPrunes:   counter("cost_prunes_total", "Subtrees pruned by the cost bound."),
		regionPrunes: counter("region_prunes_total", "Subtrees pruned by the region reachability bound."),
		sizePrunes:   counter("size_prunes_total", "Subtrees pruned for lack of remaining candidates."),
		leaves:       counter("leaves_evaluated_total", "Full-size teams evaluated."),
		accepted:     counter("compositions_accepted_total", "Teams accepted as valid compositions."),
		sizeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "team_size_duration_seconds",
			Help:      "Summed task time spent on one team size.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{labelTeamSize}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Search runs by outcome.",
		}, []string{labelOutcome}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a search run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		compositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "compositions",
			Help:      "Compositions found by the last run.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.nodes, m.costPrunes, m.regionPrunes, m.sizePrunes, m.leaves, m.accepted,
		m.sizeSeconds, m.runs, m.runSeconds, m.compositions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering search metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the metrics live on.
func (m *SearchMetrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSize records the statistics of one team size.
func (m *SearchMetrics) ObserveSize(size solver.SizeResult) {
	label := strconv.Itoa(size.TeamSize)
	m.nodes.WithLabelValues(label).Add(float64(size.Stats.NodesVisited))
	m.costPrunes.WithLabelValues(label).Add(float64(size.Stats.CostPrunes))
	m.regionPrunes.WithLabelValues(label).Add(float64(size.Stats.RegionPrunes))
	m.sizePrunes.WithLabelValues(label).Add(float64(size.Stats.SizePrunes))
	m.leaves.WithLabelValues(label).Add(float64(size.Stats.LeavesEvaluated))
	m.accepted.WithLabelValues(label).Add(float64(size.Stats.Accepted))
	m.sizeSeconds.WithLabelValues(label).Observe(size.Elapsed.Seconds())
}

// ObserveRun records the outcome of a whole run.
func (m *SearchMetrics) ObserveRun(result *solver.Result) {
	outcome := outcomeComplete
	if result.Truncated {
		outcome = outcomeTruncated
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runSeconds.Observe(result.Elapsed.Seconds())
	m.compositions.Set(float64(result.Total))
}

// WriteText writes every metric family of the registry to w in the text
// exposition format.
func (m *SearchMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile dumps the registry to path, replacing it atomically.
func (m *SearchMetrics) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
