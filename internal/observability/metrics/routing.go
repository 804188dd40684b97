package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RoutingMetrics contains Prometheus metrics for the routing engine.
// All recording methods are no-ops on a nil receiver.
type RoutingMetrics struct {
	registry *prometheus.Registry

	playsTotal             *prometheus.CounterVec
	replacementsTotal      *prometheus.CounterVec
	overlaysTotal          *prometheus.CounterVec
	reloadsTotal           *prometheus.CounterVec
	reloadDuration         *prometheus.HistogramVec
	routingErrors          *prometheus.CounterVec
	trackedSources         prometheus.Gauge
	packsLoaded            *prometheus.GaugeVec
	clipMaterializations   *prometheus.CounterVec
	clipMaterializeSeconds *prometheus.HistogramVec

	collectors []prometheus.Collector
}

// NewRoutingMetrics creates and registers routing metrics
func NewRoutingMetrics(registry *prometheus.Registry) (*RoutingMetrics, error) {
	m := &RoutingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RoutingMetrics) initMetrics() {
	m.playsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_plays_total",
			Help: "Total number of play notifications by outcome",
		},
		[]string{"outcome"},
	)

	m.replacementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_replacements_total",
			Help: "Total number of replacement routes applied per pack",
		},
		[]string{"pack"},
	)

	m.overlaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_overlays_total",
			Help: "Total number of overlay one-shots spawned per pack",
		},
		[]string{"pack"},
	)

	m.reloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_reloads_total",
			Help: "Total number of engine reloads by kind",
		},
		[]string{"kind"},
	)

	m.reloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modaudio_reload_duration_seconds",
			Help:    "Time taken by engine reloads",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"kind"},
	)

	m.routingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_routing_errors_total",
			Help: "Total number of recovered routing failures by operation",
		},
		[]string{"operation"},
	)

	m.trackedSources = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modaudio_tracked_sources",
			Help: "Number of audio sources with tracked routing state",
		},
	)

	m.packsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "modaudio_packs_loaded",
			Help: "Number of loaded audio packs by state",
		},
		[]string{"state"},
	)

	m.clipMaterializations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modaudio_clip_materializations_total",
			Help: "Total number of lazily materialized clips by mode and status",
		},
		[]string{"mode", "status"},
	)

	m.clipMaterializeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modaudio_clip_materialization_duration_seconds",
			Help:    "Time taken to decode or open a clip",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"mode"},
	)

	m.collectors = []prometheus.Collector{
		m.playsTotal,
		m.replacementsTotal,
		m.overlaysTotal,
		m.reloadsTotal,
		m.reloadDuration,
		m.routingErrors,
		m.trackedSources,
		m.packsLoaded,
		m.clipMaterializations,
		m.clipMaterializeSeconds,
	}
}

// Describe implements the Collector interface
func (m *RoutingMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *RoutingMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordPlay counts a play notification with its outcome
func (m *RoutingMetrics) RecordPlay(outcome string) {
	if m == nil {
		return
	}
	m.playsTotal.WithLabelValues(outcome).Inc()
}

// RecordReplacement counts a replacement route applied from pack
func (m *RoutingMetrics) RecordReplacement(pack string) {
	if m == nil {
		return
	}
	m.replacementsTotal.WithLabelValues(pack).Inc()
}

// RecordOverlay counts an overlay spawned from pack
func (m *RoutingMetrics) RecordOverlay(pack string) {
	if m == nil {
		return
	}
	m.overlaysTotal.WithLabelValues(pack).Inc()
}

// RecordReload counts a reload and its duration
func (m *RoutingMetrics) RecordReload(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.reloadsTotal.WithLabelValues(kind).Inc()
	m.reloadDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordRoutingError counts a recovered failure in operation
func (m *RoutingMetrics) RecordRoutingError(operation string) {
	if m == nil {
		return
	}
	m.routingErrors.WithLabelValues(operation).Inc()
}

// UpdateTrackedSources sets the number of tracked sources
func (m *RoutingMetrics) UpdateTrackedSources(count int) {
	if m == nil {
		return
	}
	m.trackedSources.Set(float64(count))
}

// UpdatePacksLoaded sets the enabled and disabled pack counts
func (m *RoutingMetrics) UpdatePacksLoaded(enabled, disabled int) {
	if m == nil {
		return
	}
	m.packsLoaded.WithLabelValues("enabled").Set(float64(enabled))
	m.packsLoaded.WithLabelValues("disabled").Set(float64(disabled))
}

// RecordClipMaterialization counts a clip decode or stream open and its duration
func (m *RoutingMetrics) RecordClipMaterialization(mode, status string, seconds float64) {
	if m == nil {
		return
	}
	m.clipMaterializations.WithLabelValues(mode, status).Inc()
	m.clipMaterializeSeconds.WithLabelValues(mode).Observe(seconds)
}
