package sasvalidator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Metrics instance to Prometheus. It implements
// prometheus.Collector by reading an atomic snapshot on every scrape, so
// scrapes never block validation.
//
//	metrics := validator.Metrics()
//	prometheus.MustRegister(sasvalidator.NewCollector(metrics))
type Collector struct {
	metrics *Metrics

	validationsTotal *prometheus.Desc
	validationsValid *prometheus.Desc
	validationTime   *prometheus.Desc
	cacheHits        *prometheus.Desc
	cacheMisses      *prometheus.Desc
	poolAcquires     *prometheus.Desc
	poolReleases     *prometheus.Desc
	issuesTotal      *prometheus.Desc
	phaseTime        *prometheus.Desc
	phaseIssues      *prometheus.Desc
}

// NewCollector creates a Prometheus collector over the given metrics.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics: m,
		validationsTotal: prometheus.NewDesc(
			"sas_record_validations_total",
			"Total number of record validations performed.",
			nil, nil),
		validationsValid: prometheus.NewDesc(
			"sas_record_validations_valid_total",
			"Number of record validations that passed.",
			nil, nil),
		validationTime: prometheus.NewDesc(
			"sas_record_validation_seconds_total",
			"Cumulative time spent validating records.",
			nil, nil),
		cacheHits: prometheus.NewDesc(
			"sas_record_schema_cache_hits_total",
			"Schema cache hits.",
			nil, nil),
		cacheMisses: prometheus.NewDesc(
			"sas_record_schema_cache_misses_total",
			"Schema cache misses.",
			nil, nil),
		poolAcquires: prometheus.NewDesc(
			"sas_record_pool_acquires_total",
			"Result/context pool acquire operations.",
			nil, nil),
		poolReleases: prometheus.NewDesc(
			"sas_record_pool_releases_total",
			"Result/context pool release operations.",
			nil, nil),
		issuesTotal: prometheus.NewDesc(
			"sas_record_issues_total",
			"Validation issues found, by severity.",
			[]string{"severity"}, nil),
		phaseTime: prometheus.NewDesc(
			"sas_record_phase_seconds_total",
			"Cumulative time spent in each validation phase.",
			[]string{"phase"}, nil),
		phaseIssues: prometheus.NewDesc(
			"sas_record_phase_issues_total",
			"Issues found by each validation phase.",
			[]string{"phase"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.validationsTotal
	ch <- c.validationsValid
	ch <- c.validationTime
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.poolAcquires
	ch <- c.poolReleases
	ch <- c.issuesTotal
	ch <- c.phaseTime
	ch <- c.phaseIssues
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.validationsTotal, prometheus.CounterValue, float64(s.ValidationsTotal))
	ch <- prometheus.MustNewConstMetric(c.validationsValid, prometheus.CounterValue, float64(s.ValidationsValid))
	ch <- prometheus.MustNewConstMetric(c.validationTime, prometheus.CounterValue,
		float64(s.TotalValidationTimeNs)/1e9)
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(s.CacheMisses))
	ch <- prometheus.MustNewConstMetric(c.poolAcquires, prometheus.CounterValue, float64(s.PoolAcquires))
	ch <- prometheus.MustNewConstMetric(c.poolReleases, prometheus.CounterValue, float64(s.PoolReleases))

	ch <- prometheus.MustNewConstMetric(c.issuesTotal, prometheus.CounterValue, float64(s.ErrorsTotal), "error")
	ch <- prometheus.MustNewConstMetric(c.issuesTotal, prometheus.CounterValue, float64(s.WarningsTotal), "warning")
	ch <- prometheus.MustNewConstMetric(c.issuesTotal, prometheus.CounterValue, float64(s.InfosTotal), "information")

	for _, phase := range s.Phases {
		ch <- prometheus.MustNewConstMetric(c.phaseTime, prometheus.CounterValue,
			phase.TotalTime.Seconds(), phase.Name)
		ch <- prometheus.MustNewConstMetric(c.phaseIssues, prometheus.CounterValue,
			float64(phase.IssuesFound), phase.Name)
	}
}
