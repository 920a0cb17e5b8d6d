// Package metrics 실험 진행 상황을 Prometheus 지표로 노출
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "qsbench"

// Recorder 실험 지표 묶음. nil *Recorder 는 아무것도 기록하지 않는다.
type Recorder struct {
	Runs        *prometheus.CounterVec
	Violations  *prometheus.CounterVec
	Comparisons *prometheus.CounterVec
	Swaps       *prometheus.CounterVec
	RunSeconds  *prometheus.HistogramVec
	SearchRuns  prometheus.Counter
	BestM       prometheus.Gauge
}

// New reg 에 지표를 등록한다
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Timed sort runs by algorithm and input mass",
		}, []string{"algo", "mass"}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Runs whose output was not an ascending permutation of the input",
		}, []string{"algo", "mass"}),
		Comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Element comparisons performed by algorithm",
		}, []string{"algo"}),
		Swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Swaps (and insertion sort shifts) performed by algorithm",
		}, []string{"algo"}),
		RunSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_seconds",
			Help:      "Elapsed time of one timed sort run",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"algo"}),
		SearchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_runs_total",
			Help:      "Timed hybrid runs performed by the threshold search",
		}),
		BestM: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_m",
			Help:      "Hybrid threshold chosen by the last search",
		}),
	}

	reg.MustRegister(r.Runs, r.Violations, r.Comparisons, r.Swaps, r.RunSeconds, r.SearchRuns, r.BestM)
	return r
}

// ObserveRun 실험 러너의 측정 1회
func (r *Recorder) ObserveRun(algo, mass string, seconds float64, comparisons, swaps uint64) {
	if r == nil {
		return
	}
	r.Runs.WithLabelValues(algo, mass).Inc()
	r.RunSeconds.WithLabelValues(algo).Observe(seconds)
	r.Comparisons.WithLabelValues(algo).Add(float64(comparisons))
	r.Swaps.WithLabelValues(algo).Add(float64(swaps))
}

// ObserveViolation 출력 검증 실패 1회
func (r *Recorder) ObserveViolation(algo, mass string) {
	if r == nil {
		return
	}
	r.Violations.WithLabelValues(algo, mass).Inc()
}

// ObserveSearchRun M 탐색 측정 1회
func (r *Recorder) ObserveSearchRun() {
	if r == nil {
		return
	}
	r.SearchRuns.Inc()
}

// SetBestM 선택된 임계값 M
func (r *Recorder) SetBestM(m int) {
	if r == nil {
		return
	}
	r.BestM.Set(float64(m))
}
