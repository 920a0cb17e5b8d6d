package experiment

import (
	"io"
	"log"
	"math/rand"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"qsbench/mass"
	"qsbench/metrics"
	"qsbench/qsort"
)

// Runner (크기, 매스, 알고리즘) 조합마다 repeats번 측정하고 집계한다.
// 모든 측정은 순차적으로 실행된다.
type Runner struct {
	Rand    *rand.Rand
	Harness qsort.Harness

	// Masses 비어 있으면 mass.Default()
	Masses []mass.Mass
	// Algorithms 비어 있으면 Algorithms()
	Algorithms []Algo

	// Logger 진행 상황과 경고. nil이면 버린다.
	Logger  *log.Logger
	Metrics *metrics.Recorder

	violations int
}

// Violations 출력 검증에 실패한 측정 횟수 (누적)
func (r *Runner) Violations() int {
	return r.violations
}

// Run 본 실험. m은 두 하이브리드 변형의 임계값.
func (r *Runner) Run(repeats int, sizes []int, m int) ([]Record, error) {
	switch {
	case r.Rand == nil:
		return nil, errors.New("runner: nil random source")
	case repeats < 1:
		return nil, errors.Newf("runner: repeats must be positive, got %d", repeats)
	case m < 1:
		return nil, errors.Newf("runner: threshold must be positive, got %d", m)
	}
	for _, n := range sizes {
		if n < 0 {
			return nil, errors.Newf("runner: negative size %d", n)
		}
	}

	masses := r.Masses
	if len(masses) == 0 {
		masses = mass.Default()
	}
	algos := r.Algorithms
	if len(algos) == 0 {
		algos = Algorithms()
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	records := make([]Record, 0, len(sizes)*len(masses)*len(algos))
	for _, n := range sizes {
		logger.Printf("--- 크기 %s ---", humanize.Comma(int64(n)))

		for _, ms := range masses {
			logger.Printf("매스: %s", ms.Name)
			inputs := r.inputs(ms, n, repeats)

			for _, a := range algos {
				rec := r.measure(logger, a, ms.Name, n, m, inputs)
				logger.Printf("  %s: %.6fs, comps=%s, swaps=%s", rec.Algo, rec.MeanTime,
					humanize.Comma(int64(rec.MeanComparisons)), humanize.Comma(int64(rec.MeanSwaps)))
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

// inputs 랜덤 매스는 반복마다 새로 만들고, 결정적 매스는 한 번 만든 것을 복사한다.
func (r *Runner) inputs(ms mass.Mass, n, repeats int) [][]int {
	out := make([][]int, repeats)
	if ms.Deterministic {
		base := ms.Generate(r.Rand, n)
		for i := range out {
			out[i] = slices.Clone(base)
		}
		return out
	}
	for i := range out {
		out[i] = ms.Generate(r.Rand, n)
	}
	return out
}

func (r *Runner) measure(logger *log.Logger, a Algo, massName string, n, m int, inputs [][]int) Record {
	alg := a.New(m)
	times := make([]float64, 0, len(inputs))
	comps := make([]uint64, 0, len(inputs))
	swaps := make([]uint64, 0, len(inputs))

	for _, in := range inputs {
		res := qsort.Run(r.Harness, alg, in)
		times = append(times, res.Seconds())
		comps = append(comps, res.Comparisons)
		swaps = append(swaps, res.Swaps)
		r.Metrics.ObserveRun(a.Name, massName, res.Seconds(), res.Comparisons, res.Swaps)

		if !IsAscendingPermutation(in, res.Output) {
			r.violations++
			r.Metrics.ObserveViolation(a.Name, massName)
			logger.Printf("경고: 정렬되지 않은 출력 algo=%s, n=%d, mass=%s", a.Name, n, massName)
		}
	}

	return Record{
		N:               n,
		Mass:            massName,
		Algo:            a.Name,
		MeanTime:        Mean(times),
		StdTime:         PStdev(times),
		MeanComparisons: Mean(toFloats(comps)),
		MeanSwaps:       Mean(toFloats(swaps)),
	}
}
