package experiment

import (
	"math/rand"

	"github.com/cockroachdb/errors"

	"qsbench/mass"
	"qsbench/metrics"
	"qsbench/qsort"
)

// Searcher 하이브리드 퀵소트의 임계값 M 그리드 탐색
type Searcher struct {
	Rand    *rand.Rand
	Harness qsort.Harness
	Metrics *metrics.Recorder
}

// Candidates lo..hi (양 끝 포함) 연속 후보
func Candidates(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	ms := make([]int, 0, hi-lo+1)
	for m := lo; m <= hi; m++ {
		ms = append(ms, m)
	}
	return ms
}

// FindBestM 길이 n의 랜덤 입력 sampleRuns개를 한 번만 만들고 모든 후보 M에 똑같이 사용한다.
// 평균 시간이 가장 작은 M을 고르며, 같으면 먼저 나온 후보가 이긴다.
func (s *Searcher) FindBestM(sampleRuns int, ms []int, n int) (SearchResult, error) {
	switch {
	case s.Rand == nil:
		return SearchResult{}, errors.New("search: nil random source")
	case sampleRuns < 1:
		return SearchResult{}, errors.Newf("search: sample runs must be positive, got %d", sampleRuns)
	case len(ms) == 0:
		return SearchResult{}, errors.New("search: no candidate thresholds")
	case n < 0:
		return SearchResult{}, errors.Newf("search: negative size %d", n)
	}
	for _, m := range ms {
		if m < 1 {
			return SearchResult{}, errors.Newf("search: threshold must be positive, got %d", m)
		}
	}

	bases := make([][]int, sampleRuns)
	for i := range bases {
		bases[i] = mass.GenRandom(s.Rand, n)
	}

	table := make([]MRecord, 0, len(ms))
	times := make([]float64, len(bases))
	for _, m := range ms {
		alg := qsort.HybridAlgorithm[int](m)
		for i, base := range bases {
			times[i] = qsort.Run(s.Harness, alg, base).Seconds()
			s.Metrics.ObserveSearchRun()
		}
		table = append(table, MRecord{M: m, MeanTime: Mean(times), StdTime: PStdev(times)})
	}

	best := selectBest(table)
	s.Metrics.SetBestM(best.M)
	return SearchResult{Best: best, Table: table}, nil
}

// selectBest 선형 탐색, 엄격한 < 비교라 동률이면 앞쪽 유지
func selectBest(table []MRecord) MRecord {
	best := table[0]
	for _, r := range table[1:] {
		if r.MeanTime < best.MeanTime {
			best = r
		}
	}
	return best
}
