// Package experiment 하이브리드 임계값 M 탐색과 본 실험 러너
package experiment

import (
	"qsbench/qsort"
)

const (
	AlgoRecursive    = "quicksort_recursive"
	AlgoHybrid       = "quicksort_hybrid"
	AlgoHybridMedian = "quicksort_hybrid_median"
)

// Record (크기, 매스, 알고리즘) 하나에 대한 집계 결과. 시간은 초 단위.
type Record struct {
	N               int     `json:"n"`
	Mass            string  `json:"mass"`
	Algo            string  `json:"algo"`
	MeanTime        float64 `json:"mean_time"`
	StdTime         float64 `json:"std_time"`
	MeanComparisons float64 `json:"mean_comparisons"`
	MeanSwaps       float64 `json:"mean_swaps"`
}

// MRecord M 후보 하나에 대한 측정 결과
type MRecord struct {
	M        int     `json:"M"`
	MeanTime float64 `json:"mean_time"`
	StdTime  float64 `json:"std_time"`
}

// SearchResult 최적 M과 후보 전체 표
type SearchResult struct {
	Best  MRecord   `json:"best"`
	Table []MRecord `json:"table"`
}

// Algo 임계값 M을 받아 정렬 진입점을 만드는 이름 붙은 변형
type Algo struct {
	Name string
	New  func(m int) qsort.Algorithm[int]
}

// Algorithms 비교 대상 세 변형 (보고서 순서)
func Algorithms() []Algo {
	return []Algo{
		{Name: AlgoRecursive, New: func(int) qsort.Algorithm[int] { return qsort.PlainAlgorithm[int]() }},
		{Name: AlgoHybrid, New: qsort.HybridAlgorithm[int]},
		{Name: AlgoHybridMedian, New: qsort.HybridMedianAlgorithm[int]},
	}
}
