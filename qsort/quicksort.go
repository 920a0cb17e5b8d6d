package qsort

import "golang.org/x/exp/constraints"

// Algorithm 파라미터가 고정된 정렬 진입점. seq[low..high]를 제자리 정렬한다.
type Algorithm[T constraints.Ordered] func(seq []T, low, high int, c *Counters)

// span 처리 대기 중인 구간 [low, high]
type span struct {
	low, high int
}

// Plain 일반 퀵소트 (로무토, 피벗 = 마지막 원소)
func Plain[T constraints.Ordered](seq []T, low, high int, c *Counters) {
	sortSpans(seq, low, high, c, 0, false)
}

// Hybrid 구간 길이가 m 이하이면 삽입정렬로 넘기는 퀵소트
func Hybrid[T constraints.Ordered](seq []T, low, high int, c *Counters, m int) {
	sortSpans(seq, low, high, c, m, false)
}

// HybridMedian Hybrid + 중앙값(3) 피벗 선택
func HybridMedian[T constraints.Ordered](seq []T, low, high int, c *Counters, m int) {
	sortSpans(seq, low, high, c, m, true)
}

// PlainAlgorithm Plain을 Algorithm으로
func PlainAlgorithm[T constraints.Ordered]() Algorithm[T] {
	return Plain[T]
}

// HybridAlgorithm 임계값 m을 고정한 Hybrid
func HybridAlgorithm[T constraints.Ordered](m int) Algorithm[T] {
	return func(seq []T, low, high int, c *Counters) {
		Hybrid(seq, low, high, c, m)
	}
}

// HybridMedianAlgorithm 임계값 m을 고정한 HybridMedian
func HybridMedianAlgorithm[T constraints.Ordered](m int) Algorithm[T] {
	return func(seq []T, low, high int, c *Counters) {
		HybridMedian(seq, low, high, c, m)
	}
}

// sortSpans 재귀 대신 대기 구간 스택으로 처리한다. 호출 스택 깊이가 입력 모양에 의존하지 않음.
// 오른쪽을 먼저 push 하므로 왼쪽 구간이 먼저 처리된다 (재귀 버전과 같은 순서).
// m == 0 이면 삽입정렬로 넘기는 일이 없다 (길이 2 이상만 스택에 들어감).
func sortSpans[T constraints.Ordered](seq []T, low, high int, c *Counters, m int, median bool) {
	if low >= high {
		return
	}

	stack := make([]span, 0, 64)
	stack = append(stack, span{low, high})

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.high-s.low+1 <= m {
			InsertionSort(seq, s.low, s.high, c)
			continue
		}

		if median {
			MedianOfThree(seq, s.low, s.high, c)
		}
		p := Partition(seq, s.low, s.high, c)

		if p+1 < s.high {
			stack = append(stack, span{p + 1, s.high})
		}
		if s.low < p-1 {
			stack = append(stack, span{s.low, p - 1})
		}
	}
}
