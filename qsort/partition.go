package qsort

import "golang.org/x/exp/constraints"

// Partition 로무토 파티션 (피벗 = seq[high]), 피벗의 최종 위치를 반환
// 비교 횟수는 항상 high-low.
func Partition[T constraints.Ordered](seq []T, low, high int, c *Counters) int {
	pivot := seq[high]
	i := low - 1

	for j := low; j < high; j++ {
		c.Comparisons++
		if seq[j] <= pivot {
			i++
			Swap(seq, i, j, c)
		}
	}
	Swap(seq, i+1, high, c)
	return i + 1
}

// MedianOfThree low/mid/high 세 값의 중앙값을 high 위치로 옮긴다.
// 세 쌍(a>b, b>c, a>c)을 한 번씩만 비교하므로 비교 횟수는 항상 3.
// 같은 값은 "크지 않음"으로 취급되어 else 쪽으로 간다.
func MedianOfThree[T constraints.Ordered](seq []T, low, high int, c *Counters) {
	mid := (low + high) / 2
	a, b, v := seq[low], seq[mid], seq[high]

	ab, bc, ac := a > b, b > v, a > v
	c.Comparisons += 3

	var median int
	if ab {
		switch {
		case bc:
			median = mid
		case ac:
			median = high
		default:
			median = low
		}
	} else {
		switch {
		case ac:
			median = low
		case bc:
			median = high
		default:
			median = mid
		}
	}

	Swap(seq, median, high, c)
}
