package qsort

import "golang.org/x/exp/constraints"

// InsertionSort seq[low..high] 삽입정렬 (계측 버전)
// 왼쪽으로 한 칸 미는 것을 교환 1회로 센다. 키의 최종 배치는 세지 않는다.
func InsertionSort[T constraints.Ordered](seq []T, low, high int, c *Counters) {
	for i := low + 1; i <= high; i++ {
		key := seq[i]
		j := i - 1

		for j >= low {
			c.Comparisons++
			if seq[j] > key {
				seq[j+1] = seq[j]
				c.Swaps++
				j--
				continue
			}
			break
		}
		seq[j+1] = key
	}
}
