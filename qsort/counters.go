// Package qsort 계측된 퀵소트 변형들 (일반 / 하이브리드 / 하이브리드+중앙값)
package qsort

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Counters 한 번의 정렬 실행 동안 누적되는 비교/교환 횟수
type Counters struct {
	Comparisons uint64 `json:"comparisons"`
	Swaps       uint64 `json:"swaps"`
}

// Reset 두 카운터를 0으로 초기화
func (c *Counters) Reset() {
	c.Comparisons = 0
	c.Swaps = 0
}

func (c Counters) String() string {
	return fmt.Sprintf("comparisons=%d swaps=%d", c.Comparisons, c.Swaps)
}

// Swap seq[i]와 seq[j]를 교환. i == j 이면 아무것도 하지 않고 세지도 않는다.
func Swap[T constraints.Ordered](seq []T, i, j int, c *Counters) {
	if i != j {
		seq[i], seq[j] = seq[j], seq[i]
		c.Swaps++
	}
}
