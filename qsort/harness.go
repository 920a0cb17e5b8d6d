package qsort

import (
	"runtime"
	"time"

	"golang.org/x/exp/constraints"
)

// Result 한 번의 측정 결과
type Result[T constraints.Ordered] struct {
	Elapsed     time.Duration
	Comparisons uint64
	Swaps       uint64
	Output      []T
}

// Seconds 경과 시간 (초)
func (r Result[T]) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// Harness 정렬 한 번을 입력 복사본 위에서 실행하고 시간을 잰다.
// 제로 값은 time.Now (단조 시계)를 사용한다.
type Harness struct {
	// Now 테스트에서 시계를 바꿔 끼우기 위한 훅
	Now func() time.Time

	// CollectGarbage 측정 직전 GC 실행 (측정 안정화)
	CollectGarbage bool
}

// Run base는 건드리지 않는다. 복사와 GC는 첫 시계 읽기 전에 끝난다.
func Run[T constraints.Ordered](h Harness, alg Algorithm[T], base []T) Result[T] {
	now := h.Now
	if now == nil {
		now = time.Now
	}

	out := make([]T, len(base))
	copy(out, base)
	var c Counters

	if h.CollectGarbage {
		runtime.GC()
	}

	t0 := now()
	alg(out, 0, len(out)-1, &c)
	t1 := now()

	return Result[T]{
		Elapsed:     t1.Sub(t0),
		Comparisons: c.Comparisons,
		Swaps:       c.Swaps,
		Output:      out,
	}
}

// TimeRun 기본 Harness로 Run
func TimeRun[T constraints.Ordered](alg Algorithm[T], base []T) Result[T] {
	return Run(Harness{}, alg, base)
}
