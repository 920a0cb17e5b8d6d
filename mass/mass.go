// Package mass 실험 입력 분포(매스) 생성기
//
// 난수를 쓰는 생성기는 호출자가 넘긴 *rand.Rand 만 사용한다. 전역 시드에 의존하지 않으므로
// 같은 시드의 rand.Rand를 넘기면 같은 입력이 다시 만들어진다.
package mass

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

const (
	Random         = "random"
	Sorted         = "sorted"
	Reverse        = "reverse"
	ManyDuplicates = "many_duplicates"
	WorstForLomuto = "worst_for_lomuto"
)

const (
	randomMax      = 1_000_000
	duplicateMax   = 1000
	duplicateCount = 5
)

// ErrUnknownMass 등록되지 않은 매스 이름
var ErrUnknownMass = errors.New("unknown mass")

// Generator 길이 n의 입력을 만든다. 결정적 매스는 rng를 무시한다.
type Generator func(rng *rand.Rand, n int) []int

// Mass 이름이 붙은 입력 분포
type Mass struct {
	Name          string
	Generate      Generator
	Deterministic bool
}

// GenRandom [0, 1e6] 균등 분포
func GenRandom(rng *rand.Rand, n int) []int {
	return GenRandomRange(rng, n, 0, randomMax)
}

// GenRandomRange [low, high] 균등 분포 (양 끝 포함). high < low 이면 두 경계를 바꾼다.
func GenRandomRange(rng *rand.Rand, n, low, high int) []int {
	if high < low {
		low, high = high, low
	}
	data := make([]int, n)
	for i := range data {
		data[i] = low + rng.Intn(high-low+1)
	}
	return data
}

// GenSorted 0..n-1 오름차순
func GenSorted(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return data
}

// GenReverse n..1 내림차순
func GenReverse(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = n - i
	}
	return data
}

// GenManyDuplicates [0, 1000]에서 뽑은 unique개의 값만 반복해서 사용. unique < 1 은 1로 본다.
func GenManyDuplicates(rng *rand.Rand, n, unique int) []int {
	unique = max(unique, 1)
	choices := GenRandomRange(rng, unique, 0, duplicateMax)
	data := make([]int, n)
	for i := range data {
		data[i] = choices[rng.Intn(len(choices))]
	}
	return data
}

// GenWorstForLomuto 마지막 원소 피벗에 대한 최악 입력 (오름차순)
func GenWorstForLomuto(n int) []int {
	return GenSorted(n)
}

// Default 실험에 쓰는 매스 목록 (보고서 순서)
func Default() []Mass {
	return []Mass{
		{Name: Random, Generate: GenRandom},
		{Name: Sorted, Generate: func(_ *rand.Rand, n int) []int { return GenSorted(n) }, Deterministic: true},
		{Name: Reverse, Generate: func(_ *rand.Rand, n int) []int { return GenReverse(n) }, Deterministic: true},
		{Name: ManyDuplicates, Generate: func(rng *rand.Rand, n int) []int { return GenManyDuplicates(rng, n, duplicateCount) }},
		{Name: WorstForLomuto, Generate: func(_ *rand.Rand, n int) []int { return GenWorstForLomuto(n) }, Deterministic: true},
	}
}

// Lookup 이름으로 기본 매스를 찾는다
func Lookup(name string) (Mass, error) {
	for _, m := range Default() {
		if m.Name == name {
			return m, nil
		}
	}
	return Mass{}, errors.Wrapf(ErrUnknownMass, "%q", name)
}

// Select 이름 목록 순서대로 매스를 고른다. 빈 목록이면 Default 전체.
func Select(names []string) ([]Mass, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	out := make([]Mass, 0, len(names))
	for _, name := range names {
		m, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Fingerprint 입력 내용의 xxhash. 같은 시퀀스면 같은 값.
func Fingerprint(data []int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		d.Write(buf[:])
	}
	return d.Sum64()
}
