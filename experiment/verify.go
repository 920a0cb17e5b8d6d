package experiment

import "golang.org/x/exp/constraints"

// IsAscendingPermutation output이 input의 오름차순 재배열인지 확인.
// 검사 대상 퀵소트와 무관한 머지소트로 input을 정렬해서 원소별로 비교한다.
func IsAscendingPermutation[T constraints.Ordered](input, output []T) bool {
	if len(input) != len(output) {
		return false
	}
	ref := mergeSort(append([]T(nil), input...))
	for i := range ref {
		if ref[i] != output[i] {
			return false
		}
	}
	return true
}

// mergeSort 작은 구간은 삽입정렬
func mergeSort[T constraints.Ordered](arr []T) []T {
	if len(arr) <= 1 {
		return arr
	}

	// 작은 배열은 삽입정렬 사용
	if len(arr) <= 16 {
		insertionSort(arr)
		return arr
	}

	mid := len(arr) / 2
	left := mergeSort(arr[:mid])
	right := mergeSort(arr[mid:])

	return merge(left, right)
}

// merge 정렬된 두 구간 병합 (같으면 왼쪽 우선)
func merge[T constraints.Ordered](left, right []T) []T {
	result := make([]T, 0, len(left)+len(right))
	i, j := 0, 0

	// 두 쪽 중 작은 값부터
	for i < len(left) && j < len(right) {
		if left[i] <= right[j] {
			result = append(result, left[i])
			i++
		} else {
			result = append(result, right[j])
			j++
		}
	}

	// 남은 요소들 한 번에 추가
	if i < len(left) {
		result = append(result, left[i:]...)
	}
	if j < len(right) {
		result = append(result, right[j:]...)
	}

	return result
}

// insertionSort 카운터 없는 삽입정렬 (검증용)
func insertionSort[T constraints.Ordered](arr []T) {
	for i := 1; i < len(arr); i++ {
		key := arr[i]
		j := i - 1
		for j >= 0 && arr[j] > key {
			arr[j+1] = arr[j]
			j--
		}
		arr[j+1] = key
	}
}
