package kvdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"qsbench/experiment"
)

func sampleSearch() experiment.SearchResult {
	table := []experiment.MRecord{
		{M: 2, MeanTime: 0.0031, StdTime: 0.0002},
		{M: 3, MeanTime: 0.0029, StdTime: 0.0001},
		{M: 4, MeanTime: 0.0030, StdTime: 0.00015},
	}
	return experiment.SearchResult{Best: table[1], Table: table}
}

func sampleRecords() []experiment.Record {
	return []experiment.Record{
		{N: 1000, Mass: "random", Algo: experiment.AlgoRecursive, MeanTime: 0.01, StdTime: 0.001, MeanComparisons: 11234.5, MeanSwaps: 6021},
		{N: 1000, Mass: "random", Algo: experiment.AlgoHybrid, MeanTime: 0.008, StdTime: 0.0005, MeanComparisons: 10111, MeanSwaps: 7000.25},
		{N: 1000, Mass: "sorted", Algo: experiment.AlgoHybridMedian, MeanTime: 0.002, StdTime: 0, MeanComparisons: 9000, MeanSwaps: 12},
	}
}

func openForTest(t *testing.T, backend string) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results")
	s, err := Open(backend, path)
	if err != nil {
		if backend == BackendSQLite {
			// cgo 없이 빌드된 경우
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Fatalf("open %s: %v", backend, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := openForTest(t, backend)

			if err := s.SaveSearch("run-1", sampleSearch()); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveRecords("run-1", sampleRecords()); err != nil {
				t.Fatal(err)
			}

			table, err := s.LoadSearch("run-1")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleSearch().Table, table); diff != "" {
				t.Fatalf("search mismatch (-want +got):\n%s", diff)
			}

			recs, err := s.LoadRecords("run-1")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRecords(), recs); diff != "" {
				t.Fatalf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreOverwriteAndIsolation(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := openForTest(t, backend)

			if err := s.SaveRecords("r1", sampleRecords()); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveRecords("r10", sampleRecords()[:1]); err != nil {
				t.Fatal(err)
			}
			// 더 짧은 목록으로 덮어쓰면 남는 키가 없어야 한다
			if err := s.SaveRecords("r1", sampleRecords()[2:]); err != nil {
				t.Fatal(err)
			}

			got, err := s.LoadRecords("r1")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRecords()[2:], got); diff != "" {
				t.Fatalf("r1 mismatch (-want +got):\n%s", diff)
			}

			got, err = s.LoadRecords("r10")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRecords()[:1], got); diff != "" {
				t.Fatalf("r10 mismatch (-want +got):\n%s", diff)
			}

			// "exp/2" 는 "exp" 의 키 범위와 겹치므로 저장 자체가 거부된다
			if err := s.SaveRecords("exp", sampleRecords()[:1]); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveRecords("exp/2", sampleRecords()[1:]); !errors.Is(err, ErrInvalidRunID) {
				t.Fatalf("SaveRecords(exp/2) err = %v, want ErrInvalidRunID", err)
			}
			if err := s.SaveRecords("exp-2", sampleRecords()[1:]); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveRecords("exp", sampleRecords()[:1]); err != nil {
				t.Fatal(err)
			}

			got, err = s.LoadRecords("exp")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRecords()[:1], got); diff != "" {
				t.Fatalf("exp mismatch (-want +got):\n%s", diff)
			}
			got, err = s.LoadRecords("exp-2")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRecords()[1:], got); diff != "" {
				t.Fatalf("exp-2 mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := openForTest(t, backend)

			if _, err := s.LoadRecords("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadRecords err = %v, want ErrNotFound", err)
			}
			if _, err := s.LoadSearch("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadSearch err = %v, want ErrNotFound", err)
			}
			// 탐색 표만 저장한 run은 레코드가 없다
			if err := s.SaveSearch("only-search", sampleSearch()); err != nil {
				t.Fatal(err)
			}
			if _, err := s.LoadRecords("only-search"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("LoadRecords err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreRejectsInvalidRunID(t *testing.T) {
	ids := []string{"", "exp/2", "/", "a/b/c"}
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := openForTest(t, backend)
			for _, id := range ids {
				if err := s.SaveRecords(id, sampleRecords()); !errors.Is(err, ErrInvalidRunID) {
					t.Fatalf("SaveRecords(%q) err = %v", id, err)
				}
				if err := s.SaveSearch(id, sampleSearch()); !errors.Is(err, ErrInvalidRunID) {
					t.Fatalf("SaveSearch(%q) err = %v", id, err)
				}
				if _, err := s.LoadRecords(id); !errors.Is(err, ErrInvalidRunID) {
					t.Fatalf("LoadRecords(%q) err = %v", id, err)
				}
				if _, err := s.LoadSearch(id); !errors.Is(err, ErrInvalidRunID) {
					t.Fatalf("LoadSearch(%q) err = %v", id, err)
				}
			}
		})
	}
}

func TestBadgerFailedSaveKeepsPreviousRun(t *testing.T) {
	s, err := openBadger(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.SaveRecords("run", sampleRecords()); err != nil {
		t.Fatal(err)
	}

	// 값 로그 임계값(1MB)보다 작은 값 20개: 트랜잭션 한도(memtable의 15%)를 넘겨 Set 단계에서 실패한다
	huge := make([]experiment.Record, 20)
	for i := range huge {
		huge[i] = experiment.Record{N: i, Mass: strings.Repeat("x", 900<<10), Algo: experiment.AlgoHybrid}
	}
	if err := s.SaveRecords("run", huge); err == nil {
		t.Fatal("expected oversized save to fail")
	}

	got, err := s.LoadRecords("run")
	if err != nil {
		t.Fatalf("previous run lost: %v", err)
	}
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("leveldb", t.TempDir()); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestPrefixEnd(t *testing.T) {
	tests := []struct {
		in, want []byte
	}{
		{[]byte("run/"), []byte("run0")},
		{[]byte{'a', 0xff}, []byte{'b'}},
		{[]byte{0xff, 0xff}, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, prefixEnd(tt.in)); diff != "" {
			t.Errorf("prefixEnd(%q) mismatch:\n%s", tt.in, diff)
		}
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 28), 0600); err != nil {
		t.Fatal(err)
	}

	size, err := DirSize(dir)
	if err != nil {
		t.Fatal(err)
	}
	if size != 128 {
		t.Fatalf("size = %d, want 128", size)
	}

	if _, err := DirSize(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}
