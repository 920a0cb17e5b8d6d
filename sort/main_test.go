package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/sugawarayuuta/sonnet"

	"qsbench/experiment"
	"qsbench/kvdb"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// ============================================================================
// CONFIG
// ============================================================================

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil, envMap(nil))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Seed != 42 || cfg.SampleRuns != 15 || cfg.MMin != 2 || cfg.MMax != 60 ||
		cfg.SearchN != 1000 || cfg.M != 0 || cfg.Repeats != 7 || cfg.Store != storeNone {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if diff := cmp.Diff([]int{1000, 5000, 10000}, cfg.Sizes); diff != "" {
		t.Fatalf("sizes mismatch:\n%s", diff)
	}
	if cfg.RunID == "" {
		t.Fatal("run id not generated")
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	env := envMap(map[string]string{
		"QS_SEED":    "7",
		"QS_REPEATS": "3",
		"QS_SIZES":   "10, 20",
		"QS_STORE":   kvdb.BackendPebble,
	})
	cfg, err := loadConfig([]string{"-repeats", "5", "-masses", "sorted,random", "-run-id", "abc"}, env)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Seed != 7 {
		t.Errorf("seed = %d, want env value 7", cfg.Seed)
	}
	if cfg.Repeats != 5 {
		t.Errorf("repeats = %d, want flag value 5", cfg.Repeats)
	}
	if diff := cmp.Diff([]int{10, 20}, cfg.Sizes); diff != "" {
		t.Errorf("sizes mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sorted", "random"}, cfg.Masses); diff != "" {
		t.Errorf("masses mismatch:\n%s", diff)
	}
	if cfg.Store != kvdb.BackendPebble || cfg.RunID != "abc" {
		t.Errorf("unexpected store/run id %q %q", cfg.Store, cfg.RunID)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad env int", nil, map[string]string{"QS_SEED": "forty-two"}},
		{"unknown flag", []string{"-fast"}, nil},
		{"bad size", []string{"-sizes", "10,x"}, nil},
		{"negative size", []string{"-sizes", "-1"}, nil},
		{"no sizes", []string{"-sizes", ""}, nil},
		{"zero repeats", []string{"-repeats", "0"}, nil},
		{"inverted M range", []string{"-m-min", "10", "-m-max", "5"}, nil},
		{"negative m", []string{"-m", "-2"}, nil},
		{"unknown mass", []string{"-masses", "zipf"}, nil},
		{"unknown store", []string{"-store", "redis"}, nil},
		{"run id with slash", []string{"-run-id", "exp/2"}, nil},
		{"env run id with slash", nil, map[string]string{"QS_RUN_ID": "a/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(tt.args, envMap(tt.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := loadConfig([]string{"-store", "redis"}, envMap(nil))
	if !errors.Is(err, kvdb.ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
	_, err = loadConfig([]string{"-run-id", "exp/2"}, envMap(nil))
	if !errors.Is(err, kvdb.ErrInvalidRunID) {
		t.Fatalf("err = %v, want ErrInvalidRunID", err)
	}
}

func TestFixedMSkipsRangeValidation(t *testing.T) {
	if _, err := loadConfig([]string{"-m", "12", "-m-min", "10", "-m-max", "5"}, envMap(nil)); err != nil {
		t.Fatalf("fixed M should ignore candidate range: %v", err)
	}
}

func TestNewRunID(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	a := newRunID(Config{Seed: 1, Sizes: []int{10}}, now)
	b := newRunID(Config{Seed: 2, Sizes: []int{10}}, now)

	if !strings.HasPrefix(a, "20261019-083000-") {
		t.Fatalf("run id %q", a)
	}
	if a == b {
		t.Fatal("different configs share a run id")
	}
	if a != newRunID(Config{Seed: 1, Sizes: []int{10}}, now) {
		t.Fatal("run id not stable")
	}
	if err := kvdb.ValidRunID(a); err != nil {
		t.Fatalf("generated run id rejected by store: %v", err)
	}
}

// ============================================================================
// END TO END
// ============================================================================

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestRunWritesReportsAndStore(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Seed:        42,
		SampleRuns:  2,
		MMin:        2,
		MMax:        4,
		SearchN:     64,
		Sizes:       []int{16, 32},
		Repeats:     2,
		OutDir:      filepath.Join(dir, "out"),
		Store:       kvdb.BackendBbolt,
		StorePath:   filepath.Join(dir, "results.db"),
		RunID:       "test-run",
		MetricsFile: filepath.Join(dir, "qsbench.prom"),
	}

	var buf bytes.Buffer
	if err := run(cfg, &buf); err != nil {
		t.Fatalf("run: %v\n%s", err, buf.String())
	}

	search := readCSV(t, filepath.Join(cfg.OutDir, searchCSVFile))
	if diff := cmp.Diff(searchHeader, search[0]); diff != "" {
		t.Fatalf("search header mismatch:\n%s", diff)
	}
	if len(search) != 1+3 {
		t.Fatalf("search rows = %d, want 3 candidates", len(search)-1)
	}

	results := readCSV(t, filepath.Join(cfg.OutDir, resultsCSVFile))
	if diff := cmp.Diff(recordsHeader, results[0]); diff != "" {
		t.Fatalf("results header mismatch:\n%s", diff)
	}
	if want := 2 * 5 * 3; len(results)-1 != want {
		t.Fatalf("result rows = %d, want %d", len(results)-1, want)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutDir, resultsJSON))
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := sonnet.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if report.RunID != "test-run" || report.Search == nil || report.BestM != report.Search.Best.M {
		t.Fatalf("unexpected report header %+v", report)
	}

	md, err := os.ReadFile(filepath.Join(cfg.OutDir, resultsMD))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# 퀵소트 변형 실험 결과", "## 평균 시간 vs 크기 (mass=random)", "## 지표 (n=32)", experiment.AlgoHybridMedian} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	prom, err := os.ReadFile(cfg.MetricsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prom), "qsbench_runs_total") {
		t.Errorf("metrics snapshot missing runs counter")
	}

	store, err := kvdb.Open(kvdb.BackendBbolt, cfg.StorePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	stored, err := store.LoadRecords("test-run")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(report.Records, stored); diff != "" {
		t.Fatalf("stored records differ from report (-report +store):\n%s", diff)
	}

	if strings.Contains(buf.String(), "경고") {
		t.Fatalf("unexpected warning in output:\n%s", buf.String())
	}
}

func TestRunFixedMSkipsSearch(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Seed:    1,
		M:       8,
		Sizes:   []int{20},
		Repeats: 1,
		Masses:  []string{"reverse"},
		OutDir:  dir,
		Store:   storeNone,
		RunID:   "fixed",
	}

	var buf bytes.Buffer
	if err := run(cfg, &buf); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, searchCSVFile)); !os.IsNotExist(err) {
		t.Fatalf("search csv should not exist, stat err = %v", err)
	}

	results := readCSV(t, filepath.Join(dir, resultsCSVFile))
	if len(results) != 1+3 {
		t.Fatalf("rows = %d, want 3", len(results)-1)
	}
	for _, row := range results[1:] {
		if row[1] != "reverse" {
			t.Fatalf("unexpected mass in row %v", row)
		}
	}
}
