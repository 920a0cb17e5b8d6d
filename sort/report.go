package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/sugawarayuuta/sonnet"

	"qsbench/experiment"
	"qsbench/mass"
)

const (
	searchCSVFile  = "M_search_results.csv"
	resultsCSVFile = "quicksort_experiment_results.csv"
	resultsJSON    = "quicksort_experiment_results.json"
	resultsMD      = "quicksort_experiment_results.md"
)

var (
	searchHeader  = []string{"M", "mean_time", "std_time"}
	recordsHeader = []string{"n", "mass", "algo", "mean_time", "std_time", "mean_comparisons", "mean_swaps"}
)

// Report JSON 보고서 전체
type Report struct {
	RunID   string                   `json:"run_id"`
	Seed    int64                    `json:"seed"`
	BestM   int                      `json:"best_m"`
	Search  *experiment.SearchResult `json:"search,omitempty"`
	Records []experiment.Record      `json:"records"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	writer := bufio.NewWriterSize(file, 32*1024)
	w := csv.NewWriter(writer)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := writer.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}

// writeSearchCSV M,mean_time,std_time
func writeSearchCSV(path string, table []experiment.MRecord) error {
	rows := make([][]string, 0, len(table))
	for _, r := range table {
		rows = append(rows, []string{strconv.Itoa(r.M), formatFloat(r.MeanTime), formatFloat(r.StdTime)})
	}
	return writeCSV(path, searchHeader, rows)
}

// writeRecordsCSV n,mass,algo,mean_time,std_time,mean_comparisons,mean_swaps
func writeRecordsCSV(path string, recs []experiment.Record) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.Itoa(r.N), r.Mass, r.Algo,
			formatFloat(r.MeanTime), formatFloat(r.StdTime),
			formatFloat(r.MeanComparisons), formatFloat(r.MeanSwaps),
		})
	}
	return writeCSV(path, recordsHeader, rows)
}

func writeJSON(path string, report Report) error {
	data, err := sonnet.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

// writeMarkdown 그래프 대신 표로 정리한 요약
func writeMarkdown(path string, report Report, now time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	writer := bufio.NewWriterSize(file, 32*1024)

	var builder strings.Builder
	builder.Grow(64 * 1024)

	builder.WriteString("# 퀵소트 변형 실험 결과\n\n")
	builder.WriteString(fmt.Sprintf("실행 시간: %s\n", now.Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("실행 ID: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("시드: %d\n", report.Seed))
	builder.WriteString(fmt.Sprintf("CPU 코어 수: %d\n", runtime.NumCPU()))
	builder.WriteString(fmt.Sprintf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0)))
	builder.WriteString(fmt.Sprintf("하이브리드 임계값 M: %d\n\n", report.BestM))

	if report.Search != nil {
		best := report.Search.Best
		builder.WriteString("## M 탐색\n\n")
		builder.WriteString(fmt.Sprintf("후보 %d개 중 최적 M = %d (평균 %.6fs, 표준편차 %.6fs)\n\n",
			len(report.Search.Table), best.M, best.MeanTime, best.StdTime))
	}

	algos := distinct(report.Records, func(r experiment.Record) string { return r.Algo })
	sizes := distinct(report.Records, func(r experiment.Record) int { return r.N })

	// 크기별 평균 시간 (mass=random)
	builder.WriteString("## 평균 시간 vs 크기 (mass=random)\n\n")
	builder.WriteString("| n |")
	for _, a := range algos {
		builder.WriteString(" " + a + " |")
	}
	builder.WriteString("\n|---|" + strings.Repeat("---|", len(algos)) + "\n")
	for _, n := range sizes {
		builder.WriteString(fmt.Sprintf("| %s |", humanize.Comma(int64(n))))
		for _, a := range algos {
			if r, ok := find(report.Records, n, mass.Random, a); ok {
				builder.WriteString(fmt.Sprintf(" %.6f |", r.MeanTime))
			} else {
				builder.WriteString(" - |")
			}
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	// 가장 큰 n에서의 지표
	if len(sizes) > 0 {
		nMax := slices.Max(sizes)
		builder.WriteString(fmt.Sprintf("## 지표 (n=%s)\n\n", humanize.Comma(int64(nMax))))
		builder.WriteString("| 매스 | 알고리즘 | 평균 시간(s) | 평균 비교 | 평균 교환 |\n")
		builder.WriteString("|------|----------|--------------|-----------|-----------|\n")
		for _, r := range report.Records {
			if r.N != nMax {
				continue
			}
			builder.WriteString(fmt.Sprintf("| %s | %s | %.6f | %s | %s |\n", r.Mass, r.Algo, r.MeanTime,
				humanize.Comma(int64(r.MeanComparisons)), humanize.Comma(int64(r.MeanSwaps))))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("## 전체 결과\n\n")
	builder.WriteString("| n | 매스 | 알고리즘 | 평균 시간(s) | 표준편차(s) | 평균 비교 | 평균 교환 |\n")
	builder.WriteString("|---|------|----------|--------------|-------------|-----------|-----------|\n")
	for _, r := range report.Records {
		builder.WriteString(fmt.Sprintf("| %d | %s | %s | %.6f | %.6f | %.0f | %.0f |\n",
			r.N, r.Mass, r.Algo, r.MeanTime, r.StdTime, r.MeanComparisons, r.MeanSwaps))
	}

	if _, err := writer.WriteString(builder.String()); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := writer.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}

// distinct 처음 나온 순서를 유지한 고유 값
func distinct[K comparable](recs []experiment.Record, key func(experiment.Record) K) []K {
	var out []K
	for _, r := range recs {
		if k := key(r); !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func find(recs []experiment.Record, n int, massName, algo string) (experiment.Record, bool) {
	for _, r := range recs {
		if r.N == n && r.Mass == massName && r.Algo == algo {
			return r, true
		}
	}
	return experiment.Record{}, false
}
