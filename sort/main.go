package main

import (
	"context"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qsbench/experiment"
	"qsbench/kvdb"
	"qsbench/mass"
	"qsbench/metrics"
	"qsbench/qsort"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env 파일 없음, 환경 변수만 사용")
	}

	cfg, err := loadConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("설정 오류: %v", err)
	}

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("실행 실패: %+v", err)
	}
}

// run 탐색 → 본 실험 → 보고서 → 저장소 순서로 실행
func run(cfg Config, out io.Writer) error {
	logger := log.New(out, "", 0)
	logger.Println("퀵소트 변형 실험 시작...")
	logger.Printf("CPU 코어 수: %d, GOMAXPROCS: %d, 실행 ID: %s", runtime.NumCPU(), runtime.GOMAXPROCS(0), cfg.RunID)

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return errors.Wrapf(err, "create output dir %s", cfg.OutDir)
	}

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer stop()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	harness := qsort.Harness{CollectGarbage: cfg.GC}
	var written []string

	// 1) 최적 M 탐색
	bestM := cfg.M
	var search *experiment.SearchResult
	if bestM == 0 {
		logger.Printf("M 탐색 중 (랜덤 입력 n=%s, M=%d..%d, 샘플 %d개)...",
			humanize.Comma(int64(cfg.SearchN)), cfg.MMin, cfg.MMax, cfg.SampleRuns)

		searcher := &experiment.Searcher{Rand: rng, Harness: harness, Metrics: rec}
		res, err := searcher.FindBestM(cfg.SampleRuns, experiment.Candidates(cfg.MMin, cfg.MMax), cfg.SearchN)
		if err != nil {
			return err
		}
		search = &res
		bestM = res.Best.M
		logger.Printf("최적 M: %d, 평균 시간: %.6fs", res.Best.M, res.Best.MeanTime)

		path := filepath.Join(cfg.OutDir, searchCSVFile)
		if err := writeSearchCSV(path, res.Table); err != nil {
			return err
		}
		written = append(written, path)
	} else {
		rec.SetBestM(bestM)
		logger.Printf("고정 M 사용: %d", bestM)
	}

	// 2) 본 실험
	masses, err := mass.Select(cfg.Masses)
	if err != nil {
		return err
	}
	logger.Println("\n본 실험 실행 중...")
	runner := &experiment.Runner{
		Rand:    rng,
		Harness: harness,
		Masses:  masses,
		Logger:  logger,
		Metrics: rec,
	}
	records, err := runner.Run(cfg.Repeats, cfg.Sizes, bestM)
	if err != nil {
		return err
	}
	if v := runner.Violations(); v > 0 {
		logger.Printf("경고: 검증 실패 %d건", v)
	}

	// 3) 보고서
	report := Report{RunID: cfg.RunID, Seed: cfg.Seed, BestM: bestM, Search: search, Records: records}
	outputs := []struct {
		name  string
		write func(path string) error
	}{
		{resultsCSVFile, func(p string) error { return writeRecordsCSV(p, records) }},
		{resultsJSON, func(p string) error { return writeJSON(p, report) }},
		{resultsMD, func(p string) error { return writeMarkdown(p, report, time.Now()) }},
	}
	for _, o := range outputs {
		path := filepath.Join(cfg.OutDir, o.name)
		if err := o.write(path); err != nil {
			return err
		}
		written = append(written, path)
	}

	// 4) 저장소
	if cfg.Store != storeNone {
		if err := persist(cfg, search, records, logger); err != nil {
			return err
		}
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return errors.Wrapf(err, "write metrics %s", cfg.MetricsFile)
		}
		written = append(written, cfg.MetricsFile)
	}

	logger.Println("\n실행 완료. 저장된 파일:")
	for _, f := range written {
		if _, err := os.Stat(f); err == nil {
			logger.Println(" -", f)
		}
	}
	return nil
}

func persist(cfg Config, search *experiment.SearchResult, records []experiment.Record, logger *log.Logger) error {
	store, err := kvdb.Open(cfg.Store, cfg.StorePath)
	if err != nil {
		return err
	}

	if search != nil {
		if err := store.SaveSearch(cfg.RunID, *search); err != nil {
			store.Close()
			return err
		}
	}
	if err := store.SaveRecords(cfg.RunID, records); err != nil {
		store.Close()
		return err
	}
	if err := store.Close(); err != nil {
		return errors.Wrapf(err, "close %s store", cfg.Store)
	}

	size, err := kvdb.DirSize(cfg.StorePath)
	if err != nil {
		return errors.Wrapf(err, "stat %s", cfg.StorePath)
	}
	logger.Printf("%s 저장소에 %d개 레코드 저장 (%s, %s)", cfg.Store, len(records), cfg.StorePath,
		humanize.Bytes(uint64(size)))
	return nil
}

// serveMetrics 실행 중에만 /metrics 노출. 반환된 함수로 종료.
func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics 서버 오류: %v", err)
		}
	}()
	logger.Printf("metrics: http://%s/metrics", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("metrics 서버 종료 오류: %v", err)
		}
	}
}

