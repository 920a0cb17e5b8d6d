package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"qsbench/kvdb"
	"qsbench/mass"
)

const storeNone = "none"

// Config 실행 설정. 우선순위: 플래그 > 환경 변수(.env 포함) > 기본값
type Config struct {
	Seed       int64
	SampleRuns int
	MMin       int
	MMax       int
	SearchN    int
	// M 0이면 탐색, 양수면 탐색 없이 이 값을 사용
	M       int
	Sizes   []int
	Repeats int
	Masses  []string

	OutDir    string
	Store     string
	StorePath string
	RunID     string

	MetricsAddr string
	MetricsFile string
	GC          bool
}

// flag 이름 -> 환경 변수
var envKeys = map[string]string{
	"seed":         "QS_SEED",
	"sample-runs":  "QS_SAMPLE_RUNS",
	"m-min":        "QS_M_MIN",
	"m-max":        "QS_M_MAX",
	"search-n":     "QS_SEARCH_N",
	"m":            "QS_M",
	"sizes":        "QS_SIZES",
	"repeats":      "QS_REPEATS",
	"masses":       "QS_MASSES",
	"out":          "QS_OUT_DIR",
	"store":        "QS_STORE",
	"store-path":   "QS_STORE_PATH",
	"run-id":       "QS_RUN_ID",
	"metrics-addr": "QS_METRICS_ADDR",
	"metrics-file": "QS_METRICS_FILE",
	"gc":           "QS_GC",
}

// loadConfig lookup은 보통 os.LookupEnv
func loadConfig(args []string, lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	var sizes, masses string

	fs := flag.NewFlagSet("sort", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int64Var(&cfg.Seed, "seed", 42, "random seed")
	fs.IntVar(&cfg.SampleRuns, "sample-runs", 15, "random inputs per M candidate")
	fs.IntVar(&cfg.MMin, "m-min", 2, "smallest M candidate")
	fs.IntVar(&cfg.MMax, "m-max", 60, "largest M candidate")
	fs.IntVar(&cfg.SearchN, "search-n", 1000, "input size used by the M search")
	fs.IntVar(&cfg.M, "m", 0, "fixed hybrid threshold (0 = search)")
	fs.StringVar(&sizes, "sizes", "1000,5000,10000", "comma separated input sizes")
	fs.IntVar(&cfg.Repeats, "repeats", 7, "timed runs per (size, mass, algorithm)")
	fs.StringVar(&masses, "masses", "", "comma separated masses (empty = all)")
	fs.StringVar(&cfg.OutDir, "out", ".", "output directory for reports")
	fs.StringVar(&cfg.Store, "store", storeNone, "result store: none|"+strings.Join(kvdb.Backends(), "|"))
	fs.StringVar(&cfg.StorePath, "store-path", "qsbench.db", "store file or directory")
	fs.StringVar(&cfg.RunID, "run-id", "", "run id used as store key (empty = generated)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "write a Prometheus textfile snapshot at the end")
	fs.BoolVar(&cfg.GC, "gc", false, "run the garbage collector before each timed run")

	// 환경 변수를 플래그 기본값처럼 먼저 적용
	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		v, ok := lookup(envKeys[f.Name])
		if !ok || envErr != nil {
			return
		}
		if err := fs.Set(f.Name, v); err != nil {
			envErr = errors.Wrapf(err, "env %s", envKeys[f.Name])
		}
	})
	if envErr != nil {
		return Config{}, envErr
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Wrap(err, "parse flags")
	}

	var err error
	if cfg.Sizes, err = parseSizes(sizes); err != nil {
		return Config{}, err
	}
	cfg.Masses = splitList(masses)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.RunID == "" {
		cfg.RunID = newRunID(cfg, time.Now())
	}
	return cfg, nil
}

// Validate 값 범위 확인
func (c Config) Validate() error {
	switch {
	case c.SampleRuns < 1:
		return errors.Newf("sample-runs must be positive, got %d", c.SampleRuns)
	case c.M == 0 && c.MMin < 1:
		return errors.Newf("m-min must be positive, got %d", c.MMin)
	case c.M == 0 && c.MMax < c.MMin:
		return errors.Newf("m-max (%d) must not be below m-min (%d)", c.MMax, c.MMin)
	case c.M < 0:
		return errors.Newf("m must not be negative, got %d", c.M)
	case c.SearchN < 0:
		return errors.Newf("search-n must not be negative, got %d", c.SearchN)
	case c.Repeats < 1:
		return errors.Newf("repeats must be positive, got %d", c.Repeats)
	case len(c.Sizes) == 0:
		return errors.New("no sizes given")
	}
	if _, err := mass.Select(c.Masses); err != nil {
		return err
	}
	if c.RunID != "" {
		if err := kvdb.ValidRunID(c.RunID); err != nil {
			return err
		}
	}
	if c.Store != storeNone {
		known := false
		for _, b := range kvdb.Backends() {
			known = known || b == c.Store
		}
		if !known {
			return errors.Wrapf(kvdb.ErrUnknownBackend, "%q", c.Store)
		}
	}
	return nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "size %q", part)
		}
		if n < 0 {
			return nil, errors.Newf("size must not be negative, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newRunID 시각 + 설정 해시. 같은 초에 다른 설정으로 돌려도 겹치지 않는다.
func newRunID(c Config, now time.Time) string {
	h := xxhash.Sum64String(fmt.Sprintf("%d|%d|%d|%d|%d|%d|%v|%d|%v",
		c.Seed, c.SampleRuns, c.MMin, c.MMax, c.SearchN, c.M, c.Sizes, c.Repeats, c.Masses))
	return fmt.Sprintf("%s-%08x", now.Format("20060102-150405"), uint32(h))
}
