// Package kvdb 실험 결과 저장소. bbolt / BadgerDB / PebbleDB / SQLite 중 하나를 고른다.
package kvdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sugawarayuuta/sonnet"

	"qsbench/experiment"
)

const (
	BackendBbolt  = "bbolt"
	BackendBadger = "badger"
	BackendPebble = "pebble"
	BackendSQLite = "sqlite"
)

const (
	bucketExperiments = "experiments"
	bucketSearch      = "msearch"
)

var (
	// ErrNotFound run id에 해당하는 결과가 없음
	ErrNotFound = errors.New("kvdb: run not found")
	// ErrUnknownBackend 지원하지 않는 백엔드 이름
	ErrUnknownBackend = errors.New("kvdb: unknown backend")
	// ErrInvalidRunID 비어 있거나 키 구분자 '/'를 포함한 run id
	ErrInvalidRunID = errors.New("kvdb: invalid run id")
)

// Store 한 실행(run id)의 M 탐색 표와 실험 레코드를 저장한다.
// 같은 run id로 다시 저장하면 이전 내용을 한 트랜잭션에서 대체한다 (실패하면 이전 내용 유지).
// 읽을 때는 저장 순서를 유지한다. run id 규칙은 ValidRunID.
type Store interface {
	SaveSearch(runID string, res experiment.SearchResult) error
	SaveRecords(runID string, recs []experiment.Record) error
	LoadSearch(runID string) ([]experiment.MRecord, error)
	LoadRecords(runID string) ([]experiment.Record, error)
	Close() error
}

// Backends 지원 백엔드 목록
func Backends() []string {
	return []string{BackendBbolt, BackendBadger, BackendPebble, BackendSQLite}
}

// Open backend 종류에 맞는 저장소를 path에 연다.
// bbolt / sqlite는 파일, badger / pebble은 디렉터리를 사용한다.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendBbolt:
		return openBolt(path)
	case BackendBadger:
		return openBadger(path)
	case BackendPebble:
		return openPebble(path)
	case BackendSQLite:
		return openSQLite(path)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", backend)
	}
}

// DirSize path 아래 일반 파일 크기의 합 (path가 파일이면 그 파일 크기)
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// ----- 키 배치 (KV 백엔드 공통) -----
// <run id>/<seq 8자리> 형태라 사전순 정렬이 저장 순서와 같다.

func runPrefix(runID string) []byte {
	return []byte(runID + "/")
}

func seqKey(runID string, seq int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", runID, seq))
}

// prefixEnd prefix로 시작하는 모든 키보다 큰 가장 작은 키
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// ValidRunID run id는 비어 있으면 안 되고 '/'를 포함할 수 없다.
// '/'가 있으면 "exp"의 접두사 범위가 "exp/2"의 키까지 덮는다.
func ValidRunID(runID string) error {
	if runID == "" {
		return errors.Wrap(ErrInvalidRunID, "empty")
	}
	if strings.Contains(runID, "/") {
		return errors.Wrapf(ErrInvalidRunID, "%q contains '/'", runID)
	}
	return nil
}

func encodeSearch(table []experiment.MRecord) ([][]byte, error) {
	out := make([][]byte, len(table))
	for i, r := range table {
		b, err := sonnet.Marshal(r)
		if err != nil {
			return nil, errors.Wrapf(err, "encode M=%d", r.M)
		}
		out[i] = b
	}
	return out, nil
}

func encodeRecords(recs []experiment.Record) ([][]byte, error) {
	out := make([][]byte, len(recs))
	for i, r := range recs {
		b, err := sonnet.Marshal(r)
		if err != nil {
			return nil, errors.Wrapf(err, "encode record %d", i)
		}
		out[i] = b
	}
	return out, nil
}

func decodeSearch(values [][]byte) ([]experiment.MRecord, error) {
	out := make([]experiment.MRecord, len(values))
	for i, v := range values {
		if err := sonnet.Unmarshal(v, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "decode search entry %d", i)
		}
	}
	return out, nil
}

func decodeRecords(values [][]byte) ([]experiment.Record, error) {
	out := make([]experiment.Record, len(values))
	for i, v := range values {
		if err := sonnet.Unmarshal(v, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "decode record %d", i)
		}
	}
	return out, nil
}
