package kvdb

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"qsbench/experiment"
)

// pebbleStore badgerStore와 같은 키 배치
type pebbleStore struct {
	db *pebble.DB
}

func openPebble(dir string) (*pebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %s", dir)
	}
	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) SaveSearch(runID string, res experiment.SearchResult) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeSearch(res.Table)
	if err != nil {
		return err
	}
	return s.put(bucketSearch+"/"+runID, values)
}

func (s *pebbleStore) SaveRecords(runID string, recs []experiment.Record) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeRecords(recs)
	if err != nil {
		return err
	}
	return s.put(bucketExperiments+"/"+runID, values)
}

func (s *pebbleStore) LoadSearch(runID string) ([]experiment.MRecord, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketSearch + "/" + runID)
	if err != nil {
		return nil, err
	}
	return decodeSearch(values)
}

func (s *pebbleStore) LoadRecords(runID string) ([]experiment.Record, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketExperiments + "/" + runID)
	if err != nil {
		return nil, err
	}
	return decodeRecords(values)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}

// put 이전 run 범위 삭제와 새 값 쓰기를 한 배치로 커밋
func (s *pebbleStore) put(ns string, values [][]byte) error {
	prefix := runPrefix(ns)
	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
		return errors.Wrapf(err, "pebble delete range %s", ns)
	}
	for i, v := range values {
		if err := batch.Set(seqKey(ns, i), v, nil); err != nil {
			return errors.Wrapf(err, "pebble set %s", ns)
		}
	}
	return errors.Wrapf(batch.Commit(pebble.Sync), "pebble commit %s", ns)
}

func (s *pebbleStore) scan(ns string) ([][]byte, error) {
	prefix := runPrefix(ns)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return nil, errors.Wrapf(err, "pebble iter %s", ns)
	}

	var values [][]byte
	for it.First(); it.Valid(); it.Next() {
		values = append(values, append([]byte(nil), it.Value()...))
	}
	if err := it.Close(); err != nil {
		return nil, errors.Wrapf(err, "pebble scan %s", ns)
	}
	if len(values) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s", ns)
	}
	return values, nil
}
