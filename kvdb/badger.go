package kvdb

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v3"

	"qsbench/experiment"
)

// badgerStore 키 공간 하나에 "<bucket>/<run id>/<seq>" 로 저장
type badgerStore struct {
	db *badger.DB
}

func openBadger(dir string) (*badgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger %s", dir)
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) SaveSearch(runID string, res experiment.SearchResult) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeSearch(res.Table)
	if err != nil {
		return err
	}
	return s.put(bucketSearch+"/"+runID, values)
}

func (s *badgerStore) SaveRecords(runID string, recs []experiment.Record) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeRecords(recs)
	if err != nil {
		return err
	}
	return s.put(bucketExperiments+"/"+runID, values)
}

func (s *badgerStore) LoadSearch(runID string) ([]experiment.MRecord, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketSearch + "/" + runID)
	if err != nil {
		return nil, err
	}
	return decodeSearch(values)
}

func (s *badgerStore) LoadRecords(runID string) ([]experiment.Record, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketExperiments + "/" + runID)
	if err != nil {
		return nil, err
	}
	return decodeRecords(values)
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

// put 이전 run 키 삭제와 새 값 쓰기를 한 트랜잭션에서 처리
func (s *badgerStore) put(ns string, values [][]byte) error {
	prefix := runPrefix(ns)
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)

		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for i, v := range values {
			if err := txn.Set(seqKey(ns, i), v); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrapf(err, "badger put %s", ns)
}

func (s *badgerStore) scan(ns string) ([][]byte, error) {
	prefix := runPrefix(ns)
	var values [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "badger scan %s", ns)
	}
	if len(values) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s", ns)
	}
	return values, nil
}
