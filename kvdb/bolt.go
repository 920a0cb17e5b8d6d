package kvdb

import (
	"bytes"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"

	"qsbench/experiment"
)

type boltStore struct {
	db *bbolt.DB
}

func openBolt(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketExperiments, bucketSearch} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create buckets")
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) SaveSearch(runID string, res experiment.SearchResult) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeSearch(res.Table)
	if err != nil {
		return err
	}
	return s.put(bucketSearch, runID, values)
}

func (s *boltStore) SaveRecords(runID string, recs []experiment.Record) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	values, err := encodeRecords(recs)
	if err != nil {
		return err
	}
	return s.put(bucketExperiments, runID, values)
}

func (s *boltStore) LoadSearch(runID string) ([]experiment.MRecord, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketSearch, runID)
	if err != nil {
		return nil, err
	}
	return decodeSearch(values)
}

func (s *boltStore) LoadRecords(runID string) ([]experiment.Record, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	values, err := s.scan(bucketExperiments, runID)
	if err != nil {
		return nil, err
	}
	return decodeRecords(values)
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

// put 기존 run 키를 지우고 한 트랜잭션에서 다시 쓴다
func (s *boltStore) put(bucket, runID string, values [][]byte) error {
	prefix := runPrefix(runID)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))

		var stale [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		for i, v := range values {
			if err := b.Put(seqKey(runID, i), v); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrapf(err, "bbolt put %s/%s", bucket, runID)
}

func (s *boltStore) scan(bucket, runID string) ([][]byte, error) {
	prefix := runPrefix(runID)
	var values [][]byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucket)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// bbolt 값은 트랜잭션 밖에서 쓸 수 없으므로 복사
			values = append(values, append([]byte(nil), v...))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bbolt scan %s/%s", bucket, runID)
	}
	if len(values) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s/%s", bucket, runID)
	}
	return values, nil
}
