package kvdb

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"

	"qsbench/experiment"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS experiments (
	run_id           TEXT    NOT NULL,
	seq              INTEGER NOT NULL,
	n                INTEGER NOT NULL,
	mass             TEXT    NOT NULL,
	algo             TEXT    NOT NULL,
	mean_time        REAL    NOT NULL,
	std_time         REAL    NOT NULL,
	mean_comparisons REAL    NOT NULL,
	mean_swaps       REAL    NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE TABLE IF NOT EXISTS msearch (
	run_id    TEXT    NOT NULL,
	seq       INTEGER NOT NULL,
	m         INTEGER NOT NULL,
	mean_time REAL    NOT NULL,
	std_time  REAL    NOT NULL,
	PRIMARY KEY (run_id, seq)
);`

// sqliteStore KV 백엔드와 달리 컬럼으로 저장해서 SQL로 바로 조회할 수 있다
type sqliteStore struct {
	db *sql.DB
}

func openSQLite(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create sqlite schema")
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SaveSearch(runID string, res experiment.SearchResult) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM msearch WHERE run_id = ?`, runID); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT INTO msearch (run_id, seq, m, mean_time, std_time) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, r := range res.Table {
			if _, err := stmt.Exec(runID, i, r.M, r.MeanTime, r.StdTime); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) SaveRecords(runID string, recs []experiment.Record) error {
	if err := ValidRunID(runID); err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM experiments WHERE run_id = ?`, runID); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT INTO experiments
			(run_id, seq, n, mass, algo, mean_time, std_time, mean_comparisons, mean_swaps)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, r := range recs {
			if _, err := stmt.Exec(runID, i, r.N, r.Mass, r.Algo, r.MeanTime, r.StdTime, r.MeanComparisons, r.MeanSwaps); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) LoadSearch(runID string) ([]experiment.MRecord, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT m, mean_time, std_time FROM msearch WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite query msearch/%s", runID)
	}
	defer rows.Close()

	var out []experiment.MRecord
	for rows.Next() {
		var r experiment.MRecord
		if err := rows.Scan(&r.M, &r.MeanTime, &r.StdTime); err != nil {
			return nil, errors.Wrap(err, "sqlite scan msearch")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite rows msearch")
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s/%s", bucketSearch, runID)
	}
	return out, nil
}

func (s *sqliteStore) LoadRecords(runID string) ([]experiment.Record, error) {
	if err := ValidRunID(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT n, mass, algo, mean_time, std_time, mean_comparisons, mean_swaps
		FROM experiments WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite query experiments/%s", runID)
	}
	defer rows.Close()

	var out []experiment.Record
	for rows.Next() {
		var r experiment.Record
		if err := rows.Scan(&r.N, &r.Mass, &r.Algo, &r.MeanTime, &r.StdTime, &r.MeanComparisons, &r.MeanSwaps); err != nil {
			return nil, errors.Wrap(err, "sqlite scan experiments")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite rows experiments")
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s/%s", bucketExperiments, runID)
	}
	return out, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "sqlite begin")
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "sqlite write")
	}
	return errors.Wrap(tx.Commit(), "sqlite commit")
}
