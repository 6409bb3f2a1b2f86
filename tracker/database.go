package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const initDatabase = `
CREATE TABLE IF NOT EXISTS temperature (date datetime not null, source text not null, temperature double not null);
CREATE TABLE IF NOT EXISTS satellite (date datetime not null, prn integer not null, strength double, azimuth double, elevation double);
CREATE TABLE IF NOT EXISTS timing (date datetime not null, gps_time datetime not null, offset_ns integer not null, flags integer not null);
CREATE TABLE IF NOT EXISTS packet (date datetime not null, id text not null, count integer not null);
`

type DB struct {
	*sql.DB
}

func OpenDatabase(filename string) (*DB, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filename, err)
	}
	// An in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(initDatabase); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) exec(table, query string, args ...interface{}) error {
	s, err := db.Prepare(query)
	if err != nil {
		dbErrors.WithLabelValues(table).Inc()
		return err
	}
	defer s.Close()
	if _, err := s.Exec(args...); err != nil {
		dbErrors.WithLabelValues(table).Inc()
		return err
	}
	dbWrites.WithLabelValues(table).Inc()
	return nil
}

func (db *DB) RecordTemperature(source string, temperature float64) error {
	return db.exec("temperature", "insert into temperature values(?, ?, ?)", time.Now(), source, temperature)
}

func (db *DB) RecordSatelliteStatus(prn int, strength, azimuth, elevation float32) error {
	return db.exec("satellite", "insert into satellite values(?, ?, ?, ?, ?)", time.Now(), prn, strength, azimuth, elevation)
}

// RecordTiming records the time reported by the receiver, and how far the local clock was from it
// when the report arrived.
func (db *DB) RecordTiming(gpsTime time.Time, offset time.Duration, flags uint8) error {
	return db.exec("timing", "insert into timing values(?, ?, ?, ?)", time.Now(), gpsTime, offset.Nanoseconds(), flags)
}

// RecordPacketCounts records how many packets of each type have been seen since the last call.
func (db *DB) RecordPacketCounts(counts map[string]int) error {
	now := time.Now()
	for id, n := range counts {
		if err := db.exec("packet", "insert into packet values(?, ?, ?)", now, id, n); err != nil {
			return fmt.Errorf("record count for %s: %w", id, err)
		}
	}
	return nil
}

func (db *DB) single(query string, args ...interface{}) (int, error) {
	s, err := db.Prepare(query)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	rows, err := s.Query(args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var result int
	var found bool
	for rows.Next() {
		if found {
			return 0, errors.New("more than one row returned!")
		}
		if err := rows.Scan(&result); err != nil {
			return 0, err
		}
		found = true
	}
	return result, rows.Err()
}
