// Package store persists scanned channels and collected EIT events to a
// local SQLite database, so save-xmltv and serve can run against the last
// scan/collect pass without re-tuning.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	service_id        INTEGER PRIMARY KEY,
	name              TEXT NOT NULL,
	frequency         INTEGER NOT NULL,
	inversion         TEXT NOT NULL,
	bandwidth         TEXT NOT NULL,
	fec_hp            TEXT NOT NULL,
	fec_lp            TEXT NOT NULL,
	modulation        TEXT NOT NULL,
	transmission_mode TEXT NOT NULL,
	guard_interval    TEXT NOT NULL,
	hierarchy         TEXT NOT NULL,
	video_pid         INTEGER NOT NULL,
	audio_pid         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS eit_events (
	service_id     INTEGER NOT NULL,
	event_id       INTEGER NOT NULL,
	start_time     INTEGER NOT NULL,
	duration       INTEGER NOT NULL,
	running_status INTEGER NOT NULL,
	event_name     TEXT NOT NULL,
	description    TEXT NOT NULL,
	language       TEXT NOT NULL,
	PRIMARY KEY (service_id, event_id)
);
`

// Store owns one SQLite-backed database connection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceChannels clears and repopulates the channels table from a fresh
// scan pass.
func (s *Store) ReplaceChannels(channels []dvbt.Channel) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM channels`); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: clear channels: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO channels (
		service_id, name, frequency, inversion, bandwidth, fec_hp, fec_lp,
		modulation, transmission_mode, guard_interval, hierarchy, video_pid, audio_pid
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, ch := range channels {
		if _, err := stmt.Exec(
			ch.ServiceID, ch.Name, ch.Frequency, ch.Inversion, ch.Bandwidth,
			ch.FECHP, ch.FECLP, ch.Modulation, ch.TransmissionMode,
			ch.GuardInterval, ch.Hierarchy, ch.VideoPID, ch.AudioPID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: insert channel %d: %w", ch.ServiceID, err)
		}
	}
	return tx.Commit()
}

// Channels returns every stored channel.
func (s *Store) Channels() ([]dvbt.Channel, error) {
	rows, err := s.db.Query(`SELECT service_id, name, frequency, inversion, bandwidth,
		fec_hp, fec_lp, modulation, transmission_mode, guard_interval, hierarchy,
		video_pid, audio_pid FROM channels ORDER BY service_id`)
	if err != nil {
		return nil, fmt.Errorf("store: query channels: %w", err)
	}
	defer rows.Close()

	var out []dvbt.Channel
	for rows.Next() {
		var ch dvbt.Channel
		if err := rows.Scan(&ch.ServiceID, &ch.Name, &ch.Frequency, &ch.Inversion,
			&ch.Bandwidth, &ch.FECHP, &ch.FECLP, &ch.Modulation, &ch.TransmissionMode,
			&ch.GuardInterval, &ch.Hierarchy, &ch.VideoPID, &ch.AudioPID); err != nil {
			return nil, fmt.Errorf("store: scan channel: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// UpsertEvents inserts or replaces EIT events keyed by (service_id, event_id).
func (s *Store) UpsertEvents(events []dvbt.EitEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO eit_events (
		service_id, event_id, start_time, duration, running_status, event_name, description, language
	) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, ev := range events {
		if _, err := stmt.Exec(ev.ServiceID, ev.EventID, ev.StartTime, ev.Duration,
			ev.RunningStatus, ev.EventName, ev.Description, ev.Language); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: insert event service=%d event=%d: %w", ev.ServiceID, ev.EventID, err)
		}
	}
	return tx.Commit()
}

// Events returns every stored EIT event, ordered by start_time.
func (s *Store) Events() ([]dvbt.EitEvent, error) {
	rows, err := s.db.Query(`SELECT service_id, event_id, start_time, duration,
		running_status, event_name, description, language
		FROM eit_events ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("store: query events: %w", err)
	}
	defer rows.Close()

	var out []dvbt.EitEvent
	for rows.Next() {
		var ev dvbt.EitEvent
		if err := rows.Scan(&ev.ServiceID, &ev.EventID, &ev.StartTime, &ev.Duration,
			&ev.RunningStatus, &ev.EventName, &ev.Description, &ev.Language); err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
