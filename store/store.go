// Package store keeps a SQLite log of tracking sessions, the per frame
// statistics of each session and every bounding box found.
package store

import (
	"database/sql"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/swdee/go-vehicletrack/tracker"
	_ "modernc.org/sqlite"
)

const schema = `
	PRAGMA foreign_keys = ON;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id        TEXT PRIMARY KEY,
		source            TEXT NOT NULL,
		width             INTEGER NOT NULL,
		height            INTEGER NOT NULL,
		fps               DOUBLE NOT NULL,
		started_ns        BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS frames (
		session_id        TEXT NOT NULL,
		frame_index       INTEGER NOT NULL,
		matches           INTEGER NOT NULL,
		components        INTEGER NOT NULL,
		drawn             INTEGER NOT NULL,
		min_heat          DOUBLE NOT NULL,
		max_heat          DOUBLE NOT NULL,
		PRIMARY KEY (session_id, frame_index),
		FOREIGN KEY(session_id) REFERENCES sessions(session_id)
	);
	CREATE TABLE IF NOT EXISTS boxes (
		session_id        TEXT NOT NULL,
		frame_index       INTEGER NOT NULL,
		label             INTEGER NOT NULL,
		min_x             INTEGER NOT NULL,
		min_y             INTEGER NOT NULL,
		max_x             INTEGER NOT NULL,
		max_y             INTEGER NOT NULL,
		area              INTEGER NOT NULL,
		drawn             BOOLEAN NOT NULL,
		FOREIGN KEY(session_id, frame_index) REFERENCES frames(session_id, frame_index)
	);
`

// Session describes one run of the tracker over a video
type Session struct {
	ID        string
	Source    string
	Size      image.Point
	FPS       float64
	StartedAt time.Time
}

// FrameStat is the recorded summary of one processed frame
type FrameStat struct {
	Index      int
	Matches    int
	Components int
	Drawn      int
	MinHeat    float64
	MaxHeat    float64
}

// BoxRecord is a recorded bounding box
type BoxRecord struct {
	Frame int
	Label int
	image.Rectangle
	Area  int
	Drawn bool
}

// Store is the session log database
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path
func Open(path string) (*Store, error) {

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, errors.Wrapf(err, "error opening database %s", path)
	}

	// a single connection keeps the pragma and in memory databases consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating schema")
	}

	return &Store{db: db}, nil
}

// StartSession records a new session and returns it with a fresh id
func (s *Store) StartSession(source string, size image.Point, fps float64) (*Session, error) {

	sess := &Session{
		ID:        uuid.New().String(),
		Source:    source,
		Size:      size,
		FPS:       fps,
		StartedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, source, width, height, fps, started_ns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Source, size.X, size.Y, fps, sess.StartedAt.UnixNano())

	if err != nil {
		return nil, errors.Wrap(err, "insert session")
	}

	return sess, nil
}

// Session returns the session with the given id
func (s *Store) Session(id string) (*Session, error) {

	row := s.db.QueryRow(`
		SELECT session_id, source, width, height, fps, started_ns
		FROM sessions WHERE session_id = ?`, id)

	sess, err := scanSession(row)

	if err == sql.ErrNoRows {
		return nil, errors.Errorf("session %s not found", id)
	}

	return sess, err
}

// Sessions returns every session, newest first
func (s *Store) Sessions() ([]*Session, error) {

	rows, err := s.db.Query(`
		SELECT session_id, source, width, height, fps, started_ns
		FROM sessions ORDER BY started_ns DESC`)

	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}

	defer rows.Close()

	var out []*Session

	for rows.Next() {
		sess, err := scanSession(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, sess)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*Session, error) {

	var sess Session
	var started int64

	err := row.Scan(&sess.ID, &sess.Source, &sess.Size.X, &sess.Size.Y, &sess.FPS, &started)

	if err != nil {
		return nil, err
	}

	sess.StartedAt = time.Unix(0, started)

	return &sess, nil
}

// RecordFrame stores the statistics and boxes of a processed frame
func (s *Store) RecordFrame(sessionID string, res *tracker.Frame) error {

	tx, err := s.db.Begin()

	if err != nil {
		return errors.Wrap(err, "begin frame")
	}

	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO frames (session_id, frame_index, matches, components, drawn, min_heat, max_heat)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, res.Index, len(res.Matches), len(res.Boxes), len(res.Drawn),
		float64(res.MinHeat), float64(res.MaxHeat))

	if err != nil {
		return errors.Wrapf(err, "insert frame %d", res.Index)
	}

	drawn := make(map[int]bool, len(res.Drawn))

	for _, b := range res.Drawn {
		drawn[b.Label] = true
	}

	for _, b := range res.Boxes {
		_, err = tx.Exec(`
			INSERT INTO boxes (session_id, frame_index, label, min_x, min_y, max_x, max_y, area, drawn)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, res.Index, b.Label, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, b.Area, drawn[b.Label])

		if err != nil {
			return errors.Wrapf(err, "insert box %d of frame %d", b.Label, res.Index)
		}
	}

	return errors.Wrap(tx.Commit(), "commit frame")
}

// FrameStats returns the recorded frames of a session in frame order
func (s *Store) FrameStats(sessionID string) ([]FrameStat, error) {

	rows, err := s.db.Query(`
		SELECT frame_index, matches, components, drawn, min_heat, max_heat
		FROM frames WHERE session_id = ?
		ORDER BY frame_index`, sessionID)

	if err != nil {
		return nil, errors.Wrap(err, "list frames")
	}

	defer rows.Close()

	var out []FrameStat

	for rows.Next() {
		var f FrameStat

		if err := rows.Scan(&f.Index, &f.Matches, &f.Components, &f.Drawn,
			&f.MinHeat, &f.MaxHeat); err != nil {
			return nil, errors.Wrap(err, "scan frame")
		}

		out = append(out, f)
	}

	return out, rows.Err()
}

// Boxes returns the boxes recorded for one frame of a session ordered by
// label
func (s *Store) Boxes(sessionID string, frame int) ([]BoxRecord, error) {

	rows, err := s.db.Query(`
		SELECT frame_index, label, min_x, min_y, max_x, max_y, area, drawn
		FROM boxes WHERE session_id = ? AND frame_index = ?
		ORDER BY label`, sessionID, frame)

	if err != nil {
		return nil, errors.Wrap(err, "list boxes")
	}

	defer rows.Close()

	var out []BoxRecord

	for rows.Next() {
		var b BoxRecord

		if err := rows.Scan(&b.Frame, &b.Label, &b.Min.X, &b.Min.Y, &b.Max.X,
			&b.Max.Y, &b.Area, &b.Drawn); err != nil {
			return nil, errors.Wrap(err, "scan box")
		}

		out = append(out, b)
	}

	return out, rows.Err()
}

// Close the database
func (s *Store) Close() error {
	return s.db.Close()
}
