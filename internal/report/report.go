// Package report persists planning runs to a local SQLite database so
// constellation studies can be compared offline without re-running the
// planner.
package report

import (
	"database/sql"
	"fmt"
	"net/netip"
	"time"

	_ "modernc.org/sqlite"

	"github.com/signalsfoundry/isl-mesh/core"
)

// Store wraps a SQLite database holding run records.
type Store struct {
	sql *sql.DB
}

// RunSummary is the top-level record of one planning run.
type RunSummary struct {
	RunID           string
	Scenario        string
	Satellites      int
	Links           int
	RoutesInstalled int
	RoutesSkipped   int
	Connectivity    float64
	CreatedAt       time.Time
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping report db: %w", err)
	}
	s := &Store{sql: sqlDB}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate report db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate() error {
	_, err := s.sql.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id           TEXT PRIMARY KEY,
			scenario         TEXT NOT NULL,
			created_at       TEXT NOT NULL,
			satellites       INTEGER NOT NULL,
			links            INTEGER NOT NULL,
			routes_installed INTEGER NOT NULL,
			routes_skipped   INTEGER NOT NULL,
			connectivity     REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS links (
			run_id     TEXT NOT NULL,
			link_index INTEGER NOT NULL,
			sat_a      INTEGER NOT NULL,
			sat_b      INTEGER NOT NULL,
			iface_a    INTEGER NOT NULL,
			iface_b    INTEGER NOT NULL,
			distance_m REAL NOT NULL,
			delay_ns   INTEGER NOT NULL,
			subnet     TEXT NOT NULL,
			PRIMARY KEY (run_id, link_index)
		);

		CREATE TABLE IF NOT EXISTS skipped_routes (
			run_id TEXT NOT NULL,
			src    INTEGER NOT NULL,
			dst    INTEGER NOT NULL,
			reason TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS delay_samples (
			run_id     TEXT NOT NULL,
			sim_time   TEXT NOT NULL,
			link_index INTEGER NOT NULL,
			distance_m REAL NOT NULL,
			delay_ns   INTEGER NOT NULL
		);
	`)
	return err
}

// RecordRun inserts the run summary row.
func (s *Store) RecordRun(run RunSummary) error {
	_, err := s.sql.Exec(`
		INSERT INTO runs (run_id, scenario, created_at, satellites, links,
			routes_installed, routes_skipped, connectivity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Scenario, run.CreatedAt.UTC().Format(time.RFC3339),
		run.Satellites, run.Links, run.RoutesInstalled, run.RoutesSkipped,
		run.Connectivity,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

// RecordLinks stores every link of the fabric with its /30 block.
func (s *Store) RecordLinks(runID string, links []core.Link, subnets []netip.Prefix) error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO links (run_id, link_index, sat_a, sat_b, iface_a, iface_b,
			distance_m, delay_ns, subnet)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, l := range links {
		subnet := ""
		if i < len(subnets) {
			subnet = subnets[i].String()
		}
		if _, err := stmt.Exec(runID, l.Index, l.A, l.B, l.IfaceA, l.IfaceB,
			l.DistanceM, l.Delay.Nanoseconds(), subnet); err != nil {
			return fmt.Errorf("record link %d: %w", l.Index, err)
		}
	}
	return tx.Commit()
}

// RecordSkips stores the pairs route installation could not serve.
func (s *Store) RecordSkips(runID string, skips []core.SkippedRoute) error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, sk := range skips {
		if _, err := tx.Exec(`
			INSERT INTO skipped_routes (run_id, src, dst, reason) VALUES (?, ?, ?, ?)`,
			runID, sk.Src, sk.Dst, string(sk.Reason)); err != nil {
			return fmt.Errorf("record skip %d->%d: %w", sk.Src, sk.Dst, err)
		}
	}
	return tx.Commit()
}

// RecordDelaySample stores one link's geometry at a simulation instant.
// Routes stay fixed after planning; delay samples track how far the
// static paths drift from the instantaneous geometry.
func (s *Store) RecordDelaySample(runID string, simTime time.Time, linkIndex int, distanceM float64, delay time.Duration) error {
	_, err := s.sql.Exec(`
		INSERT INTO delay_samples (run_id, sim_time, link_index, distance_m, delay_ns)
		VALUES (?, ?, ?, ?, ?)`,
		runID, simTime.UTC().Format(time.RFC3339Nano), linkIndex, distanceM, delay.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("record delay sample for link %d: %w", linkIndex, err)
	}
	return nil
}

// Run fetches one run summary by ID.
func (s *Store) Run(runID string) (RunSummary, error) {
	var run RunSummary
	var created string
	err := s.sql.QueryRow(`
		SELECT run_id, scenario, created_at, satellites, links,
			routes_installed, routes_skipped, connectivity
		FROM runs WHERE run_id = ?`, runID).
		Scan(&run.RunID, &run.Scenario, &created, &run.Satellites, &run.Links,
			&run.RoutesInstalled, &run.RoutesSkipped, &run.Connectivity)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return run, nil
}

// LinkCount returns how many link rows a run recorded.
func (s *Store) LinkCount(runID string) (int, error) {
	var n int
	err := s.sql.QueryRow(`SELECT COUNT(*) FROM links WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
