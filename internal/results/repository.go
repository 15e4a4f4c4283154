// Package results persists pipeline run records: circuit metadata, stage
// timings, reconstruction fidelities, and the recombined distribution
// itself (stored as a msgpack blob).
package results

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is one pipeline run.
type Record struct {
	ID           string
	CircuitLabel string
	NumQubits    int
	NumFragments int
	Repetitions  int

	FullFidelity   float64
	DirectFidelity float64
	LikelyFidelity float64

	CuttingSeconds    float64
	TomographySeconds float64
	BuildSeconds      float64
	CorrectionSeconds float64
	RecombineSeconds  float64

	Distribution map[string]float64
	CreatedAt    time.Time
}

// Repository provides storage for run records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new run-result repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the runs table if it does not exist.
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			circuit_label TEXT NOT NULL,
			num_qubits INTEGER NOT NULL,
			num_fragments INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			full_fidelity REAL NOT NULL,
			direct_fidelity REAL NOT NULL,
			likely_fidelity REAL NOT NULL,
			cutting_seconds REAL NOT NULL,
			tomography_seconds REAL NOT NULL,
			build_seconds REAL NOT NULL,
			correction_seconds REAL NOT NULL,
			recombine_seconds REAL NOT NULL,
			distribution BLOB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Save stores a run record, assigning an ID and timestamp if unset.
func (r *Repository) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	blob, err := msgpack.Marshal(rec.Distribution)
	if err != nil {
		return fmt.Errorf("failed to encode distribution: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO runs (
			id, circuit_label, num_qubits, num_fragments, repetitions,
			full_fidelity, direct_fidelity, likely_fidelity,
			cutting_seconds, tomography_seconds, build_seconds,
			correction_seconds, recombine_seconds, distribution, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CircuitLabel, rec.NumQubits, rec.NumFragments, rec.Repetitions,
		rec.FullFidelity, rec.DirectFidelity, rec.LikelyFidelity,
		rec.CuttingSeconds, rec.TomographySeconds, rec.BuildSeconds,
		rec.CorrectionSeconds, rec.RecombineSeconds, blob, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a run record by ID.
func (r *Repository) Get(id string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT id, circuit_label, num_qubits, num_fragments, repetitions,
			full_fidelity, direct_fidelity, likely_fidelity,
			cutting_seconds, tomography_seconds, build_seconds,
			correction_seconds, recombine_seconds, distribution, created_at
		FROM runs WHERE id = ?`, id)

	var rec Record
	var blob []byte
	err := row.Scan(
		&rec.ID, &rec.CircuitLabel, &rec.NumQubits, &rec.NumFragments, &rec.Repetitions,
		&rec.FullFidelity, &rec.DirectFidelity, &rec.LikelyFidelity,
		&rec.CuttingSeconds, &rec.TomographySeconds, &rec.BuildSeconds,
		&rec.CorrectionSeconds, &rec.RecombineSeconds, &blob, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	if len(blob) > 0 {
		if err := msgpack.Unmarshal(blob, &rec.Distribution); err != nil {
			return nil, fmt.Errorf("failed to decode distribution for run %s: %w", id, err)
		}
	}
	return &rec, nil
}

// List returns the most recent runs, newest first.
func (r *Repository) List(limit int) ([]*Record, error) {
	rows, err := r.db.Query(`
		SELECT id, circuit_label, num_qubits, num_fragments, repetitions,
			full_fidelity, direct_fidelity, likely_fidelity,
			cutting_seconds, tomography_seconds, build_seconds,
			correction_seconds, recombine_seconds, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.CircuitLabel, &rec.NumQubits, &rec.NumFragments, &rec.Repetitions,
			&rec.FullFidelity, &rec.DirectFidelity, &rec.LikelyFidelity,
			&rec.CuttingSeconds, &rec.TomographySeconds, &rec.BuildSeconds,
			&rec.CorrectionSeconds, &rec.RecombineSeconds, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
