package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/memoria-app/memoria/internal/core"
)

// AnalysisStore persists analysis results as JSON blobs, latest wins
type AnalysisStore struct {
	db *DB
}

// NewAnalysisStore creates a new analysis store
func NewAnalysisStore(db *DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Save stores a new analysis for a person
func (s *AnalysisStore) Save(personID string, result *core.AnalysisResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO analyses (id, person_id, result_json, created_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), personID, string(blob), time.Now().UTC())

	return err
}

// GetLatest returns the most recent analysis for a person
func (s *AnalysisStore) GetLatest(personID string) (*core.AnalysisResult, error) {
	var blob string

	err := s.db.conn.QueryRow(`
		SELECT result_json FROM analyses
		WHERE person_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, personID).Scan(&blob)

	if err == sql.ErrNoRows {
		return nil, core.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}

	return &result, nil
}
