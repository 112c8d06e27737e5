package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/memoria-app/memoria/internal/core"
)

// MemoryStore handles memory persistence
type MemoryStore struct {
	db *DB
}

// NewMemoryStore creates a new memory store
func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// Create persists one memory
func (s *MemoryStore) Create(m *core.MemoryRecord) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.Exec(`
		INSERT INTO memories (id, person_id, content, embedding_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.PersonID, m.Content, m.EmbeddingID, m.CreatedAt)

	return err
}

// ReplaceForPerson swaps a person's memories for a fresh extraction.
// Runs in one transaction so a failed insert leaves the old set intact.
func (s *MemoryStore) ReplaceForPerson(personID string, contents []string) ([]*core.MemoryRecord, error) {
	now := time.Now().UTC()
	records := make([]*core.MemoryRecord, 0, len(contents))

	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM memories WHERE person_id = ?`, personID); err != nil {
			return err
		}
		for _, content := range contents {
			m := &core.MemoryRecord{
				ID:        uuid.New().String(),
				PersonID:  personID,
				Content:   content,
				CreatedAt: now,
			}
			if _, err := tx.Exec(`
				INSERT INTO memories (id, person_id, content, embedding_id, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, m.ID, m.PersonID, m.Content, m.EmbeddingID, m.CreatedAt); err != nil {
				return err
			}
			records = append(records, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetByID returns a memory by ID
func (s *MemoryStore) GetByID(id string) (*core.MemoryRecord, error) {
	m := &core.MemoryRecord{}
	var embeddingID sql.NullString

	err := s.db.conn.QueryRow(`
		SELECT id, person_id, content, embedding_id, created_at
		FROM memories WHERE id = ?
	`, id).Scan(&m.ID, &m.PersonID, &m.Content, &embeddingID, &m.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, core.ErrMemoryNotFound
	}
	if err != nil {
		return nil, err
	}

	m.EmbeddingID = embeddingID.String
	return m, nil
}

// GetByPerson returns a person's memories in insertion order
func (s *MemoryStore) GetByPerson(personID string) ([]*core.MemoryRecord, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, person_id, content, embedding_id, created_at
		FROM memories
		WHERE person_id = ?
		ORDER BY rowid ASC
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

// Search does a case-insensitive substring search over memory content.
// This is the fallback path when no vector index is available.
func (s *MemoryStore) Search(query string, limit int) ([]*core.MemoryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.conn.Query(`
		SELECT id, person_id, content, embedding_id, created_at
		FROM memories
		WHERE content LIKE '%' || ? || '%'
		ORDER BY created_at DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

// EmbeddingIDsForPerson returns the vector point IDs linked to a person's
// memories. Callers use it to purge points before the rows go away;
// unindexed memories are skipped.
func (s *MemoryStore) EmbeddingIDsForPerson(personID string) ([]string, error) {
	rows, err := s.db.conn.Query(`
		SELECT embedding_id
		FROM memories
		WHERE person_id = ? AND embedding_id IS NOT NULL AND embedding_id != ''
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetEmbeddingID links a memory to its vector point
func (s *MemoryStore) SetEmbeddingID(id, embeddingID string) error {
	_, err := s.db.conn.Exec(`UPDATE memories SET embedding_id = ? WHERE id = ?`, embeddingID, id)
	return err
}

func scanMemories(rows *sql.Rows) ([]*core.MemoryRecord, error) {
	var memories []*core.MemoryRecord
	for rows.Next() {
		m := &core.MemoryRecord{}
		var embeddingID sql.NullString

		if err := rows.Scan(&m.ID, &m.PersonID, &m.Content, &embeddingID, &m.CreatedAt); err != nil {
			return nil, err
		}

		m.EmbeddingID = embeddingID.String
		memories = append(memories, m)
	}

	return memories, rows.Err()
}
