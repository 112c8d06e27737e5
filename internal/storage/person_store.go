package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/memoria-app/memoria/internal/core"
)

// PersonStore handles person persistence
type PersonStore struct {
	db *DB
}

// NewPersonStore creates a new person store
func NewPersonStore(db *DB) *PersonStore {
	return &PersonStore{db: db}
}

// Create creates a new person. Assigns an ID when the caller left it empty.
func (s *PersonStore) Create(p *core.Person) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.conn.Exec(`
		INSERT INTO persons (id, name, relationship, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Relationship, p.CreatedAt, p.UpdatedAt)

	return err
}

// GetByID returns a person by ID
func (s *PersonStore) GetByID(id string) (*core.Person, error) {
	p := &core.Person{}
	var relationship sql.NullString

	err := s.db.conn.QueryRow(`
		SELECT id, name, relationship, created_at, updated_at
		FROM persons WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &relationship, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, core.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Relationship = relationship.String
	return p, nil
}

// GetByName returns a person by exact name
func (s *PersonStore) GetByName(name string) (*core.Person, error) {
	p := &core.Person{}
	var relationship sql.NullString

	err := s.db.conn.QueryRow(`
		SELECT id, name, relationship, created_at, updated_at
		FROM persons WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &relationship, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, core.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Relationship = relationship.String
	return p, nil
}

// GetOrCreate finds a person by name or creates them
func (s *PersonStore) GetOrCreate(name, relationship string) (*core.Person, error) {
	p, err := s.GetByName(name)
	if err == nil {
		if relationship != "" && relationship != p.Relationship {
			p.Relationship = relationship
			if err := s.Update(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	}
	if err != core.ErrPersonNotFound {
		return nil, err
	}

	p = &core.Person{Name: name, Relationship: relationship}
	if err := s.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetAll returns all persons ordered by name
func (s *PersonStore) GetAll() ([]*core.Person, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, name, relationship, created_at, updated_at
		FROM persons
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []*core.Person
	for rows.Next() {
		p := &core.Person{}
		var relationship sql.NullString

		if err := rows.Scan(&p.ID, &p.Name, &relationship, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}

		p.Relationship = relationship.String
		persons = append(persons, p)
	}

	return persons, rows.Err()
}

// Update updates a person's mutable fields
func (s *PersonStore) Update(p *core.Person) error {
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.conn.Exec(`
		UPDATE persons SET name = ?, relationship = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Relationship, p.UpdatedAt, p.ID)

	return err
}

// Delete removes a person and, via cascade, their memories and analyses
func (s *PersonStore) Delete(id string) error {
	result, err := s.db.conn.Exec(`DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return core.ErrPersonNotFound
	}

	return nil
}
