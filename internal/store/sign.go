package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// CustomSign represents a user-defined dictionary entry stored in the
// database. At engine initialization all entries for a language are
// layered over that language's built-in dictionary table.
type CustomSign struct {
	ID             string
	Language       string
	Key            string
	Value          string
	Type           string
	BaseConfidence float64
	CreatedAt      time.Time
}

// SignRepository provides CRUD operations for custom sign entries.
type SignRepository struct {
	db *sql.DB
}

// Signs returns the sign repository for this store.
func (s *Store) Signs() *SignRepository {
	return &SignRepository{db: s.db}
}

// Create inserts a new custom sign into the database.
func (r *SignRepository) Create(cs *CustomSign) error {
	cs.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO signs (id, language, key, value, type, base_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.Language, cs.Key, cs.Value, cs.Type, cs.BaseConfidence, cs.CreatedAt,
	)
	return err
}

// GetByID retrieves a custom sign by its ID.
func (r *SignRepository) GetByID(id string) (*CustomSign, error) {
	cs := &CustomSign{}

	err := r.db.QueryRow(
		`SELECT id, language, key, value, type, base_confidence, created_at
		 FROM signs WHERE id = ?`,
		id,
	).Scan(&cs.ID, &cs.Language, &cs.Key, &cs.Value, &cs.Type, &cs.BaseConfidence, &cs.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return cs, nil
}

// ListByLanguage retrieves all custom signs for a language.
func (r *SignRepository) ListByLanguage(language string) ([]*CustomSign, error) {
	rows, err := r.db.Query(
		`SELECT id, language, key, value, type, base_confidence, created_at
		 FROM signs WHERE language = ? ORDER BY key`,
		language,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signs []*CustomSign
	for rows.Next() {
		cs := &CustomSign{}
		err := rows.Scan(&cs.ID, &cs.Language, &cs.Key, &cs.Value, &cs.Type, &cs.BaseConfidence, &cs.CreatedAt)
		if err != nil {
			return nil, err
		}
		signs = append(signs, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signs, nil
}

// Delete removes a custom sign from the database by its ID.
func (r *SignRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM signs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
