package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Custom sign dictionary entries, layered over the built-in
		// per-language tables at engine initialization.
		`CREATE TABLE IF NOT EXISTS signs (
			id TEXT PRIMARY KEY,
			language TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('alphabet', 'word', 'phrase', 'dynamic')),
			base_confidence REAL NOT NULL DEFAULT 0.7,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(language, key)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_signs_language ON signs(language)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
