package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upSeedDemoCorpus, downSeedDemoCorpus)
}

// Seeds the same demo corpus served by the in-memory source so the postgres
// backend is usable out of the box.
func upSeedDemoCorpus(tx *sql.Tx) error {
	seed := [][2]string{
		{"doc-001", "Getting started with searchd"},
		{"doc-002", "Debouncing keystroke streams"},
		{"doc-003", "Cancellation and stale results"},
		{"doc-004", "Configuring the redis backend"},
		{"doc-005", "Configuring the postgres backend"},
		{"doc-006", "Session lifecycle"},
		{"doc-007", "Server-sent events"},
		{"doc-008", "John Backus and FORTRAN"},
		{"doc-009", "Kepler's laws of planetary motion"},
		{"doc-010", "Pagination"},
		{"doc-011", "Caching and request coalescing"},
		{"doc-012", "Error taxonomy"},
	}

	for _, row := range seed {
		_, err := tx.Exec(
			`INSERT INTO document (id, title) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			row[0], row[1],
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func downSeedDemoCorpus(tx *sql.Tx) error {
	_, err := tx.Exec(`DELETE FROM document WHERE id LIKE 'doc-%'`)
	return err
}
