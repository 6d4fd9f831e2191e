package database

import (
	"database/sql"
	"fmt"

	"github.com/listingdeck/listingdeck/internal/database/schema"
)

// InitializeDatabase creates the tables the brochure service reads from
func InitializeDatabase(db *sql.DB) error {
	for i, query := range schema.TableDefinitions {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to run schema statement %d: %w", i, err)
		}
	}
	return nil
}
