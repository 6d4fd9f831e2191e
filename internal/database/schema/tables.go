// Package schema holds the table definitions of the brochure database.
//
// The statements are idempotent and run at startup. Listing data is owned by
// the listing platform; these definitions match the columns it exposes.
package schema

// TableDefinitions contains the statements creating the tables read by the
// repositories. REFERENCES and CHECK constraints are left out on purpose so
// the tables can be created in any order.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS agencies (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		logo_url TEXT,
		email VARCHAR(255),
		phone VARCHAR(64),
		website TEXT,
		address TEXT,
		brochure_settings TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS agents (
		id VARCHAR(64) PRIMARY KEY,
		agency_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(64),
		photo_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(64) PRIMARY KEY,
		agency_id VARCHAR(64) NOT NULL,
		agent_id VARCHAR(64),
		title VARCHAR(255) NOT NULL,
		address TEXT,
		price NUMERIC(14, 2),
		description TEXT,
		build_year INTEGER,
		lot_size INTEGER,
		internal_area INTEGER,
		living_area INTEGER,
		bedrooms INTEGER,
		bathrooms INTEGER,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		images TEXT[] NOT NULL DEFAULT '{}',
		features JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_agency_id ON properties (agency_id)`,
	`CREATE INDEX IF NOT EXISTS idx_agents_agency_id ON agents (agency_id)`,
}
