package database

import "fmt"

func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL UNIQUE,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			postal_code TEXT,
			list_price REAL,
			bedrooms INTEGER,
			bathrooms REAL,
			living_area REAL,
			year_built INTEGER,
			property_type TEXT,
			status TEXT DEFAULT 'active',
			latitude REAL,
			longitude REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_market
			ON properties(city, state, status);`,
		`CREATE TABLE IF NOT EXISTS valuation_enrichments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id INTEGER NOT NULL REFERENCES properties(id),
			estimated_value REAL,
			rent_estimate REAL,
			price_history TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_enrichments_property
			ON valuation_enrichments(property_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS research_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL UNIQUE,
			city TEXT,
			state TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS research_comp_sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			research_record_id INTEGER NOT NULL REFERENCES research_records(id) ON DELETE CASCADE,
			address TEXT NOT NULL,
			sale_price REAL NOT NULL,
			sale_date TEXT,
			distance_miles REAL,
			living_area REAL,
			bedrooms INTEGER,
			bathrooms REAL,
			year_built INTEGER,
			similarity_score REAL NOT NULL,
			source_ref TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comp_sales_record
			ON research_comp_sales(research_record_id, similarity_score);`,
		`CREATE TABLE IF NOT EXISTS research_comp_rentals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			research_record_id INTEGER NOT NULL REFERENCES research_records(id) ON DELETE CASCADE,
			address TEXT NOT NULL,
			monthly_rent REAL NOT NULL,
			listing_date TEXT,
			distance_miles REAL,
			living_area REAL,
			bedrooms INTEGER,
			bathrooms REAL,
			year_built INTEGER,
			similarity_score REAL NOT NULL,
			source_ref TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comp_rentals_record
			ON research_comp_rentals(research_record_id, similarity_score);`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
