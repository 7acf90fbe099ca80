package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"compsengine/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// GetProperty loads a single property record. A missing id surfaces as
// sql.ErrNoRows; this is the only lookup in the engine that is allowed to
// fail hard.
func (d *Database) GetProperty(id int64) (*models.Property, error) {
	query := `
        SELECT id, address, city, state, postal_code, list_price,
               bedrooms, bathrooms, living_area, year_built,
               property_type, status, latitude, longitude,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
        FROM properties
        WHERE id = ?
    `
	var p models.Property
	var postalCode, propertyType, status sql.NullString
	var listPrice, bathrooms, livingArea, latitude, longitude sql.NullFloat64
	var bedrooms, yearBuilt sql.NullInt64
	var createdAt sql.NullString

	err := d.db.QueryRow(query, id).Scan(
		&p.ID,
		&p.Address,
		&p.City,
		&p.State,
		&postalCode,
		&listPrice,
		&bedrooms,
		&bathrooms,
		&livingArea,
		&yearBuilt,
		&propertyType,
		&status,
		&latitude,
		&longitude,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if postalCode.Valid {
		p.PostalCode = postalCode.String
	}
	if propertyType.Valid {
		p.PropertyType = propertyType.String
	}
	if status.Valid {
		p.Status = status.String
	}
	applyNullFloat(&p.ListPrice, listPrice)
	applyNullFloat(&p.Bathrooms, bathrooms)
	applyNullFloat(&p.LivingArea, livingArea)
	applyNullFloat(&p.Latitude, latitude)
	applyNullFloat(&p.Longitude, longitude)
	applyNullInt(&p.Bedrooms, bedrooms)
	applyNullInt(&p.YearBuilt, yearBuilt)
	if createdAt.Valid && createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}

	return &p, nil
}

// GetLatestEnrichment returns the most recent valuation enrichment for a
// property, or nil when none has been ingested yet.
func (d *Database) GetLatestEnrichment(propertyID int64) (*models.ValuationEnrichment, error) {
	query := `
        SELECT id, property_id, estimated_value, rent_estimate,
               COALESCE(price_history, '') as price_history,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
        FROM valuation_enrichments
        WHERE property_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var e models.ValuationEnrichment
	var estimatedValue, rentEstimate sql.NullFloat64
	var createdAt sql.NullString

	err := d.db.QueryRow(query, propertyID).Scan(
		&e.ID,
		&e.PropertyID,
		&estimatedValue,
		&rentEstimate,
		&e.PriceHistory,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	applyNullFloat(&e.EstimatedValue, estimatedValue)
	applyNullFloat(&e.RentEstimate, rentEstimate)
	if createdAt.Valid && createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			e.CreatedAt = t
		}
	}

	return &e, nil
}

// FindResearchByAddress matches a research record to a subject by
// case-insensitive address equality. No match returns nil, not an error.
func (d *Database) FindResearchByAddress(address string) (*models.ResearchRecord, error) {
	query := `
        SELECT id, address, city, state,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
        FROM research_records
        WHERE LOWER(address) = LOWER(?)
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var r models.ResearchRecord
	var createdAt sql.NullString

	err := d.db.QueryRow(query, address).Scan(&r.ID, &r.Address, &r.City, &r.State, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if createdAt.Valid && createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			r.CreatedAt = t
		}
	}

	return &r, nil
}

// GetResearchCompSales returns the ranked comp sales of a research record,
// best match first. Ties break on row id so output order is reproducible.
func (d *Database) GetResearchCompSales(researchID int64, limit int) ([]models.ResearchCompSale, error) {
	query := `
        SELECT id, research_record_id, address, sale_price, sale_date,
               distance_miles, living_area, bedrooms, bathrooms, year_built,
               similarity_score, source_ref
        FROM research_comp_sales
        WHERE research_record_id = ?
        ORDER BY similarity_score DESC, id ASC
        LIMIT ?
    `
	rows, err := d.db.Query(query, researchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []models.ResearchCompSale
	for rows.Next() {
		var c models.ResearchCompSale
		var saleDate, sourceRef sql.NullString
		var distance, livingArea, bathrooms sql.NullFloat64
		var bedrooms, yearBuilt sql.NullInt64

		err := rows.Scan(
			&c.ID,
			&c.ResearchRecordID,
			&c.Address,
			&c.SalePrice,
			&saleDate,
			&distance,
			&livingArea,
			&bedrooms,
			&bathrooms,
			&yearBuilt,
			&c.SimilarityScore,
			&sourceRef,
		)
		if err != nil {
			return nil, err
		}

		applyNullString(&c.SaleDate, saleDate)
		applyNullString(&c.SourceRef, sourceRef)
		applyNullFloat(&c.DistanceMiles, distance)
		applyNullFloat(&c.LivingArea, livingArea)
		applyNullFloat(&c.Bathrooms, bathrooms)
		applyNullInt(&c.Bedrooms, bedrooms)
		applyNullInt(&c.YearBuilt, yearBuilt)

		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// GetResearchCompRentals returns the ranked comp rentals of a research
// record, best match first.
func (d *Database) GetResearchCompRentals(researchID int64, limit int) ([]models.ResearchCompRental, error) {
	query := `
        SELECT id, research_record_id, address, monthly_rent, listing_date,
               distance_miles, living_area, bedrooms, bathrooms, year_built,
               similarity_score, source_ref
        FROM research_comp_rentals
        WHERE research_record_id = ?
        ORDER BY similarity_score DESC, id ASC
        LIMIT ?
    `
	rows, err := d.db.Query(query, researchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []models.ResearchCompRental
	for rows.Next() {
		var c models.ResearchCompRental
		var listingDate, sourceRef sql.NullString
		var distance, livingArea, bathrooms sql.NullFloat64
		var bedrooms, yearBuilt sql.NullInt64

		err := rows.Scan(
			&c.ID,
			&c.ResearchRecordID,
			&c.Address,
			&c.MonthlyRent,
			&listingDate,
			&distance,
			&livingArea,
			&bedrooms,
			&bathrooms,
			&yearBuilt,
			&c.SimilarityScore,
			&sourceRef,
		)
		if err != nil {
			return nil, err
		}

		applyNullString(&c.ListingDate, listingDate)
		applyNullString(&c.SourceRef, sourceRef)
		applyNullFloat(&c.DistanceMiles, distance)
		applyNullFloat(&c.LivingArea, livingArea)
		applyNullFloat(&c.Bathrooms, bathrooms)
		applyNullInt(&c.Bedrooms, bedrooms)
		applyNullInt(&c.YearBuilt, yearBuilt)

		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// GetActiveSiblings returns other active properties in the subject's market,
// ordered by id for reproducible scans.
func (d *Database) GetActiveSiblings(city, state string, excludeID int64, limit int) ([]models.Property, error) {
	query := `
        SELECT id, address, city, state, postal_code, list_price,
               bedrooms, bathrooms, living_area, year_built,
               property_type, status, latitude, longitude,
               COALESCE(created_at, CURRENT_TIMESTAMP) as created_at
        FROM properties
        WHERE status = 'active'
        AND LOWER(city) = LOWER(?)
        AND LOWER(state) = LOWER(?)
        AND id != ?
        ORDER BY id ASC
        LIMIT ?
    `
	rows, err := d.db.Query(query, city, state, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var postalCode, propertyType, status sql.NullString
		var listPrice, bathrooms, livingArea, latitude, longitude sql.NullFloat64
		var bedrooms, yearBuilt sql.NullInt64
		var createdAt sql.NullString

		err := rows.Scan(
			&p.ID,
			&p.Address,
			&p.City,
			&p.State,
			&postalCode,
			&listPrice,
			&bedrooms,
			&bathrooms,
			&livingArea,
			&yearBuilt,
			&propertyType,
			&status,
			&latitude,
			&longitude,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if postalCode.Valid {
			p.PostalCode = postalCode.String
		}
		if propertyType.Valid {
			p.PropertyType = propertyType.String
		}
		if status.Valid {
			p.Status = status.String
		}
		applyNullFloat(&p.ListPrice, listPrice)
		applyNullFloat(&p.Bathrooms, bathrooms)
		applyNullFloat(&p.LivingArea, livingArea)
		applyNullFloat(&p.Latitude, latitude)
		applyNullFloat(&p.Longitude, longitude)
		applyNullInt(&p.Bedrooms, bedrooms)
		applyNullInt(&p.YearBuilt, yearBuilt)
		if createdAt.Valid && createdAt.String != "" {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				p.CreatedAt = t
			}
		}

		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func applyNullFloat(dst **float64, v sql.NullFloat64) {
	if v.Valid {
		f := v.Float64
		*dst = &f
	}
}

func applyNullInt(dst **int, v sql.NullInt64) {
	if v.Valid {
		i := int(v.Int64)
		*dst = &i
	}
}

func applyNullString(dst **string, v sql.NullString) {
	if v.Valid && v.String != "" {
		s := v.String
		*dst = &s
	}
}
