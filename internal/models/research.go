package models

import "time"

// ResearchRecord is one deep-research run, matched to a subject property by
// case-insensitive address equality.
type ResearchRecord struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey"`
	Address   string    `json:"address" gorm:"column:address"`
	City      string    `json:"city" gorm:"column:city"`
	State     string    `json:"state" gorm:"column:state"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ResearchRecord) TableName() string { return "research_records" }

// ResearchCompSale is a ranked comparable sale delivered by the research
// pipeline. Dates are stored as YYYY-MM-DD text, the research provider's
// native format.
type ResearchCompSale struct {
	ID               int64    `json:"id" gorm:"column:id;primaryKey"`
	ResearchRecordID int64    `json:"research_record_id" gorm:"column:research_record_id"`
	Address          string   `json:"address" gorm:"column:address"`
	SalePrice        float64  `json:"sale_price" gorm:"column:sale_price"`
	SaleDate         *string  `json:"sale_date" gorm:"column:sale_date"`
	DistanceMiles    *float64 `json:"distance_miles" gorm:"column:distance_miles"`
	LivingArea       *float64 `json:"living_area" gorm:"column:living_area"`
	Bedrooms         *int     `json:"bedrooms" gorm:"column:bedrooms"`
	Bathrooms        *float64 `json:"bathrooms" gorm:"column:bathrooms"`
	YearBuilt        *int     `json:"year_built" gorm:"column:year_built"`
	SimilarityScore  float64  `json:"similarity_score" gorm:"column:similarity_score"`
	SourceRef        *string  `json:"source_ref" gorm:"column:source_ref"`
}

func (ResearchCompSale) TableName() string { return "research_comp_sales" }

// ResearchCompRental is the rental counterpart of ResearchCompSale.
type ResearchCompRental struct {
	ID               int64    `json:"id" gorm:"column:id;primaryKey"`
	ResearchRecordID int64    `json:"research_record_id" gorm:"column:research_record_id"`
	Address          string   `json:"address" gorm:"column:address"`
	MonthlyRent      float64  `json:"monthly_rent" gorm:"column:monthly_rent"`
	ListingDate      *string  `json:"listing_date" gorm:"column:listing_date"`
	DistanceMiles    *float64 `json:"distance_miles" gorm:"column:distance_miles"`
	LivingArea       *float64 `json:"living_area" gorm:"column:living_area"`
	Bedrooms         *int     `json:"bedrooms" gorm:"column:bedrooms"`
	Bathrooms        *float64 `json:"bathrooms" gorm:"column:bathrooms"`
	YearBuilt        *int     `json:"year_built" gorm:"column:year_built"`
	SimilarityScore  float64  `json:"similarity_score" gorm:"column:similarity_score"`
	SourceRef        *string  `json:"source_ref" gorm:"column:source_ref"`
}

func (ResearchCompRental) TableName() string { return "research_comp_rentals" }

// IngestBatch is the unit of work for the ingest queue. Exactly one of the
// fields is set per batch.
type IngestBatch struct {
	Properties []*Property
	Research   *ResearchBatch
}

// ResearchBatch is a research record plus its ranked comp rows, written
// atomically.
type ResearchBatch struct {
	Record  ResearchRecord
	Sales   []ResearchCompSale
	Rentals []ResearchCompRental
}
