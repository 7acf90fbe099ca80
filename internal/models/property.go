package models

import "time"

// Property is a persisted property record. Optional columns are pointers so
// missing data stays distinguishable from zero values.
type Property struct {
	ID           int64     `json:"id" gorm:"column:id;primaryKey"`
	Address      string    `json:"address" gorm:"column:address"`
	City         string    `json:"city" gorm:"column:city"`
	State        string    `json:"state" gorm:"column:state"`
	PostalCode   string    `json:"postal_code" gorm:"column:postal_code"`
	ListPrice    *float64  `json:"list_price" gorm:"column:list_price"`
	Bedrooms     *int      `json:"bedrooms" gorm:"column:bedrooms"`
	Bathrooms    *float64  `json:"bathrooms" gorm:"column:bathrooms"`
	LivingArea   *float64  `json:"living_area" gorm:"column:living_area"`
	YearBuilt    *int      `json:"year_built" gorm:"column:year_built"`
	PropertyType string    `json:"property_type" gorm:"column:property_type"`
	Status       string    `json:"status" gorm:"column:status"`
	Latitude     *float64  `json:"latitude" gorm:"column:latitude"`
	Longitude    *float64  `json:"longitude" gorm:"column:longitude"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Property) TableName() string { return "properties" }

// ValuationEnrichment is the latest automated-valuation snapshot for a
// property. PriceHistory holds the raw JSON timeline as delivered by the
// valuation provider; it is parsed lazily and tolerantly.
type ValuationEnrichment struct {
	ID             int64     `json:"id"`
	PropertyID     int64     `json:"property_id"`
	EstimatedValue *float64  `json:"estimated_value"`
	RentEstimate   *float64  `json:"rent_estimate"`
	PriceHistory   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// PriceEvent is one entry of a valuation provider's price/event timeline.
type PriceEvent struct {
	Event string   `json:"event"`
	Date  string   `json:"date"`
	Price *float64 `json:"price"`
	Area  *float64 `json:"area,omitempty"`
	Beds  *int     `json:"beds,omitempty"`
	Baths *float64 `json:"baths,omitempty"`
}
