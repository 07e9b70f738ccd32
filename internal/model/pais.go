package model

// Pais is reference data seeded by migration; never written by the API.
type Pais struct {
	ID      int64  `gorm:"primaryKey"`
	Country string `gorm:"column:country;not null"`
}

// TableName keeps the singular table name used by the schema.
func (Pais) TableName() string { return "country" }
