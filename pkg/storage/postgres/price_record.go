package postgres

import "time"

// Series names stored alongside each price.
const (
	SeriesClose = "close"
	SeriesQ10   = "q10"
	SeriesQ50   = "q50"
	SeriesQ90   = "q90"
)

// PriceRecord is one daily point of a generated benchmark series.
type PriceRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Benchmark string    `gorm:"type:varchar(32);not null;index:idx_price_benchmark;index:idx_benchmark_series_date,unique"`
	Series    string    `gorm:"type:varchar(16);not null;index:idx_benchmark_series_date,unique"`
	Date      time.Time `gorm:"type:date;not null;index:idx_benchmark_series_date,unique"`

	Price float64 `gorm:"type:numeric;not null"`
	Seed  uint32  `gorm:"not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (PriceRecord) TableName() string {
	return "price_record"
}
