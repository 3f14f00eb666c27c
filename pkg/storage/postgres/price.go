package postgres

import (
	"context"
	"fmt"
	"time"

	"ctrmdash/internal/seriesgen"

	"gorm.io/gorm/clause"
)

const insertBatchSize = 200

var priceConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "benchmark"},
		{Name: "series"},
		{Name: "date"},
	},
	DoNothing: true,
}

// InsertPrices stores records in batches, skipping points already archived.
// It returns how many rows were written.
func (p *PostgresClient) InsertPrices(ctx context.Context, records []PriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx := p.DB.WithContext(ctx).Clauses(priceConflict).CreateInBatches(records, insertBatchSize)
	if tx.Error != nil {
		return 0, fmt.Errorf("insert prices: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// GetPrices returns a series ordered by date, limited to [from, to].
func (p *PostgresClient) GetPrices(ctx context.Context, benchmark, series string, from, to time.Time) ([]PriceRecord, error) {
	var out []PriceRecord
	err := p.DB.WithContext(ctx).
		Where("benchmark = ? AND series = ? AND date BETWEEN ? AND ?", benchmark, series, from, to).
		Order("date").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresClient) DeletePricesBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("date < ?", before).
		Delete(&PriceRecord{})
	return tx.RowsAffected, tx.Error
}

// ToPriceRecords converts a generated history series into records.
func ToPriceRecords(benchmark string, seed uint32, points []seriesgen.PricePoint) ([]PriceRecord, error) {
	out := make([]PriceRecord, 0, len(points))
	for _, pt := range points {
		date, err := time.Parse(time.DateOnly, pt.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", pt.Date, err)
		}
		out = append(out, PriceRecord{
			Benchmark: benchmark,
			Series:    SeriesClose,
			Date:      date,
			Price:     pt.Price,
			Seed:      seed,
		})
	}
	return out, nil
}

// ToForecastRecords converts a forecast into one record per quantile per day.
func ToForecastRecords(benchmark string, seed uint32, points []seriesgen.ForecastPoint) ([]PriceRecord, error) {
	out := make([]PriceRecord, 0, 3*len(points))
	for _, pt := range points {
		date, err := time.Parse(time.DateOnly, pt.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", pt.Date, err)
		}
		for _, q := range []struct {
			series string
			price  float64
		}{{SeriesQ10, pt.Q10}, {SeriesQ50, pt.Q50}, {SeriesQ90, pt.Q90}} {
			out = append(out, PriceRecord{
				Benchmark: benchmark,
				Series:    q.series,
				Date:      date,
				Price:     q.price,
				Seed:      seed,
			})
		}
	}
	return out, nil
}

// ArchiveDataset writes every history series and the forecast of ds.
func (p *PostgresClient) ArchiveDataset(ctx context.Context, seed uint32, ds seriesgen.Dataset) (int64, error) {
	var records []PriceRecord
	for _, b := range ds.Benchmarks {
		recs, err := ToPriceRecords(b, seed, ds.Series(b))
		if err != nil {
			return 0, err
		}
		records = append(records, recs...)
	}
	if len(ds.Benchmarks) > 0 {
		recs, err := ToForecastRecords(ds.Benchmarks[0], seed, ds.Forecast)
		if err != nil {
			return 0, err
		}
		records = append(records, recs...)
	}
	return p.InsertPrices(ctx, records)
}
