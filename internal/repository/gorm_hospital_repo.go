package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

const insertBatchSize = 500

// GormHospitalRepository implements HospitalRepository using GORM.
type GormHospitalRepository struct {
	db *gorm.DB
}

// NewGormHospitalRepository creates a new GORM-based hospital repository.
func NewGormHospitalRepository(db *gorm.DB) *GormHospitalRepository {
	return &GormHospitalRepository{db: db}
}

// InsertHospitalData appends charge rows in batches inside one transaction.
func (r *GormHospitalRepository) InsertHospitalData(ctx context.Context, rows []domain.HospitalData) (int, error) {
	l := log.Ctx(ctx)
	if len(rows) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to insert hospital data")
		return 0, result.Error
	}
	l.Debug().Int64(log.FieldRows, result.RowsAffected).Msg("hospital data inserted")
	return int(result.RowsAffected), nil
}

// UpsertRatings stores one rating per provider, replacing older values.
func (r *GormHospitalRepository) UpsertRatings(ctx context.Context, rows []domain.StarRating) (int, error) {
	l := log.Ctx(ctx)
	if len(rows) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"overall_rating"}),
		}).
		CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to upsert star ratings")
		return 0, result.Error
	}
	l.Debug().Int64(log.FieldRows, result.RowsAffected).Msg("star ratings upserted")
	return int(result.RowsAffected), nil
}

func (r *GormHospitalRepository) FindProviders(ctx context.Context, drg string, zips []string) ([]domain.Provider, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).
		Table("hospital_data AS h").
		Select("h.provider_id, h.provider_name, h.provider_city, h.provider_state, h.provider_zip_code, " +
			"h.ms_drg_definition, h.total_discharges, h.average_covered_charges, h.average_total_payments, " +
			"s.overall_rating").
		Joins("LEFT JOIN star_rating AS s ON s.provider_id = h.provider_id").
		Where("LOWER(h.ms_drg_definition) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(drg))+"%")

	if len(zips) > 0 {
		query = query.Where("h.provider_zip_code IN ?", zips)
	}

	var providers []domain.Provider
	if err := query.Order("h.average_covered_charges ASC").Scan(&providers).Error; err != nil {
		l.Error().Err(err).Str(log.FieldMSDRG, drg).Msg("failed to query providers")
		return nil, err
	}
	return providers, nil
}
