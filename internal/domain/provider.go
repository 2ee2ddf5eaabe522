package domain

// HospitalData is one provider/DRG row from the inpatient charges file.
// A provider appears once per DRG it reports.
type HospitalData struct {
	ID                      uint    `gorm:"primaryKey;autoIncrement"`
	ProviderID              int     `gorm:"not null;index"`
	ProviderName            string  `gorm:"type:varchar(255)"`
	ProviderCity            string  `gorm:"type:varchar(100)"`
	ProviderState           string  `gorm:"type:varchar(2)"`
	ProviderZipCode         string  `gorm:"type:varchar(10);index"`
	MSDRGDefinition         string  `gorm:"column:ms_drg_definition;type:varchar(255);index"`
	TotalDischarges         *int
	AverageCoveredCharges   *float64
	AverageTotalPayments    *float64
	AverageMedicarePayments *float64
}

func (HospitalData) TableName() string {
	return "hospital_data"
}

// StarRating is the overall quality rating of one provider.
type StarRating struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	ProviderID    int  `gorm:"not null;uniqueIndex:uq_star_rating_provider_id"`
	OverallRating *int
}

func (StarRating) TableName() string {
	return "star_rating"
}

// Provider is a search result: a hospital row joined with its rating.
type Provider struct {
	ProviderID            int      `json:"provider_id"`
	ProviderName          string   `json:"provider_name"`
	ProviderCity          string   `json:"provider_city"`
	ProviderState         string   `json:"provider_state"`
	ProviderZipCode       string   `json:"provider_zip_code"`
	MSDRGDefinition       string   `json:"ms_drg_definition" gorm:"column:ms_drg_definition"`
	TotalDischarges       *int     `json:"total_discharges"`
	AverageCoveredCharges *float64 `json:"average_covered_charges"`
	AverageTotalPayments  *float64 `json:"average_total_payments"`
	OverallRating         *int     `json:"overall_rating"`
}

// ProviderQuery holds the search form fields.
type ProviderQuery struct {
	ZipCode  string  `form:"zip_code" binding:"required"`
	RadiusKM float64 `form:"radius_km" binding:"required"`
	MSDRG    string  `form:"ms_drg" binding:"required"`
}
