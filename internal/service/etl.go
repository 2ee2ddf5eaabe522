package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

var ErrMissingColumn = errors.New("missing required column")

// CMS inpatient charges export columns.
var hospitalColumns = map[string]string{
	"Rndrng_Prvdr_CCN":          "provider_id",
	"Rndrng_Prvdr_Org_Name":     "provider_name",
	"Rndrng_Prvdr_City":         "provider_city",
	"Rndrng_Prvdr_State_Abrvtn": "provider_state",
	"Rndrng_Prvdr_Zip5":         "provider_zip_code",
	"DRG_Desc":                  "ms_drg_definition",
	"Tot_Dschrgs":               "total_discharges",
	"Avg_Submtd_Cvrd_Chrg":      "average_covered_charges",
	"Avg_Tot_Pymt_Amt":          "average_total_payments",
	"Avg_Mdcr_Pymt_Amt":         "average_medicare_payments",
}

// Hospital general information export columns.
var ratingColumns = map[string]string{
	"Provider ID":             "provider_id",
	"Facility ID":             "provider_id",
	"Hospital overall rating": "overall_rating",
}

// decodeText returns the upload as UTF-8, reading it as Latin-1 when it is
// not valid UTF-8.
func decodeText(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)), nil
}

// readRecords reads a CSV with a header row and yields each row keyed by the
// mapped column names. Unmapped columns are dropped.
func readRecords(r io.Reader, mapping map[string]string, required ...string) ([]map[string]string, error) {
	text, err := decodeText(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[int]string)
	seen := make(map[string]bool)
	for i, name := range header {
		if mapped, ok := mapping[strings.TrimSpace(name)]; ok && !seen[mapped] {
			index[i] = mapped
			seen[mapped] = true
		}
	}
	for _, col := range required {
		if !seen[col] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []map[string]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		rec := make(map[string]string, len(index))
		for i, col := range index {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseHospitalData maps charge rows; rows without a numeric provider id are
// skipped.
func parseHospitalData(r io.Reader) ([]domain.HospitalData, error) {
	records, err := readRecords(r, hospitalColumns, "provider_id", "ms_drg_definition")
	if err != nil {
		return nil, err
	}

	rows := make([]domain.HospitalData, 0, len(records))
	for _, rec := range records {
		id := parseInt(rec["provider_id"])
		if id == nil {
			continue
		}
		rows = append(rows, domain.HospitalData{
			ProviderID:              *id,
			ProviderName:            rec["provider_name"],
			ProviderCity:            rec["provider_city"],
			ProviderState:           strings.ToUpper(rec["provider_state"]),
			ProviderZipCode:         rec["provider_zip_code"],
			MSDRGDefinition:         rec["ms_drg_definition"],
			TotalDischarges:         parseInt(rec["total_discharges"]),
			AverageCoveredCharges:   parseFloat(rec["average_covered_charges"]),
			AverageTotalPayments:    parseFloat(rec["average_total_payments"]),
			AverageMedicarePayments: parseFloat(rec["average_medicare_payments"]),
		})
	}
	return rows, nil
}

// parseRatings maps rating rows. Ratings such as "Not Available" are kept as
// unknown; the last row for a provider wins.
func parseRatings(r io.Reader) ([]domain.StarRating, error) {
	records, err := readRecords(r, ratingColumns, "provider_id", "overall_rating")
	if err != nil {
		return nil, err
	}

	byProvider := make(map[int]int)
	rows := make([]domain.StarRating, 0, len(records))
	for _, rec := range records {
		id := parseInt(rec["provider_id"])
		if id == nil {
			continue
		}
		rating := domain.StarRating{ProviderID: *id, OverallRating: parseInt(rec["overall_rating"])}
		if i, ok := byProvider[*id]; ok {
			rows[i] = rating
			continue
		}
		byProvider[*id] = len(rows)
		rows = append(rows, rating)
	}
	return rows, nil
}

func parseInt(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	// "4.0" style exports
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int(f)
		return &v
	}
	return nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "$")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
