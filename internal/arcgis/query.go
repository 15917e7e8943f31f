// Package arcgis downloads already-published SSO records from the state's
// ArcGIS feature layer. It is the bulk path for historical data; the PDF
// pipeline remains the source of truth for filings the layer lags behind on.
package arcgis

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Attribute names of the feature layer.
const (
	FieldIncidentID     = "sso_id"
	FieldPermitNo       = "permit_no"
	FieldPermittee      = "permittee"
	FieldCounty         = "county"
	FieldStartDate      = "date_sso_began"
	FieldEndDate        = "date_sso_stopped"
	FieldVolumeGallons  = "volume_gallons"
	FieldEstVolume      = "est_volume"
	FieldReceivingWater = "receiving_water"
	FieldCause          = "cause"
	FieldLocation       = "location"
)

// Query is the filter model for the feature layer. The zero value selects
// everything.
type Query struct {
	PermitID   string
	PermitIDs  []string
	Permittee  string
	County     string
	StartDate  *time.Time
	EndDate    *time.Time
	MinGallons *float64
	MaxGallons *float64
}

var (
	errDateOrder   = errors.New("start date cannot be after end date")
	errVolumeOrder = errors.New("minimum volume cannot exceed maximum volume")
	errNegative    = errors.New("volume bounds cannot be negative")
)

// Validate checks the query's internal consistency.
func (q *Query) Validate() error {
	if q.StartDate != nil && q.EndDate != nil && q.StartDate.After(*q.EndDate) {
		return errDateOrder
	}
	if (q.MinGallons != nil && *q.MinGallons < 0) || (q.MaxGallons != nil && *q.MaxGallons < 0) {
		return errNegative
	}
	if q.MinGallons != nil && q.MaxGallons != nil && *q.MinGallons > *q.MaxGallons {
		return errVolumeOrder
	}
	return nil
}

// WhereClause renders the query as the layer's SQL-ish where expression.
// Date filters apply to the event start date; the end date is inclusive.
func (q *Query) WhereClause() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	clauses := []string{"1=1"}

	switch {
	case q.StartDate != nil && q.EndDate != nil:
		clauses = append(clauses, fmt.Sprintf(
			"%s >= DATE '%s 00:00:00' AND %s < DATE '%s 00:00:00'",
			FieldStartDate, dateOnly(*q.StartDate),
			FieldStartDate, dateOnly(q.EndDate.AddDate(0, 0, 1)),
		))
	case q.StartDate != nil:
		clauses = append(clauses, fmt.Sprintf(
			"%s >= DATE '%s 00:00:00'", FieldStartDate, dateOnly(*q.StartDate),
		))
	case q.EndDate != nil:
		clauses = append(clauses, fmt.Sprintf(
			"%s < DATE '%s 00:00:00'", FieldStartDate, dateOnly(q.EndDate.AddDate(0, 0, 1)),
		))
	}

	if q.County != "" {
		clauses = append(clauses, fmt.Sprintf("%s = '%s'", FieldCounty, quote(q.County)))
	}

	if len(q.PermitIDs) > 0 {
		values := make([]string, 0, len(q.PermitIDs))
		for _, id := range q.PermitIDs {
			if id == "" {
				continue
			}
			values = append(values, "'"+quote(id)+"'")
		}
		if len(values) > 0 {
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", FieldPermitNo, strings.Join(values, ",")))
		}
	} else if q.PermitID != "" {
		clauses = append(clauses, fmt.Sprintf("%s = '%s'", FieldPermitNo, quote(q.PermitID)))
	}

	if q.Permittee != "" {
		clauses = append(clauses, fmt.Sprintf("%s = '%s'", FieldPermittee, quote(q.Permittee)))
	}
	if q.MinGallons != nil {
		clauses = append(clauses, fmt.Sprintf("%s >= %g", FieldVolumeGallons, *q.MinGallons))
	}
	if q.MaxGallons != nil {
		clauses = append(clauses, fmt.Sprintf("%s <= %g", FieldVolumeGallons, *q.MaxGallons))
	}

	return strings.Join(clauses, " AND "), nil
}

// Params renders the query as the request parameters common to every page.
func (q *Query) Params() (url.Values, error) {
	where, err := q.WhereClause()
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", "*")
	params.Set("orderByFields", FieldStartDate)
	params.Set("f", "json")
	return params, nil
}

func dateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}

// quote escapes single quotes the way the layer's SQL dialect expects.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
