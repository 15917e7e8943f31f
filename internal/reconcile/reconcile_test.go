package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssoetl/pkg/models"
)

func strp(s string) *string { return &s }

func tsp(t time.Time) *time.Time { return &t }

func candidate(id, file, permittee, water string, footer *time.Time) models.CandidateRecord {
	c := models.CandidateRecord{FileName: file, FooterTimestamp: footer}
	if id != "" {
		c.IncidentID = strp(id)
	}
	if permittee != "" {
		c.Permittee = strp(permittee)
	}
	if water != "" {
		c.ReceivingWaterRaw = strp(water)
	}
	return c
}

func TestReconcileKeepsNewestCopy(t *testing.T) {
	older := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 15, 8, 2, 11, 0, time.UTC)

	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-100", "a.pdf", "City of Daphne", "Mill Creek", tsp(older)),
		candidate("SSO-100", "b.pdf", "City of Daphne", "Mill Creek", tsp(newer)),
		candidate("SSO-200", "c.pdf", "City of Foley", "Wolf Creek", nil),
	})

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.DuplicatesSuperseded)
	assert.Equal(t, "SSO-100", result.Records[0].Key)
	assert.Equal(t, "b.pdf", result.Records[0].FileName)
	assert.Equal(t, "SSO-200", result.Records[1].Key)
}

func TestReconcileTimestampBeatsMissing(t *testing.T) {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-1", "first.pdf", "", "", nil),
		candidate("SSO-1", "second.pdf", "", "", tsp(stamp)),
	})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "second.pdf", result.Records[0].FileName)
}

func TestReconcileTieKeepsFirstInInputOrder(t *testing.T) {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-1", "first.pdf", "", "", tsp(stamp)),
		candidate("SSO-1", "second.pdf", "", "", tsp(stamp)),
	})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "first.pdf", result.Records[0].FileName)
	assert.Equal(t, 1, result.DuplicatesSuperseded)
}

func TestReconcileFileNameKeyWhenNoIncidentID(t *testing.T) {
	result := Reconcile([]models.CandidateRecord{
		candidate("", "scan_001.pdf", "", "", nil),
		candidate("", "scan_002.pdf", "", "", nil),
	})

	require.Len(t, result.Records, 2)
	assert.Equal(t, "scan_001.pdf", result.Records[0].Key)
	assert.Equal(t, "scan_002.pdf", result.Records[1].Key)
	assert.Zero(t, result.DuplicatesSuperseded)
}

func TestReconcileKeyUniqueness(t *testing.T) {
	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-1", "a.pdf", "", "", nil),
		candidate("SSO-1", "b.pdf", "", "", nil),
		candidate("SSO-2", "c.pdf", "", "", nil),
		candidate("", "d.pdf", "", "", nil),
	})

	seen := make(map[string]bool)
	for _, r := range result.Records {
		assert.False(t, seen[r.Key], "duplicate key %s", r.Key)
		seen[r.Key] = true
	}
}

func TestDisambiguateSharedWaterName(t *testing.T) {
	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-1", "a.pdf", "City of Daphne", "Mill Creek", nil),
		candidate("SSO-2", "b.pdf", "City of Fairhope", "Mill Creek", nil),
		candidate("SSO-3", "c.pdf", "City of Daphne", "Yancey Branch", nil),
	})

	require.Len(t, result.Records, 3)

	byKey := make(map[string]models.FinalRecord)
	for _, r := range result.Records {
		byKey[r.Key] = r
	}

	assert.Equal(t, "Mill Creek - Daphne", byKey["SSO-1"].ReceivingWaterDisplay)
	assert.Equal(t, "Mill Creek - Fairhope", byKey["SSO-2"].ReceivingWaterDisplay)
	// Single-permittee name passes through untouched.
	assert.Equal(t, "Yancey Branch", byKey["SSO-3"].ReceivingWaterDisplay)

	// Raw names are retained for traceability.
	require.NotNil(t, byKey["SSO-1"].ReceivingWaterRaw)
	assert.Equal(t, "Mill Creek", *byKey["SSO-1"].ReceivingWaterRaw)
}

func TestDisambiguateIsCaseAndSpacingTolerant(t *testing.T) {
	result := Reconcile([]models.CandidateRecord{
		candidate("SSO-1", "a.pdf", "City of Daphne", "Mill  Creek", nil),
		candidate("SSO-2", "b.pdf", "City of Fairhope", "mill creek", nil),
	})

	require.Len(t, result.Records, 2)
	for _, r := range result.Records {
		assert.Contains(t, r.ReceivingWaterDisplay, " - ")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	input := []models.CandidateRecord{
		candidate("SSO-1", "a.pdf", "City of Daphne", "Mill Creek", nil),
		candidate("SSO-2", "b.pdf", "City of Fairhope", "Mill Creek", nil),
	}

	first := Reconcile(input)
	second := Reconcile(input)
	assert.Equal(t, first, second)
}

func TestUtilityShortName(t *testing.T) {
	tests := []struct {
		permittee string
		want      string
	}{
		{"Baldwin County Sewer Service, LLC", "BCSS"},
		{"City of Daphne", "Daphne"},
		{"City of Spanish Fort", "Spanish Fort"},
		{"Mobile Area Water and Sewer System (MAWSS)", "MAWSS"},
		{"Town of Loxley Utilities Board", "Loxley"},
		{"City of Gulf Shores", "Gulf Shores"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.permittee, func(t *testing.T) {
			assert.Equal(t, tt.want, utilityShortName(tt.permittee))
		})
	}
}
