package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssoetl/internal/acquire"
	"ssoetl/pkg/models"
)

const sampleFiling = `Alabama Department of Environmental Management
Sanitary Sewer Overflow Report

Permittee
City of Fairhope
Permit Number AL0012345

Facility Name
Fairhope Water & Sewer

Assigned SSO ID SSO-44821

Date/Time SSO Event Started
3/14/2025 9:30 AM
Date/Time SSO Event Stopped
3/14/2025 11:45 AM

Estimated Volume Discharged (gallons)
10,000 < gallons <= 25,000

Destination of discharge
Creek or river

If the discharge reached a waterbody, provide the first named creek or river that receives the flow
Creek or river
Fly Creek

Latitude/Longitude of discharge 30.5427, -87.8891

Did the discharge reach a designated swimming water area?
No
Was monitoring of the receiving water performed?
Yes
Was the affected area cleaned?
Yes
Was the affected area disinfected?
No

Known or suspected cause of the discharge
Grease blockage in main line

3/15/2025 8:02:11 AM    Page 1 of 2
`

func TestRecord(t *testing.T) {
	text := &acquire.ExtractedText{
		Pages:           []string{sampleFiling},
		Source:          models.TextSourceNative,
		FooterTimestamp: acquire.ParseFooterTimestamp(sampleFiling),
	}

	rec := Record(text, "sso_44821.pdf")

	require.NotNil(t, rec.IncidentID)
	assert.Equal(t, "SSO-44821", *rec.IncidentID)
	assert.Equal(t, "sso_44821.pdf", rec.FileName)

	require.NotNil(t, rec.Permittee)
	assert.Equal(t, "City of Fairhope", *rec.Permittee)

	require.NotNil(t, rec.Facility)
	assert.Equal(t, "Fairhope Water & Sewer", *rec.Facility)

	require.NotNil(t, rec.EventStart)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), *rec.EventStart)
	require.NotNil(t, rec.EventStop)
	assert.Equal(t, time.Date(2025, 3, 14, 11, 45, 0, 0, time.UTC), *rec.EventStop)

	assert.Equal(t, "10,000 < gallons <= 25,000", rec.VolumeRaw)

	require.NotNil(t, rec.ReceivingWaterRaw)
	assert.Equal(t, "Fly Creek", *rec.ReceivingWaterRaw)

	require.NotNil(t, rec.Latitude)
	require.NotNil(t, rec.Longitude)
	assert.InDelta(t, 30.5427, *rec.Latitude, 1e-6)
	assert.InDelta(t, -87.8891, *rec.Longitude, 1e-6)

	require.NotNil(t, rec.SwimmingWaterArea)
	assert.False(t, *rec.SwimmingWaterArea)
	require.NotNil(t, rec.MonitoringPerformed)
	assert.True(t, *rec.MonitoringPerformed)
	require.NotNil(t, rec.Cleaned)
	assert.True(t, *rec.Cleaned)
	require.NotNil(t, rec.Disinfected)
	assert.False(t, *rec.Disinfected)

	require.NotNil(t, rec.Cause)
	assert.Equal(t, "Grease blockage in main line", *rec.Cause)

	require.NotNil(t, rec.FooterTimestamp)
	assert.Equal(t, time.Date(2025, 3, 15, 8, 2, 11, 0, time.UTC), *rec.FooterTimestamp)
}

func TestRecordMissingFieldsStayNil(t *testing.T) {
	text := &acquire.ExtractedText{
		Pages:  []string{"Completely unrelated page of text with no form labels."},
		Source: models.TextSourceRecognized,
	}

	rec := Record(text, "blank.pdf")

	assert.Nil(t, rec.IncidentID)
	assert.Nil(t, rec.Permittee)
	assert.Nil(t, rec.EventStart)
	assert.Nil(t, rec.EventStop)
	assert.Empty(t, rec.VolumeRaw)
	assert.Nil(t, rec.ReceivingWaterRaw)
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.Longitude)
	assert.Nil(t, rec.SwimmingWaterArea)
	assert.Nil(t, rec.Cause)
	assert.Equal(t, "blank.pdf", rec.FileName)
}

func TestPermitteeSingleLineForm(t *testing.T) {
	doc := NewDocument("Report\nPermittee Baldwin County Sewer Service, LLC\nPermit Number AL999\n")
	got := doc.permittee()
	require.NotNil(t, got)
	assert.Equal(t, "Baldwin County Sewer Service, LLC", *got)
}

func TestVolumeRaw(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bucket expression wins",
			text: "Estimated Volume Discharged\n1,000 < gallons <= 5,000\n",
			want: "1,000 < gallons <= 5,000",
		},
		{
			name: "number on the label line",
			text: "Estimated Volume Discharged 4,500 gallons\n",
			want: "4,500",
		},
		{
			name: "standalone number on a following line",
			text: "Estimated Volume Discharged\n\n850\n",
			want: "850",
		},
		{
			name: "long prose lines are skipped",
			text: "Estimated Volume Discharged\nthe operator was unable to estimate a figure here\n",
			want: "",
		},
		{
			name: "range selection carries the sentinel",
			text: "Estimated Volume Discharged (select) Range\n",
			want: "9999",
		},
		{
			name: "no volume at all",
			text: "nothing relevant\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDocument(tt.text).volumeRaw())
		})
	}
}

func TestReceivingWaterGroundAbsorbed(t *testing.T) {
	dest := "Ground absorbed, did not reach waterbody"
	got := NewDocument("no helper prompt here").receivingWater(&dest)
	require.NotNil(t, got)
	assert.Equal(t, "Ground absorbed", *got)
}

func TestReceivingWaterFallsBackToDestination(t *testing.T) {
	dest := "Roadside ditch"
	got := NewDocument("no helper prompt here").receivingWater(&dest)
	require.NotNil(t, got)
	assert.Equal(t, "Roadside ditch", *got)
}

func TestCoordinatesDMS(t *testing.T) {
	doc := NewDocument(`Latitude/Longitude of discharge 30°32'33.7"N 87°41'20.8"W`)
	lat, lon := doc.coordinates()
	require.NotNil(t, lat)
	require.NotNil(t, lon)
	assert.InDelta(t, 30.542694, *lat, 1e-4)
	assert.InDelta(t, -87.689111, *lon, 1e-4)
}

func TestCoordinatesMalformedYieldsNil(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"out of range latitude", "Latitude/Longitude of discharge 130.5, -87.6"},
		{"minutes overflow", `Latitude/Longitude of discharge 30°75'10"N 87°41'20"W`},
		{"no coordinates", "Latitude/Longitude of discharge pending survey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := NewDocument(tt.text).coordinates()
			assert.Nil(t, lat)
			assert.Nil(t, lon)
		})
	}
}

func TestYesNo(t *testing.T) {
	yes := "Yes"
	n := "N"
	maybe := "Pending"
	trailing := "no."

	assert.Nil(t, yesNo(nil))
	assert.True(t, *yesNo(&yes))
	assert.False(t, *yesNo(&n))
	assert.False(t, *yesNo(&trailing))
	assert.Nil(t, yesNo(&maybe))
}
