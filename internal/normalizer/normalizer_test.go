package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
)

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &body))
	return body
}

func dailyValues(from time.Time, days int) string {
	parts := make([]string, 0, days)
	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i)
		parts = append(parts, fmt.Sprintf(`{"date":"%s","value":%d}`, endpoint.DateTime(d), (i+1)*100))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func energyParams(unit, start, end string) *endpoint.Params {
	return endpoint.NewParams().Set("timeUnit", unit).Set("startDate", start).Set("endDate", end)
}

func TestNormalize_TrimsEndBoundary(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnergy)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, days := range []int{7, 8, 10} {
		t.Run(fmt.Sprintf("%d raw points", days), func(t *testing.T) {
			body := decode(t, `{"energy":{"timeUnit":"DAY","unit":"Wh","measuredBy":"INVERTER","values":`+
				dailyValues(start, days)+`}}`)

			records, err := Normalize(spec, body, endpoint.Target{SiteID: "1"}, energyParams("DAY", "2024-01-01", "2024-01-08"))
			require.NoError(t, err)
			require.Len(t, records, 1)

			rec := records[0]
			require.Len(t, rec.Series, 1)
			points := rec.Series[0].Points
			require.Len(t, points, 7)
			assert.Equal(t, start, points[0].Date)
			assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), points[6].Date)
			assert.Len(t, rec.Payload["values"], 7)

			assert.Equal(t, "Wh", rec.Series[0].Unit)
			assert.Equal(t, "DAY", rec.Series[0].TimeUnit)
			assert.Equal(t, "INVERTER", rec.Series[0].MeasuredBy)
		})
	}
}

func TestNormalize_DoesNotMutateBody(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnergy)
	body := decode(t, `{"energy":{"values":`+dailyValues(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 8)+`}}`)

	_, err := Normalize(spec, body, endpoint.Target{SiteID: "1"}, energyParams("DAY", "2024-01-01", "2024-01-08"))
	require.NoError(t, err)

	raw := body["energy"].(map[string]interface{})["values"].([]interface{})
	assert.Len(t, raw, 8)
}

func TestNormalize_YearByMonth(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnergy)

	values := make([]string, 0, 13)
	for m := 1; m <= 13; m++ {
		d := time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		values = append(values, fmt.Sprintf(`{"date":"%s","value":%d.5}`, endpoint.DateTime(d), m))
	}
	body := decode(t, `{"energy":{"timeUnit":"MONTH","unit":"Wh","values":[`+strings.Join(values, ",")+`]}}`)

	records, err := Normalize(spec, body, endpoint.Target{SiteID: "1"}, energyParams("MONTH", "2024-01-01", "2025-01-01"))
	require.NoError(t, err)

	points := records[0].Series[0].Points
	require.Len(t, points, 12)
	assert.Equal(t, "2024-01-01", endpoint.Date(points[0].Date))
	assert.Equal(t, "2024-12-01", endpoint.Date(points[11].Date))
	assert.Equal(t, 12.5, points[11].ValueOrZero())
}

func TestNormalize_PreservesAbsentValues(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SitePower)
	body := decode(t, `{"power":{"timeUnit":"QUARTER_OF_AN_HOUR","unit":"W","values":[
		{"date":"2024-01-01 00:00:00","value":null},
		{"date":"2024-01-01 00:15:00"},
		{"date":"2024-01-01 00:30:00","value":0},
		{"date":"2024-01-01 00:45:00","value":412.7}
	]}}`)

	records, err := Normalize(spec, body, endpoint.Target{SiteID: "7"}, nil)
	require.NoError(t, err)

	points := records[0].Series[0].Points
	require.Len(t, points, 4)
	assert.Nil(t, points[0].Value)
	assert.Nil(t, points[1].Value)
	require.NotNil(t, points[2].Value)
	assert.Equal(t, 0.0, *points[2].Value)
	assert.Equal(t, 412.7, points[3].ValueOrZero())

	raw := records[0].Payload["values"].([]interface{})
	first := raw[0].(map[string]interface{})
	v, present := first["value"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestNormalize_EchoesParams(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnvBenefits)
	body := decode(t, `{"envBenefits":{"gasEmissionSaved":{"units":"kg","co2":1.5},"treesPlanted":3.2}}`)
	params := endpoint.NewParams().Set("systemUnits", "Metrics")

	records, err := Normalize(spec, body, endpoint.Target{SiteID: "42"}, params)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "42", rec.SiteID)
	assert.Equal(t, "siteEnvBenefits", rec.Field)
	assert.Nil(t, rec.Series)
	v, ok := rec.Param("systemUnits")
	assert.True(t, ok)
	assert.Equal(t, "Metrics", v)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"siteId":"42","siteEnvBenefits":{"gasEmissionSaved":{"units":"kg","co2":1.5},"treesPlanted":3.2},"systemUnits":"Metrics"}`,
		string(b))
}

func TestNormalize_MissingEnvelope(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteDetails)
	_, err := Normalize(spec, decode(t, `{"String":"bad"}`), endpoint.Target{SiteID: "1"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
	var sErr *SchemaError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, "details", sErr.Key)
}

func TestNormalize_BatchEnergy(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SitesEnergy)
	body := decode(t, `{"sitesEnergy":{"timeUnit":"DAY","unit":"Wh","count":2,"siteEnergyList":[
		{"siteId":1,"energyValues":{"measuredBy":"INVERTER","values":[
			{"date":"2024-01-01 00:00:00","value":10},{"date":"2024-01-02 00:00:00","value":20}]}},
		{"siteId":2,"energyValues":{"measuredBy":"METER","values":[
			{"date":"2024-01-01 00:00:00","value":null},{"date":"2024-01-02 00:00:00","value":40}]}}
	]}}`)

	records, err := Normalize(spec, body, endpoint.Target{SiteIDs: []string{"1", "2"}},
		energyParams("DAY", "2024-01-01", "2024-01-02"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].SiteID)
	assert.Equal(t, "2", records[1].SiteID)
	for _, rec := range records {
		assert.Equal(t, "siteEnergy", rec.Field)
		assert.Equal(t, "Wh", rec.PayloadString("unit"))
		assert.Equal(t, "DAY", rec.Series[0].TimeUnit)
		assert.Len(t, rec.Series[0].Points, 1)
		_, hasList := rec.Payload["siteEnergyList"]
		assert.False(t, hasList)
	}
	assert.Equal(t, "METER", records[1].Series[0].MeasuredBy)
	assert.Nil(t, records[1].Series[0].Points[0].Value)
}

func TestNormalize_SiteList(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteList)
	body := decode(t, `{"sites":{"count":2,"site":[
		{"id":1,"name":"Example_Site","status":"Active"},
		{"id":20,"name":"Roof","status":"Pending"}]}}`)

	records, err := Normalize(spec, body, endpoint.Target{}, endpoint.NewParams().Set("size", "100"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].SiteID)
	assert.Equal(t, "Example_Site", records[0].PayloadString("name"))
	assert.Equal(t, "20", records[1].SiteID)
	assert.Equal(t, "siteList", records[1].Field)
}

func TestNormalize_BatchErrors(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SitesOverview)

	tests := []struct {
		name string
		body string
		key  string
	}{
		{name: "envelope not an object", body: `{"sitesOverviews":[]}`, key: "sitesOverviews"},
		{name: "list missing", body: `{"sitesOverviews":{"count":0}}`, key: "siteEnergyList"},
		{name: "site id missing", body: `{"sitesOverviews":{"siteEnergyList":[{"siteOverview":{}}]}}`, key: "siteId"},
		{name: "payload missing", body: `{"sitesOverviews":{"siteEnergyList":[{"siteId":"1"}]}}`, key: "siteOverview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(spec, decode(t, tt.body), endpoint.Target{SiteIDs: []string{"1"}}, nil)
			var sErr *SchemaError
			require.True(t, errors.As(err, &sErr), "%v", err)
			assert.Equal(t, tt.key, sErr.Key)
		})
	}
}

func TestNormalize_MeterSeries(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnergyDetails)
	body := decode(t, `{"energyDetails":{"timeUnit":"HOUR","unit":"Wh","meters":[
		{"type":"Production","values":[
			{"date":"2024-01-01 22:00:00","value":1},
			{"date":"2024-01-01 23:00:00","value":2},
			{"date":"2024-01-02 00:00:00","value":3}]},
		{"type":"FeedIn","values":[
			{"date":"2024-01-01 22:00:00"},
			{"date":"2024-01-02 00:00:00","value":9}]}
	]}}`)
	params := endpoint.NewParams().
		Set("timeUnit", "HOUR").
		Set("startTime", "2024-01-01 00:00:00").
		Set("endTime", "2024-01-02 00:00:00").
		Set("meters", "Production,FeedIn")

	records, err := Normalize(spec, body, endpoint.Target{SiteID: "3"}, params)
	require.NoError(t, err)

	series := records[0].Series
	require.Len(t, series, 2)
	assert.Equal(t, "Production", series[0].Name)
	assert.Len(t, series[0].Points, 2)
	assert.Equal(t, "FeedIn", series[1].Name)
	require.Len(t, series[1].Points, 1)
	assert.Nil(t, series[1].Points[0].Value)

	meters := records[0].Payload["meters"].([]interface{})
	assert.Len(t, meters[0].(map[string]interface{})["values"], 2)
}

func TestNormalize_NoSiteRecord(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.APISupportedVersions)
	body := decode(t, `{"supported":[{"release":"0.0.1"},{"release":"1.0.0"}]}`)

	records, err := Normalize(spec, body, endpoint.Target{}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].SiteID)
	assert.Len(t, records[0].Payload["supported"], 2)
}

func TestNormalize_BadDate(t *testing.T) {
	spec := endpoint.MustLookup(endpoint.SiteEnergy)
	body := decode(t, `{"energy":{"values":[{"date":"yesterday","value":1}]}}`)

	_, err := Normalize(spec, body, endpoint.Target{SiteID: "1"}, energyParams("DAY", "2024-01-01", "2024-01-08"))
	assert.True(t, errors.Is(err, ErrSchema))
}
