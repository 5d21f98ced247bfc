package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Point is one dated value of a series. Value is nil when the vendor sent
// null or omitted it.
type Point struct {
	Date  time.Time
	Value *float64
}

// ValueOrZero returns the value, or 0 when it is absent.
func (p Point) ValueOrZero() float64 {
	if p.Value == nil {
		return 0
	}
	return *p.Value
}

// Series is a dated value list extracted from a payload. Name is empty for
// endpoints with a single series and carries the meter type otherwise.
type Series struct {
	Name       string
	Unit       string
	TimeUnit   string
	MeasuredBy string
	Points     []Point
}

// QueryParam is one echoed request parameter.
type QueryParam struct {
	Name  string
	Value string
}

// Record is the normalized result of one endpoint call for one site.
type Record struct {
	// SiteID is empty for records that describe the API itself.
	SiteID string
	// Field is the normalized name of the payload, e.g. "siteEnergy".
	Field string
	// Payload is the endpoint-specific object found under the envelope.
	Payload map[string]interface{}
	// Series is nil for endpoints without dated values.
	Series []Series
	Params []QueryParam
}

// Param returns the echoed value of a request parameter.
func (r Record) Param(name string) (string, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// PayloadString returns a string field of the payload.
func (r Record) PayloadString(key string) string {
	s, _ := r.Payload[key].(string)
	return s
}

// MarshalJSON writes the site id, the payload under Field and every echoed
// parameter as top-level keys, in that order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if r.SiteID != "" {
		if err := write("siteId", r.SiteID); err != nil {
			return nil, err
		}
	}
	if err := write(r.Field, r.Payload); err != nil {
		return nil, err
	}
	for _, p := range r.Params {
		if p.Name == "siteId" || p.Name == r.Field {
			continue
		}
		if err := write(p.Name, p.Value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Reading is a stored series point.
type Reading struct {
	SiteID string
	Series string
	Time   time.Time
	Value  float64
}

// SeriesKey names a series of r for storage: the record field, followed by
// the meter type when there is one.
func (r Record) SeriesKey(s Series) string {
	if s.Name == "" {
		return r.Field
	}
	return r.Field + "/" + s.Name
}

// Readings flattens the series of r into storable points, skipping absent
// values.
func (r Record) Readings() []Reading {
	var out []Reading
	for _, s := range r.Series {
		key := r.SeriesKey(s)
		for _, p := range s.Points {
			if p.Value == nil {
				continue
			}
			out = append(out, Reading{
				SiteID: r.SiteID,
				Series: key,
				Time:   p.Date,
				Value:  *p.Value,
			})
		}
	}
	return out
}
