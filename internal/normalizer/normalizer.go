// Package normalizer reshapes decoded vendor responses into one
// models.Record per site.
package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/models"
)

// ErrSchema is matched by every *SchemaError via errors.Is.
var ErrSchema = errors.New("unexpected response schema")

// SchemaError reports a response that does not have the documented shape.
type SchemaError struct {
	Endpoint endpoint.Name
	Key      string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s response: key %q %s", e.Endpoint, e.Key, e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Normalize unwraps the envelope of body and returns one record per site.
// Single-site endpoints take their site id from target; batch endpoints take
// it from each list entry.
func Normalize(spec endpoint.Spec, body map[string]interface{}, target endpoint.Target, params *endpoint.Params) ([]models.Record, error) {
	inner, ok := body[spec.Envelope]
	if !ok || inner == nil {
		return nil, &SchemaError{Endpoint: spec.Name, Key: spec.Envelope, Reason: "is missing"}
	}

	n := &normalizer{spec: spec, echoed: echo(params)}
	if spec.TrimEnd {
		if raw, ok := params.Get(spec.EndParam); ok {
			end, err := endpoint.ParseTimestamp(raw)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", spec.EndParam, err)
			}
			n.end = &end
		}
	}

	if !spec.Batch() {
		payload, ok := inner.(map[string]interface{})
		if !ok {
			// lists and scalars are kept under the envelope key
			payload = map[string]interface{}{spec.Envelope: inner}
		}
		siteID := target.SiteID
		if spec.NoSite {
			siteID = ""
		}
		rec, err := n.record(siteID, payload)
		if err != nil {
			return nil, err
		}
		return []models.Record{rec}, nil
	}

	return n.batch(inner)
}

type normalizer struct {
	spec   endpoint.Spec
	echoed []models.QueryParam
	end    *time.Time
}

func (n *normalizer) schemaErr(key, reason string) error {
	return &SchemaError{Endpoint: n.spec.Name, Key: key, Reason: reason}
}

func (n *normalizer) batch(inner interface{}) ([]models.Record, error) {
	env, ok := inner.(map[string]interface{})
	if !ok {
		return nil, n.schemaErr(n.spec.Envelope, "is not an object")
	}
	list, ok := env[n.spec.ListKey].([]interface{})
	if !ok {
		return nil, n.schemaErr(n.spec.ListKey, "is missing or not a list")
	}

	records := make([]models.Record, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, n.schemaErr(n.spec.ListKey, "contains a non-object entry")
		}
		siteID, err := idString(entry[n.spec.SiteKey])
		if err != nil {
			return nil, n.schemaErr(n.spec.SiteKey, err.Error())
		}

		payload := entry
		if n.spec.PayloadKey != "" {
			payload, ok = entry[n.spec.PayloadKey].(map[string]interface{})
			if !ok {
				return nil, n.schemaErr(n.spec.PayloadKey, "is missing or not an object")
			}
			payload = inherit(payload, env, n.spec.ListKey)
		}

		rec, err := n.record(siteID, payload)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// inherit copies envelope-level scalars such as unit and timeUnit into a
// per-site payload that lacks them.
func inherit(payload, env map[string]interface{}, listKey string) map[string]interface{} {
	out := make(map[string]interface{}, len(payload)+len(env))
	for k, v := range env {
		if k == listKey || k == "count" {
			continue
		}
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			continue
		}
		out[k] = v
	}
	for k, v := range payload {
		out[k] = v
	}
	return out
}

func (n *normalizer) record(siteID string, payload map[string]interface{}) (models.Record, error) {
	payload, series, err := n.series(payload)
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{
		SiteID:  siteID,
		Field:   n.spec.Field,
		Payload: payload,
		Series:  series,
		Params:  n.echoed,
	}, nil
}

// series extracts the dated values of payload and returns a copy of
// payload whose value lists are trimmed the same way.
func (n *normalizer) series(payload map[string]interface{}) (map[string]interface{}, []models.Series, error) {
	switch n.spec.Series {
	case endpoint.ValueSeries:
		raw, _ := payload["values"].([]interface{})
		kept, points, err := n.points(raw)
		if err != nil {
			return nil, nil, err
		}
		out := shallowCopy(payload)
		if _, ok := payload["values"]; ok {
			out["values"] = kept
		}
		s := meta(payload)
		s.Points = points
		return out, []models.Series{s}, nil

	case endpoint.MeterSeries:
		meters, _ := payload["meters"].([]interface{})
		outMeters := make([]interface{}, 0, len(meters))
		series := make([]models.Series, 0, len(meters))
		for _, m := range meters {
			meter, ok := m.(map[string]interface{})
			if !ok {
				return nil, nil, n.schemaErr("meters", "contains a non-object entry")
			}
			raw, _ := meter["values"].([]interface{})
			kept, points, err := n.points(raw)
			if err != nil {
				return nil, nil, err
			}
			outMeter := shallowCopy(meter)
			outMeter["values"] = kept
			outMeters = append(outMeters, outMeter)

			s := meta(payload)
			s.Name = meterName(meter)
			s.Points = points
			series = append(series, s)
		}
		out := shallowCopy(payload)
		if _, ok := payload["meters"]; ok {
			out["meters"] = outMeters
		}
		return out, series, nil

	default:
		return payload, nil, nil
	}
}

// points parses raw in order and cuts it at the first point dated at or
// after the query end, whatever follows it.
func (n *normalizer) points(raw []interface{}) ([]interface{}, []models.Point, error) {
	points := make([]models.Point, 0, len(raw))
	for _, item := range raw {
		v, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, n.schemaErr("values", "contains a non-object entry")
		}
		ds, _ := v["date"].(string)
		date, err := endpoint.ParseTimestamp(ds)
		if err != nil {
			return nil, nil, n.schemaErr("date", fmt.Sprintf("has unparseable value %q", ds))
		}
		if n.end != nil && !date.Before(*n.end) {
			break
		}
		value, err := number(v["value"])
		if err != nil {
			return nil, nil, n.schemaErr("value", err.Error())
		}
		points = append(points, models.Point{Date: date, Value: value})
	}
	return raw[:len(points)], points, nil
}

func meta(payload map[string]interface{}) models.Series {
	s := models.Series{}
	s.Unit, _ = payload["unit"].(string)
	s.TimeUnit, _ = payload["timeUnit"].(string)
	s.MeasuredBy, _ = payload["measuredBy"].(string)
	return s
}

func meterName(meter map[string]interface{}) string {
	if s, ok := meter["type"].(string); ok {
		return s
	}
	s, _ := meter["meterType"].(string)
	return s
}

func number(v interface{}) (*float64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("has non-numeric value %v", v)
	}
}

func idString(v interface{}) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("has unusable site id %v", v)
	}
}

func echo(params *endpoint.Params) []models.QueryParam {
	out := make([]models.QueryParam, 0, params.Len())
	for _, k := range params.Keys() {
		v, _ := params.Get(k)
		out = append(out, models.QueryParam{Name: k, Value: v})
	}
	return out
}

func shallowCopy(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
