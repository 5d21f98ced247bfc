package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tejusbharadwaj/solarmon/internal/validator"
)

// ErrMissingTarget is returned when a path placeholder has no value.
var ErrMissingTarget = errors.New("missing path identifier")

// Target carries the identifiers substituted into a path template.
type Target struct {
	SiteID  string
	SiteIDs []string
	Serial  string
}

// Request is a fully validated call ready for the fetcher.
type Request struct {
	Endpoint Name
	Path     string
	Query    *Params
	APIKey   string
}

// RawQuery returns the encoded query string with api_key first.
func (r Request) RawQuery() string {
	q := "api_key=" + url.QueryEscape(r.APIKey)
	if rest := r.Query.Encode(); rest != "" {
		q += "&" + rest
	}
	return q
}

// URL joins base, the path and the query.
func (r Request) URL(base string) string {
	return strings.TrimRight(base, "/") + r.Path + "?" + r.RawQuery()
}

// Build validates the credential and every identifier the path template
// needs, then returns the request. params is copied.
func Build(spec Spec, target Target, params *Params, apiKey string) (Request, error) {
	key, err := validator.APIKey(apiKey)
	if err != nil {
		return Request{}, err
	}

	path := spec.Path
	if strings.Contains(path, "{siteIds}") {
		ids, err := validator.SiteIDs(target.SiteIDs)
		if err != nil {
			return Request{}, err
		}
		path = strings.ReplaceAll(path, "{siteIds}", ids)
	}
	if strings.Contains(path, "{siteId}") {
		if target.SiteID == "" {
			return Request{}, fmt.Errorf("%w: %s needs a site id", ErrMissingTarget, spec.Name)
		}
		id, err := validator.SiteID(target.SiteID)
		if err != nil {
			return Request{}, err
		}
		path = strings.ReplaceAll(path, "{siteId}", id)
	}
	if strings.Contains(path, "{serial}") {
		if target.Serial == "" {
			return Request{}, fmt.Errorf("%w: %s needs a serial number", ErrMissingTarget, spec.Name)
		}
		serial, err := validator.Serial(target.Serial)
		if err != nil {
			return Request{}, err
		}
		path = strings.ReplaceAll(path, "{serial}", serial)
	}

	if params == nil {
		params = NewParams()
	}
	return Request{
		Endpoint: spec.Name,
		Path:     path,
		Query:    params.Clone(),
		APIKey:   key,
	}, nil
}
