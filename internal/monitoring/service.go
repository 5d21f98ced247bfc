// Package monitoring exposes one method per monitoring API operation.
//
// Every method validates all of its parameters before the first request is
// sent. Parameters shared by every site (dates, time units, meters) are
// checked once up front and abort the call. Per-site methods then walk the
// site list sequentially and hand each site's failure to the caller's
// ErrorPolicy; batch methods put all sites into one request and reject the
// whole list on the first invalid id.
package monitoring

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/solarmon/internal/api"
	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/models"
	"github.com/tejusbharadwaj/solarmon/internal/normalizer"
	"github.com/tejusbharadwaj/solarmon/internal/validator"
)

// ErrNoSites is returned when a call is given an empty site list.
var ErrNoSites = errors.New("no site ids given")

// Service runs operations through a Fetcher.
type Service struct {
	fetcher api.Fetcher
	apiKey  string
	logger  *logrus.Logger
}

// NewService validates apiKey once and returns a service bound to it.
func NewService(fetcher api.Fetcher, apiKey string, logger *logrus.Logger) (*Service, error) {
	key, err := validator.APIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		fetcher: fetcher,
		apiKey:  key,
		logger:  logger,
	}, nil
}

// call builds, fetches and normalizes a single request.
func (s *Service) call(ctx context.Context, spec endpoint.Spec, target endpoint.Target, params *endpoint.Params) ([]models.Record, error) {
	req, err := endpoint.Build(spec, target, params, s.apiKey)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	return normalizer.Normalize(spec, body, target, req.Query)
}

// perSite issues one request per site and routes failures through onErr.
// A nil onErr behaves like StopOnError.
func (s *Service) perSite(
	ctx context.Context,
	name endpoint.Name,
	sites []string,
	params *endpoint.Params,
	onErr ErrorPolicy,
) ([]models.Record, error) {
	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	if onErr == nil {
		onErr = StopOnError()
	}

	spec := endpoint.MustLookup(name)
	var records []models.Record
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recs, err := s.call(ctx, spec, endpoint.Target{SiteID: site}, params)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if perr := onErr(site, err); perr != nil {
				return nil, perr
			}
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"site_id":  site,
			"endpoint": name,
		}).Debug("Site processed")
		records = append(records, recs...)
	}
	return records, nil
}

// batch issues a single request covering every site.
func (s *Service) batch(ctx context.Context, name endpoint.Name, sites []string, params *endpoint.Params) ([]models.Record, error) {
	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	return s.call(ctx, endpoint.MustLookup(name), endpoint.Target{SiteIDs: sites}, params)
}

// single issues a request that needs no site or a single fixed target.
func (s *Service) single(ctx context.Context, name endpoint.Name, target endpoint.Target, params *endpoint.Params) ([]models.Record, error) {
	return s.call(ctx, endpoint.MustLookup(name), target, params)
}
