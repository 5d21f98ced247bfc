package monitoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/render"
	"github.com/tejusbharadwaj/solarmon/internal/validator"
	"github.com/tejusbharadwaj/solarmon/internal/window"
)

// writeCSV renders an exported record.
var writeCSV = render.CSV

// EnergyExport describes a site energy CSV export.
type EnergyExport struct {
	Dir      string
	Start    time.Time
	Period   string
	TimeUnit string
}

// PeriodEnd returns start advanced by one period of the given length.
func PeriodEnd(start time.Time, period string) (time.Time, error) {
	p, err := validator.OneOf("period", period, validator.PeriodLengths)
	if err != nil {
		return time.Time{}, err
	}
	switch p {
	case "Day":
		return window.AddDays(start, 1), nil
	case "Week":
		return window.AddDays(start, 7), nil
	case "Month":
		return window.AddMonths(start, 1), nil
	default:
		return window.AddYears(start, 1), nil
	}
}

// ExportSiteEnergy writes one CSV per site covering [Start, Start+Period)
// and returns the paths written. The file name uses the site's display name,
// so each site costs two requests.
func (s *Service) ExportSiteEnergy(ctx context.Context, sites []string, ex EnergyExport, onErr ErrorPolicy) ([]string, error) {
	end, err := PeriodEnd(ex.Start, ex.Period)
	if err != nil {
		return nil, err
	}
	q := EnergyQuery{Start: ex.Start, End: end, TimeUnit: ex.TimeUnit}
	params, err := energyParams(endpoint.SiteEnergy, q)
	if err != nil {
		return nil, err
	}
	unit, _ := params.Get("timeUnit")

	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	if onErr == nil {
		onErr = StopOnError()
	}

	var paths []string
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := s.exportSite(ctx, site, ex, params, unit)
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
			"site_id": site,
			"file":    path,
		}).Info("Exported site energy")
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Service) exportSite(ctx context.Context, site string, ex EnergyExport, params *endpoint.Params, unit string) (string, error) {
	details, err := s.single(ctx, endpoint.SiteDetails, endpoint.Target{SiteID: site}, nil)
	if err != nil {
		return "", err
	}
	name := details[0].PayloadString("name")
	if name == "" {
		name = site
	}

	records, err := s.single(ctx, endpoint.SiteEnergy, endpoint.Target{SiteID: site}, params)
	if err != nil {
		return "", err
	}

	path := filepath.Join(ex.Dir, render.ExportFileName(site, name, ex.Start, ex.Period, unit))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}

	err = writeCSV(f, records[0])
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
