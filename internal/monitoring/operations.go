package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/models"
	"github.com/tejusbharadwaj/solarmon/internal/validator"
	"github.com/tejusbharadwaj/solarmon/internal/window"
)

// SiteListQuery filters and pages the account's site list. Zero values are
// left out of the request.
type SiteListQuery struct {
	Size         int
	StartIndex   int
	SearchText   string
	SortProperty string
	SortOrder    string
	Status       []string
}

// EnergyQuery selects a date-only window at a granularity.
type EnergyQuery struct {
	Start    time.Time
	End      time.Time
	TimeUnit string
}

// TimeRange selects a date-time window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// MeterQuery selects a date-time window, optional granularity and meters.
type MeterQuery struct {
	Start    time.Time
	End      time.Time
	TimeUnit string
	Meters   []string
}

// StorageQuery selects a date-time window and optional battery serials.
type StorageQuery struct {
	Start   time.Time
	End     time.Time
	Serials []string
}

func (s *Service) SiteList(ctx context.Context, q SiteListQuery) ([]models.Record, error) {
	params := endpoint.NewParams()
	if q.Size != 0 {
		size, err := validator.IntRange("size", q.Size, 1, 100)
		if err != nil {
			return nil, err
		}
		params.Set("size", strconv.Itoa(size))
	}
	if q.StartIndex != 0 {
		idx, err := validator.IntRange("startIndex", q.StartIndex, 0, 1<<31-1)
		if err != nil {
			return nil, err
		}
		params.Set("startIndex", strconv.Itoa(idx))
	}
	if q.SearchText != "" {
		params.Set("searchText", q.SearchText)
	}
	if q.SortProperty != "" {
		v, err := validator.OneOf("sortProperty", q.SortProperty, validator.SortProperties)
		if err != nil {
			return nil, err
		}
		params.Set("sortProperty", v)
	}
	if q.SortOrder != "" {
		v, err := validator.OneOf("sortOrder", q.SortOrder, validator.SortOrders)
		if err != nil {
			return nil, err
		}
		params.Set("sortOrder", v)
	}
	if len(q.Status) > 0 {
		v, err := validator.ListOf("status", q.Status, validator.SiteStatuses)
		if err != nil {
			return nil, err
		}
		params.Set("status", v)
	}
	return s.single(ctx, endpoint.SiteList, endpoint.Target{}, params)
}

func (s *Service) SiteDetails(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteDetails, sites, nil, onErr)
}

func (s *Service) SiteDataPeriod(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteDataPeriod, sites, nil, onErr)
}

// SitesDataPeriod fetches the data period of all sites in one request.
func (s *Service) SitesDataPeriod(ctx context.Context, sites []string) ([]models.Record, error) {
	return s.batch(ctx, endpoint.SitesDataPeriod, sites, nil)
}

func (s *Service) SiteEnergy(ctx context.Context, sites []string, q EnergyQuery, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := energyParams(endpoint.SiteEnergy, q)
	if err != nil {
		return nil, err
	}
	return s.perSite(ctx, endpoint.SiteEnergy, sites, params, onErr)
}

// SitesEnergy fetches energy for all sites in one request.
func (s *Service) SitesEnergy(ctx context.Context, sites []string, q EnergyQuery) ([]models.Record, error) {
	params, err := energyParams(endpoint.SitesEnergy, q)
	if err != nil {
		return nil, err
	}
	return s.batch(ctx, endpoint.SitesEnergy, sites, params)
}

func energyParams(name endpoint.Name, q EnergyQuery) (*endpoint.Params, error) {
	unit, err := window.NormalizeTimeUnit(q.TimeUnit)
	if err != nil {
		return nil, err
	}
	if err := dateWindow(q.Start, q.End, endpoint.MustLookup(name).PeriodClassFor(unit)); err != nil {
		return nil, err
	}
	return endpoint.NewParams().
		Set("timeUnit", string(unit)).
		Set("startDate", endpoint.Date(q.Start)).
		Set("endDate", endpoint.Date(q.End)), nil
}

func (s *Service) SiteTimeFrameEnergy(ctx context.Context, sites []string, start, end time.Time, onErr ErrorPolicy) ([]models.Record, error) {
	if err := dateWindow(start, end, endpoint.MustLookup(endpoint.SiteTimeFrameEnergy).Period); err != nil {
		return nil, err
	}
	params := endpoint.NewParams().
		Set("startDate", endpoint.Date(start)).
		Set("endDate", endpoint.Date(end))
	return s.perSite(ctx, endpoint.SiteTimeFrameEnergy, sites, params, onErr)
}

func (s *Service) SitePower(ctx context.Context, sites []string, r TimeRange, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := timeParams(endpoint.SitePower, r.Start, r.End, "")
	if err != nil {
		return nil, err
	}
	return s.perSite(ctx, endpoint.SitePower, sites, params, onErr)
}

func (s *Service) SiteOverview(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteOverview, sites, nil, onErr)
}

// SitesOverview fetches the overview of all sites in one request.
func (s *Service) SitesOverview(ctx context.Context, sites []string) ([]models.Record, error) {
	return s.batch(ctx, endpoint.SitesOverview, sites, nil)
}

func (s *Service) SitePowerDetails(ctx context.Context, sites []string, q MeterQuery, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := meterParams(endpoint.SitePowerDetails, q, false)
	if err != nil {
		return nil, err
	}
	return s.perSite(ctx, endpoint.SitePowerDetails, sites, params, onErr)
}

func (s *Service) SiteEnergyDetails(ctx context.Context, sites []string, q MeterQuery, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := meterParams(endpoint.SiteEnergyDetails, q, true)
	if err != nil {
		return nil, err
	}
	return s.perSite(ctx, endpoint.SiteEnergyDetails, sites, params, onErr)
}

// SiteMeters reads lifetime meter readings.
func (s *Service) SiteMeters(ctx context.Context, sites []string, q MeterQuery, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := meterParams(endpoint.SiteMeters, q, true)
	if err != nil {
		return nil, err
	}
	return s.perSite(ctx, endpoint.SiteMeters, sites, params, onErr)
}

// meterParams validates the window against the unit-dependent ceiling. An
// empty TimeUnit is left out of the request and checked as DAY, the vendor
// default.
func meterParams(name endpoint.Name, q MeterQuery, withUnit bool) (*endpoint.Params, error) {
	params := endpoint.NewParams()
	unit := window.Day
	if withUnit && q.TimeUnit != "" {
		u, err := window.NormalizeTimeUnit(q.TimeUnit)
		if err != nil {
			return nil, err
		}
		unit = u
		params.Set("timeUnit", string(u))
	}

	if err := window.Validate(q.Start, q.End, endpoint.MustLookup(name).PeriodClassFor(unit)); err != nil {
		return nil, err
	}
	params.
		Set("startTime", endpoint.DateTime(q.Start)).
		Set("endTime", endpoint.DateTime(q.End))

	if len(q.Meters) > 0 {
		meters, err := validator.ListOf("meters", q.Meters, validator.MeterKinds)
		if err != nil {
			return nil, err
		}
		params.Set("meters", meters)
	}
	return params, nil
}

func (s *Service) SitePowerFlow(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SitePowerFlow, sites, nil, onErr)
}

func (s *Service) SiteStorage(ctx context.Context, sites []string, q StorageQuery, onErr ErrorPolicy) ([]models.Record, error) {
	params, err := timeParams(endpoint.SiteStorage, q.Start, q.End, "")
	if err != nil {
		return nil, err
	}
	if len(q.Serials) > 0 {
		serials, err := validator.Serials(q.Serials)
		if err != nil {
			return nil, err
		}
		params.Set("serials", serials)
	}
	return s.perSite(ctx, endpoint.SiteStorage, sites, params, onErr)
}

// SiteEnvBenefits reads environmental benefits in systemUnits, which may be
// empty to use the account default.
func (s *Service) SiteEnvBenefits(ctx context.Context, sites []string, systemUnits string, onErr ErrorPolicy) ([]models.Record, error) {
	params := endpoint.NewParams()
	if systemUnits != "" {
		units, err := validator.OneOf("systemUnits", systemUnits, validator.SystemUnits)
		if err != nil {
			return nil, err
		}
		params.Set("systemUnits", units)
	}
	return s.perSite(ctx, endpoint.SiteEnvBenefits, sites, params, onErr)
}

func (s *Service) SiteInventory(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteInventory, sites, nil, onErr)
}

func (s *Service) SiteSensors(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteSensors, sites, nil, onErr)
}

func (s *Service) SiteEquipment(ctx context.Context, sites []string, onErr ErrorPolicy) ([]models.Record, error) {
	return s.perSite(ctx, endpoint.SiteEquipment, sites, nil, onErr)
}

// EquipmentData reads inverter telemetry for one serial on one site.
func (s *Service) EquipmentData(ctx context.Context, site, serial string, r TimeRange) ([]models.Record, error) {
	params, err := timeParams(endpoint.EquipmentData, r.Start, r.End, "")
	if err != nil {
		return nil, err
	}
	return s.single(ctx, endpoint.EquipmentData, endpoint.Target{SiteID: site, Serial: serial}, params)
}

func (s *Service) EquipmentChangeLog(ctx context.Context, site, serial string) ([]models.Record, error) {
	return s.single(ctx, endpoint.EquipmentChangeLog, endpoint.Target{SiteID: site, Serial: serial}, nil)
}

// APIVersion returns the current API release as a record with no site.
func (s *Service) APIVersion(ctx context.Context) ([]models.Record, error) {
	return s.single(ctx, endpoint.APIVersion, endpoint.Target{}, nil)
}

func (s *Service) APISupportedVersions(ctx context.Context) ([]models.Record, error) {
	return s.single(ctx, endpoint.APISupportedVersions, endpoint.Target{}, nil)
}

// dateWindow checks a date-only window.
func dateWindow(start, end time.Time, class window.PeriodClass) error {
	if _, err := validator.DateOnly("startDate", start); err != nil {
		return err
	}
	if _, err := validator.DateOnly("endDate", end); err != nil {
		return err
	}
	return window.Validate(start, end, class)
}

// timeParams checks a date-time window and returns startTime/endTime.
func timeParams(name endpoint.Name, start, end time.Time, unit window.TimeUnit) (*endpoint.Params, error) {
	if err := window.Validate(start, end, endpoint.MustLookup(name).PeriodClassFor(unit)); err != nil {
		return nil, err
	}
	return endpoint.NewParams().
		Set("startTime", endpoint.DateTime(start)).
		Set("endTime", endpoint.DateTime(end)), nil
}
