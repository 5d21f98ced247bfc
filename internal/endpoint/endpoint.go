// Package endpoint holds the static table of monitoring API endpoints and
// builds validated requests against them.
//
// Everything an endpoint needs to know about policy (window ceiling,
// envelope key, how per-site entries are laid out, whether trailing points
// are trimmed) lives in one table so it can be audited in one place.
package endpoint

import (
	"github.com/tejusbharadwaj/solarmon/internal/window"
)

// Name identifies an endpoint in the table.
type Name string

const (
	SiteList             Name = "siteList"
	SiteDetails          Name = "siteDetails"
	SiteDataPeriod       Name = "siteDataPeriod"
	SitesDataPeriod      Name = "sitesDataPeriod"
	SiteEnergy           Name = "siteEnergy"
	SitesEnergy          Name = "sitesEnergy"
	SiteTimeFrameEnergy  Name = "siteTimeFrameEnergy"
	SitePower            Name = "sitePower"
	SiteOverview         Name = "siteOverview"
	SitesOverview        Name = "sitesOverview"
	SitePowerDetails     Name = "sitePowerDetails"
	SiteEnergyDetails    Name = "siteEnergyDetails"
	SitePowerFlow        Name = "sitePowerFlow"
	SiteStorage          Name = "siteStorage"
	SiteEnvBenefits      Name = "siteEnvBenefits"
	SiteInventory        Name = "siteInventory"
	SiteMeters           Name = "siteMeters"
	SiteSensors          Name = "siteSensors"
	SiteEquipment        Name = "siteEquipment"
	EquipmentData        Name = "equipmentData"
	EquipmentChangeLog   Name = "equipmentChangeLog"
	APIVersion           Name = "apiVersion"
	APISupportedVersions Name = "apiSupportedVersions"
)

// SeriesLayout tells the normalizer where dated values live in a payload.
type SeriesLayout int

const (
	// NoSeries payloads carry no dated value list.
	NoSeries SeriesLayout = iota
	// ValueSeries payloads hold a single "values" list.
	ValueSeries
	// MeterSeries payloads hold a "meters" list, each with its own "values".
	MeterSeries
)

// Spec describes one endpoint.
type Spec struct {
	Name Name
	// Path is a template; {siteId}, {siteIds} and {serial} are substituted
	// with validated identifiers only.
	Path string
	// Envelope is the vendor's top-level key.
	Envelope string
	// Field is the normalized name the payload is rebound under.
	Field string

	// ListKey, when set, names the list inside the envelope that holds one
	// entry per site. SiteKey and PayloadKey locate the site id and payload
	// inside each entry; an empty PayloadKey means the entry is the payload.
	ListKey    string
	SiteKey    string
	PayloadKey string

	// NoSite marks endpoints whose records carry no site id.
	NoSite bool

	// Period is the fixed window ceiling. UnitPolicy, when set, overrides it
	// per time unit.
	Period     window.PeriodClass
	UnitPolicy window.UnitPolicy

	Series SeriesLayout
	// TrimEnd drops points dated at or after the EndParam query value.
	TrimEnd  bool
	EndParam string
}

// Batch reports whether records come from a per-site list.
func (s Spec) Batch() bool { return s.ListKey != "" }

// PeriodClassFor returns the window ceiling for unit.
func (s Spec) PeriodClassFor(unit window.TimeUnit) window.PeriodClass {
	if s.UnitPolicy != nil {
		return window.PeriodFor(unit, s.UnitPolicy)
	}
	return s.Period
}

var fineGrainedUnits = window.UnitPolicy{
	window.QuarterOfAnHour: window.Month,
	window.Hour:            window.Month,
	window.Day:             window.Year,
}

var table = map[Name]Spec{
	SiteList: {
		Name: SiteList, Path: "/sites/list", Envelope: "sites", Field: "siteList",
		ListKey: "site", SiteKey: "id",
	},
	SiteDetails: {
		Name: SiteDetails, Path: "/site/{siteId}/details", Envelope: "details", Field: "siteDetails",
	},
	SiteDataPeriod: {
		Name: SiteDataPeriod, Path: "/site/{siteId}/dataPeriod", Envelope: "dataPeriod", Field: "siteDataPeriod",
	},
	SitesDataPeriod: {
		Name: SitesDataPeriod, Path: "/sites/{siteIds}/dataPeriod", Envelope: "datePeriodList", Field: "siteDataPeriod",
		ListKey: "siteEnergyList", SiteKey: "siteId", PayloadKey: "dataPeriod",
	},
	SiteEnergy: {
		Name: SiteEnergy, Path: "/site/{siteId}/energy", Envelope: "energy", Field: "siteEnergy",
		UnitPolicy: fineGrainedUnits, Series: ValueSeries, TrimEnd: true, EndParam: "endDate",
	},
	SitesEnergy: {
		Name: SitesEnergy, Path: "/sites/{siteIds}/energy", Envelope: "sitesEnergy", Field: "siteEnergy",
		ListKey: "siteEnergyList", SiteKey: "siteId", PayloadKey: "energyValues",
		UnitPolicy: fineGrainedUnits, Series: ValueSeries, TrimEnd: true, EndParam: "endDate",
	},
	SiteTimeFrameEnergy: {
		Name: SiteTimeFrameEnergy, Path: "/site/{siteId}/timeFrameEnergy", Envelope: "timeFrameEnergy", Field: "siteTimeFrameEnergy",
		Period: window.Year,
	},
	SitePower: {
		Name: SitePower, Path: "/site/{siteId}/power", Envelope: "power", Field: "sitePower",
		Period: window.Month, Series: ValueSeries,
	},
	SiteOverview: {
		Name: SiteOverview, Path: "/site/{siteId}/overview", Envelope: "overview", Field: "siteOverview",
	},
	SitesOverview: {
		Name: SitesOverview, Path: "/sites/{siteIds}/overview", Envelope: "sitesOverviews", Field: "siteOverview",
		ListKey: "siteEnergyList", SiteKey: "siteId", PayloadKey: "siteOverview",
	},
	SitePowerDetails: {
		Name: SitePowerDetails, Path: "/site/{siteId}/powerDetails", Envelope: "powerDetails", Field: "sitePowerDetails",
		Period: window.Month, Series: MeterSeries,
	},
	SiteEnergyDetails: {
		Name: SiteEnergyDetails, Path: "/site/{siteId}/energyDetails", Envelope: "energyDetails", Field: "siteEnergyDetails",
		UnitPolicy: fineGrainedUnits, Series: MeterSeries, TrimEnd: true, EndParam: "endTime",
	},
	SitePowerFlow: {
		Name: SitePowerFlow, Path: "/site/{siteId}/currentPowerFlow", Envelope: "siteCurrentPowerFlow", Field: "sitePowerFlow",
	},
	SiteStorage: {
		Name: SiteStorage, Path: "/site/{siteId}/storageData", Envelope: "storageData", Field: "siteStorage",
		Period: window.Week,
	},
	SiteEnvBenefits: {
		Name: SiteEnvBenefits, Path: "/site/{siteId}/envBenefits", Envelope: "envBenefits", Field: "siteEnvBenefits",
	},
	SiteInventory: {
		Name: SiteInventory, Path: "/site/{siteId}/inventory", Envelope: "Inventory", Field: "siteInventory",
	},
	SiteMeters: {
		Name: SiteMeters, Path: "/site/{siteId}/meters", Envelope: "meterEnergyDetails", Field: "siteMeters",
		UnitPolicy: fineGrainedUnits, Series: MeterSeries, TrimEnd: true, EndParam: "endTime",
	},
	SiteSensors: {
		Name: SiteSensors, Path: "/equipment/{siteId}/sensors", Envelope: "SiteSensors", Field: "siteSensors",
	},
	SiteEquipment: {
		Name: SiteEquipment, Path: "/equipment/{siteId}/list", Envelope: "reporters", Field: "siteEquipment",
	},
	EquipmentData: {
		Name: EquipmentData, Path: "/equipment/{siteId}/{serial}/data", Envelope: "data", Field: "equipmentData",
		Period: window.Week,
	},
	EquipmentChangeLog: {
		Name: EquipmentChangeLog, Path: "/equipment/{siteId}/{serial}/changeLog", Envelope: "ChangeLog", Field: "equipmentChangeLog",
	},
	APIVersion: {
		Name: APIVersion, Path: "/version/current", Envelope: "version", Field: "apiVersion", NoSite: true,
	},
	APISupportedVersions: {
		Name: APISupportedVersions, Path: "/version/supported", Envelope: "supported", Field: "apiSupportedVersions", NoSite: true,
	},
}

// Lookup returns the endpoint registered under name.
func Lookup(name Name) (Spec, bool) {
	s, ok := table[name]
	return s, ok
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name Name) Spec {
	s, ok := table[name]
	if !ok {
		panic("endpoint: unknown endpoint " + string(name))
	}
	return s
}

// Names returns every registered endpoint name.
func Names() []Name {
	names := make([]Name, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	return names
}
