package validator

// Closed vendor enumerations. Casing is the vendor's and matching is exact.
var (
	MeterKinds = []string{"Production", "Consumption", "SelfConsumption", "FeedIn", "Purchased"}

	SystemUnits = []string{"Metrics", "Imperial"}

	PeriodLengths = []string{"Day", "Week", "Month", "Year"}

	SortProperties = []string{
		"Name", "Country", "State", "City", "Address", "Zip", "Status",
		"PeakPower", "InstallationDate", "Amount", "MaxSeverity", "CreationTime",
	}

	SortOrders = []string{"ASC", "DESC"}

	SiteStatuses = []string{"Active", "Pending", "Disabled", "All"}
)
