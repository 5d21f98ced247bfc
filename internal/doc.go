// Package solarmon is a client for a vendor solar monitoring REST API.
//
// # Architecture
//
// The client is structured into several packages:
//   - validator: site ids, serial numbers, API keys and vendor enumerations
//   - window: date window ceilings and time unit normalization
//   - endpoint: the endpoint table and request building
//   - api: HTTP transport with rate limiting and Prometheus metrics
//   - normalizer: reshapes vendor responses into one record per site
//   - monitoring: one method per API operation, plus CSV export
//   - render: text and CSV output
//   - database: PostgreSQL storage for collected readings
//   - scheduler: periodic energy collection
//
// Every operation validates its inputs before any request is sent. A window
// that is too wide for its time unit fails with window.ErrWindow, and a bad
// identifier with validator.ErrValidation.
//
// Example Usage
//
//	client := api.NewClient(api.DefaultBaseURL, api.WithLogger(logger))
//	svc, err := monitoring.NewService(client, key, logger)
//	if err != nil {
//	    return err
//	}
//	records, err := svc.SiteEnergy(ctx, []string{"12345"}, monitoring.EnergyQuery{
//	    Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	    End:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
//	    TimeUnit: "MONTH",
//	}, monitoring.LogAndContinue(logger))
//
// For more information about specific packages, see their respective
// documentation.
package solarmon
