package window

import (
	"strings"

	"github.com/tejusbharadwaj/solarmon/internal/validator"
)

// TimeUnit is the vendor's canonical granularity value.
type TimeUnit string

const (
	QuarterOfAnHour TimeUnit = "QUARTER_OF_AN_HOUR"
	Hour            TimeUnit = "HOUR"
	Day             TimeUnit = "DAY"
	WeekUnit        TimeUnit = "WEEK"
	MonthUnit       TimeUnit = "MONTH"
	YearUnit        TimeUnit = "YEAR"
)

// QuarterHourAlias is accepted as an input spelling of QuarterOfAnHour.
const QuarterHourAlias = "15MIN"

var timeUnits = []string{
	string(QuarterOfAnHour),
	string(Hour),
	string(Day),
	string(WeekUnit),
	string(MonthUnit),
	string(YearUnit),
}

// TimeUnits returns the canonical granularity values in vendor order.
func TimeUnits() []string {
	return append([]string(nil), timeUnits...)
}

// NormalizeTimeUnit maps raw (any case, 15MIN allowed) to a TimeUnit.
func NormalizeTimeUnit(raw string) (TimeUnit, error) {
	upper := strings.ToUpper(raw)
	if upper == QuarterHourAlias {
		return QuarterOfAnHour, nil
	}
	v, err := validator.OneOf("timeUnit", upper, timeUnits)
	if err != nil {
		return "", err
	}
	return TimeUnit(v), nil
}

// UnitPolicy maps a granularity to its period class. Units missing from the
// map are unbounded.
type UnitPolicy map[TimeUnit]PeriodClass

// PeriodFor returns the class that applies to unit under policy.
func PeriodFor(unit TimeUnit, policy UnitPolicy) PeriodClass {
	return policy[unit]
}
