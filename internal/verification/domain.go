package verification

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WaterType distinguishes hot and cold water meters.
type WaterType string

// Water types accepted by the API and the filter form.
const (
	WaterHot  WaterType = "hot"
	WaterCold WaterType = "cold"
)

// Valid reports whether the value is a known water type.
func (w WaterType) Valid() bool {
	return w == WaterHot || w == WaterCold
}

// Label returns the display label for the water type.
func (w WaterType) Label() string {
	switch w {
	case WaterHot:
		return "Hot water"
	case WaterCold:
		return "Cold water"
	default:
		return ""
	}
}

// Employee is the worker who recorded a verification entry.
type Employee struct {
	ID         int64  `json:"id"`
	LastName   string `json:"last_name"`
	Name       string `json:"name"`
	Patronymic string `json:"patronymic"`
}

var titleCaser = cases.Title(language.Und)

// FullName renders "Lastname Firstname Patronymic" with each part
// title-cased, matching how names are written on verification acts.
func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.LastName, e.Name, e.Patronymic} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, titleCaser.String(part))
		}
	}
	return strings.Join(parts, " ")
}

// City is a reference entity; entries are filtered by it.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ActNumber identifies the paper act a verification was written into.
type ActNumber struct {
	ID     int64 `json:"id"`
	Number int64 `json:"act_number"`
}

// RegistryNumber is the state-registry record of the meter type.
type RegistryNumber struct {
	ID     int64  `json:"id"`
	SIType string `json:"si_type"`
	Number string `json:"registry_number"`
}

// Modification is a meter model variant.
type Modification struct {
	ID   int64  `json:"id"`
	Name string `json:"modification_name"`
}

// Series is the act series the entry belongs to.
type Series struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is the service area the meter is installed in.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Entry is one metrological verification record. Related entities are
// optional: a row renders with empty cells when they are absent.
type Entry struct {
	ID                  int64     `json:"id"`
	CompanyID           int64     `json:"company_id"`
	VerificationDate    time.Time `json:"verification_date"`
	EndVerificationDate time.Time `json:"end_verification_date"`
	Interval            int       `json:"interval"`
	FactoryNumber       string    `json:"factory_number"`
	MeterInfo           int64     `json:"meter_info"`
	ManufactureYear     int       `json:"manufacture_year"`
	WaterType           WaterType `json:"water_type"`
	Result              bool      `json:"verification_result"`
	Address             string    `json:"address"`
	ClientFullName      string    `json:"client_full_name"`
	ClientPhone         string    `json:"client_phone"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Employee       *Employee       `json:"employee,omitempty"`
	City           *City           `json:"city,omitempty"`
	ActNumber      *ActNumber      `json:"act_number,omitempty"`
	RegistryNumber *RegistryNumber `json:"registry_number,omitempty"`
	Modification   *Modification   `json:"modification,omitempty"`
	Series         *Series         `json:"series,omitempty"`
	Location       *Location       `json:"location,omitempty"`
}
