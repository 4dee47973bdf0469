package verificationhttp

import (
	"time"

	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/verification"
	"github.com/veritrack/veritrack/internal/view"
)

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
	tableColumns   = 12
)

// Badge is a coloured status label.
type Badge struct {
	Label string
	Class string
}

// Row is the display form of one verification entry. Every derived
// field is computed here; the underlying Entry is never mutated.
type Row struct {
	ID               int64
	VerificationDate string
	EndDate          string
	FactoryNumber    string
	MeterInfo        int64
	WaterType        string
	Result           Badge
	Verified         bool
	EmployeeName     string
	CityName         string
	ActNumber        int64
	RegistryNumber   string
	SIType           string
	Modification     string
	SeriesName       string
	LocationName     string
	Address          string
	ClientFullName   string
	ClientPhone      string
	CreatedAt        string
}

// ViewModel feeds the verification list template.
type ViewModel struct {
	CompanyID    int64
	Filters      listview.FilterSet
	Limit        int
	LimitOptions []int
	Rows         []Row
	ColSpan      int
	Stats        listview.Stats
	Pager        *view.Pager
	Query        string
	CSVReportURL string
	PDFReportURL string
	LoadError    string
}

func buildRows(items []verification.Entry, loc *time.Location) []Row {
	rows := make([]Row, 0, len(items))
	for _, entry := range items {
		row := Row{
			ID:               entry.ID,
			VerificationDate: entry.VerificationDate.Format(dateLayout),
			EndDate:          entry.EndVerificationDate.Format(dateLayout),
			FactoryNumber:    entry.FactoryNumber,
			MeterInfo:        entry.MeterInfo,
			WaterType:        entry.WaterType.Label(),
			Verified:         entry.Result,
			Address:          entry.Address,
			ClientFullName:   entry.ClientFullName,
			ClientPhone:      entry.ClientPhone,
			CreatedAt:        entry.CreatedAt.In(loc).Format(dateTimeLayout),
		}
		if entry.Result {
			row.Result = Badge{Label: "Verified", Class: "badge-success"}
		} else {
			row.Result = Badge{Label: "Not verified", Class: "badge-danger"}
		}
		if entry.Employee != nil {
			row.EmployeeName = entry.Employee.FullName()
		}
		if entry.City != nil {
			row.CityName = entry.City.Name
		}
		if entry.ActNumber != nil {
			row.ActNumber = entry.ActNumber.Number
		}
		if entry.RegistryNumber != nil {
			row.RegistryNumber = entry.RegistryNumber.Number
			row.SIType = entry.RegistryNumber.SIType
		}
		if entry.Modification != nil {
			row.Modification = entry.Modification.Name
		}
		if entry.Series != nil {
			row.SeriesName = entry.Series.Name
		}
		if entry.Location != nil {
			row.LocationName = entry.Location.Name
		}
		rows = append(rows, row)
	}
	return rows
}
