package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/veritrack/veritrack/internal/verification"
)

const dateLayout = "02.01.2006"

var csvHeader = []string{
	"verification_date", "end_verification_date", "factory_number", "meter_info",
	"water_type", "result", "employee", "city", "act_number",
	"address", "client_full_name", "client_phone",
}

// WriteEntriesCSV streams verification entries as CSV.
func WriteEntriesCSV(w io.Writer, entries []verification.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := cw.Write(entryRecord(entry)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func entryRecord(entry verification.Entry) []string {
	result := "not verified"
	if entry.Result {
		result = "verified"
	}
	var employee, city, actNumber string
	if entry.Employee != nil {
		employee = entry.Employee.FullName()
	}
	if entry.City != nil {
		city = entry.City.Name
	}
	if entry.ActNumber != nil {
		actNumber = strconv.FormatInt(entry.ActNumber.Number, 10)
	}
	return []string{
		entry.VerificationDate.Format(dateLayout),
		entry.EndVerificationDate.Format(dateLayout),
		entry.FactoryNumber,
		strconv.FormatInt(entry.MeterInfo, 10),
		entry.WaterType.Label(),
		result,
		employee,
		city,
		actNumber,
		entry.Address,
		entry.ClientFullName,
		entry.ClientPhone,
	}
}
