package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/courtdesk/causelist/internal/models"
)

var demoStates = []models.Option{
	{Value: "1", Text: "Andaman and Nicobar Islands"},
	{Value: "2", Text: "Andhra Pradesh"},
	{Value: "3", Text: "Arunachal Pradesh"},
	{Value: "4", Text: "Assam"},
	{Value: "5", Text: "Bihar"},
	{Value: "6", Text: "Chandigarh"},
	{Value: "7", Text: "Chhattisgarh"},
	{Value: "8", Text: "Dadra and Nagar Haveli"},
	{Value: "9", Text: "Daman and Diu"},
	{Value: "10", Text: "Delhi"},
	{Value: "11", Text: "Goa"},
	{Value: "12", Text: "Gujarat"},
	{Value: "13", Text: "Haryana"},
	{Value: "14", Text: "Himachal Pradesh"},
	{Value: "15", Text: "Jammu and Kashmir"},
	{Value: "16", Text: "Jharkhand"},
	{Value: "17", Text: "Karnataka"},
	{Value: "18", Text: "Kerala"},
	{Value: "19", Text: "Ladakh"},
	{Value: "20", Text: "Lakshadweep"},
	{Value: "21", Text: "Madhya Pradesh"},
	{Value: "22", Text: "Maharashtra"},
	{Value: "23", Text: "Manipur"},
	{Value: "24", Text: "Meghalaya"},
	{Value: "25", Text: "Mizoram"},
	{Value: "26", Text: "Nagaland"},
	{Value: "27", Text: "Odisha"},
	{Value: "28", Text: "Puducherry"},
	{Value: "29", Text: "Punjab"},
	{Value: "30", Text: "Rajasthan"},
	{Value: "31", Text: "Sikkim"},
	{Value: "32", Text: "Tamil Nadu"},
	{Value: "33", Text: "Telangana"},
	{Value: "34", Text: "Tripura"},
	{Value: "35", Text: "Uttar Pradesh"},
	{Value: "36", Text: "Uttarakhand"},
	{Value: "37", Text: "West Bengal"},
}

var demoDistricts = []models.Option{
	{Value: "1", Text: "Central District"},
	{Value: "2", Text: "North District"},
	{Value: "3", Text: "South District"},
	{Value: "4", Text: "East District"},
	{Value: "5", Text: "West District"},
}

var demoComplexes = []models.Option{
	{Value: "1", Text: "District Court Complex"},
	{Value: "2", Text: "Family Court Complex"},
	{Value: "3", Text: "Civil Court Complex"},
}

var demoCourts = []models.Option{
	{Value: "1", Text: "Court of Hon'ble Judge A.K. Sharma"},
	{Value: "2", Text: "Court of Hon'ble Judge R.P. Verma"},
	{Value: "3", Text: "Court of Hon'ble Judge S.K. Gupta"},
	{Value: "4", Text: "Court of Hon'ble Judge M.L. Jain"},
	{Value: "5", Text: "Court of Hon'ble Judge V.K. Singh"},
}

var demoCases = []models.CaseEntry{
	{SrNo: "1", CaseNo: "CS/123/2024", PartyName: "Ram Kumar vs State", Purpose: "Arguments"},
	{SrNo: "2", CaseNo: "CR/456/2024", PartyName: "Rajesh Singh vs Mohan Lal", Purpose: "Evidence"},
	{SrNo: "3", CaseNo: "FIR/789/2024", PartyName: "State vs Suresh Kumar", Purpose: "Bail Hearing"},
	{SrNo: "4", CaseNo: "CS/234/2023", PartyName: "ABC Ltd vs XYZ Pvt Ltd", Purpose: "Final Arguments"},
	{SrNo: "5", CaseNo: "MA/567/2024", PartyName: "Priya Sharma vs Amit Sharma", Purpose: "Interim Relief"},
	{SrNo: "6", CaseNo: "CR/890/2024", PartyName: "Vijay Kumar vs State Bank", Purpose: "Appearance"},
	{SrNo: "7", CaseNo: "CS/345/2024", PartyName: "Sunita Devi vs Municipal Corporation", Purpose: "Hearing"},
	{SrNo: "8", CaseNo: "FIR/123/2024", PartyName: "State vs Rakesh Gupta", Purpose: "Framing of Charges"},
}

// Demo serves fixed demonstration data; every district has the same
// complexes and every complex the same courts.
type Demo struct{}

func NewDemo() *Demo {
	return &Demo{}
}

func cloneOptions(in []models.Option) []models.Option {
	return append([]models.Option(nil), in...)
}

func (d *Demo) States(context.Context) ([]models.Option, error) {
	return cloneOptions(demoStates), nil
}

func (d *Demo) Districts(context.Context, string) ([]models.Option, error) {
	return cloneOptions(demoDistricts), nil
}

func (d *Demo) Complexes(context.Context, string, string) ([]models.Option, error) {
	return cloneOptions(demoComplexes), nil
}

func (d *Demo) Courts(context.Context, string, string, string) ([]models.Option, error) {
	return cloneOptions(demoCourts), nil
}

func (d *Demo) CauseList(_ context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	name := court.CourtName
	if name == "" {
		name = "Court " + court.CourtCode
	}
	return &models.CauseList{
		Date:      date.Format(models.DateLayout),
		CourtCode: court.CourtCode,
		CourtName: name,
		Cases:     append([]models.CaseEntry(nil), demoCases...),
	}, nil
}

// BulkCauseList serves three rows per court whose case numbers are derived
// from the court code, so every file of a bulk run differs.
func (d *Demo) BulkCauseList(_ context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	n, _ := strconv.Atoi(court.CourtCode)
	name := court.CourtName
	if name == "" {
		name = "Court " + court.CourtCode
	}
	return &models.CauseList{
		Date:      date.Format(models.DateLayout),
		CourtCode: court.CourtCode,
		CourtName: name,
		Cases: []models.CaseEntry{
			{SrNo: "1", CaseNo: fmt.Sprintf("CS/%d/2024", 100+n), PartyName: "Ram Kumar vs State", Purpose: "Arguments"},
			{SrNo: "2", CaseNo: fmt.Sprintf("CR/%d/2024", 200+n), PartyName: "Rajesh Singh vs Mohan Lal", Purpose: "Evidence"},
			{SrNo: "3", CaseNo: fmt.Sprintf("FIR/%d/2024", 300+n), PartyName: "State vs Suresh Kumar", Purpose: "Bail Hearing"},
		},
	}, nil
}
