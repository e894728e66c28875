package directory

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/xuri/excelize/v2"

	"github.com/Graziano10/referral-admin/client"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv, json or xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv, json or xlsx)", s)
	}
}

// Columns is the header row of tabular exports.
var Columns = []string{
	"_id", "user_id", "firstName", "lastName", "email", "phone", "type",
	"companyName", "vatNumber", "region", "role", "verified",
	"referralCode", "referredBy", "createdAt",
}

func row(p client.ProfileSummary) []string {
	return []string{
		p.ID, string(p.UserID), p.FirstName, p.LastName, p.Email, p.Phone, string(p.Type),
		p.CompanyName, p.VATNumber, p.Region, p.Role, strconv.FormatBool(p.Verified),
		p.ReferralCode, p.ReferredBy, formatTime(p.CreatedAt),
	}
}

func formatTime(t *strfmt.DateTime) string {
	if t == nil {
		return ""
	}
	return time.Time(*t).UTC().Format(time.RFC3339)
}

// WriteExport renders docs to w in format f.
func WriteExport(w io.Writer, f Format, docs []client.ProfileSummary) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if docs == nil {
			docs = []client.ProfileSummary{}
		}
		return enc.Encode(docs)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return err
		}
		for _, p := range docs {
			if err := cw.Write(row(p)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatXLSX:
		return writeXLSX(w, docs)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

const sheetName = "Profiles"

func writeXLSX(w io.Writer, docs []client.ProfileSummary) error {
	x := excelize.NewFile()
	defer func() { _ = x.Close() }()

	if err := x.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := x.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, p := range docs {
		cells := row(p)
		vals := make([]interface{}, len(cells))
		for j, c := range cells {
			vals[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheetName, cell, &vals); err != nil {
			return err
		}
	}
	_, err := x.WriteTo(w)
	return err
}
