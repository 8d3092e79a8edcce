package services

import (
	"bytes"
	"context"
	"fmt"

	"spacrm-backend/models"
	"spacrm-backend/repository"
	"spacrm-backend/utils"

	"github.com/xuri/excelize/v2"
)

const customerSheet = "Customers"

var customerExportHeader = []string{
	"ID",
	"Full Name",
	"Phone Number",
	"Date of Birth",
	"Gender",
	"Address",
	"Skin Type",
	"Profile",
	"Active",
	"Created At",
}

var customerColumnWidths = []float64{38, 28, 16, 14, 10, 36, 14, 12, 8, 20}

type ExportService struct {
	customers *CustomerService
}

func NewExportService(customers *CustomerService) *ExportService {
	return &ExportService{customers: customers}
}

// CustomersXLSX renders every customer matching query as a spreadsheet.
func (s *ExportService) CustomersXLSX(ctx context.Context, query string) ([]byte, error) {
	var rows []models.Customer
	for page := 1; ; page++ {
		res, err := s.customers.Search(ctx, query, page, repository.MaxPageSize)
		if err != nil {
			return nil, err
		}
		rows = append(rows, res.Items...)
		if !res.HasNext {
			break
		}
	}
	return renderCustomers(rows)
}

func renderCustomers(customers []models.Customer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(customerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(customerExportHeader))
	for i, h := range customerExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(customerSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(customerExportHeader), 1)
	if err := f.SetCellStyle(customerSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range customerColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(customerSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, c := range customers {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			c.ID.String(),
			deref(c.FullName),
			deref(c.PhoneNumber),
			"",
			c.Gender,
			c.Address,
			c.SkinType,
			string(c.Kind()),
			yesNo(c.IsActive),
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		if c.DateOfBirth != nil {
			row[3] = utils.FormatDate(*c.DateOfBirth)
		}
		if err := f.SetSheetRow(customerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(customerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
