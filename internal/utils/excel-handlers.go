package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ReadExcelFile reads an uploaded workbook into header-keyed rows. Numeric
// looking cells come back as float64, everything else as string, empty
// cells as nil. When sheetName is empty the first sheet is used.
func ReadExcelFile(c *gin.Context, formFieldName, sheetName string) ([]map[string]interface{}, string, error) {
	file, err := c.FormFile(formFieldName)
	if err != nil {
		return nil, ``, fmt.Errorf("file upload error: %w", err)
	}
	fileName := file.Filename

	f, err := file.Open()
	if err != nil {
		return nil, fileName, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close()

	xlsx, err := excelize.OpenReader(f)
	if err != nil {
		return nil, fileName, fmt.Errorf("unable to read Excel file: %w", err)
	}

	if sheetName == "" {
		sheets := xlsx.GetSheetList()
		if len(sheets) == 0 {
			return nil, fileName, errors.New("no sheet found in the Excel file")
		}
		sheetName = sheets[0]
	}

	rows, err := xlsx.GetRows(sheetName)
	if err != nil {
		return nil, fileName, fmt.Errorf("unable to read rows from sheet: %w", err)
	}

	if len(rows) < 2 {
		return nil, fileName, errors.New("no data found in the Excel file")
	}

	headers := rows[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var results []map[string]interface{}

	for _, row := range rows[1:] {
		record := make(map[string]interface{})
		for j, columnName := range headers {
			if j >= len(row) || strings.TrimSpace(row[j]) == "" {
				record[columnName] = nil
				continue
			}

			cell := row[j]
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				record[columnName] = f
			} else {
				record[columnName] = cell
			}
		}
		results = append(results, record)
	}

	return results, fileName, nil
}

// WriteExcelFile writes headers plus rows onto a single sheet and saves
// the workbook at path.
func WriteExcelFile(path, sheetName string, headers []string, rows [][]interface{}) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}

	index, err := xlsx.NewSheet(sheetName)
	if err != nil {
		return err
	}
	xlsx.SetActiveSheet(index)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := xlsx.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := xlsx.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	return xlsx.SaveAs(path)
}
