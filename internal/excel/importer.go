package excel

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/hostelhunt/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel, CSV or text file
	SheetName        string // Sheet to import, the first sheet when empty
	CodeColumn       string // Column with the token code
	CategoryColumn   string // Column with the colour category
	FirstHintColumn  string
	SecondHintColumn string
	ThirdHintColumn  string
	StartRow         int    // The row to start importing from (1-based index)
	Category         string // Fallback category; text files default to the file name prefix
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		CodeColumn:       "A",
		CategoryColumn:   "B",
		FirstHintColumn:  "C",
		SecondHintColumn: "D",
		ThirdHintColumn:  "E",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// TokenWriter stores provisioned tokens
type TokenWriter interface {
	Upsert(ctx context.Context, token *models.Token) (created bool, err error)
	// UpsertCode stores a code without touching its hints
	UpsertCode(ctx context.Context, code, category string) (created bool, err error)
}

// ImportTokens imports tokens from an Excel, CSV or plain text file.
//
// Text files hold one code per line, like "red_tokens.txt", and take their
// category from the part of the file name before the first underscore.
// Importing them leaves the hints of known codes unchanged.
func ImportTokens(ctx context.Context, w TokenWriter, config ImportConfig) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".csv":
		return importFromCSV(ctx, w, config)
	case ".txt":
		return importFromText(ctx, w, config)
	default:
		return importFromExcel(ctx, w, config)
	}
}

// importFromExcel imports tokens from an Excel file
func importFromExcel(ctx context.Context, w TokenWriter, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	cols, err := resolveColumns(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		processRow(ctx, w, row, cols, config.Category, result, i+1)
	}
	return result, nil
}

// importFromCSV imports tokens from a CSV file laid out like the Excel sheet
func importFromCSV(ctx context.Context, w TokenWriter, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	cols, err := resolveColumns(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		processRow(ctx, w, row, cols, config.Category, result, rowNum)
	}
	return result, nil
}

// importFromText imports bare token codes, one per line
func importFromText(ctx context.Context, w TokenWriter, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %w", err)
	}
	defer file.Close()

	category := config.Category
	if category == "" {
		base := filepath.Base(config.FilePath)
		category, _, _ = strings.Cut(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	}

	result := &ImportResult{Errors: make([]string, 0)}
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		code := strings.TrimSpace(scanner.Text())
		if code == "" {
			continue
		}
		result.TotalProcessed++
		if err := validate(code, category); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", lineNum, err))
			continue
		}
		created, err := w.UpsertCode(ctx, code, category)
		countWrite(result, created, err, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading text file: %w", err)
	}
	return result, nil
}

// columns holds zero-based indexes of the configured columns, -1 when unset
type columns struct {
	code, category, first, second, third int
}

func resolveColumns(config ImportConfig) (columns, error) {
	var cols columns
	targets := []struct {
		name string
		dst  *int
	}{
		{config.CodeColumn, &cols.code},
		{config.CategoryColumn, &cols.category},
		{config.FirstHintColumn, &cols.first},
		{config.SecondHintColumn, &cols.second},
		{config.ThirdHintColumn, &cols.third},
	}
	for _, target := range targets {
		if target.name == "" {
			*target.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(target.name)
		if err != nil {
			return columns{}, fmt.Errorf("invalid column %q: %w", target.name, err)
		}
		*target.dst = n - 1
	}
	if cols.code < 0 {
		return columns{}, fmt.Errorf("code column is required")
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// processRow validates a single sheet row and stores it
func processRow(ctx context.Context, w TokenWriter, row []string, cols columns, fallbackCategory string, result *ImportResult, rowNum int) {
	code := cell(row, cols.code)
	if code == "" {
		// blank line
		return
	}
	result.TotalProcessed++

	token := &models.Token{
		Code:       code,
		Category:   cell(row, cols.category),
		FirstHint:  cell(row, cols.first),
		SecondHint: cell(row, cols.second),
		ThirdHint:  cell(row, cols.third),
	}
	if token.Category == "" {
		token.Category = fallbackCategory
	}
	storeToken(ctx, w, token, result, rowNum)
}

func storeToken(ctx context.Context, w TokenWriter, token *models.Token, result *ImportResult, rowNum int) {
	if err := validate(token.Code, token.Category); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}
	created, err := w.Upsert(ctx, token)
	countWrite(result, created, err, rowNum)
}

func validate(code, category string) error {
	if strings.ContainsAny(code, " \t") {
		return fmt.Errorf("token code %q must be a single word", code)
	}
	if category == "" {
		return errors.New("category cannot be empty")
	}
	return nil
}

func countWrite(result *ImportResult, created bool, err error, rowNum int) {
	switch {
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	case created:
		result.Created++
	default:
		result.Updated++
	}
}
