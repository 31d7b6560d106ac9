package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/slug"
)

const (
	SectionsSheet = "Sections"
	MetadataSheet = "Metadata"
)

// ExportDocumentExcel writes a workbook listing every section of doc and its metadata.
func ExportDocumentExcel(doc *content.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Error closing Excel file", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SectionsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MetadataSheet); err != nil {
		return nil, fmt.Errorf("failed to create metadata sheet: %w", err)
	}
	for _, sheet := range []string{SectionsSheet, MetadataSheet} {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
			return nil, fmt.Errorf("failed to set sheet view: %w", err)
		}
	}

	headers := []interface{}{"Kind", "Title", "Slug", "Points", "Paragraphs", "Text"}
	if err := f.SetSheetRow(SectionsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	if err := f.SetSheetRow(MetadataSheet, "A1", &[]interface{}{"Section", "Label", "Value"}); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	row, metaRow := 2, 2
	write := func(kind string, sections []content.Section) error {
		for _, s := range sections {
			values := []interface{}{kind, s.Title, slug.Slugify(s.Title), len(s.Points), len(s.Paragraphs), s.Text()}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SectionsSheet, cell, &values); err != nil {
				return err
			}
			row++

			for _, m := range s.Metadata {
				cell, _ := excelize.CoordinatesToCellName(1, metaRow)
				if err := f.SetSheetRow(MetadataSheet, cell, &[]interface{}{s.Title, m.Label, m.Value}); err != nil {
					return err
				}
				metaRow++
			}
		}
		return nil
	}

	if err := write(content.KindIntroduction, doc.Introductions); err != nil {
		return nil, fmt.Errorf("failed to write introductions: %w", err)
	}
	if err := write(content.KindSection, doc.Sections); err != nil {
		return nil, fmt.Errorf("failed to write sections: %w", err)
	}

	f.SetColWidth(SectionsSheet, "B", "B", 40)
	f.SetColWidth(SectionsSheet, "C", "C", 30)
	f.SetColWidth(SectionsSheet, "F", "F", 80)
	f.SetColWidth(MetadataSheet, "A", "C", 30)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func boolPtr(b bool) *bool { return &b }
