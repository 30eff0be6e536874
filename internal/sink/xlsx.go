package sink

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/model"
)

var xlsxHeaders = []string{
	"name", "link", "publisher", "email", "subscriber_count", "social_accounts", "is_complete",
}

// XLSX writes the canonical records as a spreadsheet.
type XLSX struct {
	path  string
	sheet string
}

// NewXLSX creates an XLSX sink writing to path.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path, sheet: "Newsletters"}
}

func (s *XLSX) Name() string { return "xlsx" }

// Write builds the workbook and saves it. xlsx.File.Save truncates in one
// pass, so a failure mid-build never touches the target file.
func (s *XLSX) Write(_ context.Context, newsletters []model.Newsletter, _ *model.RunResult) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(s.sheet)
	if err != nil {
		return eris.Wrapf(ErrSinkWrite, "xlsx: add sheet: %v", err)
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeaders {
		header.AddCell().SetString(h)
	}

	for _, n := range newsletters {
		r := rowFor(n)
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Link)
		row.AddCell().SetString(r.Publisher)
		row.AddCell().SetString(r.Email)
		if n.SubscriberCount != nil {
			row.AddCell().SetInt(*n.SubscriberCount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(r.SocialAccounts)
		row.AddCell().SetBool(n.Complete)
	}

	if err := file.Save(s.path); err != nil {
		return eris.Wrapf(ErrSinkWrite, "xlsx: save %s: %v", s.path, err)
	}

	zap.L().Info("xlsx: dataset written",
		zap.String("path", s.path),
		zap.Int("records", len(newsletters)),
	)
	return nil
}
