// Package export: geçmiş listelerinin Excel çıktısı.
package export

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet: ilk satır başlık, kalanlar veri
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

func (s Sheet) Build() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		idx, err := f.NewSheet(name)
		if err != nil {
			return nil, err
		}
		f.SetActiveSheet(idx)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return nil, err
	}

	header := make([]any, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

// Send: dosyayı indirme olarak döner
func Send(c *fiber.Ctx, filename string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, XLSXContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
