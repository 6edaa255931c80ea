package webapp

import (
	"bytes"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/adrianhv34-code/inventario-app/internal/db"
	"github.com/adrianhv34-code/inventario-app/internal/report"
)

// inventoryReportXLSX builds the per-material summary as a spreadsheet.
func inventoryReportXLSX(rows []report.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"grado_acero", "diametro", "proveedor", "total_rollos", "peso_promedio", "origen_peso",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	rowNum := 2
	for _, row := range rows {
		excelRow := []interface{}{
			row.Grade,
			row.Diameter,
			row.Supplier,
			row.TotalRolls,
			row.Weight,
			string(row.Tag),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		rowNum++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// machineReportXLSX builds the machine-run listing as a spreadsheet.
func machineReportXLSX(recs []db.MachineRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"maquina", "usuario", "grado_acero", "diametro",
		"peso1", "peso2", "peso3", "peso4", "peso5", "fecha",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	rowNum := 2
	for _, m := range recs {
		excelRow := []interface{}{
			m.Machine,
			m.Username,
			m.Grade,
			m.Diameter,
			m.Weights[0], m.Weights[1], m.Weights[2], m.Weights[3], m.Weights[4],
			time.Unix(m.CreatedAt, 0).UTC().Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		rowNum++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
