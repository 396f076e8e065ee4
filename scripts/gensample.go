// Generates a sample ordens.xlsx in the shape the planning team exports:
// banner rows, header on the fourth line, OS column as numeric cells.
// Run with: go run scripts/gensample.go [path]
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	path := "ordens.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f := excelize.NewFile()
	sheet := "Plan1"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	rows := [][]interface{}{
		{"Programação semanal de manutenção"},
		{},
		{"Gerado em", "2025-08-25"},
		{"Status", "OS", "Operação", "Material", "Quantidade", "Centro", "Máscara"},
		{"LIB", 6000794541, "0010", "RLM-6205", 2, "P100", "Trocar rolamento do mancal LA\nVerificar folga axial\nReapertar base"},
		{"LIB", 6000794541, "0020", "", 0, "P100", "Alinhar conjunto motor-bomba\nRegistrar leituras no relatório"},
		{"LIB", 6000794541, "0030", "COR-B38", 1, "P100", "Substituir correia B-38"},
		{"LIB", 6000794542, "0010", "", 0, "P200", "Inspecionar vedação do redutor"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			log.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Fatal(err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Sample spreadsheet written to %s\n", path)
}
