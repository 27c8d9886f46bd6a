package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// PrintTable renders data as a boxed table. The first row is the header.
func PrintTable(data [][]string, writer io.Writer) {
	if len(data) == 0 {
		return
	}

	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.WithWriter(writer).Printfln("Failed to render table: %s", err.Error())
		return
	}

	fmt.Fprintln(writer, str)
}
