package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// printer writes command results in the format picked with --output.
type printer struct {
	out    io.Writer
	format string
}

func validOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
	}
}

// print renders v as JSON or YAML, or the given rows as a table.
func (p printer) print(v interface{}, headers []string, rows [][]string) error {
	switch p.format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(p.out, "(none)")
			return err
		}
		_, err := fmt.Fprintln(p.out, renderTable(headers, rows))
		return err
	}
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// line prints a status line in table mode only.
func (p printer) line(format string, args ...interface{}) {
	if p.format != outputTable {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}
