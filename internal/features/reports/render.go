package reports

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"reportdesk/internal/models"
)

// SortFields orders input fields by sortOrder, keeping server order on ties.
func SortFields(fields []models.InputField) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].SortOrder < fields[j].SortOrder
	})
}

// chartBlock matches chart definitions left inline in generated content. The
// charts are listed separately.
var chartBlock = regexp.MustCompile("(?s)```chart.*?```")

// Markdown assembles the printable document of a report: a header with its
// wizard parameters, the generated content, then charts and data files.
func Markdown(r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)

	meta := []struct{ label, value string }{
		{"Status", string(r.Status)},
		{"Industry", r.Industry},
		{"Report type", r.ReportType},
		{"Audience", r.Audience},
		{"Purpose", r.Purpose},
		{"Tone", r.Tone},
		{"Depth", r.Depth},
		{"Created", r.CreatedAt},
	}
	for _, m := range meta {
		if m.value != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", m.label, m.value)
		}
	}
	b.WriteString("\n")

	content := strings.TrimSpace(chartBlock.ReplaceAllString(r.Content, ""))
	if content == "" {
		if r.Status.Terminal() {
			b.WriteString("_This report has no content._\n")
		} else {
			b.WriteString("_The report is still being generated._\n")
		}
	} else {
		b.WriteString(content)
		b.WriteString("\n")
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n## Charts\n")
		for _, c := range r.Charts {
			writeChart(&b, c)
		}
	}

	if len(r.Files) > 0 {
		b.WriteString("\n## Data files\n\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "- %s (%d KB)", f.Filename, f.FileSize/1024)
			if f.DataSummary != "" {
				fmt.Fprintf(&b, ": %s", f.DataSummary)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// chartSeries is the labels/datasets shape of a chart's dataJson.
type chartSeries struct {
	Labels   []interface{} `json:"labels"`
	Datasets []struct {
		Label string        `json:"label"`
		Data  []interface{} `json:"data"`
	} `json:"datasets"`
}

// writeChart renders one chart as a table with a row per label and a column
// per dataset.
func writeChart(b *strings.Builder, c models.ChartData) {
	title := c.Title
	if title == "" {
		title = "Chart"
	}
	fmt.Fprintf(b, "\n### %s", title)
	if c.ChartType != "" {
		fmt.Fprintf(b, " (%s)", strings.ToLower(c.ChartType))
	}
	b.WriteString("\n\n")

	var series chartSeries
	if err := json.Unmarshal([]byte(c.DataJSON), &series); err != nil || len(series.Datasets) == 0 {
		b.WriteString("_Failed to render chart._\n")
		return
	}

	rows := len(series.Labels)
	for _, ds := range series.Datasets {
		if len(ds.Data) > rows {
			rows = len(ds.Data)
		}
	}

	header := []string{"Label"}
	for i, ds := range series.Datasets {
		name := ds.Label
		if name == "" {
			name = fmt.Sprintf("Series %d", i+1)
		}
		header = append(header, name)
	}
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	writeRow(b, header)
	writeRow(b, seps)
	for i := 0; i < rows; i++ {
		row := []string{cell(series.Labels, i)}
		for _, ds := range series.Datasets {
			row = append(row, cell(ds.Data, i))
		}
		writeRow(b, row)
	}
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func cell(values []interface{}, i int) string {
	if i >= len(values) || values[i] == nil {
		return ""
	}
	if f, ok := values[i].(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(values[i])
}

// Render formats a report for the terminal. style is a glamour style name
// ("dark", "light", "notty"); empty picks one from the terminal.
func Render(r *models.Report, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown(r))
}
