package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintModelInfo outputs the description of the loaded classifier.
func PrintModelInfo(info schema.ModelInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, info)
		}, "Wrote model info")
	case schema.TextOut, "":
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelTable(w, info, cfg)
		}, "Wrote model info")
	default:
		return fmt.Errorf("output format %q is not available for model inspection", cfg.Output)
	}
}

// writeModelTable prints the model attributes as a two-column table.
func writeModelTable(w io.Writer, info schema.ModelInfo, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%sModel %s\n", icon(cfg, "🧠"), info.Name); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Attribute", "Value"})

	classes := make([]string, len(info.Classes))
	for i, c := range info.Classes {
		classes[i] = strconv.Itoa(c)
	}
	data := [][]string{
		{"Kind", string(info.Kind)},
		{"Path", info.Path},
		{"Features", strings.Join(info.Features, ", ")},
		{"Classes", strings.Join(classes, ", ")},
	}
	if info.Trees > 0 {
		data = append(data, []string{"Trees", strconv.Itoa(info.Trees)})
	}
	data = append(data, []string{"Fingerprint", info.Fingerprint})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
