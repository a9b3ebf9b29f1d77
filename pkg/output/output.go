package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/campuscoders/campus-cli/pkg/config"
	"github.com/fatih/color"
	json "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	return ParseFormat(config.GetString("output.format"))
}

// ParseFormat maps a flag value onto a format, defaulting to text.
func ParseFormat(format string) OutputFormat {
	switch format {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Field is one labelled value of a record. Records keep field order.
type Field struct {
	Key   string
	Value interface{}
}

// Printer writes command output in one format.
type Printer struct {
	Out    io.Writer
	Format OutputFormat
}

// New returns a Printer for w. A nil w means stdout.
func New(w io.Writer, format OutputFormat) *Printer {
	if w == nil {
		w = color.Output
	}
	return &Printer{Out: w, Format: format}
}

// JSON reports whether output is machine readable. Status messages are
// suppressed in that mode so stdout stays valid JSON.
func (p *Printer) JSON() bool {
	return p.Format == FormatJSON
}

func (p *Printer) Success(msg string, args ...interface{}) {
	p.status(color.FgGreen, "", msg, args...)
}

func (p *Printer) Error(msg string, args ...interface{}) {
	p.status(color.FgRed, "Error: ", msg, args...)
}

func (p *Printer) Info(msg string, args ...interface{}) {
	p.status(color.FgCyan, "", msg, args...)
}

func (p *Printer) Warning(msg string, args ...interface{}) {
	p.status(color.FgYellow, "Warning: ", msg, args...)
}

func (p *Printer) status(attr color.Attribute, prefix, msg string, args ...interface{}) {
	if p.JSON() {
		return
	}
	color.New(attr).Fprintf(p.Out, prefix+msg+"\n", args...)
}

// Println writes a plain line in text and table modes.
func (p *Printer) Println(args ...interface{}) {
	if p.JSON() {
		return
	}
	fmt.Fprintln(p.Out, args...)
}

// Print outputs data in the configured format with optional title
func (p *Printer) Print(title string, data interface{}) error {
	if p.JSON() {
		return p.writeJSON(data)
	}
	if title != "" {
		fmt.Fprintf(p.Out, "%s:\n", title)
	}
	pretty, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.Out, pretty)
	return nil
}

// List prints items as JSON, or as a table of rows otherwise. Text mode
// prints the rows without the header line.
func (p *Printer) List(items interface{}, headers []string, rows [][]string) error {
	switch p.Format {
	case FormatJSON:
		return p.writeJSON(items)
	case FormatTable:
		p.table(headers, rows)
	default:
		p.table(nil, rows)
	}
	return nil
}

// Record prints a single record in field order.
func (p *Printer) Record(title string, fields []Field) error {
	switch p.Format {
	case FormatJSON:
		obj := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			obj[f.Key] = f.Value
		}
		return p.writeJSON(obj)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		p.table([]string{"Field", "Value"}, rows)
		return nil
	}

	if title != "" {
		color.New(color.Bold).Fprintf(p.Out, "%s\n", title)
	}
	bold := color.New(color.Bold)
	for _, f := range fields {
		bold.Fprint(p.Out, f.Key+": ")
		fmt.Fprintf(p.Out, "%v\n", f.Value)
	}
	return nil
}

func (p *Printer) writeJSON(v interface{}) error {
	data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

func (p *Printer) table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	if len(headers) > 0 {
		for i, h := range headers {
			bold.Fprint(w, h)
			if i < len(headers)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

// FormatAsJSON converts data to JSON string (convenience function)
func FormatAsJSON(data interface{}) (string, error) {
	out, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FormatAsPrettyJSON converts data to pretty JSON string (convenience function)
func FormatAsPrettyJSON(data interface{}) (string, error) {
	out, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
