package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Report output formats accepted by the mismatch-report command.
const (
	OutputJSON  = "json"
	OutputTable = "table"
	OutputXLSX  = "xlsx"
	OutputPDF   = "pdf"
)

// ReportFlags are the flags of the mismatch-report command.
type ReportFlags struct {
	ConfigPath string
	Hours      int
	Start      string
	End        string
	Summary    bool
	Format     string
	Out        string
	Verbose    bool
}

// HasRange reports whether both -start and -end were given.
func (f ReportFlags) HasRange() bool {
	return f.Start != "" && f.End != ""
}

// ParseReportFlags parses report flags from args. A zero Hours means the
// configured default applies.
func ParseReportFlags(args []string, stderr io.Writer) (ReportFlags, error) {
	var flags ReportFlags
	fs := flag.NewFlagSet("mismatch-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.IntVar(&flags.Hours, "hours", 0, "Look-back window in hours (default from config)")
	fs.StringVar(&flags.Start, "start", "", "Window start (RFC 3339 or YYYY-MM-DD); needs -end")
	fs.StringVar(&flags.End, "end", "", "Window end (RFC 3339 or YYYY-MM-DD); needs -start")
	fs.BoolVar(&flags.Summary, "summary", false, "Print the payment method summary instead")
	fs.StringVar(&flags.Format, "format", OutputTable, "Output format: table, json, xlsx or pdf")
	fs.StringVar(&flags.Out, "out", "", "Output file (default stdout)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return ReportFlags{}, err
	}

	flags.Format = strings.ToLower(flags.Format)
	switch flags.Format {
	case OutputJSON, OutputTable, OutputXLSX, OutputPDF:
	default:
		return ReportFlags{}, fmt.Errorf("unknown format %q", flags.Format)
	}
	if (flags.Start == "") != (flags.End == "") {
		return ReportFlags{}, fmt.Errorf("-start and -end must be given together")
	}
	// -start/-end replace the hours window, so -hours only matters without them.
	if flags.Hours < 0 && !flags.HasRange() {
		return ReportFlags{}, fmt.Errorf("-hours must be at least 1")
	}
	if flags.Summary && flags.Start != "" {
		return ReportFlags{}, fmt.Errorf("-summary only supports -hours")
	}
	return flags, nil
}

// ImportFlags are the flags of the import-orders command.
type ImportFlags struct {
	ConfigPath string
	Input      string
	Verbose    bool
}

// ParseImportFlags parses import flags from args. The input file is the
// single positional argument; "-" or none reads stdin.
func ParseImportFlags(args []string, stderr io.Writer) (ImportFlags, error) {
	var flags ImportFlags
	fs := flag.NewFlagSet("import-orders", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return ImportFlags{}, err
	}
	switch fs.NArg() {
	case 0:
		flags.Input = "-"
	case 1:
		flags.Input = fs.Arg(0)
	default:
		return ImportFlags{}, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	return flags, nil
}
