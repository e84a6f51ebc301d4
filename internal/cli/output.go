package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/unildd"
	"github.com/simonhull/unildd/internal/hostcompat"
)

// fileReport is the printable result for one input path.
type fileReport struct {
	Path    string         `json:"path" yaml:"path"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Objects []objectReport `json:"objects" yaml:"objects"`
}

type objectReport struct {
	unildd.Object `yaml:",inline"`
	Error         *unildd.ParsingError `json:"error" yaml:"error"`
	Host          hostcompat.Compat    `json:"host,omitempty" yaml:"host,omitempty"`
}

// buildReports converts read results into reports. host is nil unless
// --host-check was given.
func buildReports(results []unildd.FileResult, host *hostcompat.Host) []fileReport {
	reports := make([]fileReport, 0, len(results))
	for _, r := range results {
		rep := fileReport{Path: r.Path, Objects: []objectReport{}}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		for _, o := range r.Collection {
			or := objectReport{Object: o.Object, Error: o.Err}
			if host != nil {
				or.Host = hostcompat.Unknown
				if o.OK() {
					or.Host = host.Check(o.Object)
				}
			}
			rep.Objects = append(rep.Objects, or)
		}
		reports = append(reports, rep)
	}
	return reports
}

func writeReports(w io.Writer, format OutputFormat, reports []fileReport, withHost bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return writeTable(w, reports, withHost)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeTable(w io.Writer, reports []fileReport, withHost bool) error {
	headers := []string{"OBJECT", "FORMAT", "64-BIT", "OS", "TYPE", "CPU", "STRIPPED", "INTERPRETER", "LIBRARIES"}
	if withHost {
		headers = append(headers, "HOST")
	}
	headers = append(headers, "ERROR")

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	for _, rep := range reports {
		if rep.Error != "" {
			row := make([]string, len(headers))
			row[0] = rep.Path
			for i := 1; i < len(row)-1; i++ {
				row[i] = "-"
			}
			row[len(row)-1] = rep.Error
			if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
				return err
			}
			continue
		}

		for _, o := range rep.Objects {
			row := []string{
				objectLabel(rep.Path, o.Object),
				dash(o.ExecutableFormat),
				strconv.FormatBool(o.Is64),
				dash(o.OSType),
				dash(o.FileType),
				dash(cpuLabel(o.Object)),
				strconv.FormatBool(o.IsStripped),
				dash(o.Interpreter),
				dash(strings.Join(o.Libraries, ", ")),
			}
			if withHost {
				row = append(row, string(o.Host))
			}
			errText := ""
			if o.Error != nil {
				errText = fmt.Sprintf("[%d] %s", o.Error.Code, o.Error.Message)
			}
			row = append(row, errText)
			if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// objectLabel identifies an object by the input path, its enclosing
// containers after the first (which is the input itself), and its name.
func objectLabel(path string, obj unildd.Object) string {
	if len(obj.MemberPath) == 0 {
		return path
	}
	parts := append([]string{path}, obj.MemberPath[1:]...)
	return strings.Join(append(parts, obj.Name), " -> ")
}

func cpuLabel(obj unildd.Object) string {
	if obj.CPUSubtype == "" {
		return obj.CPUType
	}
	return obj.CPUType + " (" + obj.CPUSubtype + ")"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
