package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

var supportedFormats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supported []OutputFormat) {
	names := formatNames(supported)

	description := fmt.Sprintf("Output format (%s)", strings.Join(names, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", string(defaultFormat), description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(formatNames(supported), ", "))
}

func formatNames(formats []OutputFormat) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
