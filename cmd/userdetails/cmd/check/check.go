// Package check provides the check command, which validates a user details
// record file with the same rules the form applies.
package check

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/internal/cmd/output"
	"github.com/agentstation/userdetails/internal/view"
	"github.com/agentstation/userdetails/pkg/errors"
	"github.com/agentstation/userdetails/pkg/profile"
)

// ErrInvalidRecord is returned when the checked record fails validation.
var ErrInvalidRecord = fmt.Errorf("%w: record failed validation", errors.ErrInvalidInput)

// Result is the json and yaml output of the check command.
type Result struct {
	Valid  bool            `json:"valid" yaml:"valid"`
	Errors []FieldError    `json:"errors,omitempty" yaml:"errors,omitempty"`
	Record *profile.Record `json:"record,omitempty" yaml:"record,omitempty"`
}

// FieldError is one failed field.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// NewCommand creates the check command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "check FILE",
		GroupID: "core",
		Short:   "Validate a user details record file",
		Long: `Check loads a record from a YAML or JSON file (or "-" for stdin),
runs the form's validation and prints either the field errors or the
record as the display view shows it.

The command exits with an error when any field is invalid.`,
		Example: `  userdetails check jane.yaml
  userdetails check --format json jane.json
  cat jane.yaml | userdetails check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], app)
		},
	}
}

func run(cmd *cobra.Command, path string, app application.Application) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	in, err := load(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	verrs := profile.Validate(in)
	app.Logger().Debug().Str("file", path).Int("errors", len(verrs)).Msg("Record checked")

	formatter := output.NewFormatter(format)
	w := cmd.OutOrStdout()

	if len(verrs) > 0 {
		if err := formatter.Format(w, errorsOutput(format, verrs)); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d field error(s)", ErrInvalidRecord, len(verrs))
	}

	record := in.Record()
	return formatter.Format(w, recordOutput(format, record))
}

// load reads a record from path. Files ending in .json are decoded as JSON;
// everything else, stdin included, as YAML.
func load(stdin io.Reader, path string) (profile.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return profile.Input{}, errors.NewIOError("read", path, err)
	}

	var in profile.Input
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return profile.Input{}, errors.NewParseError("json", path, err)
		}
		return in, nil
	}

	if err := yaml.UnmarshalWithOptions(data, &in, yaml.DisallowUnknownField()); err != nil {
		return profile.Input{}, errors.NewParseError("yaml", path, err)
	}
	return in, nil
}

func errorsOutput(format output.Format, verrs errors.ValidationErrors) any {
	if format == output.FormatTable {
		data := output.Data{
			Headers:         []string{"Field", "Message"},
			ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft},
		}
		for _, e := range verrs {
			data.Rows = append(data.Rows, []string{e.Field, e.Message})
		}
		return data
	}

	result := Result{Valid: false}
	for _, e := range verrs {
		result.Errors = append(result.Errors, FieldError{Field: e.Field, Message: e.Message})
	}
	return result
}

func recordOutput(format output.Format, record profile.Record) any {
	if format == output.FormatTable {
		data := output.Data{
			Headers:         []string{"Field", "Value"},
			ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft},
		}
		for _, line := range view.Lines(record) {
			data.Rows = append(data.Rows, []string{line.Label, line.Value})
		}
		return data
	}
	return Result{Valid: true, Record: &record}
}
