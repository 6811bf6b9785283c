// Package main implements the sas-record-validator CLI tool, which checks
// SAS implementation record files and activity dumps against the embedded
// schema set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/engine"
)

const usage = `sas-record-validator - SAS Implementation Record Validator

Usage:
  sas-record-validator [options] <file>...
  sas-record-validator [options] -       (read from stdin)
  cat record.json | sas-record-validator -

Examples:
  sas-record-validator record.json
  sas-record-validator -output json record.json
  sas-record-validator -dump activity_dump.json
  sas-record-validator -strict *.json
  cat record.json | sas-record-validator -

Options:
`

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration.
type Config struct {
	Output      OutputFormat
	Strict      bool
	NoNested    bool
	NoFormats   bool
	MaxErrors   int
	Workers     int
	Dump        bool
	Quiet       bool
	Verbose     bool
	ShowVersion bool
	Help        bool
	ConfigFile  string
	Files       []string
}

// fileConfig mirrors the YAML configuration file shape.
type fileConfig struct {
	Output    string `yaml:"output"`
	Strict    bool   `yaml:"strict"`
	NoNested  bool   `yaml:"noNested"`
	NoFormats bool   `yaml:"noFormats"`
	MaxErrors int    `yaml:"maxErrors"`
	Workers   int    `yaml:"workers"`
}

// ValidationOutput represents the JSON output structure.
type ValidationOutput struct {
	Record   string        `json:"record"`
	RecordID string        `json:"recordId,omitempty"`
	Valid    bool          `json:"valid"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues,omitempty"`
	Duration string        `json:"duration"`
}

// IssueOutput represents a single issue in JSON output.
type IssueOutput struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Diagnostics string   `json:"diagnostics"`
	Field       []string `json:"field,omitempty"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("sas-record-validator v%s\n", sv.Version)
		os.Exit(0)
	}

	if config.Help || len(config.Files) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	exitCode := run(config)
	os.Exit(exitCode)
}

func parseFlags() *Config {
	config := &Config{
		Output: OutputText,
	}

	var output string

	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.StringVar(&config.ConfigFile, "config", "", "YAML configuration file")
	flag.BoolVar(&config.Strict, "strict", false, "Treat warnings as errors")
	flag.BoolVar(&config.NoNested, "no-nested", false, "Skip validation of referenced schemas")
	flag.BoolVar(&config.NoFormats, "no-formats", false, "Skip format checks (uri)")
	flag.IntVar(&config.MaxErrors, "max-errors", 0, "Maximum errors per record (0 = unlimited)")
	flag.IntVar(&config.Workers, "workers", 0, "Worker count for dump validation (0 = NumCPU)")
	flag.BoolVar(&config.Dump, "dump", false, "Treat input files as activity dumps (recordData arrays)")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only show errors and warnings")
	flag.BoolVar(&config.Verbose, "verbose", false, "Show detailed output")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if config.ConfigFile != "" {
		if err := loadConfigFile(config, config.ConfigFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", config.ConfigFile, err)
			os.Exit(1)
		}
	}

	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputText
	}

	// Remaining arguments are files
	config.Files = flag.Args()

	return config
}

// loadConfigFile applies settings from a YAML file. Flags given on the
// command line keep their values for booleans already set.
func loadConfigFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Output != "" && config.Output == OutputText {
		if strings.EqualFold(fc.Output, "json") {
			config.Output = OutputJSON
		}
	}
	config.Strict = config.Strict || fc.Strict
	config.NoNested = config.NoNested || fc.NoNested
	config.NoFormats = config.NoFormats || fc.NoFormats
	if config.MaxErrors == 0 {
		config.MaxErrors = fc.MaxErrors
	}
	if config.Workers == 0 {
		config.Workers = fc.Workers
	}

	return nil
}

func run(config *Config) int {
	ctx := context.Background()

	opts := []sv.Option{
		sv.WithNested(!config.NoNested),
		sv.WithFormats(!config.NoFormats),
		sv.WithStrictMode(config.Strict),
		sv.WithMaxErrors(config.MaxErrors),
	}
	if config.Workers > 0 {
		opts = append(opts, sv.WithWorkerCount(config.Workers))
	}

	v, err := engine.New(ctx, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize validator: %v\n", err)
		return 1
	}

	if config.Verbose {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		v.SetLogger(log)
	}

	hasErrors := false
	outputs := make([]ValidationOutput, 0, len(config.Files))

	for _, file := range config.Files {
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				hasErrors = true
				continue
			}
			output, fileHasErrors := validateData(ctx, v, data, "stdin", config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
			continue
		}

		matches, globErr := filepath.Glob(file)
		if globErr != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", file, globErr)
			hasErrors = true
			continue
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files match pattern: %s\n", file)
			hasErrors = true
			continue
		}

		for _, match := range matches {
			if config.Dump {
				if dumpHasErrors := validateDumpFile(ctx, v, match, config); dumpHasErrors {
					hasErrors = true
				}
				continue
			}
			output, fileHasErrors := validateFile(ctx, v, match, config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
		}
	}

	if config.Output == OutputJSON && !config.Dump {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if hasErrors {
		return 1
	}
	return 0
}

func validateFile(ctx context.Context, v *engine.Validator, path string, config *Config) (ValidationOutput, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		output := ValidationOutput{
			Record: path,
			Valid:  false,
			Errors: 1,
			Issues: []IssueOutput{{
				Severity:    "error",
				Code:        "processing",
				Diagnostics: fmt.Sprintf("Failed to read file: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error reading %s: %v\n", path, err)
		}
		return output, true
	}

	return validateData(ctx, v, data, path, config)
}

func validateData(ctx context.Context, v *engine.Validator, data []byte, name string, config *Config) (ValidationOutput, bool) {
	startTime := time.Now()

	result, err := v.Validate(ctx, data)
	duration := time.Since(startTime)

	if err != nil {
		output := ValidationOutput{
			Record:   name,
			Valid:    false,
			Errors:   1,
			Duration: duration.String(),
			Issues: []IssueOutput{{
				Severity:    "error",
				Code:        "processing",
				Diagnostics: fmt.Sprintf("Validation failed: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error validating %s: %v\n", name, err)
		}
		return output, true
	}
	defer result.Release()

	output := ValidationOutput{
		Record:   name,
		RecordID: result.RecordID,
		Valid:    result.Valid,
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Duration: duration.Round(time.Microsecond).String(),
	}

	for _, iss := range result.Issues {
		output.Issues = append(output.Issues, IssueOutput{
			Severity:    string(iss.Severity),
			Code:        string(iss.Code),
			Diagnostics: iss.Diagnostics,
			Field:       iss.Field,
		})
	}

	if config.Output == OutputText {
		printTextResult(name, result, duration, config)
	}

	return output, !result.Valid
}

func validateDumpFile(ctx context.Context, v *engine.Validator, path string, config *Config) bool {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		return true
	}
	defer f.Close()

	startTime := time.Now()
	agg := engine.AggregateDumpResults(v.ValidateDumpStreamParallel(ctx, f))
	duration := time.Since(startTime)

	if config.Output == OutputJSON {
		out := struct {
			Dump     string             `json:"dump"`
			Records  int                `json:"records"`
			Invalid  int                `json:"invalid"`
			Issues   map[int][]sv.Issue `json:"issues,omitempty"`
			Errors   []string           `json:"processingErrors,omitempty"`
			Duration string             `json:"duration"`
		}{
			Dump:     path,
			Records:  agg.TotalRecords,
			Invalid:  agg.InvalidRecords,
			Issues:   agg.Issues,
			Duration: duration.Round(time.Millisecond).String(),
		}
		for _, e := range agg.ProcessingErrors {
			out.Errors = append(out.Errors, e.Error())
		}
		jsonOutput, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonOutput))
	} else {
		fmt.Printf("== %s ==\n", path)
		fmt.Printf("%s in %s\n", agg.Summary(), duration.Round(time.Millisecond))
		for _, e := range agg.ProcessingErrors {
			fmt.Printf("  ERROR %v\n", e)
		}
		if !config.Quiet {
			for idx, issues := range agg.Issues {
				for _, iss := range issues {
					fmt.Printf("  record %d: %s [%s] %s\n", idx, severityIcon(iss.Severity), iss.Code, iss.Diagnostics)
				}
			}
		}
		fmt.Println()
	}

	return agg.HasErrors()
}

func printTextResult(name string, result *sv.Result, duration time.Duration, config *Config) {
	status := "VALID"
	if !result.Valid {
		status = "INVALID"
	}

	fmt.Printf("== %s ==\n", name)
	if result.RecordID != "" {
		fmt.Printf("Record: %s\n", result.RecordID)
	}
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Errors: %d, Warnings: %d\n", result.ErrorCount(), result.WarningCount())
	fmt.Printf("Duration: %s\n", duration.Round(time.Microsecond))

	if len(result.Issues) > 0 {
		fmt.Println("\nIssues:")
		for _, iss := range result.Issues {
			if config.Quiet && iss.Severity == sv.SeverityInformation {
				continue
			}

			location := ""
			if len(iss.Field) > 0 && iss.Field[0] != "" {
				location = fmt.Sprintf(" @ %s", strings.Join(iss.Field, ", "))
			}

			fmt.Printf("  %s [%s] %s%s\n", severityIcon(iss.Severity), iss.Code, iss.Diagnostics, location)
		}
	}

	fmt.Println()
}

func severityIcon(severity sv.IssueSeverity) string {
	switch severity {
	case sv.SeverityError, sv.SeverityFatal:
		return "ERROR"
	case sv.SeverityWarning:
		return "WARN "
	case sv.SeverityInformation:
		return "INFO "
	default:
		return "     "
	}
}
