// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jcodagnone/geotowns/geocode"
	"github.com/jcodagnone/geotowns/pipeline"
	"github.com/jcodagnone/geotowns/towns"
	"github.com/jcodagnone/geotowns/utils/textutils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type geocodeOptions struct {
	APIKey          string
	Project         string
	KeyName         string
	NoADC           bool
	Output          string
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	ParseMode       geocode.ParseMode
	H3Resolution    int
	EnableHTTPTrace bool
	EnableBodyTrace bool
	NoProgress      bool
	Strict          bool
}

var geocodeOpts = &geocodeOptions{ParseMode: geocode.ParseStructured}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <input.csv>",
	Short: "Geocodes every town listed in a CSV file",
	Long: `Reads a CSV file whose first column is a town (Portland, Denver) and whose
second column is its state or country (Oregon, USA). Fields are separated by
commas and quoted with '|'. Each town is looked up with the Google Maps
Geocoding API and the results are written to the output file with the header
Town,Region,Latitude,Longitude.

Towns Google cannot geocode are reported and left out of the output. Each
town is one request against the key's quota.

The API key is taken from --api-key, then from GOOGLE_MAPS_API_KEY, then
looked up with the Google Cloud API Keys service using Application Default
Credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGeocode(cmd, args[0], geocodeOpts)
	},
}

func runGeocode(cmd *cobra.Command, input string, opts *geocodeOptions) error {
	ctx := cmd.Context()

	// no key lookup, and no ADC round trip, for a file that is not there
	if err := pipeline.CheckInput(input); err != nil {
		return fail(opts, err)
	}

	apiKey, source, err := geocode.ResolveAPIKey(ctx, opts.APIKey, geocode.KeyLookup{
		ProjectID:   opts.Project,
		DisplayName: opts.KeyName,
		Disabled:    opts.NoADC,
	})
	if err != nil {
		return fail(opts, err)
	}

	log.Printf("Using Google Maps API key from %s", source)

	var traceWriter io.Writer
	if opts.EnableHTTPTrace || opts.EnableBodyTrace {
		traceWriter = os.Stderr
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("geotowns/%s (+https://github.com/jcodagnone/geotowns)", Version)
	}

	g := geocode.NewGoogleMapsGeocoder(&geocode.Options{
		APIKey:      apiKey,
		BaseURL:     opts.BaseURL,
		UserAgent:   userAgent,
		Timeout:     opts.Timeout,
		ParseMode:   opts.ParseMode,
		TraceWriter: traceWriter,
		TraceBody:   opts.EnableBodyTrace,
	})

	report, err := pipeline.Run(ctx, g, pipeline.Options{
		InputPath:  input,
		OutputPath: opts.Output,
		Write:      towns.WriteOptions{H3Resolution: opts.H3Resolution},
		Batch:      geocode.BatchOptions{NoProgress: opts.NoProgress},
	})
	if err != nil {
		return fail(opts, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ %s of %s towns written to %s\n",
		textutils.FormatInt(report.Written),
		textutils.FormatInt(report.Read+countUnreadable(report)),
		report.OutputPath)

	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "⚠️  %s rows skipped:\n", textutils.FormatInt(len(report.Skipped)))
		renderSkipped(out, report.Skipped)
	}

	fmt.Fprintln(out, "Script complete.")

	return nil
}

func renderSkipped(w io.Writer, skipped []pipeline.SkippedEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Town", "Region", "Reason"})
	table.SetAutoWrapText(false)

	for _, s := range skipped {
		reason := s.Err.Op
		if status, ok := geocode.StatusError(s.Err.Err); ok {
			reason = status
		}

		table.Append([]string{strconv.Itoa(s.Line), s.Name, s.Region, reason})
	}

	table.Render()
}

func countUnreadable(report *pipeline.Report) int {
	n := 0

	for _, s := range report.Skipped {
		if s.Err.Kind == pipeline.KindInputUnreadable {
			n++
		}
	}

	return n
}

// fail reports err on the console. Only in strict mode does it reach cobra
// and turn into a non zero exit code.
func fail(opts *geocodeOptions, err error) error {
	log.Printf("🛑 [%s] %v", pipeline.KindOf(err), err)

	if opts.Strict {
		return err
	}

	return nil
}

func init() {
	rootCmd.AddCommand(geocodeCmd)

	flags := geocodeCmd.Flags()
	flags.StringVar(&geocodeOpts.APIKey, "api-key", "", "Google Maps API key (defaults to $"+geocode.EnvAPIKey+")")
	flags.StringVar(&geocodeOpts.Project, "project", "", "Google Cloud project used to look up the API key via ADC")
	flags.StringVar(&geocodeOpts.KeyName, "api-key-name", geocode.DefaultKeyDisplayName, "Display name of the API key looked up via ADC")
	flags.BoolVar(&geocodeOpts.NoADC, "no-adc", false, "Never look up the API key via Application Default Credentials")
	flags.StringVarP(&geocodeOpts.Output, "output", "o", towns.DefaultOutputPath, "Output CSV file, its directory must exist")
	flags.StringVar(&geocodeOpts.BaseURL, "base-url", geocode.DefaultBaseURL, "Geocoding API endpoint")
	flags.StringVar(&geocodeOpts.UserAgent, "user-agent", "", "User-Agent header sent with each request")
	flags.DurationVar(&geocodeOpts.Timeout, "timeout", 10*time.Second, "Per request timeout, 0 disables it")
	flags.Var(&geocodeOpts.ParseMode, "parse-mode", `How responses are read: "structured" or "tag-scan"`)
	flags.IntVar(&geocodeOpts.H3Resolution, "h3-resolution", 0, "Adds an H3Cell column at this resolution (1-15)")
	flags.BoolVar(&geocodeOpts.EnableHTTPTrace, "trace-http", false, "Display HTTP requests-responses")
	flags.BoolVar(&geocodeOpts.EnableBodyTrace, "trace-http-body", false, "Display HTTP requests-responses bodies")
	flags.BoolVar(&geocodeOpts.NoProgress, "no-progress", false, "Log each entry instead of drawing a progress bar")
	flags.BoolVar(&geocodeOpts.Strict, "strict", false, "Exit with a non zero code when the run fails")
}
