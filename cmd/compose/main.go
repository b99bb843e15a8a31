// Command compose builds a statement from a bulletin file without Kafka. It
// loads the same site configuration as the service and prints the statement
// text, the radio script or the full statement as JSON.
//
// Usage:
//
//	go run ./cmd/compose \
//	  -site config/site.yaml \
//	  -bulletin internal/domain/testdata/upgrade_warning.txt \
//	  -decision combined \
//	  -format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/couchcryptid/tsunami-statement-service/internal/pipeline"
	"github.com/couchcryptid/tsunami-statement-service/internal/tracker"
	"github.com/joho/godotenv"
)

type options struct {
	site        string
	bulletin    string
	decision    string
	testWording string
	template    string
	templateDir string
	draft       string
	canned      string
	zones       string
	format      string
	issuances   string
	record      bool
	expiry      time.Duration
}

func main() {
	// Flag defaults come from the service environment.
	_ = godotenv.Load(".env.localdev")

	var o options
	flag.StringVar(&o.site, "site", sharedcfg.EnvOrDefault("SITE_CONFIG_PATH", "config/site.yaml"), "site configuration file")
	flag.StringVar(&o.bulletin, "bulletin", "-", "bulletin file, or - for stdin")
	flag.StringVar(&o.decision, "decision", "", "answer for a multi-hazard bulletin: warning, watch, advisory or combined")
	flag.StringVar(&o.testWording, "test-wording", "auto", "test wording: auto, on or off")
	flag.StringVar(&o.template, "template", "", "template file replacing the built-in template")
	flag.StringVar(&o.templateDir, "template-dir", os.Getenv("TEMPLATE_DIR"), "directory of warning.txt, watch.txt and advisory.txt templates")
	flag.StringVar(&o.draft, "draft", "", "print the manual-fill draft for a hazard instead of reading a bulletin")
	flag.StringVar(&o.canned, "canned", "", "with -draft, compose the canned cancel or imminent statement instead")
	flag.StringVar(&o.zones, "zones", "", "dash-joined zones for -draft and -canned, e.g. CAZ529-CAZ530")
	flag.StringVar(&o.format, "format", "text", "output: text, script or json")
	flag.StringVar(&o.issuances, "issuances", "", "issuance log to check for overlapping broadcasts")
	flag.BoolVar(&o.record, "record", false, "record the statement in the issuance log")
	flag.DurationVar(&o.expiry, "expiry", time.Hour, "broadcast expiry")
	flag.Parse()

	if err := run(context.Background(), o, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, o options, stdin io.Reader, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	site, err := config.LoadSite(o.site)
	if err != nil {
		return err
	}
	templates, err := config.LoadTemplates(o.templateDir)
	if err != nil {
		return err
	}
	canned, err := config.LoadCannedTemplates(o.templateDir)
	if err != nil {
		return err
	}
	req, err := buildRequest(o, stdin)
	if err != nil {
		return err
	}

	transformer := pipeline.NewTransformer(site, logger,
		pipeline.WithTemplates(templates),
		pipeline.WithCannedTemplates(canned),
		pipeline.WithBroadcastExpiry(o.expiry),
	)
	s, err := transformer.Compose(ctx, req)
	if err != nil {
		return err
	}

	if o.issuances != "" && s.Broadcastable() {
		issued := tracker.New(o.issuances, logger)
		if !s.Cancels() {
			var zones []domain.ZoneCode
			for _, k := range s.Hazards {
				zones = append(zones, s.Zones[k]...)
			}
			s.Overlaps = issued.Overlaps(s.Hazards, zones)
		}
		if o.record {
			if err := issued.RecordStatement(s); err != nil {
				return err
			}
		}
	}
	return printStatement(out, s, o.format)
}

func buildRequest(o options, stdin io.Reader) (domain.ComposeRequest, error) {
	var req domain.ComposeRequest

	if o.draft != "" {
		kind, ok := domain.ParseHazardKind(o.draft)
		if !ok {
			return req, fmt.Errorf("-draft: unknown hazard %q", o.draft)
		}
		req.DraftKind = &kind
		req.Zones = domain.SplitZones(o.zones)
		if o.canned != "" {
			c, ok := domain.ParseCannedKind(o.canned)
			if !ok {
				return req, fmt.Errorf("-canned: unknown value %q", o.canned)
			}
			req.Canned = c
		}
	} else {
		if o.canned != "" {
			return req, errors.New("-canned needs -draft to name the hazard")
		}
		text, err := readInput(o.bulletin, stdin)
		if err != nil {
			return req, fmt.Errorf("read bulletin: %w", err)
		}
		req.Text = text
		req.ProductID = o.bulletin
	}

	switch o.decision {
	case "":
	case "combined":
		d := domain.Combined()
		req.Decision = &d
	default:
		kind, ok := domain.ParseHazardKind(o.decision)
		if !ok {
			return req, fmt.Errorf("-decision: unknown hazard %q", o.decision)
		}
		d := domain.Independent(kind)
		req.Decision = &d
	}

	switch o.testWording {
	case "auto":
	case "on", "off":
		v := o.testWording == "on"
		req.TestWording = &v
	default:
		return req, fmt.Errorf("-test-wording: unknown value %q", o.testWording)
	}

	if o.template != "" {
		b, err := os.ReadFile(o.template)
		if err != nil {
			return req, fmt.Errorf("read template: %w", err)
		}
		req.Template = string(b)
	}
	return req, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func printStatement(out io.Writer, s domain.Statement, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "script":
		if s.Script == "" {
			return errors.New("statement has no radio script")
		}
		_, err := fmt.Fprintln(out, s.Script)
		return err
	case "text":
	default:
		return fmt.Errorf("-format: unknown value %q", format)
	}

	if s.NeedsDecision {
		_, err := fmt.Fprintf(out, "%s scenario needs a decision; candidates: %v\n", s.Scenario, s.Candidates)
		return err
	}
	if s.Text == "" {
		_, err := fmt.Fprintf(out, "%s: %s\n", s.Notice.Kind, s.Notice.Message)
		return err
	}
	for _, o := range s.Overlaps {
		fmt.Fprintf(out, "WARNING: overlaps %s broadcast for %s until %s\n", //nolint:errcheck // best-effort notice
			o.Kind, domain.JoinZones(o.Zones), o.Expiry.Format(time.RFC3339))
	}
	_, err := fmt.Fprintln(out, s.Text)
	return err
}
