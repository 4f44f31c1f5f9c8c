package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/config"
	"github.com/pauloved/uploader/internal/driver"
	"github.com/pauloved/uploader/internal/logging"
	"github.com/pauloved/uploader/internal/observability"
	"github.com/pauloved/uploader/internal/protocol/session"
	"github.com/pauloved/uploader/internal/usb"
)

// CLI is the root command structure for pumpctl.
type CLI struct {
	Config       string `short:"c" default:"pumpctl.toml" help:"Path to the driver TOML config."`
	Since        string `help:"Upload boundary (RFC 3339); overrides the config value."`
	SettingsOnly bool   `help:"Enumerate settings and exit without fetching history."`
	Timeout      int    `default:"120" help:"Whole-run timeout in seconds."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pumpctl"),
		kong.Description("Retrieve and normalize data from a USB-attached insulin pump."),
	)
	kctx.FatalIfErrorf(run(cli))
}

func run(cli CLI) error {
	logging.ConfigureRuntime()
	log := observability.InitLogger("pumpctl")
	observability.Register(prometheus.DefaultRegisterer)
	defer dumpMetrics(log)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	boundary, err := cfg.Upload.Boundary()
	if err != nil {
		return err
	}
	if cli.Since != "" {
		boundary, err = time.Parse(time.RFC3339, cli.Since)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
	}

	transport, err := usb.Open(
		cfg.Device.VendorID, cfg.Device.ProductID,
		cfg.Device.InEndpoint, cfg.Device.OutEndpoint,
	)
	if err != nil {
		return err
	}
	defer transport.Close()

	d := driver.New(transport,
		driver.WithUploadBoundary(boundary),
		driver.WithTimezoneOffset(cfg.Upload.TimezoneOffsetMinutes),
		driver.WithSessionConfig(session.Config{
			ReadTimeout:      time.Duration(cfg.Session.ReadTimeoutMs) * time.Millisecond,
			WriteTimeout:     time.Duration(cfg.Session.WriteTimeoutMs) * time.Millisecond,
			MaxReadBytes:     cfg.Session.MaxReadBytes,
			MaxResponseBytes: cfg.Session.MaxResponseBytes,
		}),
		driver.WithLogger(log),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cli.Timeout)*time.Second)
	defer cancel()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if cli.SettingsOnly {
		m, err := d.FetchSettings(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(m)
	}

	batch, err := d.Run(ctx, &jsonBuilder{})
	if errors.Is(err, driver.ErrNoNewRecords) {
		log.Info().Msg("nothing new to upload")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Int("records", len(batch.Records)).Msg("retrieval complete")
	return enc.Encode(batch.Records)
}

// dumpMetrics logs the driver counters on exit; a one-shot run has no
// scrape endpoint, so this is where the instrumentation surfaces.
func dumpMetrics(log zerolog.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Debug().Err(err).Msg("gather metrics")
		return
	}
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "pumpctl_") {
			continue
		}
		for _, m := range fam.GetMetric() {
			ev := log.Debug().Str("metric", fam.GetName())
			for _, l := range m.GetLabel() {
				ev = ev.Str(l.GetName(), l.GetValue())
			}
			ev.Float64("value", m.GetCounter().GetValue()).Msg("counter")
		}
	}
}
