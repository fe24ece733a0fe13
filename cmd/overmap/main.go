// Package main is the entry point for the overmap generator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/samdwyer/overmap/data"
	"github.com/samdwyer/overmap/internal/mapgen"
	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/preview"
	"github.com/samdwyer/overmap/internal/store"
	"github.com/samdwyer/overmap/internal/telemetry"
	"github.com/samdwyer/overmap/internal/verify"
)

func main() {
	// Load .env file for local development
	// This makes HONEYCOMB_OVERMAP_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv()

	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Generation will run without observability")
		// Continue without telemetry - generation still works
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	if err := run(ctx); err != nil {
		log.Fatalf("overmap: %v", err)
	}
}

func run(ctx context.Context) error {
	var (
		presetName  = flag.String("preset", data.DefaultPreset, "generation preset")
		seed        = flag.Int64("seed", 0, "generation seed; 0 draws one from the clock")
		outDir      = flag.String("out", "", "directory to save the map into")
		dsn         = flag.String("db", "", "PostgreSQL DSN to save the map into")
		formatName  = flag.String("format", "binary", "storage format: json or binary")
		compress    = flag.Bool("compress", false, "compress the serialized payload")
		pretty      = flag.Bool("pretty", false, "pretty-print JSON output")
		check       = flag.Bool("check", true, "run round-trip validation and print the report")
		showPreview = flag.Bool("preview", false, "render the map in the terminal")
		listPresets = flag.Bool("presets", false, "list available presets and exit")
	)
	flag.Parse()

	registry, err := data.LoadRegistry()
	if err != nil {
		return err
	}
	if *listPresets {
		for _, name := range registry.Names() {
			p, _ := registry.ByName(name)
			fmt.Printf("%-10s %dx%d  %s\n", name, p.MapWidth, p.MapHeight, p.Description)
		}
		return nil
	}

	preset, ok := registry.ByName(*presetName)
	if !ok {
		return fmt.Errorf("unknown preset %q (have %v)", *presetName, registry.Names())
	}
	cfg, err := preset.ToConfig()
	if err != nil {
		return err
	}
	format, err := store.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	gen, err := mapgen.NewGenerator(cfg)
	if err != nil {
		return err
	}
	m, err := gen.GenerateValidated(ctx, *seed)
	if err != nil {
		return err
	}
	fp, err := mapio.Fingerprint(m)
	if err != nil {
		return err
	}
	log.Printf("generated map %s: seed %d, %d rooms, %d corridors, fingerprint %016x",
		m.MapID, m.Seed, len(m.Rooms), len(m.Corridors), fp)

	settings := mapio.Settings{
		EnableCompression: *compress,
		CompressJSON:      *compress,
		PrettyPrintJSON:   *pretty,
	}

	if *check {
		rep, err := verify.NewRoundTripValidator(settings).Run(ctx, m)
		if err != nil {
			return err
		}
		fmt.Print(rep)
		if !rep.Success {
			return errors.New("round-trip validation failed")
		}
	}

	if *outDir != "" {
		st, err := store.NewFileStore(*outDir, settings)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveMap(ctx, m, format); err != nil {
			return err
		}
		log.Printf("saved map %s to %s", m.MapID, *outDir)
	}

	if *dsn != "" {
		pg, err := store.NewPostgresStore(ctx, *dsn, settings)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.SaveMap(ctx, m, format); err != nil {
			return err
		}
		log.Printf("saved map %s to database", m.MapID)
	}

	if *showPreview {
		if err := preview.Show(m); err != nil {
			return err
		}
	}
	return nil
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	// Always set endpoint to Honeycomb
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	// Always set headers from our API key - the .env file may have an unexpanded
	// variable reference that doesn't work, so we construct it properly here
	apiKey := os.Getenv("HONEYCOMB_OVERMAP_API_KEY")
	dataset := os.Getenv("HONEYCOMB_OVERMAP_DATASET")
	if dataset == "" {
		dataset = "overmap" // default dataset name
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
