package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"hawaii-climate/internal/config"
	"hawaii-climate/internal/dataset"
	"hawaii-climate/internal/db"
	"hawaii-climate/internal/logging"
	"hawaii-climate/internal/migrate"
)

const appName = "tools"

var version = "dev"

const usage = `usage: %s <command> [args]
  migrate                       apply pending schema migrations
  import-stations <file.csv>    load stations (station,name,latitude,longitude,elevation)
  import-measurements <file.csv> load measurements (station,date,prcp,tobs)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(cfg, version, appName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	dialect, err := db.DialectFor(cfg.Driver)
	if err != nil {
		return err
	}

	switch args[0] {
	case "migrate", "import-stations", "import-measurements":
	default:
		return fmt.Errorf("unknown command (see usage)")
	}

	conn, err := db.OpenOrCreate(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if args[0] == "migrate" {
		if err := migrate.Run(ctx, conn, dialect); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("expected exactly one CSV file argument")
	}
	// Importing into a fresh database needs the tables first.
	if err := migrate.Run(ctx, conn, dialect); err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("csv close", "err", closeErr)
		}
	}()

	importer := dataset.NewImporter(conn, dialect)
	var n int
	if args[0] == "import-stations" {
		n, err = importer.ImportStations(ctx, f)
	} else {
		n, err = importer.ImportMeasurements(ctx, f)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d rows imported from %s\n", n, args[1])
	return nil
}
