// Command routeplan plans vehicle routes from a stop sheet and geocodes
// address sheets, without running the HTTP server.
//
//	routeplan plan -in routes.xlsx -vehicles 3 [-depot 0] [-improve] [-out plan.xlsx]
//	routeplan geocode -in addresses.xlsx -out geocoded.xlsx [-provider nominatim|google|ors] [-cache geocode.db]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/geocoding"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/adapters/stopfile"
	"route-planner-service/internal/config"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"strconv"
	"strings"
	"syscall"
)

const usage = `usage:
  routeplan plan -in FILE -vehicles N [-depot I] [-improve] [-out FILE]
  routeplan geocode -in FILE -out FILE [-provider nominatim|google|ors] [-cache FILE]`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "routeplan:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New(usage)

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	switch args[0] {
	case "plan":
		return runPlan(ctx, cfg, args[1:], stdout)
	case "geocode":
		return runGeocode(ctx, cfg, args[1:], stdout)
	}
	return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
}

func runPlan(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	in := fs.String("in", "routes.xlsx", "stop sheet with Stop ID, Latitude and Longitude columns")
	vehicles := fs.Int("vehicles", cfg.DefaultVehicles, "number of vehicles")
	depot := fs.Int("depot", 0, "row index of the depot stop")
	improve := fs.Bool("improve", false, "run 2-opt on the constructed routes")
	out := fs.String("out", "", "optional .xlsx or .csv file for the plan")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	stops, err := stopfile.ReadStops(*in)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	planner := services.NewPlanner(nil, nil, nil, cfg.MatrixWorkers)
	res, err := planner.Plan(ctx, services.PlanRequest{
		NumVehicles: *vehicles,
		Depot:       *depot,
		Improve:     *improve,
		Stops:       stops,
	})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	printPlan(stdout, res)

	if *out != "" {
		if err := stopfile.WritePlan(*out, res); err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		fmt.Fprintf(stdout, "Route plan saved to %s\n", *out)
	}
	return nil
}

// printPlan writes one line per vehicle with 1-based vehicle numbers and stop indices.
func printPlan(w io.Writer, res *domain.PlanResult) {
	if res.Empty {
		fmt.Fprintln(w, "No solution found.")
		return
	}

	fmt.Fprintln(w, "Route plan:")
	for _, r := range res.Routes {
		idx := make([]string, len(r.Sequence))
		for i, s := range r.Sequence {
			idx[i] = strconv.Itoa(s)
		}
		fmt.Fprintf(w, "Vehicle %d: [%s]\n", r.Vehicle+1, strings.Join(idx, ", "))
	}
	fmt.Fprintf(w, "Total distance: %.3f km\n", res.TotalKm)
}

func runGeocode(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("geocode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	in := fs.String("in", "addresses.xlsx", "sheet with an Address column")
	out := fs.String("out", "geocoded_addresses.xlsx", "output .xlsx or .csv file")
	provider := fs.String("provider", cfg.Geocoder, "nominatim, google or ors")
	endpoint := fs.String("endpoint", "", "override the provider base URL")
	cachePath := fs.String("cache", "", "optional sqlite file caching geocoded addresses")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	table, err := stopfile.ReadAddresses(*in)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	var g ports.Geocoder
	g, err = geocoding.New(geocoding.Settings{
		Provider:           *provider,
		BaseURL:            *endpoint,
		GoogleAPIKey:       cfg.GoogleAPIKey,
		ORSAPIKey:          cfg.ORSAPIKey,
		NominatimUserAgent: cfg.NominatimUserAgent,
	})
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	if *cachePath != "" {
		conn, err := db.OpenSQLite(*cachePath)
		if err != nil {
			return fmt.Errorf("geocode: %w", err)
		}
		defer conn.Close()
		if err := repositories.InitSchema(conn, db.SQLite); err != nil {
			return fmt.Errorf("geocode: %w", err)
		}
		g = geocoding.NewCachedGeocoder(g, cache.NewGeocodeCache(conn, db.SQLite))
	}

	results, err := services.GeocodeAddresses(ctx, g, table.Addresses())
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}

	coords := make([]*domain.Coordinates, len(results))
	for i, r := range results {
		coords[i] = r.Coordinates
		if r.Coordinates != nil {
			fmt.Fprintf(stdout, "Processed: %s -> (%g, %g)\n", r.Address, r.Coordinates.Lat, r.Coordinates.Lon)
		} else {
			fmt.Fprintf(stdout, "Processed: %s -> (None, None)\n", r.Address)
			slog.Debug("geocode miss", "address", r.Address, "err", r.Err)
		}
	}

	if err := stopfile.WriteGeocoded(*out, table, coords); err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	fmt.Fprintf(stdout, "Geocoded addresses saved to %s\n", *out)
	return nil
}
