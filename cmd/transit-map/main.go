package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	transitmap "github.com/theoremus-urban-solutions/transit-map"
	"github.com/theoremus-urban-solutions/transit-map/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to ./config.yml)")
	loadStops := flag.Bool("loadStops", false, "load the full stop collection")
	loadShapes := flag.Bool("loadShapes", false, "load the full route geometry collection")
	vehicles := flag.Bool("vehicles", false, "fetch a realtime vehicle snapshot")
	query := flag.String("query", "", "spatial query to run: radius|bounds|knearest")
	lat := flag.Float64("lat", 0, "query latitude")
	lon := flag.Float64("lon", 0, "query longitude")
	radiusM := flag.Float64("radius", 1000, "radius query distance in meters")
	k := flag.Int("k", 5, "number of stops for a knearest query")
	minLat := flag.Float64("minLat", 0, "bounds query south edge")
	maxLat := flag.Float64("maxLat", 0, "bounds query north edge")
	minLon := flag.Float64("minLon", 0, "bounds query west edge")
	maxLon := flag.Float64("maxLon", 0, "bounds query east edge")
	stopID := flag.String("stop", "", "print schedules for a stop")
	shapeID := flag.String("shape", "", "print trips for a shape")
	routeID := flag.String("route", "", "print the stops a route visits")
	out := flag.String("out", "", "directory to write bucket GeoJSON files into")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	_ = godotenv.Load()

	log := transitmap.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	session := transitmap.NewSession(cfg, nil, log)
	defer func() { _ = session.Close() }()

	if *loadStops {
		n, err := session.LoadStops(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("stop load failed")
		}
		fmt.Printf("stops: %d features added\n", n)
	}
	if *loadShapes {
		n, err := session.LoadShapes(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("shape load failed")
		}
		fmt.Printf("shapes: %d features added\n", n)
	}
	if *vehicles {
		n, err := session.RefreshVehicles(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("vehicle refresh failed")
		}
		fmt.Printf("vehicles: %d positions\n", n)
	}

	switch strings.ToLower(*query) {
	case "":
	case "radius":
		res, err := session.QueryRadius(ctx, transitmap.Radius{Lat: *lat, Lon: *lon, DistanceMeters: *radiusM})
		if err != nil {
			log.Fatal().Err(err).Msg("radius query failed")
		}
		fmt.Printf("radius query: %d stops, %d shapes\n", len(res.Points), len(res.Lines))
	case "bounds":
		res, err := session.QueryBounds(ctx, transitmap.Bounds{MinLat: *minLat, MaxLat: *maxLat, MinLon: *minLon, MaxLon: *maxLon})
		if err != nil {
			log.Fatal().Err(err).Msg("bounds query failed")
		}
		fmt.Printf("bounds query: %d stops, %d shapes\n", len(res.Points), len(res.Lines))
	case "knearest":
		res, err := session.QueryNearest(ctx, transitmap.NearestK{Lat: *lat, Lon: *lon, K: *k})
		if err != nil {
			log.Fatal().Err(err).Msg("knearest query failed")
		}
		for i, s := range res.Points {
			dist := "?"
			if s.DistanceMeters != nil {
				dist = fmt.Sprintf("%.0fm", *s.DistanceMeters)
			}
			fmt.Printf("%d. %s (%s) %s\n", i+1, s.Name, s.ID, dist)
		}
	default:
		log.Fatal().Str("query", *query).Msg("unknown query kind")
	}

	if *stopID != "" {
		for _, e := range session.Schedules(ctx, *stopID) {
			fmt.Printf("%s  %s -> %s  (route %s, seq %d)\n",
				e.ArrivalTime, e.TripID, e.TripHeadsign, e.RouteShortName, e.StopSequence)
		}
	}
	if *shapeID != "" {
		for _, tr := range session.Trips(ctx, *shapeID) {
			fmt.Printf("%s  %s  (route %s %s)\n", tr.TripID, tr.TripHeadsign, tr.RouteShortName, tr.RouteLongName)
		}
	}
	if *routeID != "" {
		rs, err := session.StopsOnRoute(ctx, *routeID)
		if err != nil {
			log.Fatal().Err(err).Str("route_id", *routeID).Msg("route lookup failed")
		}
		fmt.Printf("route %s (%s): %d stops\n", rs.RouteShortName, rs.RouteLongName, rs.StopCount)
		for _, s := range rs.Stops {
			fmt.Printf("  %d. %s (%s)\n", int(s.StopSequence), s.StopName, s.StopID)
		}
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create output directory")
		}
		for _, id := range session.Buckets() {
			data, err := session.ExportBucket(id)
			if err != nil {
				log.Fatal().Err(err).Str("bucket", string(id)).Msg("bucket export failed")
			}
			path := filepath.Join(*out, string(id)+".geojson")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("bucket write failed")
			}
			fmt.Printf("wrote %s\n", path)
		}
	}
}
