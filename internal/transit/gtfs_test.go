package transit

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFixtureArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	tables := map[string]string{
		"stops.txt": "stop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
			"S1,100,Terminal Bandeira,-23.5460,-46.6420\n" +
			"S2,200,Praça da Sé,-23.5505,-46.6333\n" +
			"S3,300,Guarulhos Centro,-23.4538,-46.5333\n",
		"routes.txt": "route_id,route_short_name,route_long_name,route_type\n" +
			"R1,175T,Metrô Santana - Metrô Jabaquara,3\n" +
			"R2,917M,Morro Grande - Terminal Bandeira,3\n",
		"trips.txt": "route_id,trip_id,trip_headsign\n" +
			"R1,T1,Jabaquara\n" +
			"R2,T2,Terminal Bandeira\n",
		"stop_times.txt": "trip_id,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,S1,1\n" +
			"T1,08:10:00,S2,2\n" +
			"T2,09:30:00,S1,1\n" +
			"T2,25:10:00,S1,5\n",
	}
	for name, body := range tables {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

func TestNearbyStopsSortedByDistance(t *testing.T) {
	d := NewDataset(writeFixtureArchive(t), zerolog.Nop())

	// Query point near Praça da Sé; Guarulhos is ~15km out.
	stops, err := d.NearbyStops(-23.5500, -46.6340, 2000, 10)
	if err != nil {
		t.Fatalf("NearbyStops() error = %v", err)
	}
	if len(stops) != 2 {
		t.Fatalf("stops = %d, want 2 within 2km", len(stops))
	}
	if stops[0].ID != "S2" || stops[1].ID != "S1" {
		t.Fatalf("order = %s,%s, want S2,S1 (closest first)", stops[0].ID, stops[1].ID)
	}
	if stops[0].DistanceMeters <= 0 || stops[0].DistanceMeters > 200 {
		t.Fatalf("S2 distance = %.0fm, want under 200m", stops[0].DistanceMeters)
	}
}

func TestNearbyStopsHonorsLimit(t *testing.T) {
	d := NewDataset(writeFixtureArchive(t), zerolog.Nop())
	stops, err := d.NearbyStops(-23.5500, -46.6340, 50000, 1)
	if err != nil {
		t.Fatalf("NearbyStops() error = %v", err)
	}
	if len(stops) != 1 {
		t.Fatalf("stops = %d, want limit of 1", len(stops))
	}
}

func TestRoutesForStop(t *testing.T) {
	d := NewDataset(writeFixtureArchive(t), zerolog.Nop())

	routes, err := d.RoutesForStop("S1")
	if err != nil {
		t.Fatalf("RoutesForStop() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("routes at S1 = %d, want 2", len(routes))
	}
	if routes[0].ID != "R1" || routes[1].ID != "R2" {
		t.Fatalf("route order = %s,%s, want R1,R2", routes[0].ID, routes[1].ID)
	}

	routes, err = d.RoutesForStop("S2")
	if err != nil {
		t.Fatalf("RoutesForStop() error = %v", err)
	}
	if len(routes) != 1 || routes[0].ShortName != "175T" {
		t.Fatalf("routes at S2 = %+v, want just 175T", routes)
	}

	if _, err := d.RoutesForStop("missing"); !errors.Is(err, ErrStopNotFound) {
		t.Fatalf("unknown stop error = %v, want ErrStopNotFound", err)
	}
}

func TestNextDepartures(t *testing.T) {
	d := NewDataset(writeFixtureArchive(t), zerolog.Nop())

	times, err := d.NextDepartures("S1", "09:00:00", 5)
	if err != nil {
		t.Fatalf("NextDepartures() error = %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("departures = %d, want 2 at or after 09:00", len(times))
	}
	if times[0].Departure != "09:30:00" {
		t.Fatalf("first departure = %s, want 09:30:00", times[0].Departure)
	}
	// 25:10:00 is a valid GTFS after-midnight clock value.
	if times[1].Departure != "25:10:00" {
		t.Fatalf("second departure = %s, want 25:10:00", times[1].Departure)
	}
}

func TestUnconfiguredArchive(t *testing.T) {
	d := NewDataset("", zerolog.Nop())
	if _, err := d.NearbyStops(0, 0, 100, 1); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("error = %v, want ErrNotLoaded", err)
	}
}

func TestLoadFailureIsSticky(t *testing.T) {
	d := NewDataset(filepath.Join(t.TempDir(), "missing.zip"), zerolog.Nop())
	if _, err := d.StopByID("S1"); err == nil {
		t.Fatal("expected load error for missing archive")
	}
	if _, err := d.StopByID("S1"); err == nil {
		t.Fatal("second lookup must report the same load failure")
	}
}
