// Package transit answers stop and route lookups from a GTFS archive.
// The archive is a static zip of CSV tables; it is parsed once, lazily,
// and the resulting indices live for the process lifetime.
package transit

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNotLoaded     = errors.New("transit dataset not configured")
	ErrStopNotFound  = errors.New("stop not found")
	ErrRouteNotFound = errors.New("route not found")
)

type Stop struct {
	ID   string  `json:"id"`
	Code string  `json:"code,omitempty"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Type      int    `json:"type"`
}

type Trip struct {
	ID       string `json:"id"`
	RouteID  string `json:"route_id"`
	Headsign string `json:"headsign,omitempty"`
}

type StopTime struct {
	TripID    string `json:"trip_id"`
	StopID    string `json:"stop_id"`
	Departure string `json:"departure"`
	Sequence  int    `json:"sequence"`
}

// NearbyStop is a stop annotated with its distance from the query
// point.
type NearbyStop struct {
	Stop
	DistanceMeters float64 `json:"distance_meters"`
}

// Dataset lazily loads a GTFS zip. All lookup methods trigger the load
// on first use; a load failure is sticky.
type Dataset struct {
	archivePath string
	logger      zerolog.Logger

	once    sync.Once
	loadErr error

	stops           map[string]Stop
	routes          map[string]Route
	trips           map[string]Trip
	stopTimesByStop map[string][]StopTime
	routeIDsByStop  map[string][]string
}

func NewDataset(archivePath string, logger zerolog.Logger) *Dataset {
	return &Dataset{
		archivePath: archivePath,
		logger:      logger.With().Str("component", "transit").Logger(),
	}
}

func (d *Dataset) ensureLoaded() error {
	if d.archivePath == "" {
		return ErrNotLoaded
	}
	d.once.Do(func() {
		d.loadErr = d.load()
		if d.loadErr != nil {
			d.logger.Error().Err(d.loadErr).Str("archive", d.archivePath).Msg("gtfs load failed")
			return
		}
		d.logger.Info().
			Int("stops", len(d.stops)).
			Int("routes", len(d.routes)).
			Int("trips", len(d.trips)).
			Msg("gtfs dataset loaded")
	})
	return d.loadErr
}

func (d *Dataset) load() error {
	archive, err := zip.OpenReader(d.archivePath)
	if err != nil {
		return fmt.Errorf("open gtfs archive: %w", err)
	}
	defer archive.Close()

	d.stops = make(map[string]Stop)
	d.routes = make(map[string]Route)
	d.trips = make(map[string]Trip)
	d.stopTimesByStop = make(map[string][]StopTime)
	d.routeIDsByStop = make(map[string][]string)

	tables := map[string]func(row map[string]string) error{
		"stops.txt":      d.loadStop,
		"routes.txt":     d.loadRoute,
		"trips.txt":      d.loadTrip,
		"stop_times.txt": d.loadStopTime,
	}
	// stop_times references trips, so table order matters.
	for _, name := range []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"} {
		file := findFile(&archive.Reader, name)
		if file == nil {
			return fmt.Errorf("gtfs archive missing %s", name)
		}
		if err := readTable(file, tables[name]); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}

	d.indexRoutesByStop()
	for _, times := range d.stopTimesByStop {
		sort.Slice(times, func(i, j int) bool { return times[i].Departure < times[j].Departure })
	}
	return nil
}

func (d *Dataset) loadStop(row map[string]string) error {
	id := row["stop_id"]
	if id == "" {
		return nil
	}
	lat, _ := strconv.ParseFloat(row["stop_lat"], 64)
	lon, _ := strconv.ParseFloat(row["stop_lon"], 64)
	d.stops[id] = Stop{
		ID:   id,
		Code: row["stop_code"],
		Name: row["stop_name"],
		Lat:  lat,
		Lon:  lon,
	}
	return nil
}

func (d *Dataset) loadRoute(row map[string]string) error {
	id := row["route_id"]
	if id == "" {
		return nil
	}
	routeType, _ := strconv.Atoi(row["route_type"])
	d.routes[id] = Route{
		ID:        id,
		ShortName: row["route_short_name"],
		LongName:  row["route_long_name"],
		Type:      routeType,
	}
	return nil
}

func (d *Dataset) loadTrip(row map[string]string) error {
	id := row["trip_id"]
	if id == "" {
		return nil
	}
	d.trips[id] = Trip{
		ID:       id,
		RouteID:  row["route_id"],
		Headsign: row["trip_headsign"],
	}
	return nil
}

func (d *Dataset) loadStopTime(row map[string]string) error {
	stopID := row["stop_id"]
	tripID := row["trip_id"]
	if stopID == "" || tripID == "" {
		return nil
	}
	seq, _ := strconv.Atoi(row["stop_sequence"])
	d.stopTimesByStop[stopID] = append(d.stopTimesByStop[stopID], StopTime{
		TripID:    tripID,
		StopID:    stopID,
		Departure: row["departure_time"],
		Sequence:  seq,
	})
	return nil
}

func (d *Dataset) indexRoutesByStop() {
	seen := make(map[string]map[string]struct{})
	for stopID, times := range d.stopTimesByStop {
		for _, st := range times {
			trip, ok := d.trips[st.TripID]
			if !ok {
				continue
			}
			if seen[stopID] == nil {
				seen[stopID] = make(map[string]struct{})
			}
			if _, dup := seen[stopID][trip.RouteID]; dup {
				continue
			}
			seen[stopID][trip.RouteID] = struct{}{}
			d.routeIDsByStop[stopID] = append(d.routeIDsByStop[stopID], trip.RouteID)
		}
	}
	for _, ids := range d.routeIDsByStop {
		sort.Strings(ids)
	}
}

// StopByID returns one stop.
func (d *Dataset) StopByID(id string) (Stop, error) {
	if err := d.ensureLoaded(); err != nil {
		return Stop{}, err
	}
	stop, ok := d.stops[id]
	if !ok {
		return Stop{}, ErrStopNotFound
	}
	return stop, nil
}

// NearbyStops returns stops within radiusMeters of the point, closest
// first, capped at limit.
func (d *Dataset) NearbyStops(lat, lon, radiusMeters float64, limit int) ([]NearbyStop, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var found []NearbyStop
	for _, stop := range d.stops {
		dist := haversineMeters(lat, lon, stop.Lat, stop.Lon)
		if dist <= radiusMeters {
			found = append(found, NearbyStop{Stop: stop, DistanceMeters: dist})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].DistanceMeters < found[j].DistanceMeters })
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// RoutesForStop lists the routes whose trips call at the stop.
func (d *Dataset) RoutesForStop(stopID string) ([]Route, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}
	if _, ok := d.stops[stopID]; !ok {
		return nil, ErrStopNotFound
	}
	ids := d.routeIDsByStop[stopID]
	routes := make([]Route, 0, len(ids))
	for _, id := range ids {
		if route, ok := d.routes[id]; ok {
			routes = append(routes, route)
		}
	}
	return routes, nil
}

// NextDepartures lists departures from the stop at or after the
// "HH:MM:SS" clock string, soonest first. GTFS clock values past 24:00
// denote after-midnight trips and sort naturally as strings.
func (d *Dataset) NextDepartures(stopID, after string, limit int) ([]StopTime, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}
	if _, ok := d.stops[stopID]; !ok {
		return nil, ErrStopNotFound
	}
	if limit <= 0 {
		limit = 5
	}

	times := d.stopTimesByStop[stopID]
	idx := sort.Search(len(times), func(i int) bool { return times[i].Departure >= after })
	end := idx + limit
	if end > len(times) {
		end = len(times)
	}
	out := make([]StopTime, end-idx)
	copy(out, times[idx:end])
	return out, nil
}

// TripByID returns one trip.
func (d *Dataset) TripByID(id string) (Trip, error) {
	if err := d.ensureLoaded(); err != nil {
		return Trip{}, err
	}
	trip, ok := d.trips[id]
	if !ok {
		return Trip{}, ErrRouteNotFound
	}
	return trip, nil
}

func findFile(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readTable streams a CSV file, handing each row to fn as a
// header-keyed map.
func readTable(file *zip.File, fn func(row map[string]string) error) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return err
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
