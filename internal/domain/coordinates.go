package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// LonLat returns the GeoJSON-ordered [lon, lat] pair used in JSON payloads.
func (c Coordinates) LonLat() [2]float64 { return [2]float64{c.Lon, c.Lat} }

// GeoPoint is a persisted coordinate. RouteIDs and ActivityIDs are the
// back-references to the routes and activities that contain it.
type GeoPoint struct {
	ID          int64
	Coordinates Coordinates
	RouteIDs    []int64
	ActivityIDs []int64
}
