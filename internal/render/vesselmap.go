package render

import (
	"fmt"
	"math"

	"ctrmdash/internal/domain"
)

const (
	mapTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	mapAttribution = `&copy; <a href="https://openstreetmap.org">OSM</a>`
	boundsPadding  = 0.1
)

type MapMarker struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type Polyline struct {
	Points  []domain.LatLon `json:"points"`
	Color   string          `json:"color"`
	Weight  int             `json:"weight"`
	Opacity float64         `json:"opacity"`
}

type MapLabel struct {
	Position domain.LatLon `json:"position"`
	Text     string        `json:"text"`
}

type VesselMap struct {
	Center      domain.LatLon    `json:"center"`
	Zoom        int              `json:"zoom"`
	TileURL     string           `json:"tile_url"`
	Attribution string           `json:"attribution"`
	Markers     []MapMarker      `json:"markers"`
	Route       Polyline         `json:"route"`
	RouteLabel  *MapLabel        `json:"route_label,omitempty"`
	Bounds      [2]domain.LatLon `json:"bounds"` // south-west, north-east
}

// Map renders the vessel layers: one marker per port, the route polyline and
// a label at the route's midpoint naming the ports at either end of it.
func Map(v domain.Vessels) VesselMap {
	m := VesselMap{
		Center:      domain.LatLon{40, -20},
		Zoom:        3,
		TileURL:     mapTileURL,
		Attribution: mapAttribution,
		Route: Polyline{
			Points:  append([]domain.LatLon(nil), v.Route...),
			Color:   colorPrimary,
			Weight:  3,
			Opacity: 0.7,
		},
	}

	var points []domain.LatLon
	for _, p := range v.Ports {
		m.Markers = append(m.Markers, MapMarker{
			Name:  p.Name,
			Lat:   p.Lat,
			Lon:   p.Lon,
			Popup: fmt.Sprintf("<strong>%s</strong><br/>Port facility", p.Name),
		})
		points = append(points, domain.LatLon{p.Lat, p.Lon})
	}
	points = append(points, v.Route...)

	if n := len(v.Route); n > 0 {
		from, okFrom := portAt(v.Ports, v.Route[0])
		to, okTo := portAt(v.Ports, v.Route[n-1])
		if okFrom && okTo {
			m.RouteLabel = &MapLabel{Position: v.Route[n/2], Text: from + " → " + to}
		}
	}
	if len(points) > 0 {
		m.Bounds = paddedBounds(points, boundsPadding)
	}
	return m
}

func portAt(ports []domain.Port, ll domain.LatLon) (string, bool) {
	for _, p := range ports {
		if p.Lat == ll[0] && p.Lon == ll[1] {
			return p.Name, true
		}
	}
	return "", false
}

func paddedBounds(points []domain.LatLon, pad float64) [2]domain.LatLon {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minLat = math.Min(minLat, p[0])
		maxLat = math.Max(maxLat, p[0])
		minLon = math.Min(minLon, p[1])
		maxLon = math.Max(maxLon, p[1])
	}
	dLat := (maxLat - minLat) * pad
	dLon := (maxLon - minLon) * pad
	return [2]domain.LatLon{
		{minLat - dLat, minLon - dLon},
		{maxLat + dLat, maxLon + dLon},
	}
}
