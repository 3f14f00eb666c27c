package domain

// Port is a port facility marker on the vessel map.
type Port struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// LatLon is a [lat, lon] pair of a route polyline.
type LatLon [2]float64

// Vessels holds the static vessel-tracking layers.
type Vessels struct {
	Ports []Port   `json:"ports"`
	Route []LatLon `json:"route"`
}
