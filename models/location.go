package models

// Coordinate is a WGS-84 position in decimal degrees. Values are not range checked.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Courier struct {
	ID        string     `json:"courier_id"`
	Location  Coordinate `json:"location"`
	Available bool       `json:"available"`
}
