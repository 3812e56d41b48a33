package types

import "encoding/json"

// Precipitation is one measurement row's date and rainfall. It encodes as a
// single-key object {"<date>": <prcp or null>}.
type Precipitation struct {
	Date string
	Prcp *float64
}

func (p Precipitation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*float64{p.Date: p.Prcp})
}

// Station encodes as the pair [name, station].
type Station struct {
	Name    string
	Station string
}

func (s Station) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{s.Name, s.Station})
}

// TempObservation encodes as the pair [date, tobs].
type TempObservation struct {
	Date string
	Tobs float64
}

func (o TempObservation) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{o.Date, o.Tobs})
}

// TempStats is the per-station temperature summary over a date range. Date is
// the earliest matching date for the station.
type TempStats struct {
	Date    string  `json:"Date"`
	Name    string  `json:"Name"`
	Station string  `json:"Station"`
	Min     float64 `json:"Min"`
	Max     float64 `json:"Max"`
	Average float64 `json:"Average"`
}
