package division

import (
	"github.com/twpayne/go-geom"
)

// MapRegion describes a division's map extent for the locations surface.
type MapRegion struct {
	Name        string       `json:"name"`
	Bounds      *geom.Bounds `json:"-"`
	Description string       `json:"description"`
}

// BoundsJSON is the serialized form of a map extent.
type BoundsJSON struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// JSONBounds renders the region's extent as compass-named coordinates.
func (r MapRegion) JSONBounds() BoundsJSON {
	return BoundsJSON{
		North: r.Bounds.Max(1),
		South: r.Bounds.Min(1),
		East:  r.Bounds.Max(0),
		West:  r.Bounds.Min(0),
	}
}

// regions holds the fixed Bangalore division extents, lon/lat order.
var regions = map[Division]MapRegion{
	North: {
		Name:        "North Bangalore",
		Bounds:      geom.NewBounds(geom.XY).Set(77.5, 13.0, 77.7, 13.2),
		Description: "Includes Yeshwanthpur, Whitefield, Hebbal, Yelahanka",
	},
	South: {
		Name:        "South Bangalore",
		Bounds:      geom.NewBounds(geom.XY).Set(77.45, 12.7, 77.65, 12.95),
		Description: "Includes Kanakapura, HSR Layout, Koramangala, Jayanagar",
	},
	East: {
		Name:        "East Bangalore",
		Bounds:      geom.NewBounds(geom.XY).Set(77.6, 12.8, 77.8, 13.05),
		Description: "Includes Marathahalli, Sarjapur, Varthur",
	},
	West: {
		Name:        "West Bangalore",
		Bounds:      geom.NewBounds(geom.XY).Set(77.2, 12.85, 77.5, 13.1),
		Description: "Includes Tumkur Road, Nelamangala, Chikballapur",
	},
}

// Region returns the map extent for a division.
func Region(d Division) (MapRegion, bool) {
	r, ok := regions[d]
	return r, ok
}

// Regions returns all division map extents in presentation order.
func Regions() []MapRegion {
	out := make([]MapRegion, 0, len(All))
	for _, d := range All {
		out = append(out, regions[d])
	}
	return out
}
