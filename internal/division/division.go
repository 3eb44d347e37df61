package division

import "strings"

// Division is one of the four fixed geographic sectors used to partition
// listings.
type Division string

const (
	North Division = "North"
	South Division = "South"
	East  Division = "East"
	West  Division = "West"
)

// All lists the divisions in presentation order.
var All = []Division{North, South, East, West}

// locationTable maps known locality names to their division. Lookups are
// lowercase exact-match after trimming.
var locationTable = map[string]Division{
	// South Bangalore
	"kanakapura":   South,
	"anjanapura":   South,
	"hsr":          South,
	"hsr layout":   South,
	"koramangala":  South,
	"indira nagar": South,
	"indiranagar":  South,
	"bannerghatta": South,
	"jayanagar":    South,
	"south":        South,

	// North Bangalore
	"yeshwanthpur":     North,
	"whitefield":       North,
	"hebbal":           North,
	"yelahanka":        North,
	"ramamurthy nagar": North,
	"north":            North,

	// East Bangalore
	"marathahalli": East,
	"ejipura":      East,
	"sarjapur":     East,
	"varthur":      East,
	"east":         East,

	// West Bangalore
	"tumkur":       West,
	"tumkur road":  West,
	"nelamangala":  West,
	"chikballapur": West,
	"west":         West,
}

// FromLocation resolves a free-text locality name to its division.
// The second return is false when the name is unknown.
func FromLocation(location string) (Division, bool) {
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" {
		return "", false
	}
	d, ok := locationTable[key]
	return d, ok
}

// Parse normalizes a division name (any case) to a Division.
func Parse(s string) (Division, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north":
		return North, true
	case "south":
		return South, true
	case "east":
		return East, true
	case "west":
		return West, true
	}
	return "", false
}

// Areas lists the locality names served by the search surface, in
// presentation order.
func Areas() []string {
	return []string{
		"Kanakapura", "Anjanapura", "HSR Layout", "Koramangala",
		"Yeshwanthpur", "Whitefield", "Hebbal", "Yelahanka",
		"Marathahalli", "Sarjapur", "Varthur",
		"Tumkur Road", "Nelamangala",
	}
}
