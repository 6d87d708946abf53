package yield

import "strings"

// Country is a reference region with long-run climate averages.
type Country struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	AvgTemp float64 `json:"avgTemp"` // °C
	AvgRain float64 `json:"avgRain"` // mm/year
}

// Countries is ordered; the first entry is the default region.
var Countries = []Country{
	{Name: "India", Lat: 20.5937, Lng: 78.9629, AvgTemp: 24, AvgRain: 1083},
	{Name: "USA", Lat: 37.0902, Lng: -95.7129, AvgTemp: 14, AvgRain: 715},
	{Name: "Brazil", Lat: -14.2350, Lng: -51.9253, AvgTemp: 25, AvgRain: 1761},
	{Name: "China", Lat: 35.8617, Lng: 104.1954, AvgTemp: 13, AvgRain: 645},
	{Name: "Australia", Lat: -25.2744, Lng: 133.7751, AvgTemp: 21, AvgRain: 534},
	{Name: "Nigeria", Lat: 9.0820, Lng: 8.6753, AvgTemp: 26, AvgRain: 1165},
	{Name: "Argentina", Lat: -38.4161, Lng: -63.6167, AvgTemp: 14, AvgRain: 591},
	{Name: "Indonesia", Lat: -0.7893, Lng: 113.9213, AvgTemp: 27, AvgRain: 2702},
	{Name: "France", Lat: 46.2276, Lng: 2.2137, AvgTemp: 11, AvgRain: 867},
	{Name: "Ukraine", Lat: 48.3794, Lng: 31.1656, AvgTemp: 9, AvgRain: 565},
	{Name: "Canada", Lat: 56.1304, Lng: -106.3468, AvgTemp: -5, AvgRain: 537},
	{Name: "Russia", Lat: 61.5240, Lng: 105.3188, AvgTemp: -5, AvgRain: 460},
	{Name: "Japan", Lat: 36.2048, Lng: 138.2529, AvgTemp: 15, AvgRain: 1668},
}

// LookupCountry finds a region by name, ignoring case. The boolean reports
// whether the name matched; on a miss the default region is returned.
func LookupCountry(name string) (Country, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Countries {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Countries[0], false
}
