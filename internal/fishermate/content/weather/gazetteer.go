package weather

import (
	"strings"

	"github.com/fishermate/fishermate/internal/fishermate/content"
)

// DefaultLocation is used when the user shares no location (Chennai).
var DefaultLocation = content.Location{Lat: 13.0827, Lon: 80.2707}

// ports are coastal towns SMS users can name instead of sharing a
// location.
var ports = map[string]content.Location{
	"chennai":       {Lat: 13.0827, Lon: 80.2707},
	"mumbai":        {Lat: 19.0760, Lon: 72.8777},
	"kochi":         {Lat: 9.9312, Lon: 76.2673},
	"cochin":        {Lat: 9.9312, Lon: 76.2673},
	"kolkata":       {Lat: 22.5726, Lon: 88.3639},
	"visakhapatnam": {Lat: 17.6868, Lon: 83.2185},
	"vizag":         {Lat: 17.6868, Lon: 83.2185},
	"panaji":        {Lat: 15.4909, Lon: 73.8278},
	"goa":           {Lat: 15.4909, Lon: 73.8278},
	"mangalore":     {Lat: 12.9141, Lon: 74.8560},
	"mangaluru":     {Lat: 12.9141, Lon: 74.8560},
	"puri":          {Lat: 19.8135, Lon: 85.8312},
	"tuticorin":     {Lat: 8.7642, Lon: 78.1348},
	"thoothukudi":   {Lat: 8.7642, Lon: 78.1348},
	"rameswaram":    {Lat: 9.2876, Lon: 79.3129},
	"nagapattinam":  {Lat: 10.7672, Lon: 79.8449},
	"kanyakumari":   {Lat: 8.0883, Lon: 77.5385},
	"kozhikode":     {Lat: 11.2588, Lon: 75.7804},
	"karwar":        {Lat: 14.8136, Lon: 74.1297},
	"porbandar":     {Lat: 21.6417, Lon: 69.6293},
	"veraval":       {Lat: 20.9070, Lon: 70.3679},
	"puducherry":    {Lat: 11.9416, Lon: 79.8083},
	"pondicherry":   {Lat: 11.9416, Lon: 79.8083},
	"paradip":       {Lat: 20.3167, Lon: 86.6167},
	"digha":         {Lat: 21.6266, Lon: 87.5074},
}

// Lookup resolves a port name, ignoring case and a trailing "detail".
func Lookup(place string) (content.Location, bool) {
	p := strings.ToLower(strings.TrimSpace(place))
	p = strings.TrimSpace(strings.TrimSuffix(p, "detail"))
	loc, ok := ports[p]
	return loc, ok
}
