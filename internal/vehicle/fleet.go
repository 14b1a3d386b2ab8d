package vehicle

// Default altitude and heading for vehicles before the first tick.
const (
	DefaultAlt     = 400
	DefaultHeading = 90
)

// DefaultFleet returns the demo vehicles over central London and the
// centres they orbit, parallel by index.
func DefaultFleet() ([]Vehicle, []Centre) {
	centres := []Centre{
		{Lat: 51.52, Lng: -0.12},
		{Lat: 51.505, Lng: -0.09},
		{Lat: 51.505, Lng: -0.12},
	}
	statuses := []Status{StatusOK, StatusWarn, StatusError}
	kinds := []Kind{KindMultirotor, KindFixedWing, KindFixedWing}
	ids := []string{"1", "2", "3"}

	vehicles := make([]Vehicle, len(centres))
	for i, c := range centres {
		vehicles[i] = Vehicle{
			ID:     ids[i],
			Lat:    c.Lat,
			Lng:    c.Lng,
			Alt:    DefaultAlt,
			Hdg:    DefaultHeading,
			Status: statuses[i],
			Type:   kinds[i],
		}
	}
	return vehicles, centres
}
