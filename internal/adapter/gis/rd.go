package gis

// Conversion from WGS-84 to the Dutch national grid, RD New (EPSG:28992),
// using the RDNAPTRANS approximation polynomials. Accurate to well under a
// metre within the Netherlands, which is plenty for survey point layers.

const (
	rdLat0 = 52.15517440
	rdLon0 = 5.38720621
	rdX0   = 155000.0
	rdY0   = 463000.0
)

type rdTerm struct {
	p, q int
	coef float64
}

var rdXTerms = []rdTerm{
	{0, 1, 190094.945},
	{1, 1, -11832.228},
	{2, 1, -114.221},
	{0, 3, -32.391},
	{1, 0, -0.705},
	{3, 1, -2.340},
	{1, 3, -0.608},
	{0, 2, -0.008},
	{2, 3, 0.148},
}

var rdYTerms = []rdTerm{
	{1, 0, 309056.544},
	{0, 2, 3638.893},
	{2, 0, 73.077},
	{1, 2, -157.984},
	{3, 0, 59.788},
	{0, 1, 0.433},
	{2, 2, -6.439},
	{1, 1, -0.032},
	{0, 4, 0.092},
	{1, 4, -0.054},
}

// WGS84ToRD projects a WGS-84 coordinate onto the RD New grid, returning
// easting and northing in metres.
func WGS84ToRD(lat, lon float64) (x, y float64) {
	dLat := 0.36 * (lat - rdLat0)
	dLon := 0.36 * (lon - rdLon0)

	x = rdX0
	for _, t := range rdXTerms {
		x += t.coef * pow(dLat, t.p) * pow(dLon, t.q)
	}
	y = rdY0
	for _, t := range rdYTerms {
		y += t.coef * pow(dLat, t.p) * pow(dLon, t.q)
	}
	return x, y
}

// pow is an integer power; the polynomial exponents never exceed 4.
func pow(base float64, exp int) float64 {
	v := 1.0
	for i := 0; i < exp; i++ {
		v *= base
	}
	return v
}
