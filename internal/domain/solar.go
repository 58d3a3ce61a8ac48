package domain

import (
	"math"
	"time"

	sunrise "github.com/nathan-osman/go-sunrise"
)

// NOAA low-precision solar position constants.
const (
	j2000            = 2451545.0 // Julian date of the J2000 epoch
	deltaT           = 0.0009    // fractional-day correction for leap seconds / ∆T
	meanAnomalyBase  = 357.5291  // degrees at epoch
	meanAnomalyRate  = 0.98560028
	obliquity        = 23.4397  // Earth's axial tilt, degrees
	perihelion       = 102.9372 // argument of perihelion, degrees
	horizonDip       = -0.833   // refraction plus solar disc radius, degrees
	unixEpochJulian  = 2440587.5
	secondsPerDay    = 86400.0
	leapSecondOffset = 69.184 // TAI-UTC seconds folded into the cycle count
)

// Estimator computes sunrise and sunset in a fixed civil timezone.
// The zero value is not usable; construct with NewEstimator.
type Estimator struct {
	loc          *time.Location
	fallbackOnly bool
}

// NewEstimator returns an Estimator emitting times in loc. The precise
// ephemeris is preferred; the NOAA approximation handles elevation and the
// polar cases the ephemeris collapses.
func NewEstimator(loc *time.Location) *Estimator {
	return &Estimator{loc: loc}
}

// NewFallbackEstimator returns an Estimator that always uses the built-in
// NOAA approximation. Used in tests and when ephemeris output must be
// reproduced bit-for-bit against the approximation.
func NewFallbackEstimator(loc *time.Location) *Estimator {
	return &Estimator{loc: loc, fallbackOnly: true}
}

// Estimate computes the solar event for the calendar date of date at the
// given WGS-84 coordinate and elevation in metres. Malformed inputs and
// domain-undefined results both surface as nil sunrise/sunset, never as an
// error: downstream treats missing solar data as a data-quality signal.
func (e *Estimator) Estimate(date time.Time, lat, lon, elevation float64) SolarEvent {
	ev := SolarEvent{Date: date, Lat: lat, Lon: lon, Elevation: elevation}
	if date.IsZero() || !validCoordinate(lat, lon) || math.IsNaN(elevation) {
		return ev
	}

	if !e.fallbackOnly && elevation == 0 {
		rise, set := sunrise.SunriseSunset(lat, lon, date.Year(), date.Month(), date.Day())
		// The ephemeris reports polar day and polar night identically, as two
		// zero times; re-resolve those through the approximation, which
		// still yields a sunrise on polar days.
		if !rise.IsZero() && !set.IsZero() {
			ev.Sunrise = localTimePtr(rise, e.loc)
			ev.Sunset = localTimePtr(set, e.loc)
			return ev
		}
	}

	return e.fallback(ev)
}

// fallback implements the NOAA low-precision sunrise equation.
func (e *Estimator) fallback(ev SolarEvent) SolarEvent {
	midday := time.Date(ev.Date.Year(), ev.Date.Month(), ev.Date.Day(), 12, 0, 0, 0, time.UTC)
	jd := julianDate(midday)

	lw := -ev.Lon
	n := math.Ceil(jd - (j2000 + deltaT) + leapSecondOffset/secondsPerDay)
	jStar := n + deltaT - lw/360.0

	mDeg := math.Mod(meanAnomalyBase+meanAnomalyRate*jStar, 360.0)
	mRad := radians(mDeg)
	center := 1.9148*math.Sin(mRad) + 0.02*math.Sin(2*mRad) + 0.0003*math.Sin(3*mRad)
	lambdaDeg := math.Mod(mDeg+center+180.0+perihelion, 360.0)
	lambdaRad := radians(lambdaDeg)
	jTransit := j2000 + jStar + 0.0053*math.Sin(mRad) - 0.0069*math.Sin(2*lambdaRad)

	sinDecl := math.Sin(lambdaRad) * math.Sin(radians(obliquity))
	cosDecl := math.Cos(math.Asin(sinDecl))

	dip := horizonDip - 2.076*math.Sqrt(math.Max(ev.Elevation, 0))/60.0
	cosHour := (math.Sin(radians(dip)) - math.Sin(radians(ev.Lat))*sinDecl) /
		(math.Cos(radians(ev.Lat)) * cosDecl)

	switch {
	case cosHour <= -1.0:
		// Polar day: the sun never sets. Transit minus half a day stands in
		// for the missing sunrise; sunset stays nil.
		ev.Sunrise = e.fromJulian(jTransit - 0.5)
	case cosHour >= 1.0:
		// Polar night: no event at all.
	default:
		hourAngle := degrees(math.Acos(cosHour))
		ev.Sunrise = e.fromJulian(jTransit - hourAngle/360.0)
		ev.Sunset = e.fromJulian(jTransit + hourAngle/360.0)
	}
	return ev
}

func (e *Estimator) fromJulian(j float64) *time.Time {
	sec, frac := math.Modf((j - unixEpochJulian) * secondsPerDay)
	t := time.Unix(int64(sec), int64(frac*1e9)).In(e.loc)
	return &t
}

func julianDate(t time.Time) float64 {
	return float64(t.Unix())/secondsPerDay + unixEpochJulian
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func localTimePtr(t time.Time, loc *time.Location) *time.Time {
	local := t.In(loc)
	return &local
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
