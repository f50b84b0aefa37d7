package coordinates

import (
	"math"
	"time"
)

// SunPosition represents the sun's position in the sky above an observer.
type SunPosition struct {
	Altitude float64   // Degrees above horizon
	Azimuth  float64   // Degrees from north
	Time     time.Time // Calculation time
}

// SunAltitudeAtHorizon is the apparent altitude at which the sun's upper
// limb touches the horizon, accounting for the sun's radius and typical
// atmospheric refraction.
const SunAltitudeAtHorizon = -0.833

// CalculateSunPosition calculates the sun's position for a given location
// and time. Uses simplified algorithms accurate to about 1 arcminute,
// based on NOAA solar calculator algorithms.
func CalculateSunPosition(location Geographic, t time.Time) SunPosition {
	utc := t.UTC()

	// Julian century from J2000.0
	jd := julianDate(utc)
	jc := (jd - 2451545.0) / 36525.0

	// Sun's geometric mean longitude (degrees)
	L0 := math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360.0)

	// Sun's mean anomaly (degrees)
	M := 357.52911 + jc*(35999.05029-0.0001537*jc)
	Mrad := deg2rad(M)

	// Sun's equation of center
	C := math.Sin(Mrad)*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(2*Mrad)*(0.019993-0.000101*jc) +
		math.Sin(3*Mrad)*0.000289

	// Sun's apparent longitude, corrected for aberration and nutation
	sunTrueLong := L0 + C
	omega := 125.04 - 1934.136*jc
	lambda := sunTrueLong - 0.00569 - 0.00478*math.Sin(deg2rad(omega))

	// Obliquity of ecliptic (degrees)
	epsilon0 := 23.0 + (26.0+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813))))/60.0/60.0
	epsilon := epsilon0 + 0.00256*math.Cos(deg2rad(omega))

	// Sun's right ascension and declination (degrees)
	lambdaRad := deg2rad(lambda)
	epsilonRad := deg2rad(epsilon)
	ra := rad2deg(math.Atan2(math.Cos(epsilonRad)*math.Sin(lambdaRad), math.Cos(lambdaRad)))
	if ra < 0 {
		ra += 360
	}
	dec := rad2deg(math.Asin(math.Sin(epsilonRad) * math.Sin(lambdaRad)))

	// Greenwich mean sidereal time, then local sidereal time (degrees)
	gmst := math.Mod(280.46061837+360.98564736629*(jd-2451545.0)+
		0.000387933*jc*jc-jc*jc*jc/38710000.0, 360.0)
	lst := math.Mod(gmst+location.Longitude, 360.0)

	// Hour angle (degrees)
	ha := lst - ra
	if ha < 0 {
		ha += 360
	}
	if ha > 180 {
		ha -= 360
	}

	// Convert to horizontal coordinates (altitude and azimuth)
	latRad := deg2rad(location.Latitude)
	decRad := deg2rad(dec)
	haRad := deg2rad(ha)

	sinAlt := math.Sin(latRad)*math.Sin(decRad) + math.Cos(latRad)*math.Cos(decRad)*math.Cos(haRad)
	altitude := rad2deg(math.Asin(sinAlt))

	cosAz := (math.Sin(decRad) - math.Sin(latRad)*math.Sin(deg2rad(altitude))) / (math.Cos(latRad) * math.Cos(deg2rad(altitude)))
	// Clamp to prevent domain errors
	if cosAz > 1.0 {
		cosAz = 1.0
	}
	if cosAz < -1.0 {
		cosAz = -1.0
	}
	azimuth := rad2deg(math.Acos(cosAz))
	if math.Sin(haRad) > 0 {
		azimuth = 360.0 - azimuth
	}

	// Atmospheric refraction correction (only near or above the horizon)
	if altitude > SunAltitudeAtHorizon && altitude < 85.0 {
		tanAlt := math.Tan(deg2rad(altitude))
		refraction := 0.0
		if altitude > 5.0 {
			refraction = 58.1/tanAlt - 0.07/(tanAlt*tanAlt*tanAlt) + 0.000086/(tanAlt*tanAlt*tanAlt*tanAlt*tanAlt)
		} else if altitude > -0.575 {
			refraction = 1735.0 + altitude*(-518.2+altitude*(103.4+altitude*(-12.79+altitude*0.711)))
		}
		altitude += refraction / 3600.0 // arcseconds to degrees
	}

	return SunPosition{
		Altitude: altitude,
		Azimuth:  azimuth,
		Time:     t,
	}
}

// IsAboveHorizon returns true if the sun is above the horizon.
func (sp SunPosition) IsAboveHorizon() bool {
	return sp.Altitude > SunAltitudeAtHorizon
}

// julianDate calculates the Julian Date from a time.Time
func julianDate(t time.Time) float64 {
	year := t.Year()
	month := int(t.Month())
	day := t.Day()
	hour := t.Hour()
	minute := t.Minute()
	second := t.Second()

	// Adjust for January and February
	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4

	jd := float64(int(365.25*float64(year+4716))) +
		float64(int(30.6001*float64(month+1))) +
		float64(day+b) - 1524.5

	dayFraction := (float64(hour) + float64(minute)/60.0 + float64(second)/3600.0) / 24.0
	jd += dayFraction

	return jd
}
