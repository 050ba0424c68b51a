package astro

import (
	"math"
)

// UnitTolerance is the accepted deviation of a direction vector's length from 1.
const UnitTolerance = 1e-3

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product v · u.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// IsUnit reports whether |v| is within UnitTolerance of 1.
func (v Vec3) IsUnit() bool {
	return math.Abs(v.Norm()-1) <= UnitTolerance
}

// ENU is a direction in the observer's local East-North-Up tangent frame.
type ENU struct {
	East, North, Up float64
}

// AltAzToENU converts azimuth/altitude in degrees to a unit ENU vector.
func AltAzToENU(azDeg, altDeg float64) ENU {
	sinAz, cosAz := math.Sincos(degToRad(azDeg))
	sinAlt, cosAlt := math.Sincos(degToRad(altDeg))
	return ENU{
		East:  sinAz * cosAlt,
		North: cosAz * cosAlt,
		Up:    sinAlt,
	}
}

// ENUToECEF rotates a local ENU vector into the geocentric Earth-fixed frame
// by summing it over the ECEF images of the observer's E, N and U axes.
func ENUToECEF(enu ENU, latDeg, lonDeg float64) Vec3 {
	sinLat, cosLat := math.Sincos(degToRad(latDeg))
	sinLon, cosLon := math.Sincos(degToRad(lonDeg))

	e := Vec3{X: -sinLon, Y: cosLon, Z: 0}
	n := Vec3{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat}
	u := Vec3{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}

	// Each output axis is the dot product of (E, N, U) components with enu.
	in := Vec3{X: enu.East, Y: enu.North, Z: enu.Up}
	return Vec3{
		X: in.Dot(Vec3{X: e.X, Y: n.X, Z: u.X}),
		Y: in.Dot(Vec3{X: e.Y, Y: n.Y, Z: u.Y}),
		Z: in.Dot(Vec3{X: e.Z, Y: n.Z, Z: u.Z}),
	}
}

// ECEFToWorld remaps Z-up ECEF axes to the renderer's Y-up world: (x, z, y).
// Consumers depend on this permutation; it must only change together with
// the renderer.
func ECEFToWorld(v Vec3) Vec3 {
	return Vec3{X: v.X, Y: v.Z, Z: v.Y}
}

// ObserverECEF returns the unit position vector of a point on a spherical
// Earth in ECEF axes.
func ObserverECEF(latDeg, lonDeg float64) Vec3 {
	sinLat, cosLat := math.Sincos(degToRad(latDeg))
	sinLon, cosLon := math.Sincos(degToRad(lonDeg))
	return Vec3{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
}

// HorizontalToWorld chains AltAzToENU, ENUToECEF and ECEFToWorld.
func HorizontalToWorld(azDeg, altDeg, latDeg, lonDeg float64) Vec3 {
	return ECEFToWorld(ENUToECEF(AltAzToENU(azDeg, altDeg), latDeg, lonDeg))
}
