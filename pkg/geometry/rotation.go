package geometry

import "math"

// RotateX rotates the vector around the X axis by the given angle in degrees
func (v Vector3) RotateX(degrees float64) Vector3 {
	sin, cos := math.Sincos(degrees * math.Pi / 180.0)
	return Vector3{
		X: v.X,
		Y: v.Y*cos - v.Z*sin,
		Z: v.Y*sin + v.Z*cos,
	}
}

// RotateZ rotates the vector around the Z axis by the given angle in degrees
func (v Vector3) RotateZ(degrees float64) Vector3 {
	sin, cos := math.Sincos(degrees * math.Pi / 180.0)
	return Vector3{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
		Z: v.Z,
	}
}
