package buffer

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

// rotationToQuat converts the upper-left 3x3 rotation part of m to a unit
// quaternion, using the standard trace-based conversion.
func rotationToQuat(m frame.Matrix4x4) quat.Number {
	trace := m[0][0] + m[1][1] + m[2][2]
	var q quat.Number
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1.0) * 2
		q.Real = 0.25 * s
		q.Imag = (m[2][1] - m[1][2]) / s
		q.Jmag = (m[0][2] - m[2][0]) / s
		q.Kmag = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1.0+m[0][0]-m[1][1]-m[2][2]) * 2
		q.Real = (m[2][1] - m[1][2]) / s
		q.Imag = 0.25 * s
		q.Jmag = (m[0][1] + m[1][0]) / s
		q.Kmag = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1.0+m[1][1]-m[0][0]-m[2][2]) * 2
		q.Real = (m[0][2] - m[2][0]) / s
		q.Imag = (m[0][1] + m[1][0]) / s
		q.Jmag = 0.25 * s
		q.Kmag = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1.0+m[2][2]-m[0][0]-m[1][1]) * 2
		q.Real = (m[1][0] - m[0][1]) / s
		q.Imag = (m[0][2] + m[2][0]) / s
		q.Jmag = (m[1][2] + m[2][1]) / s
		q.Kmag = 0.25 * s
	}
	return normalizeQuat(q)
}

func normalizeQuat(q quat.Number) quat.Number {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Number{Real: q.Real / n, Imag: q.Imag / n, Jmag: q.Jmag / n, Kmag: q.Kmag / n}
}

func dotQuat(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

func negateQuat(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// slerp performs spherical linear interpolation between unit quaternions qa
// and qb with parameter t in [0,1]: t==0 yields qa, t==1 yields qb.
func slerp(qa, qb quat.Number, t float64) quat.Number {
	cosHalfTheta := dotQuat(qa, qb)
	if cosHalfTheta < 0 {
		qb = negateQuat(qb)
		cosHalfTheta = -cosHalfTheta
	}
	if cosHalfTheta > 0.9995 {
		// Nearly identical; linear interpolation avoids division by a
		// near-zero sin term.
		q := quat.Number{
			Real: qa.Real + t*(qb.Real-qa.Real),
			Imag: qa.Imag + t*(qb.Imag-qa.Imag),
			Jmag: qa.Jmag + t*(qb.Jmag-qa.Jmag),
			Kmag: qa.Kmag + t*(qb.Kmag-qa.Kmag),
		}
		return normalizeQuat(q)
	}

	halfTheta := math.Acos(cosHalfTheta)
	sinHalfTheta := math.Sqrt(1.0 - cosHalfTheta*cosHalfTheta)

	ratioA := math.Sin((1-t)*halfTheta) / sinHalfTheta
	ratioB := math.Sin(t*halfTheta) / sinHalfTheta

	return quat.Number{
		Real: qa.Real*ratioA + qb.Real*ratioB,
		Imag: qa.Imag*ratioA + qb.Imag*ratioB,
		Jmag: qa.Jmag*ratioA + qb.Jmag*ratioB,
		Kmag: qa.Kmag*ratioA + qb.Kmag*ratioB,
	}
}

// quatToRotation converts a unit quaternion back to a 3x3 rotation matrix,
// writing it into the upper-left block of a 4x4 identity matrix.
func quatToRotation(q quat.Number) frame.Matrix4x4 {
	m := frame.Identity()
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	m[0][0] = 1 - 2*(y*y+z*z)
	m[0][1] = 2 * (x*y - z*w)
	m[0][2] = 2 * (x*z + y*w)
	m[1][0] = 2 * (x*y + z*w)
	m[1][1] = 1 - 2*(x*x+z*z)
	m[1][2] = 2 * (y*z - x*w)
	m[2][0] = 2 * (x*z - y*w)
	m[2][1] = 2 * (y*z + x*w)
	m[2][2] = 1 - 2*(x*x+y*y)
	return m
}

// geodesicAngleDeg returns the angle, in degrees, of the rotation that
// carries qa onto qb.
func geodesicAngleDeg(qa, qb quat.Number) float64 {
	d := dotQuat(qa, qb)
	if d < -1 {
		d = -1
	}
	if d > 1 {
		d = 1
	}
	if d < 0 {
		d = -d // quaternions q and -q represent the same rotation
	}
	return 2 * math.Acos(d) * 180 / math.Pi
}
