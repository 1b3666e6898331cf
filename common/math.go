package common

import (
	"encoding/binary"
	"unsafe"

	"github.com/chewxy/math32"
)

// Vec3 is a 3-component float32 vector.
type Vec3 [3]float32

// Vec4 is a 4-component float32 vector.
type Vec4 [4]float32

// Mat3 is a 3x3 float32 matrix stored in column-major order.
type Mat3 [9]float32

// Mat4 is a 4x4 float32 matrix stored in column-major order (WebGPU convention).
// All projection helpers in this package are left-handed with clip-space depth in [0, 1].
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul returns m * b.
//
// Parameters:
//   - b: right-hand matrix
//
// Returns:
//   - Mat4: the product m * b
func (m Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ { // column of b
		for j := 0; j < 4; j++ { // row of m
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += m[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// MulVec4 transforms v by m.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out Vec4
	for row := 0; row < 4; row++ {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}

// TransformPoint transforms the point p (w = 1) by m and returns the xyz result.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	r := m.MulVec4(Vec4{p[0], p[1], p[2], 1})
	return Vec3{r[0], r[1], r[2]}
}

// Upper3x3 returns the upper-left 3x3 block of m.
func (m Mat4) Upper3x3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Inverse computes the inverse of m using the Laplace expansion (cofactor) method.
// If the matrix is singular the identity is returned together with false.
//
// Returns:
//   - Mat4: the inverse of m, or identity when m is singular
//   - bool: true if the matrix was successfully inverted
func (m Mat4) Inverse() (Mat4, bool) {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity(), false
	}

	invDet := 1.0 / det
	var out Mat4

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return out, true
}

// NormalMatrix derives the matrix used to transform normals by m: the inverse-transpose of
// the upper-left 3x3 block. A singular block yields the plain upper 3x3.
//
// Parameters:
//   - m: the model matrix
//
// Returns:
//   - Mat3: the normal matrix, column-major
func NormalMatrix(m Mat4) Mat3 {
	a := m.Upper3x3()

	// cofactors of a, which equal det(a) * inverse(a)^T
	c := Mat3{
		a[4]*a[8] - a[5]*a[7],
		a[5]*a[6] - a[3]*a[8],
		a[3]*a[7] - a[4]*a[6],

		a[2]*a[7] - a[1]*a[8],
		a[0]*a[8] - a[2]*a[6],
		a[1]*a[6] - a[0]*a[7],

		a[1]*a[5] - a[2]*a[4],
		a[2]*a[3] - a[0]*a[5],
		a[0]*a[4] - a[1]*a[3],
	}
	det := a[0]*c[0] + a[1]*c[1] + a[2]*c[2]
	if det == 0 {
		return a
	}
	inv := 1 / det
	for i := range c {
		c[i] *= inv
	}
	return c
}

// Translation returns a matrix translating by t.
func Translation(t Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// Scaling returns a matrix scaling by s.
func Scaling(s Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s[0], s[1], s[2]
	return m
}

// RotationX returns a rotation of angle radians around the X axis.
func RotationX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotationY returns a rotation of angle radians around the Y axis.
func RotationY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotationZ returns a rotation of angle radians around the Z axis.
func RotationZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// RotationEuler returns Rx * Ry * Rz for the Euler angles in r (radians).
func RotationEuler(r Vec3) Mat4 {
	return RotationX(r[0]).Mul(RotationY(r[1])).Mul(RotationZ(r[2]))
}

// TRS composes translation * rotation * scale into a single model matrix.
//
// Parameters:
//   - position: translation in parent space
//   - rotation: Euler angles in radians, applied as Rx * Ry * Rz
//   - scale: per-axis scale factors
//
// Returns:
//   - Mat4: the composed local matrix
func TRS(position, rotation, scale Vec3) Mat4 {
	return Translation(position).Mul(RotationEuler(rotation)).Mul(Scaling(scale))
}

// Perspective creates a left-handed perspective projection with depth mapped to [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	y := 1 / math32.Tan(fovY*0.5)
	x := y / aspect
	z := far / (far - near)

	var m Mat4
	m[0] = x
	m[5] = y
	m[10] = z
	m[11] = 1
	m[14] = -near * z
	return m
}

// Ortho creates a left-handed orthographic projection with depth mapped to [0, 1].
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = 1 / (far - near)
	m[12] = (left + right) / (left - right)
	m[13] = (top + bottom) / (bottom - top)
	m[14] = near / (near - far)
	return m
}

// LookAt creates a left-handed view matrix positioned at eye and facing center.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - Mat4: the world-to-view matrix
func LookAt(eye, center, up Vec3) Mat4 {
	z := Normalize(Sub(center, eye))
	x := Normalize(Cross(up, z))
	y := Cross(z, x)

	return Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-Dot(x, eye), -Dot(y, eye), -Dot(z, eye), 1,
	}
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}

// Sub returns a - b.
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns v * s.
func Scale(v Vec3, s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length returns the Euclidean length of v.
func Length(v Vec3) float32 {
	return math32.Sqrt(Dot(v, v))
}

// Normalize returns v scaled to unit length. A zero vector is returned unchanged.
func Normalize(v Vec3) Vec3 {
	l := Length(v)
	if l == 0 {
		return v
	}
	return Scale(v, 1/l)
}

// ApproxEqual reports whether every element of a and b differs by at most tol.
func ApproxEqual(a, b Mat4, tol float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// AppendFloats appends v to buf as little-endian float32 values.
func AppendFloats(buf []byte, v ...float32) []byte {
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(f))
	}
	return buf
}

// AppendMat3 appends m with each column padded to 16 bytes, the layout of a WGSL mat3x3f.
func AppendMat3(buf []byte, m Mat3) []byte {
	for c := 0; c < 3; c++ {
		buf = AppendFloats(buf, m[c*3], m[c*3+1], m[c*3+2], 0)
	}
	return buf
}
