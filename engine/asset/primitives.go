package asset

import (
	"fmt"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/chewxy/math32"
)

type primitiveLoader struct {
	builders map[string]func() *ModelData
}

// NewPrimitiveLoader returns a loader for the built-in shapes "plane", "quad", "cube" and
// "sphere", all of unit size and centered on the origin.
func NewPrimitiveLoader() Loader {
	return &primitiveLoader{builders: map[string]func() *ModelData{
		"plane":  func() *ModelData { return Plane(1) },
		"quad":   func() *ModelData { return Quad(1) },
		"cube":   func() *ModelData { return Cube(1) },
		"sphere": func() *ModelData { return Sphere(0.5, 24, 16) },
	}}
}

func (l *primitiveLoader) Load(id string) (*ModelData, error) {
	build, ok := l.builders[id]
	if !ok {
		return nil, fmt.Errorf("%w: primitive %q", ErrNotFound, id)
	}
	return build(), nil
}

func singleSubmesh(d *ModelData) *ModelData {
	d.Submeshes = []SubmeshData{{
		Name:       d.Name,
		IndexCount: uint32(len(d.Indices)),
		Material: MaterialData{
			Name:      d.Name,
			Constants: material.DefaultConstants(),
		},
	}}
	d.computeBounds()
	return d
}

// Plane returns a square in the XZ plane facing +Y with uv spanning [0, 1].
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - *ModelData: the plane
func Plane(size float32) *ModelData {
	h := size / 2
	up := [3]float32{0, 1, 0}
	return singleSubmesh(&ModelData{
		Name: "plane",
		Vertices: []Vertex{
			{Position: [3]float32{-h, 0, -h}, Normal: up, UV: [2]float32{0, 1}},
			{Position: [3]float32{h, 0, -h}, Normal: up, UV: [2]float32{1, 1}},
			{Position: [3]float32{h, 0, h}, Normal: up, UV: [2]float32{1, 0}},
			{Position: [3]float32{-h, 0, h}, Normal: up, UV: [2]float32{0, 0}},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	})
}

// Quad returns a square in the XY plane facing -Z, toward a camera looking down +Z.
func Quad(size float32) *ModelData {
	h := size / 2
	back := [3]float32{0, 0, -1}
	return singleSubmesh(&ModelData{
		Name: "quad",
		Vertices: []Vertex{
			{Position: [3]float32{-h, -h, 0}, Normal: back, UV: [2]float32{0, 1}},
			{Position: [3]float32{h, -h, 0}, Normal: back, UV: [2]float32{1, 1}},
			{Position: [3]float32{h, h, 0}, Normal: back, UV: [2]float32{1, 0}},
			{Position: [3]float32{-h, h, 0}, Normal: back, UV: [2]float32{0, 0}},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	})
}

// Cube returns an axis-aligned cube with one flat-shaded quad per face.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - *ModelData: the cube
func Cube(size float32) *ModelData {
	h := size / 2
	faces := []struct {
		normal, u, v common.Vec3
	}{
		{common.Vec3{1, 0, 0}, common.Vec3{0, 0, 1}, common.Vec3{0, 1, 0}},
		{common.Vec3{-1, 0, 0}, common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, 1}},
		{common.Vec3{0, -1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}},
		{common.Vec3{0, 0, 1}, common.Vec3{-1, 0, 0}, common.Vec3{0, 1, 0}},
		{common.Vec3{0, 0, -1}, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}},
	}

	d := &ModelData{Name: "cube"}
	for _, f := range faces {
		base := uint32(len(d.Vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p common.Vec3
			for i := range p {
				p[i] = (f.normal[i] + c[0]*f.u[i] + c[1]*f.v[i]) * h
			}
			d.Vertices = append(d.Vertices, Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return singleSubmesh(d)
}

// Sphere returns a UV sphere.
//
// Parameters:
//   - radius: sphere radius
//   - segments: subdivisions around the Y axis (at least 3)
//   - rings: subdivisions from pole to pole (at least 2)
//
// Returns:
//   - *ModelData: the sphere
func Sphere(radius float32, segments, rings int) *ModelData {
	segments = max(segments, 3)
	rings = max(rings, 2)

	d := &ModelData{Name: "sphere"}
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := v * math32.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := u * 2 * math32.Pi
			n := common.Vec3{
				math32.Sin(theta) * math32.Cos(phi),
				math32.Cos(theta),
				math32.Sin(theta) * math32.Sin(phi),
			}
			d.Vertices = append(d.Vertices, Vertex{
				Position: common.Scale(n, radius),
				Normal:   n,
				UV:       [2]float32{u, v},
			})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			d.Indices = append(d.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return singleSubmesh(d)
}
