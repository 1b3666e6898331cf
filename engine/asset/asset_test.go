package asset

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveLoader(t *testing.T) {
	l := NewPrimitiveLoader()

	for _, id := range []string{"plane", "quad", "cube", "sphere"} {
		d, err := l.Load(id)
		require.NoError(t, err, id)
		require.Len(t, d.Submeshes, 1)
		assert.Equal(t, uint32(len(d.Indices)), d.Submeshes[0].IndexCount)
		assert.Zero(t, len(d.Indices)%3)
		assert.Equal(t, material.DefaultConstants(), d.Submeshes[0].Material.Constants)
		for _, i := range d.Indices {
			assert.Less(t, int(i), len(d.Vertices))
		}
	}

	_, err := l.Load("teapot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCube_Bounds(t *testing.T) {
	d := Cube(2)
	assert.Len(t, d.Vertices, 24)
	assert.Len(t, d.Indices, 36)
	assert.Equal(t, common.Vec3{-1, -1, -1}, d.Bounds.Min)
	assert.Equal(t, common.Vec3{1, 1, 1}, d.Bounds.Max)
}

func TestPlane(t *testing.T) {
	d := Plane(10)
	assert.Equal(t, common.Vec3{-5, 0, -5}, d.Bounds.Min)
	assert.Equal(t, common.Vec3{5, 0, 5}, d.Bounds.Max)
	for _, v := range d.Vertices {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	}
	assert.Len(t, d.VertexBytes(), 4*VertexStride)
	assert.Len(t, d.IndexBytes(), 6*4)
}

func TestSphere_UnitNormals(t *testing.T) {
	d := Sphere(2, 8, 4)
	assert.Len(t, d.Vertices, 9*5)
	assert.Len(t, d.Indices, 8*4*6)
	for _, v := range d.Vertices {
		assert.InDelta(t, 1, common.Length(v.Normal), 1e-5)
		assert.InDelta(t, 2, common.Length(v.Position), 1e-5)
	}
}

type stubLoader struct {
	data *ModelData
	err  error
}

func (s stubLoader) Load(string) (*ModelData, error) { return s.data, s.err }

func TestChain(t *testing.T) {
	want := &ModelData{Name: "found"}
	boom := errors.New("corrupt file")

	d, err := Chain(stubLoader{err: ErrNotFound}, stubLoader{data: want}).Load("x")
	require.NoError(t, err)
	assert.Same(t, want, d)

	_, err = Chain(stubLoader{err: boom}, stubLoader{data: want}).Load("x")
	assert.ErrorIs(t, err, boom)

	_, err = Chain(stubLoader{err: ErrNotFound}).Load("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(bytes.NewReader(encodePNG(t, 4, 2, color.RGBA{10, 20, 30, 255})), 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pix[:4])

	scaled, err := DecodeImage(bytes.NewReader(encodePNG(t, 64, 16, color.RGBA{255, 0, 0, 255})), 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 8), scaled.Bounds())

	_, err = DecodeImage(bytes.NewReader([]byte("not an image")), 0)
	assert.Error(t, err)
}

func TestSolidImage(t *testing.T) {
	img := SolidImage(128, 128, 255, 255)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
	assert.Equal(t, []byte{128, 128, 255, 255}, img.Pix)
}

func writeTriangleGLB(t *testing.T, dir string) {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 2}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	rough := 0.25
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
			RoughnessFactor: &rough,
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos, gltf.NORMAL: nrm},
		}},
	}}
	require.NoError(t, gltf.SaveBinary(doc, filepath.Join(dir, "tri.glb")))
}

func TestGLTFLoader(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, dir)

	l := NewGLTFLoader(dir)
	d, err := l.Load("tri")
	require.NoError(t, err)

	assert.Equal(t, "tri", d.Name)
	require.Len(t, d.Vertices, 3)
	assert.Equal(t, [3]float32{0, 1, -2}, d.Vertices[2].Position)
	assert.Equal(t, [3]float32{0, 0, -1}, d.Vertices[0].Normal)
	assert.Equal(t, []uint32{0, 2, 1}, d.Indices)
	assert.Equal(t, common.Vec3{0, 0, -2}, d.Bounds.Min)

	require.Len(t, d.Submeshes, 1)
	sm := d.Submeshes[0]
	assert.Equal(t, uint32(3), sm.IndexCount)
	assert.Equal(t, "red", sm.Material.Name)
	assert.Equal(t, common.Vec3{1, 0, 0}, sm.Material.Constants.BaseColor)
	assert.Equal(t, float32(0.25), sm.Material.Constants.Roughness)

	byName, err := l.Load("tri.glb")
	require.NoError(t, err)
	assert.Equal(t, d.Indices, byName.Indices)
}

func TestGLTFLoader_Missing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	l := NewGLTFLoader(dir)
	_, err := l.Load("nothing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Load("notes.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChannel(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(src.Pix, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{3, 3, 3, 255}, channel(src, 2).Pix)
}
