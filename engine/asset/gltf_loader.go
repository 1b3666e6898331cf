package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/obsidian/engine/material"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type gltfLoader struct {
	dir string
}

// NewGLTFLoader returns a loader for .gltf and .glb files under dir. Identifiers are file names
// relative to dir; an identifier without an extension is tried as .glb then .gltf.
//
// glTF is right-handed, so positions and normals are mirrored on Z and the triangle winding is
// reversed on import.
//
// Parameters:
//   - dir: the asset root directory
//
// Returns:
//   - Loader: the glTF loader
func NewGLTFLoader(dir string) Loader {
	return &gltfLoader{dir: dir}
}

func (l *gltfLoader) resolve(id string) (string, error) {
	candidates := []string{id}
	if filepath.Ext(id) == "" {
		candidates = []string{id + ".glb", id + ".gltf"}
	}
	for _, c := range candidates {
		ext := strings.ToLower(filepath.Ext(c))
		if ext != ".glb" && ext != ".gltf" {
			continue
		}
		path := filepath.Join(l.dir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("asset: failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, id, l.dir)
}

func (l *gltfLoader) Load(id string) (*ModelData, error) {
	path, err := l.resolve(id)
	if err != nil {
		return nil, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: failed to open %s: %w", path, err)
	}

	d := &ModelData{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	images := map[int]*image.RGBA{}
	for _, m := range doc.Meshes {
		for i, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			name := fmt.Sprintf("%s.%d", m.Name, i)
			if err := l.appendPrimitive(doc, filepath.Dir(path), prim, name, d, images); err != nil {
				return nil, fmt.Errorf("asset: %s mesh %q: %w", path, m.Name, err)
			}
		}
	}
	if len(d.Submeshes) == 0 {
		return nil, fmt.Errorf("asset: %s has no triangle primitives", path)
	}
	d.computeBounds()
	return d, nil
}

func (l *gltfLoader) appendPrimitive(doc *gltf.Document, dir string, prim *gltf.Primitive, name string, d *ModelData, images map[int]*image.RGBA) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	base := uint32(len(d.Vertices))
	for i, p := range positions {
		v := Vertex{Position: [3]float32{p[0], p[1], -p[2]}}
		if i < len(normals) {
			v.Normal = [3]float32{normals[i][0], normals[i][1], -normals[i][2]}
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		d.Vertices = append(d.Vertices, v)
	}

	offset := uint32(len(d.Indices))
	for i := 0; i+2 < len(indices); i += 3 {
		d.Indices = append(d.Indices, base+indices[i], base+indices[i+2], base+indices[i+1])
	}

	mat := MaterialData{Name: name, Constants: material.DefaultConstants()}
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		if mat, err = l.readMaterial(doc, dir, doc.Materials[*prim.Material], images); err != nil {
			return err
		}
	}
	d.Submeshes = append(d.Submeshes, SubmeshData{
		Name:        name,
		IndexOffset: offset,
		IndexCount:  uint32(len(d.Indices)) - offset,
		Material:    mat,
	})
	return nil
}

func (l *gltfLoader) readMaterial(doc *gltf.Document, dir string, m *gltf.Material, images map[int]*image.RGBA) (MaterialData, error) {
	out := MaterialData{Name: m.Name, Constants: material.DefaultConstants()}

	texture := func(index int) (*image.RGBA, error) {
		if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
			return nil, nil
		}
		return l.readImage(doc, dir, *doc.Textures[index].Source, images)
	}

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			out.Constants.BaseColor = [3]float32{float32(f[0]), float32(f[1]), float32(f[2])}
		}
		if pbr.RoughnessFactor != nil {
			out.Constants.Roughness = float32(*pbr.RoughnessFactor)
		}
		if pbr.MetallicFactor != nil {
			out.Constants.Metallic = float32(*pbr.MetallicFactor)
		}
		if pbr.BaseColorTexture != nil {
			img, err := texture(pbr.BaseColorTexture.Index)
			if err != nil {
				return out, err
			}
			out.Textures[material.SlotBaseColor] = img
		}
		if pbr.MetallicRoughnessTexture != nil {
			img, err := texture(pbr.MetallicRoughnessTexture.Index)
			if err != nil {
				return out, err
			}
			if img != nil {
				out.Textures[material.SlotRoughness] = channel(img, 1)
				out.Textures[material.SlotMetallic] = channel(img, 2)
			}
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		img, err := texture(*m.NormalTexture.Index)
		if err != nil {
			return out, err
		}
		out.Textures[material.SlotNormal] = img
	}
	if m.OcclusionTexture != nil && m.OcclusionTexture.Index != nil {
		img, err := texture(*m.OcclusionTexture.Index)
		if err != nil {
			return out, err
		}
		if img != nil {
			out.Textures[material.SlotAmbientOcclusion] = channel(img, 0)
		}
	}
	return out, nil
}

func (l *gltfLoader) readImage(doc *gltf.Document, dir string, index int, cache map[int]*image.RGBA) (*image.RGBA, error) {
	if img, ok := cache[index]; ok {
		return img, nil
	}
	if index < 0 || index >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", index)
	}
	src := doc.Images[index]

	var data []byte
	var err error
	switch {
	case src.BufferView != nil:
		bv := doc.BufferViews[*src.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, fmt.Errorf("image %d buffer view out of range", index)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case src.IsEmbeddedResource():
		data, err = src.MarshalData()
	case src.URI != "":
		data, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(src.URI)))
	default:
		return nil, fmt.Errorf("image %d has no data", index)
	}
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", index, err)
	}

	img, err := DecodeImage(bytes.NewReader(data), MaxTextureSize)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", index, err)
	}
	cache[index] = img
	return img, nil
}

// channel broadcasts one channel of img into a grayscale RGBA image.
func channel(img *image.RGBA, c int) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		v := img.Pix[i+c]
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = v, v, v, 255
	}
	return out
}
