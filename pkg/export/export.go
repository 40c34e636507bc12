// Package export writes meshes as binary glTF (GLB).
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/chazu/reboot/pkg/kernel"
	"github.com/op/go-logging"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var log = logging.MustGetLogger("export")

// Generator is recorded in the asset header of every exported document.
const Generator = "reboot GLB export"

// ErrNoGeometry is returned when every mesh is empty.
var ErrNoGeometry = errors.New("export: no geometry to write")

// Palette colours meshes in order, wrapping around.
var Palette = [][4]float32{
	{0.96, 0.62, 0.04, 1},
	{0.13, 0.59, 0.95, 1},
	{0.30, 0.69, 0.31, 1},
	{0.91, 0.12, 0.39, 1},
	{0.61, 0.15, 0.69, 1},
	{0.00, 0.74, 0.83, 1},
	{1.00, 0.92, 0.23, 1},
	{0.47, 0.33, 0.28, 1},
}

// Build assembles a glTF document with one mesh, material and node per
// non-empty input mesh.
func Build(meshes []*kernel.Mesh) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	for i, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		if len(m.Normals) != len(m.Vertices) {
			return nil, fmt.Errorf("export: mesh %q has %d normals for %d vertices", m.Name, len(m.Normals)/3, m.VertexCount())
		}

		positions := make([][3]float32, m.VertexCount())
		normals := make([][3]float32, m.VertexCount())
		for v := range positions {
			copy(positions[v][:], m.Vertices[3*v:3*v+3])
			copy(normals[v][:], m.Normals[3*v:3*v+3])
		}

		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		indicesAccessor := modeler.WriteIndices(doc, m.Indices)

		color := Palette[i%len(Palette)]
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: m.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
			AlphaMode: gltf.AlphaOpaque,
		})

		prim := &gltf.Primitive{
			Attributes: map[string]uint32{
				gltf.POSITION: uint32(posAccessor),
				gltf.NORMAL:   uint32(normalAccessor),
			},
			Indices:  gltf.Index(uint32(indicesAccessor)),
			Material: gltf.Index(uint32(len(doc.Materials) - 1)),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	if len(doc.Meshes) == 0 {
		return nil, ErrNoGeometry
	}
	log.Debugf("built glTF document with %d meshes", len(doc.Meshes))
	return doc, nil
}

// WriteGLB encodes meshes as GLB to w.
func WriteGLB(w io.Writer, meshes []*kernel.Mesh) error {
	doc, err := Build(meshes)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encoding GLB: %w", err)
	}
	return nil
}

// SaveGLB writes meshes as GLB to path.
func SaveGLB(path string, meshes []*kernel.Mesh) error {
	doc, err := Build(meshes)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("export: saving %s: %w", path, err)
	}
	return nil
}

// Open reads a GLB or glTF file back, mainly for inspection and tests.
func Open(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: opening %s: %w", path, err)
	}
	return doc, nil
}
