// Package tessellate turns a disjoint cuboid collection into triangle
// meshes using a geometry kernel. By default one mesh is produced per
// fragment.
package tessellate

import (
	"fmt"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/chazu/reboot/pkg/kernel"
)

// MergedName names the single mesh produced in merged mode.
const MergedName = "reactor"

// Options controls tessellation.
type Options struct {
	// Merge unions every fragment into one solid and emits one mesh.
	Merge bool
	// Clip, when set, restricts output to the cells inside it.
	Clip *cuboid.Cuboid
}

// FragmentName returns the mesh name used for the i-th fragment.
func FragmentName(i int) string {
	return fmt.Sprintf("fragment-%d", i)
}

// Tessellate builds meshes for cs with k. The tessellator is read-only and
// never mutates cs. Fragments that clip to nothing produce no mesh, but
// fragment names keep their index in cs.
func Tessellate(cs []cuboid.Cuboid, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if len(cs) == 0 {
		return nil, nil
	}

	clipped := make([]cuboid.Cuboid, len(cs))
	for i, c := range cs {
		if opts.Clip != nil {
			c = c.Intersect(*opts.Clip)
		}
		clipped[i] = c
	}

	if opts.Merge {
		return tessellateMerged(clipped, k)
	}

	var meshes []*kernel.Mesh
	for i, c := range clipped {
		if !c.IsValid() {
			continue
		}
		mesh, err := k.ToMesh(k.Box(c))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for fragment %d (%s): %w", i, c, err)
		}
		mesh.Name = FragmentName(i)
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func tessellateMerged(cs []cuboid.Cuboid, k kernel.Kernel) ([]*kernel.Mesh, error) {
	solid := kernel.UnionAll(k, cs)
	if solid == nil {
		return nil, nil
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for merged solid: %w", err)
	}
	mesh.Name = MergedName
	return []*kernel.Mesh{mesh}, nil
}
