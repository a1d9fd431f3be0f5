package scene

import (
	"github.com/caratlab/jewel-studio/geometry"
)

// TextureSlot names a texture map attached to a node. All slots are
// enumerated so Dispose can release every map a node may carry.
type TextureSlot string

const (
	TextureSlotColor     TextureSlot = "color"
	TextureSlotNormal    TextureSlot = "normal"
	TextureSlotAO        TextureSlot = "ao"
	TextureSlotEmissive  TextureSlot = "emissive"
	TextureSlotClearcoat TextureSlot = "clearcoat"
)

// AllTextureSlots lists every known slot, for disposal and for tests.
var AllTextureSlots = []TextureSlot{
	TextureSlotColor,
	TextureSlotNormal,
	TextureSlotAO,
	TextureSlotEmissive,
	TextureSlotClearcoat,
}

// Texture stands in for a GPU-resident texture map.
type Texture struct {
	Name     string
	released bool
}

func (t *Texture) Release() {
	t.released = true
}

func (t *Texture) Released() bool {
	return t.released
}

// Node is one element of the displayed model graph. A node owns its mesh
// and textures; materials are shared presets and are never owned.
type Node struct {
	Name     string
	Mesh     *geometry.Mesh
	Material *MaterialPreset
	Textures map[TextureSlot]*Texture
	Children []*Node
	// Gemstone marks non-metal sub-parts that keep their own material when
	// the user switches presets.
	Gemstone bool

	disposed bool
}

func NewNode(name string, mesh *geometry.Mesh) *Node {
	return &Node{
		Name:     name,
		Mesh:     mesh,
		Textures: make(map[TextureSlot]*Texture),
	}
}

func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

func (n *Node) SetTexture(slot TextureSlot, tex *Texture) {
	if n.Textures == nil {
		n.Textures = make(map[TextureSlot]*Texture)
	}
	n.Textures[slot] = tex
}

// Dispose releases the node's geometry and every texture map, then recurses
// into children. Shared material presets are left alone.
func (n *Node) Dispose() {
	if n == nil || n.disposed {
		return
	}
	n.disposed = true
	n.Mesh = nil
	for _, slot := range AllTextureSlots {
		if tex := n.Textures[slot]; tex != nil {
			tex.Release()
		}
	}
	n.Textures = nil
	n.Material = nil
	for _, child := range n.Children {
		child.Dispose()
	}
	n.Children = nil
}

func (n *Node) Disposed() bool {
	return n == nil || n.disposed
}

// ApplyMaterial sets the preset on this node and every descendant, skipping
// gemstone-tagged parts so stones keep their own look.
func (n *Node) ApplyMaterial(preset *MaterialPreset) {
	if n == nil || n.disposed {
		return
	}
	if !n.Gemstone {
		n.Material = preset
	}
	for _, child := range n.Children {
		child.ApplyMaterial(preset)
	}
}

// Clone deep-copies the node graph with cloned meshes. Textures are not
// carried over; the clone exists only to be serialized.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Name:     n.Name,
		Material: n.Material,
		Gemstone: n.Gemstone,
		Textures: make(map[TextureSlot]*Texture),
	}
	if n.Mesh != nil {
		clone.Mesh = n.Mesh.Clone()
	}
	for _, child := range n.Children {
		clone.Children = append(clone.Children, child.Clone())
	}
	return clone
}

// MergedMesh flattens the graph into a single mesh for export.
func (n *Node) MergedMesh() *geometry.Mesh {
	merged := geometry.NewMesh(n.Name)
	n.mergeInto(merged)
	return merged
}

func (n *Node) mergeInto(dst *geometry.Mesh) {
	if n == nil || n.disposed {
		return
	}
	if n.Mesh != nil {
		dst.Merge(n.Mesh)
	}
	for _, child := range n.Children {
		child.mergeInto(dst)
	}
}
