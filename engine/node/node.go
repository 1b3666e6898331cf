package node

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/google/uuid"
)

// ErrCycle is returned when attaching a child would make a node its own ancestor.
var ErrCycle = errors.New("node: attaching child would create a cycle")

// node is the implementation of the Node interface.
type node struct {
	mu sync.RWMutex

	id      uuid.UUID
	name    string
	enabled atomic.Bool

	position common.Vec3
	rotation common.Vec3
	scale    common.Vec3

	// self is the outermost value that embeds this node; parents and children are
	// linked through it so the graph hands back the concrete types callers added.
	self     Node
	parent   Node
	children []Node

	local      common.Mat4
	world      common.Mat4
	localDirty bool
	worldDirty bool
}

// Node defines a hierarchical spatial entity. It owns a local transform (position, Euler rotation
// in radians, scale) and an ordered list of children, and derives its world matrix by composing
// with its parent's world matrix.
//
// Types that want to live in a scene graph embed a Node created by NewNode and call Bind with
// themselves so that graph queries return the embedding type.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the node ID
	ID() uuid.UUID

	// Name returns the node's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName updates the node's display name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Enabled reports whether the node participates in rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled toggles rendering participation for the node. Children are unaffected.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Position returns the local translation.
	//
	// Returns:
	//   - common.Vec3: the position relative to the parent
	Position() common.Vec3

	// SetPosition updates the local translation and invalidates the world matrix of this node and every descendant.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p common.Vec3)

	// Rotation returns the local Euler rotation in radians.
	//
	// Returns:
	//   - common.Vec3: rotation around X, Y and Z
	Rotation() common.Vec3

	// SetRotation updates the local Euler rotation and invalidates the world matrix of this node and every descendant.
	//
	// Parameters:
	//   - r: rotation around X, Y and Z in radians
	SetRotation(r common.Vec3)

	// Scale returns the local scale.
	//
	// Returns:
	//   - common.Vec3: per-axis scale
	Scale() common.Vec3

	// SetScale updates the local scale and invalidates the world matrix of this node and every descendant.
	//
	// Parameters:
	//   - s: per-axis scale
	SetScale(s common.Vec3)

	// LocalMatrix returns translation * rotation * scale for the local transform.
	//
	// Returns:
	//   - common.Mat4: the local matrix
	LocalMatrix() common.Mat4

	// WorldMatrix returns parent.WorldMatrix() * LocalMatrix(), or LocalMatrix() for a root.
	// The result is cached and recomputed lazily after any change along the parent chain.
	//
	// Returns:
	//   - common.Mat4: the world matrix
	WorldMatrix() common.Mat4

	// Parent returns the parent node, or nil for a root.
	//
	// Returns:
	//   - Node: the parent or nil
	Parent() Node

	// Children returns a snapshot of the ordered child list.
	//
	// Returns:
	//   - []Node: the children in insertion order
	Children() []Node

	// AddChild attaches child to this node, detaching it from any previous parent first.
	// Attaching an ancestor (or the node itself) is rejected with ErrCycle.
	//
	// Parameters:
	//   - child: the node to attach
	//
	// Returns:
	//   - error: ErrCycle if the attachment would create a cycle
	AddChild(child Node) error

	// RemoveChild detaches child from this node.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: true if child was a direct child of this node
	RemoveChild(child Node) bool

	// Bind records the outermost value embedding this node. Graph queries such as Parent and
	// Children return the bound value.
	//
	// Parameters:
	//   - self: the embedding value
	Bind(self Node)

	// core exposes the shared implementation so that embedding types satisfy Node
	// only through a node created by this package.
	core() *node
}

var _ Node = &node{}

// NewNode creates a root node with identity transform and the given options applied.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		id:         uuid.New(),
		scale:      common.Vec3{1, 1, 1},
		local:      common.Identity(),
		world:      common.Identity(),
		localDirty: true,
		worldDirty: true,
	}
	n.enabled.Store(true)
	n.self = n

	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) ID() uuid.UUID {
	return n.id
}

func (n *node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Enabled() bool {
	return n.enabled.Load()
}

func (n *node) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

func (n *node) Position() common.Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.position
}

func (n *node) SetPosition(p common.Vec3) {
	n.mu.Lock()
	n.position = p
	n.localDirty = true
	n.mu.Unlock()
	n.invalidate()
}

func (n *node) Rotation() common.Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rotation
}

func (n *node) SetRotation(r common.Vec3) {
	n.mu.Lock()
	n.rotation = r
	n.localDirty = true
	n.mu.Unlock()
	n.invalidate()
}

func (n *node) Scale() common.Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.scale
}

func (n *node) SetScale(s common.Vec3) {
	n.mu.Lock()
	n.scale = s
	n.localDirty = true
	n.mu.Unlock()
	n.invalidate()
}

func (n *node) LocalMatrix() common.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.localLocked()
}

func (n *node) WorldMatrix() common.Mat4 {
	// The parent is read before taking our own lock: locks are only ever held one at a time.
	n.mu.RLock()
	parent := n.parent
	n.mu.RUnlock()

	var parentWorld common.Mat4
	if parent != nil {
		parentWorld = parent.WorldMatrix()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.worldDirty && n.parent == parent {
		return n.world
	}
	local := n.localLocked()
	if parent == nil {
		n.world = local
	} else {
		n.world = parentWorld.Mul(local)
	}
	n.worldDirty = false
	return n.world
}

func (n *node) Parent() Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

func (n *node) Children() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

func (n *node) AddChild(child Node) error {
	if child == nil {
		return nil
	}
	c := child.core()

	for anc := n.self; anc != nil; anc = anc.Parent() {
		if anc.core() == c {
			return ErrCycle
		}
	}

	if old := c.Parent(); old != nil {
		old.RemoveChild(child)
	}

	n.mu.Lock()
	n.children = append(n.children, c.self)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = n.self
	c.mu.Unlock()
	c.invalidate()
	return nil
}

func (n *node) RemoveChild(child Node) bool {
	if child == nil {
		return false
	}
	c := child.core()

	n.mu.Lock()
	idx := slices.IndexFunc(n.children, func(existing Node) bool {
		return existing.core() == c
	})
	if idx < 0 {
		n.mu.Unlock()
		return false
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = nil
	c.mu.Unlock()
	c.invalidate()
	return true
}

func (n *node) Bind(self Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.self = self
}

func (n *node) core() *node {
	return n
}

// localLocked rebuilds the cached local matrix if needed. Callers must hold n.mu for writing.
func (n *node) localLocked() common.Mat4 {
	if n.localDirty {
		n.local = common.TRS(n.position, n.rotation, n.scale)
		n.localDirty = false
	}
	return n.local
}

// invalidate marks the world matrix of n and all of its descendants as stale.
func (n *node) invalidate() {
	n.mu.Lock()
	n.worldDirty = true
	children := slices.Clone(n.children)
	n.mu.Unlock()

	for _, child := range children {
		child.core().invalidate()
	}
}

// Walk visits root and its descendants depth-first in child order. Returning false from fn
// skips the subtree below the visited node.
//
// Parameters:
//   - root: the node to start from
//   - fn: visitor receiving each node and its depth relative to root
func Walk(root Node, fn func(n Node, depth int) bool) {
	if root == nil {
		return
	}
	walk(root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children() {
		walk(child, depth+1, fn)
	}
}

// IsAncestor reports whether ancestor appears on the parent chain of n.
func IsAncestor(ancestor, n Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	target := ancestor.core()
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.core() == target {
			return true
		}
	}
	return false
}
