// Package scene provides the minimal pose-bearing node graph the navigation
// stack manipulates. Nodes are cheap scratch state: the follower keeps a
// private graph of disposable proxies, while the simulation owns one live node
// per agent.
package scene

import "wayfarer/nav/geom"

// Graph owns a set of nodes. It carries no spatial indexing; it only exists so
// proxy nodes have a home distinct from caller-owned live state.
type Graph struct {
	nodes []*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NewNode creates a node at the origin with identity rotation.
func (g *Graph) NewNode() *Node {
	node := &Node{rotation: geom.QuatIdentity()}
	if g != nil {
		g.nodes = append(g.nodes, node)
	}
	return node
}

// Node is a pose holder: a rotation plus a translation in world space.
type Node struct {
	rotation    geom.Quat
	translation geom.Vec3
}

// SetPose overwrites the node's pose in one step.
func (n *Node) SetPose(rotation geom.Quat, translation geom.Vec3) {
	if n == nil {
		return
	}
	n.rotation = rotation.Normalize()
	n.translation = translation
}

// Pose returns the node's current rotation and translation.
func (n *Node) Pose() (geom.Quat, geom.Vec3) {
	if n == nil {
		return geom.QuatIdentity(), geom.Vec3{}
	}
	return n.rotation, n.translation
}

// Rotation returns the node's orientation.
func (n *Node) Rotation() geom.Quat {
	if n == nil {
		return geom.QuatIdentity()
	}
	return n.rotation
}

// Translation returns the node's position.
func (n *Node) Translation() geom.Vec3 {
	if n == nil {
		return geom.Vec3{}
	}
	return n.translation
}

// RotateYLocal spins the node around the world up axis by angle radians.
// Positive angles turn left.
func (n *Node) RotateYLocal(angle float64) {
	if n == nil {
		return
	}
	n.rotation = n.rotation.Mul(geom.AngleAxis(angle, geom.Up)).Normalize()
}

// TranslateLocal moves the node by a vector expressed in its own frame.
func (n *Node) TranslateLocal(v geom.Vec3) {
	if n == nil {
		return
	}
	n.translation = n.translation.Add(n.rotation.Rotate(v))
}

// SetTranslation overwrites the node's position only.
func (n *Node) SetTranslation(v geom.Vec3) {
	if n == nil {
		return
	}
	n.translation = v
}

// Forward returns the node's forward direction in world space.
func (n *Node) Forward() geom.Vec3 {
	if n == nil {
		return geom.Front
	}
	return n.rotation.Rotate(geom.Front)
}
