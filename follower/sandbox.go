package follower

import (
	"wayfarer/nav/geom"
	"wayfarer/nav/scene"
)

// sandbox owns the disposable proxy nodes used to evaluate candidate
// primitives without touching caller state. One node per candidate plus one
// for path synthesis; every evaluation fully overwrites the proxy pose before
// use, so reuse cannot leak state between decisions.
type sandbox struct {
	graph        *scene.Graph
	forwardProxy *scene.Node
	leftProxy    *scene.Node
	rightProxy   *scene.Node
	stepProxy    *scene.Node
}

func newSandbox() *sandbox {
	graph := scene.NewGraph()
	return &sandbox{
		graph:        graph,
		forwardProxy: graph.NewNode(),
		leftProxy:    graph.NewNode(),
		rightProxy:   graph.NewNode(),
		stepProxy:    graph.NewNode(),
	}
}

type proxyID int

const (
	proxyForward proxyID = iota
	proxyLeft
	proxyRight
)

// node returns the dedicated proxy for a candidate primitive.
func (s *sandbox) node(id proxyID) *scene.Node {
	switch id {
	case proxyLeft:
		return s.leftProxy
	case proxyRight:
		return s.rightProxy
	default:
		return s.forwardProxy
	}
}

// stepResult is the outcome of applying one primitive to a proxy: the
// geodesic distance from the resulting position to the goal, the clearance to
// the nearest obstacle, and whether the movement callback collided.
type stepResult struct {
	postGeodesicDistance float64
	postObstacleDistance float64
	didCollide           bool
}

// tryStep copies the reference pose onto proxy, applies move, and measures the
// outcome against goal.
func (f *Follower) tryStep(proxy *scene.Node, pose SixDofPose, move MoveFn, goal geom.Vec3) stepResult {
	proxy.SetPose(pose.Rotation, pose.Translation)
	didCollide := move(proxy)
	post := proxy.Translation()
	return stepResult{
		postGeodesicDistance: f.geoDist(post, goal),
		postObstacleDistance: f.obstacles.NearestObstacleDistance(post),
		didCollide:           didCollide,
	}
}

func (f *Follower) geoDist(start, goal geom.Vec3) float64 {
	return f.oracle.ShortestPath(start, goal).Length
}
