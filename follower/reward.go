package follower

// computeReward scores a candidate post-primitive state. The progress term is
// the geodesic-distance reduction normalized by the forward step length, so a
// clean forward step toward the goal scores close to one while turns score
// near zero. Clearance below the configured threshold subtracts a penalty
// that grows linearly as the candidate approaches the obstacle, and a
// collision subtracts CollisionCost, which is sized to dominate any progress
// term: a colliding candidate never outscores a non-colliding one.
func (f *Follower) computeReward(result stepResult, path Path) float64 {
	reward := (path.Length - result.postGeodesicDistance) / f.cfg.ForwardStep

	threshold := f.cfg.CloseToObstacleThreshold
	if result.postObstacleDistance < threshold {
		reward -= f.cfg.ObstacleCost * (threshold - result.postObstacleDistance) / threshold
	}

	if result.didCollide {
		reward -= f.cfg.CollisionCost
	}

	return reward
}
