package sim

// Ball is the single match ball. It is recreated, not repositioned, at match
// start and after every goal so no stale attribution or velocity survives a
// reset.
type Ball struct {
	Position      Vec3   `json:"position"`
	Velocity      Vec3   `json:"velocity"`
	LastTouchedBy string `json:"lastTouchedBy,omitempty"`
}

// newBall returns a fresh ball resting at field center.
func newBall(radius float64) Ball {
	return Ball{Position: Vec3{X: 0, Y: radius, Z: 0}}
}
