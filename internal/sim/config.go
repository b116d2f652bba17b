package sim

import "time"

// Config carries every externally supplied simulation parameter. The core
// never derives field geometry or physics constants on its own; callers build
// a Config (normally from the TOML file, see internal/config) and hand it to
// NewMatch.
type Config struct {
	Field   FieldConfig
	Physics PhysicsConfig
	Dash    DashConfig
	Rules   RulesConfig
	Input   InputConfig
}

// FieldConfig describes the playable volume. X spans the width, Z the length,
// Y points up. Goals sit on the ±Z end walls.
type FieldConfig struct {
	HalfWidth           float64
	HalfLength          float64
	GoalHalfWidth       float64
	GoldenGoalHalfWidth float64
	GoalDepth           float64
}

// PhysicsConfig tunes forces, drag, and collision response. Velocities are
// expressed in field units per nominal tick; every pass multiplies by the
// tick's time-scale factor so actual tick duration never changes behavior.
type PhysicsConfig struct {
	PlayerRadius float64
	BallRadius   float64
	PlayerMass   float64
	BallMass     float64

	MoveForce float64 // velocity gain per tick once the ramp saturates
	ForceRamp float64 // distance at which the force reaches its cap
	DeadZone  float64 // target distances below this apply no force

	PlayerDrag float64 // exponential decay factor per nominal tick
	BallDrag   float64
	Gravity    float64 // vertical velocity loss per nominal tick

	MaxPlayerSpeed float64 // horizontal speed clamp, units per tick
	MaxBallSpeed   float64

	PlayerRestitution float64 // wall bounce for players
	BallRestitution   float64 // wall bounce for the ball
	ContactElasticity float64 // ball-player impulse elasticity
	PlayerBounce      float64 // share of closing speed returned to a player pair
	SeparationImpulse float64 // unconditional drift applied to resting contacts
}

// DashConfig gates the time-limited force multiplier.
type DashConfig struct {
	Multiplier float64
	Duration   time.Duration
	Cooldown   time.Duration
}

// RulesConfig holds the match-lifecycle durations and thresholds.
type RulesConfig struct {
	MatchDuration time.Duration
	Countdown     time.Duration
	Celebration   time.Duration
	WinThreshold  int
	MaxPlayers    int
}

// InputConfig bounds what client updates are accepted.
type InputConfig struct {
	MinInterval time.Duration // minimum spacing between accepted updates
	ClampMargin float64       // super-region multiplier around the field
}

// DefaultConfig returns the tuning used when no config file overrides it.
func DefaultConfig() Config {
	return Config{
		Field: FieldConfig{
			HalfWidth:           6,
			HalfLength:          10,
			GoalHalfWidth:       2,
			GoldenGoalHalfWidth: 3,
			GoalDepth:           1.2,
		},
		Physics: PhysicsConfig{
			PlayerRadius:      0.5,
			BallRadius:        0.3,
			PlayerMass:        5,
			BallMass:          1,
			MoveForce:         0.035,
			ForceRamp:         3,
			DeadZone:          0.15,
			PlayerDrag:        0.88,
			BallDrag:          0.97,
			Gravity:           0.02,
			MaxPlayerSpeed:    0.22,
			MaxBallSpeed:      0.45,
			PlayerRestitution: 0.35,
			BallRestitution:   0.75,
			ContactElasticity: 0.9,
			PlayerBounce:      0.5,
			SeparationImpulse: 0.01,
		},
		Dash: DashConfig{
			Multiplier: 2.2,
			Duration:   200 * time.Millisecond,
			Cooldown:   3 * time.Second,
		},
		Rules: RulesConfig{
			MatchDuration: 2 * time.Minute,
			Countdown:     3 * time.Second,
			Celebration:   3 * time.Second,
			WinThreshold:  5,
			MaxPlayers:    2,
		},
		Input: InputConfig{
			MinInterval: 30 * time.Millisecond,
			ClampMargin: 2,
		},
	}
}

// Normalized returns a config with defaults applied to values a file could
// plausibly leave zeroed or set to something the simulation cannot run with.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	normalized := c

	if normalized.Field.HalfWidth <= 0 {
		normalized.Field.HalfWidth = def.Field.HalfWidth
	}
	if normalized.Field.HalfLength <= 0 {
		normalized.Field.HalfLength = def.Field.HalfLength
	}
	if normalized.Field.GoalHalfWidth <= 0 {
		normalized.Field.GoalHalfWidth = def.Field.GoalHalfWidth
	}
	if normalized.Field.GoldenGoalHalfWidth < normalized.Field.GoalHalfWidth {
		normalized.Field.GoldenGoalHalfWidth = normalized.Field.GoalHalfWidth
	}
	if normalized.Field.GoalDepth <= 2*normalized.Physics.BallRadius {
		normalized.Field.GoalDepth = def.Field.GoalDepth
	}

	if normalized.Physics.PlayerRadius <= 0 {
		normalized.Physics.PlayerRadius = def.Physics.PlayerRadius
	}
	if normalized.Physics.BallRadius <= 0 {
		normalized.Physics.BallRadius = def.Physics.BallRadius
	}
	if normalized.Physics.PlayerMass <= 0 {
		normalized.Physics.PlayerMass = def.Physics.PlayerMass
	}
	if normalized.Physics.BallMass <= 0 {
		normalized.Physics.BallMass = def.Physics.BallMass
	}
	if normalized.Physics.PlayerDrag <= 0 || normalized.Physics.PlayerDrag > 1 {
		normalized.Physics.PlayerDrag = def.Physics.PlayerDrag
	}
	if normalized.Physics.BallDrag <= 0 || normalized.Physics.BallDrag > 1 {
		normalized.Physics.BallDrag = def.Physics.BallDrag
	}

	if normalized.Dash.Multiplier < 1 {
		normalized.Dash.Multiplier = 1
	}

	if normalized.Rules.MaxPlayers < 2 {
		normalized.Rules.MaxPlayers = 2
	}
	if normalized.Rules.WinThreshold < 1 {
		normalized.Rules.WinThreshold = def.Rules.WinThreshold
	}
	if normalized.Rules.MatchDuration <= 0 {
		normalized.Rules.MatchDuration = def.Rules.MatchDuration
	}

	if normalized.Input.MinInterval < 0 {
		normalized.Input.MinInterval = 0
	}
	if normalized.Input.ClampMargin < 1 {
		normalized.Input.ClampMargin = def.Input.ClampMargin
	}

	return normalized
}
