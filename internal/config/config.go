// Package config loads the server's TOML configuration. Every simulation
// parameter (field geometry, masses, timers) is supplied here; the core
// never derives its own constants.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"marble-soccer/server/internal/sim"
)

// Duration decodes TOML strings like "16ms" or "2m" through
// time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) value() time.Duration { return time.Duration(d) }

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Loop      LoopConfig      `toml:"loop"`
	Field     FieldConfig     `toml:"field"`
	Physics   PhysicsConfig   `toml:"physics"`
	Dash      DashConfig      `toml:"dash"`
	Match     MatchConfig     `toml:"match"`
	Input     InputConfig     `toml:"input"`
	Directory DirectoryConfig `toml:"directory"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	BindAddress    string   `toml:"bind_address"`
	AllowedOrigins []string `toml:"allowed_origins"` // empty allows every origin
}

type LoopConfig struct {
	TickInterval    Duration `toml:"tick_interval"`
	MaxTickDelta    Duration `toml:"max_tick_delta"`
	SnapshotEvery   int      `toml:"snapshot_every"`
	IdleGrace       Duration `toml:"idle_grace"`
	FinishedGrace   Duration `toml:"finished_grace"`
	CommandCapacity int      `toml:"command_capacity"`
}

type FieldConfig struct {
	HalfWidth           float64 `toml:"half_width"`
	HalfLength          float64 `toml:"half_length"`
	GoalHalfWidth       float64 `toml:"goal_half_width"`
	GoldenGoalHalfWidth float64 `toml:"golden_goal_half_width"`
	GoalDepth           float64 `toml:"goal_depth"`
}

type PhysicsConfig struct {
	PlayerRadius      float64 `toml:"player_radius"`
	BallRadius        float64 `toml:"ball_radius"`
	PlayerMass        float64 `toml:"player_mass"`
	BallMass          float64 `toml:"ball_mass"`
	MoveForce         float64 `toml:"move_force"`
	ForceRamp         float64 `toml:"force_ramp"`
	DeadZone          float64 `toml:"dead_zone"`
	PlayerDrag        float64 `toml:"player_drag"`
	BallDrag          float64 `toml:"ball_drag"`
	Gravity           float64 `toml:"gravity"`
	MaxPlayerSpeed    float64 `toml:"max_player_speed"`
	MaxBallSpeed      float64 `toml:"max_ball_speed"`
	PlayerRestitution float64 `toml:"player_restitution"`
	BallRestitution   float64 `toml:"ball_restitution"`
	ContactElasticity float64 `toml:"contact_elasticity"`
	PlayerBounce      float64 `toml:"player_bounce"`
	SeparationImpulse float64 `toml:"separation_impulse"`
}

type DashConfig struct {
	Multiplier float64  `toml:"multiplier"`
	Duration   Duration `toml:"duration"`
	Cooldown   Duration `toml:"cooldown"`
}

type MatchConfig struct {
	Duration     Duration `toml:"duration"`
	Countdown    Duration `toml:"countdown"`
	Celebration  Duration `toml:"celebration"`
	WinThreshold int      `toml:"win_threshold"`
	MaxPlayers   int      `toml:"max_players"`
}

type InputConfig struct {
	MinInterval Duration `toml:"min_interval"`
	ClampMargin float64  `toml:"clamp_margin"`
}

type DirectoryConfig struct {
	RedisAddress  string `toml:"redis_address"` // empty disables the listing
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	simDef := sim.DefaultConfig()
	loopDef := sim.DefaultLoopConfig()
	return &Config{
		Server: ServerConfig{
			BindAddress: ":8080",
		},
		Loop: LoopConfig{
			TickInterval:    Duration(loopDef.TickInterval),
			MaxTickDelta:    Duration(loopDef.MaxTickDelta),
			SnapshotEvery:   loopDef.SnapshotEvery,
			IdleGrace:       Duration(loopDef.IdleGrace),
			FinishedGrace:   Duration(loopDef.FinishedGrace),
			CommandCapacity: loopDef.CommandCapacity,
		},
		Field: FieldConfig{
			HalfWidth:           simDef.Field.HalfWidth,
			HalfLength:          simDef.Field.HalfLength,
			GoalHalfWidth:       simDef.Field.GoalHalfWidth,
			GoldenGoalHalfWidth: simDef.Field.GoldenGoalHalfWidth,
			GoalDepth:           simDef.Field.GoalDepth,
		},
		Physics: PhysicsConfig{
			PlayerRadius:      simDef.Physics.PlayerRadius,
			BallRadius:        simDef.Physics.BallRadius,
			PlayerMass:        simDef.Physics.PlayerMass,
			BallMass:          simDef.Physics.BallMass,
			MoveForce:         simDef.Physics.MoveForce,
			ForceRamp:         simDef.Physics.ForceRamp,
			DeadZone:          simDef.Physics.DeadZone,
			PlayerDrag:        simDef.Physics.PlayerDrag,
			BallDrag:          simDef.Physics.BallDrag,
			Gravity:           simDef.Physics.Gravity,
			MaxPlayerSpeed:    simDef.Physics.MaxPlayerSpeed,
			MaxBallSpeed:      simDef.Physics.MaxBallSpeed,
			PlayerRestitution: simDef.Physics.PlayerRestitution,
			BallRestitution:   simDef.Physics.BallRestitution,
			ContactElasticity: simDef.Physics.ContactElasticity,
			PlayerBounce:      simDef.Physics.PlayerBounce,
			SeparationImpulse: simDef.Physics.SeparationImpulse,
		},
		Dash: DashConfig{
			Multiplier: simDef.Dash.Multiplier,
			Duration:   Duration(simDef.Dash.Duration),
			Cooldown:   Duration(simDef.Dash.Cooldown),
		},
		Match: MatchConfig{
			Duration:     Duration(simDef.Rules.MatchDuration),
			Countdown:    Duration(simDef.Rules.Countdown),
			Celebration:  Duration(simDef.Rules.Celebration),
			WinThreshold: simDef.Rules.WinThreshold,
			MaxPlayers:   simDef.Rules.MaxPlayers,
		},
		Input: InputConfig{
			MinInterval: Duration(simDef.Input.MinInterval),
			ClampMargin: simDef.Input.ClampMargin,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SimConfig assembles the simulation tuning handed to each match.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Field: sim.FieldConfig{
			HalfWidth:           c.Field.HalfWidth,
			HalfLength:          c.Field.HalfLength,
			GoalHalfWidth:       c.Field.GoalHalfWidth,
			GoldenGoalHalfWidth: c.Field.GoldenGoalHalfWidth,
			GoalDepth:           c.Field.GoalDepth,
		},
		Physics: sim.PhysicsConfig{
			PlayerRadius:      c.Physics.PlayerRadius,
			BallRadius:        c.Physics.BallRadius,
			PlayerMass:        c.Physics.PlayerMass,
			BallMass:          c.Physics.BallMass,
			MoveForce:         c.Physics.MoveForce,
			ForceRamp:         c.Physics.ForceRamp,
			DeadZone:          c.Physics.DeadZone,
			PlayerDrag:        c.Physics.PlayerDrag,
			BallDrag:          c.Physics.BallDrag,
			Gravity:           c.Physics.Gravity,
			MaxPlayerSpeed:    c.Physics.MaxPlayerSpeed,
			MaxBallSpeed:      c.Physics.MaxBallSpeed,
			PlayerRestitution: c.Physics.PlayerRestitution,
			BallRestitution:   c.Physics.BallRestitution,
			ContactElasticity: c.Physics.ContactElasticity,
			PlayerBounce:      c.Physics.PlayerBounce,
			SeparationImpulse: c.Physics.SeparationImpulse,
		},
		Dash: sim.DashConfig{
			Multiplier: c.Dash.Multiplier,
			Duration:   c.Dash.Duration.value(),
			Cooldown:   c.Dash.Cooldown.value(),
		},
		Rules: sim.RulesConfig{
			MatchDuration: c.Match.Duration.value(),
			Countdown:     c.Match.Countdown.value(),
			Celebration:   c.Match.Celebration.value(),
			WinThreshold:  c.Match.WinThreshold,
			MaxPlayers:    c.Match.MaxPlayers,
		},
		Input: sim.InputConfig{
			MinInterval: c.Input.MinInterval.value(),
			ClampMargin: c.Input.ClampMargin,
		},
	}
}

// LoopConfig assembles the scheduler tuning handed to each match loop.
func (c *Config) LoopConfig() sim.LoopConfig {
	return sim.LoopConfig{
		TickInterval:    c.Loop.TickInterval.value(),
		MaxTickDelta:    c.Loop.MaxTickDelta.value(),
		SnapshotEvery:   c.Loop.SnapshotEvery,
		IdleGrace:       c.Loop.IdleGrace.value(),
		FinishedGrace:   c.Loop.FinishedGrace.value(),
		CommandCapacity: c.Loop.CommandCapacity,
	}
}
