package npcai

import (
	"github.com/dreadmyst/server/internal/combat"
	"github.com/dreadmyst/server/internal/entity"
)

// State is an NPC's position in the AI loop.
type State int

const (
	StateIdle State = iota
	StateWandering
	StateChasing
	StateCombat
	StateEvading
	StateDead
	StateDespawned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWandering:
		return "wandering"
	case StateChasing:
		return "chasing"
	case StateCombat:
		return "combat"
	case StateEvading:
		return "evading"
	case StateDead:
		return "dead"
	case StateDespawned:
		return "despawned"
	default:
		return "unknown"
	}
}

// MovementType selects idle behavior, per the spawn row's declaration.
type MovementType int

const (
	MovementStationary MovementType = iota
	MovementWander
	MovementWaypoint
)

// Template is the static, data-driven definition an instantiated NPC
// copies its combat-relevant numbers from.
type Template struct {
	NPCID         int
	AggroRadius   float64
	LeashDistance float64
	MeleeRange    float64
	AttackCooldownSeconds float64
	Passive       bool
	MovementType  MovementType
	WanderRadius  float64
}

// World is the minimal read/query surface the AI loop needs from the
// world registry, kept here to avoid an import cycle with internal/world.
type World struct {
	NearestHostile func(npc *entity.Entity, radius float64) (entity.GUID, bool)
	EntityByGUID   func(entity.GUID) *entity.Entity
	IsWalkable     func(mapID int, x, y float64) bool
	RandomPointIn  func(centerX, centerY, radius float64) (float64, float64)
}

// Controller drives one NPC's per-tick AI state. It owns the NPC's
// threat table and leashes chases/combat back to the spawn point.
type Controller struct {
	NPC      *entity.Entity
	Template *Template
	Threat   *combat.ThreatTable

	SpawnX, SpawnY float64

	State State

	attackCooldownRemaining float64
	wanderCooldownRemaining float64
	wanderTargetX, wanderTargetY float64
	hasWanderTarget bool

	Waypoints *WaypointRoute
}

func NewController(npc *entity.Entity, tmpl *Template, spawnX, spawnY float64) *Controller {
	return &Controller{
		NPC:      npc,
		Template: tmpl,
		Threat:   combat.NewThreatTable(),
		SpawnX:   spawnX,
		SpawnY:   spawnY,
		State:    StateIdle,
	}
}

// AttackFunc performs one melee attack from npc onto target, returning
// whether the target died.
type AttackFunc func(npc, target *entity.Entity) (targetDied bool)

// Tick advances the controller one world-tick (dt seconds). w supplies
// world queries; attack performs the actual damage application so this
// package stays decoupled from the combat-resolution pipeline.
func (c *Controller) Tick(dt float64, w World, attack AttackFunc) {
	if c.State == StateDead || c.State == StateDespawned {
		return
	}
	if c.NPC.Dead {
		c.State = StateDead
		return
	}

	if c.attackCooldownRemaining > 0 {
		c.attackCooldownRemaining -= dt
	}

	switch c.State {
	case StateIdle, StateWandering:
		c.tickIdle(dt, w)
	case StateChasing:
		c.tickChasing(dt, w, attack)
	case StateCombat:
		c.tickCombat(dt, w, attack)
	case StateEvading:
		c.tickEvading(dt, w)
	}
}

func (c *Controller) leashDistance() float64 {
	target := c.NPC.DistanceToPoint(c.SpawnX, c.SpawnY)
	return target
}

func (c *Controller) tickIdle(dt float64, w World) {
	if !c.Template.Passive {
		if guid, ok := w.NearestHostile(c.NPC, c.Template.AggroRadius); ok {
			c.Threat.Add(guid, 1)
			c.State = StateChasing
			return
		}
	}

	switch c.Template.MovementType {
	case MovementWaypoint:
		c.tickWaypoint(dt, w)
	case MovementWander:
		c.tickWander(dt, w)
	}
}

func (c *Controller) tickWander(dt float64, w World) {
	if c.wanderCooldownRemaining > 0 {
		c.wanderCooldownRemaining -= dt
		return
	}
	if !c.hasWanderTarget {
		x, y := w.RandomPointIn(c.SpawnX, c.SpawnY, c.Template.WanderRadius)
		c.wanderTargetX, c.wanderTargetY = x, y
		c.hasWanderTarget = true
		c.State = StateWandering
		return
	}

	if c.NPC.DistanceToPoint(c.wanderTargetX, c.wanderTargetY) < 0.5 {
		c.hasWanderTarget = false
		c.wanderCooldownRemaining = 3
		c.State = StateIdle
		return
	}
	stepToward(c.NPC, c.wanderTargetX, c.wanderTargetY, 1)
}

func (c *Controller) tickWaypoint(dt float64, w World) {
	if c.Waypoints == nil {
		return
	}
	wp, ok := c.Waypoints.Current()
	if !ok {
		return
	}
	if c.NPC.DistanceToPoint(wp.X, wp.Y) < c.Waypoints.ArrivalTolerance {
		if c.Waypoints.Dwell(wp, dt) {
			return
		}
		c.Waypoints.Advance()
		return
	}
	stepToward(c.NPC, wp.X, wp.Y, 1)
}

func (c *Controller) tickChasing(_ float64, w World, attack AttackFunc) {
	targetGUID, ok := c.Threat.Highest(func(g entity.GUID) bool {
		t := w.EntityByGUID(g)
		return t != nil && !t.Dead
	})
	if !ok {
		c.State = StateEvading
		return
	}
	target := w.EntityByGUID(targetGUID)
	if target == nil || target.Dead {
		c.Threat.Remove(targetGUID)
		c.State = StateEvading
		return
	}
	if c.leashDistance() > c.Template.LeashDistance {
		c.State = StateEvading
		return
	}
	if c.NPC.InRange(target, c.Template.MeleeRange) {
		c.State = StateCombat
		return
	}
	stepToward(c.NPC, target.X, target.Y, 1)
}

func (c *Controller) tickCombat(_ float64, w World, attack AttackFunc) {
	targetGUID, ok := c.Threat.Highest(func(g entity.GUID) bool {
		t := w.EntityByGUID(g)
		return t != nil && !t.Dead
	})
	if !ok {
		c.State = StateEvading
		return
	}
	target := w.EntityByGUID(targetGUID)
	if target == nil || target.Dead {
		c.Threat.Remove(targetGUID)
		c.State = StateEvading
		return
	}
	if c.leashDistance() > c.Template.LeashDistance {
		c.State = StateEvading
		return
	}
	if !c.NPC.InRange(target, c.Template.MeleeRange) {
		c.State = StateChasing
		return
	}
	if c.attackCooldownRemaining <= 0 && attack != nil {
		died := attack(c.NPC, target)
		c.attackCooldownRemaining = c.Template.AttackCooldownSeconds
		if died {
			c.Threat.Remove(targetGUID)
		}
	}
}

func (c *Controller) tickEvading(_ float64, w World) {
	if c.NPC.DistanceToPoint(c.SpawnX, c.SpawnY) < 0.5 {
		c.NPC.X, c.NPC.Y = c.SpawnX, c.SpawnY
		c.NPC.SetVariable(entity.VarHealth, c.NPC.Variable(entity.VarMaxHealth))
		c.NPC.SetVariable(entity.VarMana, c.NPC.Variable(entity.VarMaxMana))
		c.Threat.Clear()
		c.State = StateIdle
		return
	}
	stepToward(c.NPC, c.SpawnX, c.SpawnY, 1)
}

// stepToward moves e speed units of distance toward (x, y), clamping to not
// overshoot.
func stepToward(e *entity.Entity, x, y, speed float64) {
	dist := e.DistanceToPoint(x, y)
	if dist <= speed || dist == 0 {
		e.X, e.Y = x, y
		return
	}
	dx := (x - e.X) / dist
	dy := (y - e.Y) / dist
	e.X += dx * speed
	e.Y += dy * speed
}

// MarkDead transitions the controller into StateDead, clearing threat
// and chase/wander targets.
func (c *Controller) MarkDead() {
	c.State = StateDead
	c.Threat.Clear()
	c.hasWanderTarget = false
}
