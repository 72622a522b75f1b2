// Package spawn creates objects from templates as the camera approaches, and
// records enough of the session to roll it back to a checkpoint.
package spawn

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// despawnFactor scales MaxSpawnDistance into the distance objects are removed at.
const despawnFactor = 1.5

// ErrUnknownTemplate is returned by a Host asked to spawn a template it does not have.
var ErrUnknownTemplate = errors.New("unknown spawn template")

// Host creates and removes spawned objects.
type Host interface {
	Now() time.Duration
	// Spawn creates an object from template at pos. Walking actors are turned
	// to face toward.
	Spawn(template string, pos, toward math.Vec2) (entity.ID, error)
	Despawn(id entity.ID)
	// Position reports where a spawned object is and whether it still exists.
	Position(id entity.ID) (math.Vec2, bool)
}

// Point spawns copies of a template while the camera is within range.
type Point struct {
	Template string
	Position math.Vec2

	MinSpawnDistance float32
	MaxSpawnDistance float32
	NumberToSpawn    int
	SpawnInterval    time.Duration
	AutoDespawn      bool
	// SpawnOnKill holds the next spawn until the previous object is gone.
	SpawnOnKill bool

	host     Host
	log      *zap.Logger
	disabled bool

	numberSpawned int
	spawnTime     time.Duration
	lastSpawned   entity.ID
	spawned       []entity.ID
}

// NewPoint creates a spawn point with the defaults from cfg.
func NewPoint(template string, pos math.Vec2, cfg config.SpawnConfig, host Host) *Point {
	return &Point{
		Template:         template,
		Position:         pos,
		MinSpawnDistance: cfg.MinSpawnDistance,
		MaxSpawnDistance: cfg.MaxSpawnDistance,
		NumberToSpawn:    cfg.NumberToSpawn,
		SpawnInterval:    cfg.SpawnInterval,
		AutoDespawn:      cfg.AutoDespawn,
		host:             host,
		log:              logger.Named("spawn"),
	}
}

// NumberSpawned returns how many objects the point has produced and still accounts for.
func (p *Point) NumberSpawned() int { return p.numberSpawned }

// Spawned returns the live objects from this point, oldest first.
func (p *Point) Spawned() []entity.ID {
	return append([]entity.ID(nil), p.spawned...)
}

// Record returns the number of spawned objects that are gone for good:
// killed or collected.
func (p *Point) Record() int {
	p.prune()
	return p.numberSpawned - len(p.spawned)
}

// Active reports whether the point can still spawn.
func (p *Point) Active() bool {
	return !p.disabled && p.NumberToSpawn > 0 && p.Template != ""
}

// Update spawns when the camera is in range and despawns objects that fell
// far behind it.
func (p *Point) Update(camera math.Vec2) {
	if !p.Active() {
		return
	}
	p.prune()

	if p.numberSpawned < p.NumberToSpawn {
		d := camera.Distance(p.Position)
		if d > p.MinSpawnDistance && d < p.MaxSpawnDistance {
			p.SpawnTarget(camera, false)
		}
	}

	if !p.AutoDespawn || p.numberSpawned == 0 {
		return
	}
	limit := p.MaxSpawnDistance * despawnFactor
	pointDist := camera.Distance(p.Position)
	for i := 0; i < len(p.spawned); i++ {
		id := p.spawned[i]
		pos, ok := p.host.Position(id)
		if !ok {
			continue
		}
		// Only despawn objects on the same side of the camera as the point.
		if (pos.X-camera.X < 0) != (p.Position.X-camera.X < 0) {
			continue
		}
		if camera.Distance(pos) > limit && pointDist > limit {
			p.despawn(id)
			i--
		}
	}
}

// SpawnTarget creates the next object. Unless forced, it honors the spawn
// count, the interval and SpawnOnKill.
func (p *Point) SpawnTarget(camera math.Vec2, force bool) (entity.ID, bool) {
	if !p.Active() {
		return 0, false
	}
	if !force && p.numberSpawned != 0 {
		if p.numberSpawned >= p.NumberToSpawn || p.host.Now()-p.spawnTime < p.SpawnInterval {
			return 0, false
		}
		if p.SpawnOnKill {
			if _, alive := p.host.Position(p.lastSpawned); alive {
				return 0, false
			}
		}
	}

	id, err := p.host.Spawn(p.Template, p.Position, camera)
	if err != nil {
		p.disabled = true
		p.log.Warn("spawn point disabled", zap.String("template", p.Template), zap.Error(err))
		return 0, false
	}

	p.numberSpawned++
	p.spawnTime = p.host.Now()
	p.lastSpawned = id
	p.spawned = append(p.spawned, id)
	p.log.Debug("spawned", zap.String("template", p.Template), zap.Int("number", p.numberSpawned))
	return id, true
}

// Forget stops tracking id without counting it as despawned, e.g. when a
// pickup goes into an inventory.
func (p *Point) Forget(id entity.ID) bool {
	for i, s := range p.spawned {
		if s == id {
			p.spawned = append(p.spawned[:i], p.spawned[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Point) despawn(id entity.ID) {
	p.Forget(id)
	p.host.Despawn(id)
	p.numberSpawned--
}

// DespawnAll removes every live object and sets the spawn count to n.
func (p *Point) DespawnAll(n int) {
	for _, id := range p.Spawned() {
		p.Forget(id)
		p.host.Despawn(id)
	}
	p.numberSpawned = n
}

// prune drops objects that no longer exist.
func (p *Point) prune() {
	live := p.spawned[:0]
	for _, id := range p.spawned {
		if _, ok := p.host.Position(id); ok {
			live = append(live, id)
		}
	}
	p.spawned = live
}
