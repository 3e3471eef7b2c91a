package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/dreadmyst/server/internal/config"
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/handler"
	"github.com/dreadmyst/server/internal/mapgrid"
	"github.com/dreadmyst/server/internal/npcai"
	"github.com/dreadmyst/server/internal/persist"
	"github.com/dreadmyst/server/internal/saver"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/wire"
	"github.com/dreadmyst/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("DREADMYST_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting server", zap.Int("port", cfg.Server.Port))

	serverDB, err := persist.Open(cfg.Database.ServerDbPath)
	if err != nil {
		return fmt.Errorf("open server store: %w", err)
	}
	defer serverDB.Close()
	if err := serverDB.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("server store ready", zap.String("path", cfg.Database.ServerDbPath))

	accounts := persist.NewAccountRepo(serverDB)
	characters := persist.NewCharacterRepo(serverDB)

	cache, err := content.Open(cfg.Database.GameDbPath)
	if err != nil {
		return fmt.Errorf("open content store: %w", err)
	}
	log.Info("content loaded",
		zap.Int("items", len(cache.Items)),
		zap.Int("spells", len(cache.Spells)),
		zap.Int("npcs", len(cache.NPCs)),
		zap.Int("quests", len(cache.Quests)),
	)

	maps := mapgrid.NewManager(cfg.Database.MapsPath, cfg.World.CellWidth, cfg.World.CellHeight, log)
	var preloadIDs []int
	for id, m := range cache.Maps {
		if m.Preload {
			preloadIDs = append(preloadIDs, id)
		}
	}
	if err := maps.Preload(preloadIDs); err != nil {
		return fmt.Errorf("preload map grids: %w", err)
	}
	log.Info("map grids preloaded", zap.Int("count", len(preloadIDs)))

	sv := saver.New(log)
	sv.Start()
	defer sv.Stop()

	entities := entity.NewRegistry()
	worldReg := world.NewRegistry(cfg.World.ViewDistance)
	sessions := session.NewRegistry()

	deps := handler.NewDeps(log, cfg, cache, accounts, characters, maps, sv, sessions, entities, worldReg)

	npcSpawns := buildNPCSpawners(cache, entities, worldReg)
	deps.NPCDeathHook = func(guid entity.GUID) {
		if meta, ok := npcSpawnByGUID[guid]; ok {
			if sp, ok := npcSpawns[meta.mapID]; ok {
				sp.NotifyDeath(meta.spawnID)
			}
			delete(npcSpawnByGUID, guid)
		}
	}
	spawnedCount := 0
	for _, sp := range npcSpawns {
		spawnedCount += len(sp.SpawnAll())
	}
	log.Info("npcs spawned", zap.Int("count", spawnedCount))

	rt := wire.NewRouter(log)
	handler.RegisterAll(rt, deps)
	session.DisconnectPacketBuilder = handler.BuildDisconnectPacket

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	var nextSessionID uint64
	shutdown := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		acceptLoop(listener, sessions, rt, &nextSessionID, log, shutdown)
		return nil
	})

	tickInterval := time.Duration(cfg.World.TickMillis) * time.Millisecond
	dt := tickInterval.Seconds()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("world loop started",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("tick_interval", tickInterval),
	)

	var tick uint64
	var ticksSinceSave int
	nearestHostile, entityByGUID, isWalkable, randomPointIn := deps.NPCWorld()
	npcWorld := npcai.World{
		NearestHostile: nearestHostile,
		EntityByGUID:   entityByGUID,
		IsWalkable:     isWalkable,
		RandomPointIn:  randomPointIn,
	}

	tickOnce := func() {
		tick++
		deps.SetTick(tick)

		for _, sp := range npcSpawns {
			sp.Tick(dt) // respawns finished-timer rows back into Live()
			for _, ctrl := range sp.Live() {
				ctrl.Tick(dt, npcWorld, deps.NPCAttack)
				deps.BroadcastNPCMove(ctrl.NPC)
			}
		}

		deps.TickCasts(dt)
		deps.TickAuras(dt)
		sessions.Sweep(time.Now())

		ticksSinceSave++
		if ticksSinceSave >= cfg.World.AutoSaveTicks {
			ticksSinceSave = 0
			deps.EnqueueAutoSave()
		}
	}

	g.Go(func() error {
		for {
			select {
			case <-ticker.C:
				tickOnce()

			case sig := <-sigCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				close(shutdown)
				listener.Close()
				sessions.DisconnectAll("server shutting down")
				tickOnce() // deliver disconnect-reason packets and sweep sessions before exit
				deps.SaveAllPlayers()
				sv.Flush()
				log.Info("server stopped")
				return nil
			}
		}
	})

	return g.Wait()
}

// npcSpawnMeta records which map/spawn-row an NPC's GUID came from, so
// a death notification can route back to the right Spawner's respawn
// timer.
type npcSpawnMeta struct {
	mapID   int
	spawnID int
}

var npcSpawnByGUID = make(map[entity.GUID]npcSpawnMeta)

// buildNPCSpawners constructs one npcai.Spawner per map that has spawn
// rows, skipping rows whose template id is unknown (such rows are dropped
// without a log line rather than failing start-up).
func buildNPCSpawners(cache *content.Cache, entities *entity.Registry, worldReg *world.Registry) map[int]*npcai.Spawner {
	out := make(map[int]*npcai.Spawner)
	for mapID, rows := range cache.SpawnRows {
		var converted []npcai.SpawnRow
		for _, row := range rows {
			if cache.NPCs[row.TemplateID] == nil {
				continue
			}
			var waypoints []npcai.Waypoint
			if row.WaypointSeqID != 0 {
				for _, wp := range cache.Waypoints[row.WaypointSeqID] {
					waypoints = append(waypoints, npcai.Waypoint{
						X: wp.X, Y: wp.Y, DwellSeconds: float64(wp.DwellSeconds),
					})
				}
			}
			converted = append(converted, npcai.SpawnRow{
				SpawnID:          row.SpawnID,
				TemplateID:       row.TemplateID,
				MapID:            mapID,
				X:                row.X,
				Y:                row.Y,
				LinkedGroupID:    row.LinkedGroupID,
				LinkedRespawn:    row.LinkedGroupID != 0,
				RespawnSeconds:   float64(row.RespawnSeconds),
				Waypoints:        waypoints,
				ArrivalTolerance: 1.0,
			})
		}
		if len(converted) == 0 {
			continue
		}
		out[mapID] = npcai.NewSpawner(mapID, converted, npcFactory(cache, entities, worldReg, mapID))
	}
	return out
}

func npcFactory(cache *content.Cache, entities *entity.Registry, worldReg *world.Registry, mapID int) npcai.Factory {
	return func(row npcai.SpawnRow) (*entity.Entity, *npcai.Controller) {
		tpl := cache.NPCs[row.TemplateID]

		n := entities.CreateNPC(tpl.Name)
		n.MapID = mapID
		n.X, n.Y = row.X, row.Y
		n.SetVariable(entity.VarHealth, int32(tpl.BaseHealth))
		n.SetVariable(entity.VarMaxHealth, int32(tpl.BaseHealth))
		n.SetVariable(entity.VarMana, int32(tpl.BaseMana))
		n.SetVariable(entity.VarMaxMana, int32(tpl.BaseMana))
		n.SetVariable(entity.VarLevel, int32(tpl.Level))
		n.FlushDirty()
		worldReg.SpawnNPC(n)

		npcSpawnByGUID[n.GUID] = npcSpawnMeta{mapID: mapID, spawnID: row.SpawnID}

		movement := npcai.MovementStationary
		if tpl.MovementType == 1 {
			movement = npcai.MovementWander
		} else if tpl.MovementType == 2 {
			movement = npcai.MovementWaypoint
		}

		ctrl := npcai.NewController(n, &npcai.Template{
			NPCID:                 tpl.ID,
			AggroRadius:           tpl.AggroRadius,
			LeashDistance:         tpl.LeashRadius,
			MeleeRange:            4.0,
			AttackCooldownSeconds: float64(tpl.AttackCooldownMillis) / 1000,
			Passive:               tpl.Passive,
			MovementType:          movement,
			WanderRadius:          tpl.WanderRadius,
		}, row.X, row.Y)

		return n, ctrl
	}
}

// acceptLoop accepts incoming TCP connections until shutdown is closed,
// registering each as a new connected-state session and running its
// read loop on its own goroutine.
func acceptLoop(listener net.Listener, sessions *session.Registry, rt *wire.Router, nextID *uint64, log *zap.Logger, shutdown chan struct{}) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-shutdown:
				return
			default:
				log.Error("accept failed", zap.Error(err))
				continue
			}
		}
		id := atomic.AddUint64(nextID, 1)
		sess := session.New(id, conn)
		sessions.Create(sess)
		go connectionLoop(sess, sessions, rt, log)
	}
}

func connectionLoop(sess *session.Session, sessions *session.Registry, rt *wire.Router, log *zap.Logger) {
	defer func() {
		sess.ClearPlayer()
		sessions.Remove(sess.ID)
	}()
	for {
		frame, err := sess.ReadFrame()
		if err != nil {
			return
		}
		sess.UpdateLastActivity()
		if err := rt.Dispatch(sess, sess.State(), frame); err != nil {
			log.Debug("dispatch error", zap.Uint64("session", sess.ID), zap.Error(err))
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zapCfg.DisableStacktrace = true
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
