package systems

import (
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
)

// MaxLevelDiffExp bounds how far an NPC's level can fall below the
// player's: a kill MaxLevelDiffExp or more levels below pays no XP.
const MaxLevelDiffExp = 9

// KillXP computes per-kill XP from (player level, NPC level, NPC base
// XP) with a symmetric ±10%-per-level multiplier: killing above your
// level pays a bonus, killing well below it pays nothing.
func KillXP(playerLevel, npcLevel int, npcBaseXP int64) int64 {
	if playerLevel <= 0 || npcLevel <= 0 || npcBaseXP <= 0 {
		return 0
	}
	diff := npcLevel - playerLevel
	if diff <= -MaxLevelDiffExp {
		return 0
	}
	multiplier := 1.0
	switch {
	case diff < 0:
		multiplier = 1.0 + float64(diff)*0.1
		if multiplier < 0.1 {
			multiplier = 0.1
		}
	case diff > 0:
		multiplier = 1.0 + float64(diff)*0.1
	}
	xp := int64(float64(npcBaseXP) * multiplier)
	if xp < 1 {
		xp = 1
	}
	return xp
}

// LevelUpResult reports what a ApplyExperience call produced, for the
// caller to broadcast.
type LevelUpResult struct {
	LeveledUp bool
	NewLevel  int
	MaxHealth int32
	MaxMana   int32
	Stats     [8]int32
}

// ApplyExperience adds amount to player's experience variable, then
// repeatedly levels up while the experience table allows it, reapplying
// the class/level stat table (base stats only — caller layers equipment
// and aura bonuses back on via Recalc) on every level gained.
func ApplyExperience(player *entity.Entity, cache *content.Cache, amount int64) LevelUpResult {
	if amount <= 0 {
		return LevelUpResult{}
	}
	xp := int64(player.Variable(entity.VarExperience)) + amount
	level := int(player.Variable(entity.VarLevel))
	classID := int(player.Variable(entity.VarClassID))

	var res LevelUpResult
	for {
		required, ok := cache.ExperienceTable[level]
		if !ok || required <= 0 || xp < required {
			break
		}
		xp -= required
		level++
		res.LeveledUp = true
		res.NewLevel = level

		if stats := cache.LevelStats(classID, level); stats != nil {
			player.SetVariable(entity.VarMaxHealth, int32(stats.MaxHealth))
			player.SetVariable(entity.VarMaxMana, int32(stats.MaxMana))
			for i := 0; i < 8; i++ {
				player.SetStat(i, int32(stats.Stats[i]))
				res.Stats[i] = int32(stats.Stats[i])
			}
			res.MaxHealth = int32(stats.MaxHealth)
			res.MaxMana = int32(stats.MaxMana)
		}
	}

	player.SetVariable(entity.VarExperience, int32(xp))
	player.SetVariable(entity.VarLevel, int32(level))
	if res.LeveledUp {
		player.SetVariable(entity.VarHealth, player.Variable(entity.VarMaxHealth))
		player.SetVariable(entity.VarMana, player.Variable(entity.VarMaxMana))
	}
	return res
}
