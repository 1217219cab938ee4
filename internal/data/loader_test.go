package data

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	reg, err := LoadDefaults()
	require.NoError(t, err)

	counts := reg.Counts()
	for table, n := range counts {
		assert.Positive(t, n, "table %s is empty", table)
	}

	// every reference in the defaults resolves
	for _, id := range reg.ScenarioIDs() {
		sc := reg.Scenario(id)
		for _, h := range sc.Heroes {
			class := reg.Class(h.Class)
			require.NotNil(t, class, "scenario %s: class %s", id, h.Class)
			for _, s := range class.Skills {
				assert.NotNil(t, reg.Skill(s), "class %s: skill %s", class.ID, s)
			}
			for _, p := range class.Passives {
				assert.NotNil(t, reg.Passive(p), "class %s: passive %s", class.ID, p)
			}
			for _, u := range h.Uniques {
				assert.NotNil(t, reg.Unique(u), "scenario %s: unique %s", id, u)
			}
		}
		for _, room := range sc.Rooms {
			for _, m := range room.Monsters {
				assert.NotNil(t, reg.Monster(m.Template), "scenario %s: monster %s", id, m.Template)
			}
		}
	}
}

func TestLoadDefaults_BossPhases(t *testing.T) {
	reg, err := LoadDefaults()
	require.NoError(t, err)

	boss := reg.Monster("bone_lord")
	require.NotNil(t, boss)
	require.NotNil(t, boss.Boss)
	assert.Equal(t, BossRoleName(model.BossRoleWing), boss.Boss.Role)
	assert.Equal(t, "crypt", boss.Boss.RaidID)
	require.Len(t, boss.Boss.Phases, 3)

	p1 := boss.Boss.Phases[1]
	assert.InDelta(t, 50.0, p1.Threshold, 0.001)
	require.NotNil(t, p1.OnStart)
	require.NotNil(t, p1.OnStart.Summon)
	assert.Equal(t, "skeleton", p1.OnStart.Summon.Monster)
	assert.Equal(t, 2, p1.OnStart.Summon.Count)

	p2 := boss.Boss.Phases[2]
	assert.True(t, p2.Enraged)
	assert.Equal(t, int32(1), p2.OnStart.Immunity)
}

func TestLoad_EffectVariants(t *testing.T) {
	fsys := fstest.MapFS{
		"skills.yaml": &fstest.MapFile{Data: []byte(`
skills:
  - id: combo
    target: single_enemy
    cooldown: 2
    effects:
      - type: damage
        hits: 3
        armor_pen: 0.2
      - type: debuff
        debuff: stun
        duration: 1
      - type: hot
        percent: 0.1
        duration: 2
        final_tick_bonus: 1.5
      - type: buff
        buff: evasion
        value: 0.2
        duration: 2
`)},
	}

	reg, err := Load(fsys)
	require.NoError(t, err)

	s := reg.Skill("combo")
	require.NotNil(t, s)
	require.Len(t, s.Effects, 4)

	dmg, ok := s.Effects[0].(DamageEffect)
	require.True(t, ok)
	assert.InDelta(t, 1.0, dmg.Multiplier, 0.0001, "multiplier defaults to 1")
	assert.Equal(t, int32(3), dmg.HitCount())
	assert.InDelta(t, 3.0, s.EffectiveMultiplier(), 0.0001)

	deb, ok := s.Effects[1].(DebuffEffect)
	require.True(t, ok)
	assert.Equal(t, DebuffStun, deb.Debuff)
	assert.True(t, s.IsControlDebuff())

	hot, ok := s.Effects[2].(HotEffect)
	require.True(t, ok)
	assert.InDelta(t, 1.5, hot.FinalTickBonus, 0.0001)

	buff, ok := s.Effects[3].(BuffEffect)
	require.True(t, ok)
	assert.Equal(t, model.BuffEvasion, buff.Buff)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown effect", "skills:\n  - id: x\n    target: self\n    effects:\n      - type: teleport\n"},
		{"unknown debuff", "skills:\n  - id: x\n    target: self\n    effects:\n      - type: debuff\n        debuff: confuse\n"},
		{"unknown target", "skills:\n  - id: x\n    target: everyone\n"},
		{"unknown passive kind", "passives:\n  - id: p\n    kind: teleport\n    trigger: on_attack\n"},
		{"missing id", "uniques:\n  - kind: thorns\n"},
		{"phase order", "monsters:\n  - id: b\n    boss:\n      phases:\n        - threshold: 50\n        - threshold: 80\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"bad.yaml": &fstest.MapFile{Data: []byte(tt.yaml)}}
			_, err := Load(fsys)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyFS(t *testing.T) {
	_, err := Load(fstest.MapFS{})
	assert.Error(t, err)
}

func TestTrigger_DeathAlias(t *testing.T) {
	fsys := fstest.MapFS{"p.yaml": &fstest.MapFile{Data: []byte(
		"passives:\n  - id: p\n    kind: phoenix\n    trigger: on_death\n    value: 0.3\n")}}
	reg, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, TriggerLethal, reg.Passive("p").Trigger)
}

func TestUniqueKind_Triggers(t *testing.T) {
	for k := UniqueKind(0); int(k) < UniqueKindCount(); k++ {
		assert.NotEqual(t, "unknown", k.String(), "kind %d has no name", k)
	}
	assert.Equal(t, TriggerLethal, UniqueCheatDeath.Trigger())
	assert.Equal(t, TriggerCrit, UniqueCritLifesteal.Trigger())
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	assert.Nil(t, reg.Skill("x"))
	assert.Nil(t, reg.Ability("x"))
	assert.Nil(t, reg.Monster("x"))
	assert.Nil(t, reg.Passive("x"))
	assert.Nil(t, reg.Unique("x"))
	assert.Nil(t, reg.Class("x"))
	assert.Nil(t, reg.Scenario("x"))
}

func TestMonsterTemplate_Scaled(t *testing.T) {
	tmpl := &MonsterTemplate{Stats: BaseStats{MaxHP: 100, Attack: 10, Defense: 5, Speed: 12}}

	lvl1 := tmpl.Scaled(1, 0.1)
	assert.Equal(t, model.Stats{HP: 100, MaxHP: 100, Attack: 10, Defense: 5, Speed: 12}, lvl1)

	lvl5 := tmpl.Scaled(5, 0.1)
	assert.Equal(t, int32(140), lvl5.MaxHP)
	assert.Equal(t, int32(140), lvl5.HP)
	assert.Equal(t, int32(14), lvl5.Attack)
	assert.Equal(t, int32(7), lvl5.Defense)
	assert.Equal(t, int32(12), lvl5.Speed, "speed is not scaled")

	half := tmpl.Scaled(5, 0.05)
	assert.Equal(t, int32(120), half.MaxHP)
}

func TestSkillDefinition_Predicates(t *testing.T) {
	reg, err := LoadDefaults()
	require.NoError(t, err)

	assert.True(t, reg.Skill("heal").IsHeal())
	assert.True(t, reg.Skill("renew").IsHeal())
	assert.True(t, reg.Skill("barrier").IsShield())
	assert.True(t, reg.Skill("bulwark").IsPartyDefensiveBuff())
	assert.True(t, reg.Skill("execute").IsExecute())
	assert.True(t, reg.Skill("whirlwind").IsAoEDamage())
	assert.False(t, reg.Skill("power_strike").IsAoEDamage())
	assert.True(t, reg.Skill("sunder").IsControlDebuff())
	assert.True(t, reg.Skill("poison_blade").IsDot())
	assert.InDelta(t, 1.8, reg.Skill("twin_slash").EffectiveMultiplier(), 0.0001)
}

func TestMonsterAbility_AllowedInPhase(t *testing.T) {
	a := &MonsterAbility{Phases: []int{1, 2}}
	assert.False(t, a.AllowedInPhase(0))
	assert.True(t, a.AllowedInPhase(2))
	assert.True(t, (&MonsterAbility{}).AllowedInPhase(7))
}

func TestLoadDir(t *testing.T) {
	fromDisk, err := LoadDir("defaults")
	require.NoError(t, err)
	embedded, err := LoadDefaults()
	require.NoError(t, err)
	assert.Equal(t, embedded.Counts(), fromDisk.Counts())

	empty, err := LoadDir("")
	require.NoError(t, err)
	assert.Equal(t, embedded.ScenarioIDs(), empty.ScenarioIDs())
}
