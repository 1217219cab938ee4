package model

// Kind distinguishes heroes, monsters and transient summons.
type Kind int8

const (
	KindHero Kind = iota
	KindMonster
	KindSummon
)

// Side is the team a unit fights for. Summons fight on their owner's side.
type Side int8

const (
	SideHeroes Side = iota
	SideMonsters
)

// Stats — базовые боевые характеристики юнита.
type Stats struct {
	HP      int32
	MaxHP   int32
	Attack  int32
	Defense int32
	Speed   int32
}

// BossRole marks raid-specific bosses whose defeat is reported to the raid tracker.
type BossRole int8

const (
	BossRoleNone BossRole = iota
	BossRoleWing
	BossRoleFinal
)

// BossInfo carries boss-specific fields mirrored from the boss state machine.
type BossInfo struct {
	Role       BossRole
	RaidID     string
	Phase      int
	Enraged    bool
	SummonType string
}

// SummonKind — тип призванного существа.
type SummonKind int8

const (
	SummonPet SummonKind = iota
	SummonClone
	SummonUndead
)

// SummonInfo describes a summoned unit. TurnsRemaining == 0 means permanent.
type SummonInfo struct {
	OwnerID        uint32
	Kind           SummonKind
	TurnsRemaining int32
}

// Consumables held by a hero that the combat core may spend.
type Consumables struct {
	ResurrectionScrolls int32
}

// Unit is the canonical combatant representation.
//
// Not safe for concurrent use: a unit belongs to exactly one combat session
// and is mutated only by that session's tick.
type Unit struct {
	ID          uint32
	Name        string
	Kind        Kind
	Side        Side
	Level       int32
	Stats       Stats
	AttackRange int32

	// Class and DPS apply to heroes; DPS classes use the higher crit baseline.
	Class string
	DPS   bool

	// Reference data ids. Heroes use Skills/Passives/Uniques,
	// monsters use TemplateID/Abilities.
	Skills     []string
	Passives   []string
	Uniques    []string
	TemplateID string
	Abilities  []string

	Consumables Consumables

	Statuses  []StatusEffect
	Buffs     map[BuffKind]*Buff
	Cooldowns map[string]int32
	Vengeance Vengeance
	Encounter EncounterBonus

	// Shield absorbs damage before hp; backed by a BuffShield timer.
	Shield int32

	Boss   *BossInfo
	Summon *SummonInfo
}

// IsHero reports whether the unit is a hero (summons are not heroes).
func (u *Unit) IsHero() bool { return u.Kind == KindHero }

// IsBoss reports whether the unit carries boss fields.
func (u *Unit) IsBoss() bool { return u.Boss != nil }

// IsAlive returns true while hp > 0.
func (u *Unit) IsAlive() bool { return u.Stats.HP > 0 }

// HP возвращает текущее HP.
func (u *Unit) HP() int32 { return u.Stats.HP }

// MaxHP возвращает максимальное HP.
func (u *Unit) MaxHP() int32 { return u.Stats.MaxHP }

// HPPercent returns current hp as a fraction of max hp (0.0 - 1.0).
func (u *Unit) HPPercent() float64 {
	if u.Stats.MaxHP <= 0 {
		return 0
	}
	return float64(u.Stats.HP) / float64(u.Stats.MaxHP)
}

// SetHP устанавливает текущее HP с валидацией (clamp 0..maxHP).
func (u *Unit) SetHP(hp int32) {
	if hp < 0 {
		hp = 0
	}
	if hp > u.Stats.MaxHP {
		hp = u.Stats.MaxHP
	}
	u.Stats.HP = hp
}

// ReduceHP removes up to damage hp and returns the amount actually removed.
func (u *Unit) ReduceHP(damage int32) int32 {
	if damage <= 0 {
		return 0
	}
	dealt := min(damage, u.Stats.HP)
	u.Stats.HP -= dealt
	return dealt
}

// Heal adds up to amount hp, clamped to max hp, and returns the amount healed.
func (u *Unit) Heal(amount int32) int32 {
	if amount <= 0 || u.Stats.HP <= 0 {
		return 0
	}
	healed := min(amount, u.Stats.MaxHP-u.Stats.HP)
	u.Stats.HP += healed
	return healed
}

// Cooldown returns remaining cooldown turns for an ability id.
func (u *Unit) Cooldown(id string) int32 {
	return u.Cooldowns[id]
}

// SetCooldown stamps a cooldown; zero or negative clears it.
func (u *Unit) SetCooldown(id string, turns int32) {
	if turns <= 0 {
		delete(u.Cooldowns, id)
		return
	}
	if u.Cooldowns == nil {
		u.Cooldowns = make(map[string]int32, 4)
	}
	u.Cooldowns[id] = turns
}

// SameSide reports whether both units fight for the same team.
func (u *Unit) SameSide(other *Unit) bool { return u.Side == other.Side }
