package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// document is the union of all top-level keys a data file may carry.
type document struct {
	Skills    []*SkillDefinition `yaml:"skills"`
	Abilities []*MonsterAbility  `yaml:"abilities"`
	Monsters  []*MonsterTemplate `yaml:"monsters"`
	Passives  []*PassiveDef      `yaml:"passives"`
	Uniques   []*UniqueDef       `yaml:"uniques"`
	Classes   []*HeroClass       `yaml:"classes"`
	Scenarios []*Scenario        `yaml:"scenarios"`
}

// LoadDefaults загружает встроенные данные (defaults/*.yaml).
func LoadDefaults() (*Registry, error) {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("opening embedded data: %w", err)
	}
	return Load(sub)
}

// LoadDir loads the *.yaml files of dir, or the embedded defaults when dir
// is empty.
func LoadDir(dir string) (*Registry, error) {
	if dir == "" {
		return LoadDefaults()
	}
	return Load(os.DirFS(dir))
}

// Load reads every *.yaml file at the root of fsys into a new Registry.
func Load(fsys fs.FS) (*Registry, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing data files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no data files found")
	}

	reg := NewRegistry()
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if err := reg.merge(&doc); err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}

	slog.Info("reference data loaded", "files", len(files), "counts", reg.Counts())
	return reg, nil
}

func (r *Registry) merge(doc *document) error {
	for _, s := range doc.Skills {
		if s.ID == "" {
			return errors.New("skill without id")
		}
		r.AddSkill(s)
	}
	for _, a := range doc.Abilities {
		if a.ID == "" {
			return errors.New("ability without id")
		}
		r.AddAbility(a)
	}
	for _, m := range doc.Monsters {
		if m.ID == "" {
			return errors.New("monster without id")
		}
		r.AddMonster(m)
	}
	for _, p := range doc.Passives {
		if p.ID == "" {
			return errors.New("passive without id")
		}
		r.AddPassive(p)
	}
	for _, u := range doc.Uniques {
		if u.ID == "" {
			return errors.New("unique without id")
		}
		r.AddUnique(u)
	}
	for _, c := range doc.Classes {
		if c.ID == "" {
			return errors.New("class without id")
		}
		r.AddClass(c)
	}
	for _, s := range doc.Scenarios {
		if s.ID == "" {
			return errors.New("scenario without id")
		}
		r.AddScenario(s)
	}
	return nil
}

// validate checks structural invariants. Dangling references only warn: the
// engine degrades to basic attacks for them.
func (r *Registry) validate() error {
	for id, m := range r.monsters {
		if m.Boss != nil {
			if err := ValidatePhases(m.Boss.Phases); err != nil {
				return fmt.Errorf("monster %s: %w", id, err)
			}
			for i, p := range m.Boss.Phases {
				if p.OnStart != nil && p.OnStart.Summon != nil && r.Monster(p.OnStart.Summon.Monster) == nil {
					slog.Warn("boss phase summons unknown monster",
						"monster", id, "phase", i, "summon", p.OnStart.Summon.Monster)
				}
			}
		}
		for _, a := range m.Abilities {
			if r.Ability(a) == nil {
				slog.Warn("monster references unknown ability", "monster", id, "ability", a)
			}
		}
	}
	for id, c := range r.classes {
		for _, s := range c.Skills {
			if r.Skill(s) == nil {
				slog.Warn("class references unknown skill", "class", id, "skill", s)
			}
		}
	}
	return nil
}

// ValidatePhases checks that phase thresholds are percentages in non-increasing order.
func ValidatePhases(phases []BossPhase) error {
	for i, p := range phases {
		if p.Threshold < 0 || p.Threshold > 100 {
			return fmt.Errorf("phase %d: threshold %.1f outside 0..100", i, p.Threshold)
		}
		if i > 0 && p.Threshold > phases[i-1].Threshold {
			return fmt.Errorf("phase %d: threshold %.1f above previous %.1f", i, p.Threshold, phases[i-1].Threshold)
		}
	}
	return nil
}
