package testutil

import "sync"

// ScriptedDice is a dice.Source that replays queued values.
//
// IntN pops the next queued int (taken modulo n); Float64 pops the next queued
// float. An empty queue yields 0 for IntN and FloatDefault for Float64.
// FloatDefault starts at 0.5: variance rolls to exactly 1.0 and low-probability
// checks (dodge, crit below 50%) fail.
type ScriptedDice struct {
	mu           sync.Mutex
	ints         []int
	floats       []float64
	FloatDefault float64
}

// NewScriptedDice создаёт ScriptedDice с пустыми очередями.
func NewScriptedDice() *ScriptedDice {
	return &ScriptedDice{FloatDefault: 0.5}
}

// QueueInts appends raw IntN results.
func (d *ScriptedDice) QueueInts(v ...int) *ScriptedDice {
	d.mu.Lock()
	d.ints = append(d.ints, v...)
	d.mu.Unlock()
	return d
}

// QueueD20 appends d20 results (1..20).
func (d *ScriptedDice) QueueD20(rolls ...int) *ScriptedDice {
	d.mu.Lock()
	for _, r := range rolls {
		d.ints = append(d.ints, r-1)
	}
	d.mu.Unlock()
	return d
}

// QueueFloats appends Float64 results.
func (d *ScriptedDice) QueueFloats(v ...float64) *ScriptedDice {
	d.mu.Lock()
	d.floats = append(d.floats, v...)
	d.mu.Unlock()
	return d
}

func (d *ScriptedDice) IntN(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ints) == 0 || n <= 0 {
		return 0
	}
	v := d.ints[0]
	d.ints = d.ints[1:]
	return ((v % n) + n) % n
}

func (d *ScriptedDice) Float64() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.floats) == 0 {
		return d.FloatDefault
	}
	v := d.floats[0]
	d.floats = d.floats[1:]
	return v
}

// Pending returns how many ints and floats are still queued.
func (d *ScriptedDice) Pending() (ints, floats int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ints), len(d.floats)
}
