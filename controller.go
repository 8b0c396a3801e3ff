package mixloop

// ControllerCount is the number of MIDI continuous controllers.
const ControllerCount = 128

// ControllerModulation is the modulation wheel controller.
const ControllerModulation = 1

type controllerValues [ControllerCount]float64

// ControllerTable maps controller indices to live 0..1 values. It is
// written by an input collaborator and read by the graph one snapshot per
// tick.
type ControllerTable struct {
	live Box[controllerValues]
	view Signal[*controllerValues]
}

func NewControllerTable() *ControllerTable {
	t := &ControllerTable{}
	t.view = Stateful[*controllerValues](&snapshot[controllerValues]{box: &t.live})
	return t
}

// Set stores a normalized value. Out-of-range indices are ignored.
func (t *ControllerTable) Set(index int, value01 float64) {
	if index < 0 || index >= ControllerCount {
		return
	}
	t.live.Update(func(v *controllerValues) { v[index] = clamp(value01, 0, 1) })
}

// SetMidi stores a raw 7-bit controller value.
func (t *ControllerTable) SetMidi(index, value uint8) {
	t.Set(int(index), float64(value)/127)
}

// Value returns the live value outside the graph.
func (t *ControllerTable) Value(index int) float64 {
	if index < 0 || index >= ControllerCount {
		return 0
	}
	var v controllerValues
	t.live.CopyTo(&v)
	return v[index]
}

// Get01 returns the signal of one controller.
func (t *ControllerTable) Get01(index int) Sf64 {
	if index < 0 || index >= ControllerCount {
		return F64(0)
	}
	return Sf64{Map(t.view, func(v *controllerValues) float64 { return v[index] })}
}

func (t *ControllerTable) Modulation() Sf64 {
	return t.Get01(ControllerModulation)
}
