package wizard

// Wizard walks a state along its step sequence. The sequence is recomputed
// on every Update so conditional steps appear and disappear as inputs change.
type Wizard struct {
	state  State
	seq    []StepID
	cursor int
}

// New starts a wizard at the first step.
func New(initial State) *Wizard {
	return &Wizard{state: initial, seq: Sequence(initial)}
}

// State returns a copy of the collected inputs.
func (w *Wizard) State() State {
	return w.state
}

// Current returns the step under the cursor.
func (w *Wizard) Current() StepID {
	return w.seq[w.cursor]
}

// Sequence returns the current path.
func (w *Wizard) Sequence() []StepID {
	return append([]StepID(nil), w.seq...)
}

// Position returns the 1-based step number and the path length.
func (w *Wizard) Position() (int, int) {
	return w.cursor + 1, len(w.seq)
}

// Update applies a change to the state and recomputes the path. When the
// current step drops out the cursor moves to the nearest earlier step
// that survived.
func (w *Wizard) Update(fn func(*State)) {
	current := w.Current()
	fn(&w.state)
	w.seq = Sequence(w.state)

	rank := graphIndex(current)
	w.cursor = 0
	for i, id := range w.seq {
		if graphIndex(id) <= rank {
			w.cursor = i
		}
	}
}

// CanAdvance reports whether the current step is satisfied.
func (w *Wizard) CanAdvance() bool {
	return CanAdvance(w.Current(), w.state)
}

// Next validates the current step and moves forward. It returns a
// *ValidationError when the step is not satisfied and does nothing on the
// last step.
func (w *Wizard) Next() error {
	step, _ := Lookup(w.Current())
	if errs := step.Validate(w.state); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if w.cursor < len(w.seq)-1 {
		w.cursor++
	}
	return nil
}

// Back moves one step backward. It reports false on the first step.
func (w *Wizard) Back() bool {
	if w.cursor == 0 {
		return false
	}
	w.cursor--
	return true
}

// Done reports whether the cursor is on the generate step.
func (w *Wizard) Done() bool {
	return w.Current() == StepGenerate
}

func graphIndex(id StepID) int {
	for i, s := range Graph {
		if s.ID == id {
			return i
		}
	}
	return -1
}
