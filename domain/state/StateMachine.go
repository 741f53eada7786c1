package state

// StateMachine is stateless, just used for state computing.
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	InBacklog Category = iota
	InProcess
	Done
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Order    int      `json:"order"`
}

type Transition struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

// AvailableTransitions filters transitions by endpoints; an empty name matches any state.
func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From) && (toState == "" || toState == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// CanTransit reports whether some transition leads from one known state to another.
// Staying in the same state is always allowed for known states.
func (sm *StateMachine) CanTransit(fromState, toState string) bool {
	if _, found := sm.FindState(fromState); !found {
		return false
	}
	if _, found := sm.FindState(toState); !found {
		return false
	}
	if fromState == toState {
		return true
	}
	return len(sm.AvailableTransitions(fromState, toState)) > 0
}
