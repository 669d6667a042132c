package budget

// Status is a client's alert state after reconciliation.
type Status string

const (
	StatusOK    Status = "ok"
	StatusAlert Status = "alert"
)

func ParseStatus(s string) Status {
	if s == string(StatusAlert) {
		return StatusAlert
	}
	return StatusOK
}

// ClientBudget is one client's budget position at a point in time.
// Remaining may go negative; an overrun is reported, never clamped.
type ClientBudget struct {
	Remaining float64
	Status    Status
}

// State maps clients to their budget position. A run reads the prior state
// and produces a new one; a State is never mutated in place, so a failed run
// can not corrupt the operator's configured baseline.
type State map[string]ClientBudget

// StateFromConfig builds a State from the two flat maps the configuration
// stores, remaining dollars and status per client. A client present in only
// one map still gets an entry; missing remaining reads as zero and missing
// status reads as ok.
func StateFromConfig(remaining map[string]float64, status map[string]string) State {
	state := make(State, len(remaining))
	for client, amount := range remaining {
		state[client] = ClientBudget{Remaining: amount, Status: ParseStatus(status[client])}
	}
	for client, s := range status {
		if _, ok := state[client]; !ok {
			state[client] = ClientBudget{Status: ParseStatus(s)}
		}
	}
	return state
}

func (s State) Clone() State {
	clone := make(State, len(s))
	for client, b := range s {
		clone[client] = b
	}
	return clone
}

// Remaining returns the client's remaining budget, zero when the client has
// never been given one.
func (s State) Remaining(client string) float64 {
	return s[client].Remaining
}

func (s State) StatusOf(client string) Status {
	if b, ok := s[client]; ok {
		return b.Status
	}
	return StatusOK
}
