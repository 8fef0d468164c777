package domain

// CallState follows the negotiation between two connected peers. The legacy
// call_request flow and the plain offer flow enter it through different
// states; only the legacy flow touches lawyer availability.
type CallState int

const (
	CallIdle CallState = iota
	// CallRinging: a call_request was relayed and the callee marked BUSY.
	CallRinging
	// CallOffered: an SDP offer was relayed; availability is untouched.
	CallOffered
	CallActive
)

func (s CallState) String() string {
	switch s {
	case CallRinging:
		return "ringing"
	case CallOffered:
		return "offered"
	case CallActive:
		return "active"
	default:
		return "idle"
	}
}

// Call is one logical call between two peers, keyed by the unordered
// username pair. There is no liveness timer: a callee that never answers
// leaves the call ringing until someone ends it or disconnects.
type Call struct {
	Caller string
	Callee string
	State  CallState
}

func (c *Call) Peer(username string) (string, bool) {
	switch username {
	case c.Caller:
		return c.Callee, true
	case c.Callee:
		return c.Caller, true
	}
	return "", false
}
