package sdk

// Env is what the host hands over for a single call: who signed it and at which height it runs.
// The core never reads wall clock time, Height is the only notion of time.
type Env struct {
	Caller AccountID
	Height uint64
	TxID   string
}

// WithCaller returns a copy of the env acting as another account, used when a passed
// proposal executes under the organization's identity.
func (e Env) WithCaller(caller AccountID) Env {
	e.Caller = caller
	return e
}
