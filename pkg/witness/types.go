// Package witness implements the three independent observers — filesystem,
// process, and network — that watch host activity without relying on the
// agent to self-report, plus the gateway-rooted process-tree filter used to
// scope observations to the agent's own process family.
package witness

import "github.com/agenttrust/core/pkg/ledger"

// RawEvent is an observed event tagged with its source, before it is
// wrapped into a ledger.Witness record.
type RawEvent struct {
	Source ledger.WitnessSource
	Event  ledger.Event
}

// Monitor is a long-lived observer with a start/stop lifecycle.
type Monitor interface {
	Start(cb func(RawEvent)) error
	Stop()
}
