// Package memnetwork is the default in-memory network.TransportNetwork
// (§11 supplemented feature): a map of station id to passenger count,
// sufficient to exercise every coordinator scenario in spec.md §8 without
// pulling in the real station/line/route graph, which spec.md explicitly
// places out of scope (§1).
package memnetwork

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dante2608/Network-monitor/network"
)

// layoutDocument is the subset of the network-layout JSON this
// implementation understands: a flat list of station ids.
type layoutDocument struct {
	Stations []struct {
		ID string `json:"id"`
	} `json:"stations"`
}

// Network is a single-writer, many-reader-safe in-memory passenger count
// store. §5 assigns it exactly one writer (the coordinator's user-strand
// on-message handler); GetPassengerCount is exposed for callers outside
// that strand (tests, diagnostics), so access is still mutex-guarded.
type Network struct {
	mu     sync.Mutex
	counts map[string]int
}

// New returns an empty Network. Call FromLayout before recording events.
func New() *Network {
	return &Network{counts: make(map[string]int)}
}

// FromLayout loads the station set from a network-layout JSON document.
// Construction fails if the document is empty or names no stations.
func (n *Network) FromLayout(doc []byte) error {
	var parsed layoutDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return fmt.Errorf("memnetwork: parse layout: %w", err)
	}
	if len(parsed.Stations) == 0 {
		return fmt.Errorf("memnetwork: layout names no stations")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = make(map[string]int, len(parsed.Stations))
	for _, s := range parsed.Stations {
		if s.ID == "" {
			return fmt.Errorf("memnetwork: layout contains a station with an empty id")
		}
		n.counts[s.ID] = 0
	}
	return nil
}

// RecordPassengerEvent applies one in/out event to its station's count. A
// station unknown to the layout is rejected, not silently created. Counts
// never go negative: an "out" at zero is recorded as a no-op rather than
// rejected, since the live feed has no way to replay history this process
// missed before it started.
func (n *Network) RecordPassengerEvent(ev network.PassengerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	count, ok := n.counts[ev.StationID]
	if !ok {
		return fmt.Errorf("memnetwork: unknown station %q", ev.StationID)
	}

	switch ev.Kind {
	case network.PassengerIn:
		n.counts[ev.StationID] = count + 1
	case network.PassengerOut:
		if count > 0 {
			n.counts[ev.StationID] = count - 1
		}
	default:
		return fmt.Errorf("memnetwork: unknown passenger event kind %q", ev.Kind)
	}
	return nil
}

// GetPassengerCount returns the current count for stationID.
func (n *Network) GetPassengerCount(stationID string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	count, ok := n.counts[stationID]
	if !ok {
		return 0, fmt.Errorf("memnetwork: unknown station %q", stationID)
	}
	return count, nil
}
