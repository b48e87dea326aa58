package memnetwork

import (
	"testing"
	"time"

	"github.com/dante2608/Network-monitor/network"
)

const layout = `{"stations":[{"id":"station_0"},{"id":"station_1"}]}`

func TestFromLayoutRejectsEmptyDocument(t *testing.T) {
	n := New()
	if err := n.FromLayout(nil); err == nil {
		t.Fatal("expected an error constructing from an empty document")
	}
}

func TestTwoInEventsAtSameStation(t *testing.T) {
	n := New()
	if err := n.FromLayout([]byte(layout)); err != nil {
		t.Fatalf("FromLayout failed: %v", err)
	}

	events := []network.PassengerEvent{
		{Timestamp: time.Now(), Kind: network.PassengerIn, StationID: "station_0"},
		{Timestamp: time.Now(), Kind: network.PassengerIn, StationID: "station_0"},
	}
	for _, ev := range events {
		if err := n.RecordPassengerEvent(ev); err != nil {
			t.Fatalf("RecordPassengerEvent failed: %v", err)
		}
	}

	count, err := n.GetPassengerCount("station_0")
	if err != nil {
		t.Fatalf("GetPassengerCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected station_0 count 2, got %d", count)
	}

	count, err = n.GetPassengerCount("station_1")
	if err != nil {
		t.Fatalf("GetPassengerCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected station_1 count 0, got %d", count)
	}
}

func TestRecordPassengerEventRejectsUnknownStation(t *testing.T) {
	n := New()
	if err := n.FromLayout([]byte(layout)); err != nil {
		t.Fatalf("FromLayout failed: %v", err)
	}

	err := n.RecordPassengerEvent(network.PassengerEvent{Kind: network.PassengerIn, StationID: "station_99"})
	if err == nil {
		t.Fatal("expected an error recording an event at an unknown station")
	}
}

func TestOutAtZeroIsANoOp(t *testing.T) {
	n := New()
	if err := n.FromLayout([]byte(layout)); err != nil {
		t.Fatalf("FromLayout failed: %v", err)
	}

	if err := n.RecordPassengerEvent(network.PassengerEvent{Kind: network.PassengerOut, StationID: "station_0"}); err != nil {
		t.Fatalf("RecordPassengerEvent failed: %v", err)
	}
	count, _ := n.GetPassengerCount("station_0")
	if count != 0 {
		t.Fatalf("expected count to stay at 0, got %d", count)
	}
}
