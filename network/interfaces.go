package network

import "context"

// TransportNetwork is the state store the coordinator applies passenger
// events to (§6). The network layout itself — stations, lines, routes,
// graph traversal — is an out-of-scope collaborator; this is the narrow
// interface the coordinator consumes it through.
type TransportNetwork interface {
	FromLayout(doc []byte) error
	RecordPassengerEvent(ev PassengerEvent) error
	GetPassengerCount(stationID string) (int, error)
}

// FileDownloader fetches the network-layout document when Configure is not
// given a local path (§4.4 step 3).
type FileDownloader interface {
	Download(ctx context.Context, url, destPath, caCertPath string) error
}

// LayoutParser reads a network-layout document off disk and validates it
// minimally before it is handed to the TransportNetwork (§4.4 step 4).
type LayoutParser interface {
	ParseFile(path string) ([]byte, error)
}
