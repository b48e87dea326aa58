package network

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONFileParser is the default LayoutParser: it reads the file off disk and
// confirms it contains well-formed JSON before handing its raw bytes on to
// the TransportNetwork, the same validate-then-pass-through split the
// original's ParseJsonFile/FromJson pair uses.
type JSONFileParser struct{}

// ParseFile reads path and returns its contents iff they are valid JSON.
func (JSONFileParser) ParseFile(path string) ([]byte, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("network: read layout file: %w", err)
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("network: %s is not valid JSON", path)
	}
	return doc, nil
}
