// Command preprocess inspects a graph artifact produced by the offline
// pipeline (spec.md §1's "external collaborator"): it validates the binary
// shape invariants (pkg/graphstore.Validate) and reports weakly-connected
// component structure of the walk layer, so a bad export is caught before
// it is deployed to cmd/server.
package main

import (
	"flag"
	"log"

	"github.com/azybler/floodfill_pt/pkg/graphstore"
)

func main() {
	path := flag.String("graph", "", "path to a graph_<year>.bin artifact to inspect")
	flag.Parse()

	if *path == "" {
		log.Fatal("-graph is required")
	}

	store, err := graphstore.ReadBinary(*path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *path, err)
	}
	log.Printf("loaded %s: %d nodes", *path, store.NumNodes())

	report := graphstore.AnalyzeWalkComponents(store)
	log.Printf("walk-layer components: %d total, largest has %d nodes (%.2f%% of graph)",
		report.NumComponents, report.LargestComponent, report.LargestComponentFrac*100)

	if report.NumComponents > 1 {
		log.Printf("warning: walk layer is not fully connected; %d disconnected components found", report.NumComponents-1)
	}
}
