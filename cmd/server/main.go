package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/azybler/floodfill_pt/pkg/api"
	"github.com/azybler/floodfill_pt/pkg/decay"
	"github.com/azybler/floodfill_pt/pkg/graphstore"
	"github.com/azybler/floodfill_pt/pkg/metrics"
)

func main() {
	graphDir := flag.String("graph-dir", "./data/graphs", "directory of per-year graph artifacts (graph_<year>.bin)")
	decayPath := flag.String("decay", "./data/decay.bin", "path to the decay table artifact")
	addr := flag.String("addr", "127.0.0.1:7328", "listen address")
	defaultYear := flag.Int("default-year", 2022, "year used when /get_node_id_count/ omits ?year=")
	maxBodyMiB := flag.Int64("max-body-mib", 50, "POST body cap in MiB")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	log.Printf("loading decay tables from %s...", *decayPath)
	decayStore, err := decay.LoadFile(*decayPath)
	if err != nil {
		log.Fatalf("failed to load decay tables: %v", err)
	}

	graphs := graphstore.NewCache(*graphDir)
	log.Printf("warming graph artifact for default year %d...", *defaultYear)
	base, err := graphs.Get(*defaultYear)
	if err != nil {
		log.Fatalf("failed to load default-year graph: %v", err)
	}
	log.Printf("loaded: %d nodes", base.NumNodes())

	reg := metrics.NewRegistry()
	reg.SetGraphSize(strconv.Itoa(*defaultYear), int(base.NumNodes()), countWalkEdges(base), countPTEdges(base))
	reg.SetYearsLoaded(len(graphs.Years()))

	log.Printf("ready in %s", time.Since(start).Round(time.Millisecond))

	coord := api.NewCoordinator(graphs, decayStore, reg)
	handlers := api.NewHandlers(coord, reg, *defaultYear)

	cfg := api.DefaultConfig(*addr)
	cfg.MaxBodyBytes = *maxBodyMiB * 1024 * 1024
	cfg.CORSOrigin = *corsOrigin

	srv := api.NewServer(cfg, handlers, reg)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}

func countWalkEdges(s *graphstore.Store) int {
	n := 0
	for _, adj := range s.Walk {
		if len(adj) > 0 {
			n += len(adj) - 1
		}
	}
	return n
}

func countPTEdges(s *graphstore.Store) int {
	n := 0
	for _, adj := range s.PT {
		if len(adj) > 0 {
			n += len(adj) - 1
		}
	}
	return n
}
