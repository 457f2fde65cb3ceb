package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"cyberguard/simulator"
)

func main() {
	dataPath := flag.String("data", "traffic_data.csv", "labelled traffic capture")
	url := flag.String("url", "http://localhost:8000", "prediction service base url")
	mode := flag.String("mode", "random", "random or attack")
	count := flag.Int("count", 1, "number of flows to submit")
	interval := flag.Duration("interval", 500*time.Millisecond, "pause between flows")
	timeout := flag.Duration("timeout", 10*time.Second, "per request timeout")
	seed := flag.Int64("seed", time.Now().UnixNano(), "sampling seed")
	flag.Parse()

	if *mode != "random" && *mode != "attack" {
		log.Fatalf("unknown mode %q", *mode)
	}

	sample, err := simulator.LoadSample(*dataPath)
	if err != nil {
		log.Fatalf("failed to load sample: %v", err)
	}
	log.Printf("traffic sample loaded: %d flows (%d dropped)", len(sample.Rows), sample.Dropped)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := simulator.NewClient(*url, *timeout)
	rng := rand.New(rand.NewSource(*seed))
	threats := 0
	submitted := 0
loop:
	for i := 0; i < *count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				break loop
			case <-time.After(*interval):
			}
		}

		var row simulator.Row
		if *mode == "attack" {
			var err error
			row, err = sample.Attack(rng)
			if errors.Is(err, simulator.ErrNoAttacks) || errors.Is(err, simulator.ErrNoLabel) {
				log.Printf("warning: %v, using random flow", err)
			}
		} else {
			row = sample.Random(rng)
		}

		actual := row.Label
		if actual == "" {
			actual = "Unknown"
		}
		resp := client.Predict(ctx, row.Features)
		submitted++
		switch resp.Prediction {
		case "BENIGN":
			fmt.Printf("SAFE    predicted=%-6s actual=%-6s confidence=%s\n", resp.Prediction, actual, resp.Confidence)
		case "DDoS":
			threats++
			fmt.Printf("THREAT  predicted=%-6s actual=%-6s confidence=%s\n", resp.Prediction, actual, resp.Confidence)
		default:
			details := resp.Details
			if details == "" {
				details = resp.Detail
			}
			fmt.Printf("ERROR   details=%s\n", details)
		}
	}
	log.Printf("submitted %d flows, %d flagged as DDoS", submitted, threats)
}
