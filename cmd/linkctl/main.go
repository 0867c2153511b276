package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	configPath := flag.String("config", "", "path to the simulator config.toml")
	flag.Parse()

	cfg := defaultSimConfig()
	if *configPath != "" {
		loaded, err := loadSimConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "linkctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	sim, err := newSimulator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkctl: %v\n", err)
		os.Exit(1)
	}
	if err := sim.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "linkctl: %v\n", err)
		os.Exit(1)
	}
}
