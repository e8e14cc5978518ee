package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/components/settingsapi"
)

func main() {
	outputPath := flag.String("output", "web/openapi.json", "output path for the JSON API description")
	flag.Parse()

	doc, err := settingsapi.LoadOpenAPI(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load API description: %v\n", err)
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode API description: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, append(payload, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("API description written to %s\n", *outputPath)
}
