package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"cubefind/internal/logging"
	"cubefind/pkg/catalog"
	"cubefind/pkg/config"
	"cubefind/pkg/pipeline"
	"cubefind/pkg/region"
)

func main() {
	configPath := flag.String("config", "", "YAML parameter file (defaults are used for anything it doesn't set)")
	cubePath := flag.String("cube", "", "Input data cube, overrides the config file's input.cube")
	weightsPath := flag.String("weights", "", "Optional weights cube, overrides input.weights")
	maskOut := flag.String("mask-out", "mask.fits", "Path to write the detection mask")
	catalogOut := flag.String("catalog-out", "catalog.txt", "Path to write the source catalogue")
	flagSpec := flag.String("flag", "", "Semicolon-separated list of flag regions, e.g. \"3,4;0,10,0,10,5,8\"")
	verbose := flag.Bool("verbose", false, "Enable debug-level logging")
	overwrite := flag.Bool("overwrite", false, "Overwrite mask-out if it already exists")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := logging.NewConsole(level)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
	} else {
		cfg = config.DefaultConfig()
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *cubePath != "" {
		cfg.Input.Cube = *cubePath
	}
	if *weightsPath != "" {
		cfg.Input.Weights = *weightsPath
	}
	if cfg.Input.Cube == "" {
		flag.Usage()
		os.Exit(1)
	}

	flags, err := parseFlags(*flagSpec)
	if err != nil {
		log.Fatalf("parsing -flag: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("cubefind: Smooth+Clip source finding over 3-D spectral-line cubes")
	fmt.Println("========================================")

	start := time.Now()
	result, err := pipeline.Run(cfg, flags, logger)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
	elapsed := time.Since(start)

	if err := result.Mask.Save(*maskOut, *overwrite); err != nil {
		log.Fatalf("writing mask to %s: %v", *maskOut, err)
	}

	if err := writeCatalog(*catalogOut, result, *overwrite); err != nil {
		log.Fatalf("writing catalogue to %s: %v", *catalogOut, err)
	}

	fmt.Printf("\nFinished in %.2fs\n", elapsed.Seconds())
	fmt.Printf("Sources found: %d\n", len(result.Sources))
	fmt.Printf("Mask written to:      %s\n", *maskOut)
	fmt.Printf("Catalogue written to: %s\n", *catalogOut)
}

func parseFlags(spec string) ([]region.Flag, error) {
	if spec == "" {
		return nil, nil
	}
	var flags []region.Flag
	for _, part := range splitNonEmpty(spec, ';') {
		f, err := region.ParseFlag(part)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if s[start:i] != "" {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if s[start:] != "" {
		out = append(out, s[start:])
	}
	return out
}

func writeCatalog(path string, result *pipeline.Result, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return catalog.WriteASCII(f, result.Sources, result.Mask)
}
