// Command sentinel-scan analyzes a batch of communications offline.
//
//	sentinel-scan items.json
//	cat items.json | sentinel-scan
//	sentinel-scan -samples -type voice
//
// Input is a JSON array of batch items; output is {"results": [...]}.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/lexicon"
	"github.com/scamwatch/sentinel/internal/models"
	"github.com/scamwatch/sentinel/internal/samples"
)

func main() {
	var (
		useSamples  = flag.Bool("samples", false, "analyze the built-in sample corpora instead of input")
		sampleType  = flag.String("type", "all", "sample corpus with -samples: text, voice, video or all")
		lexiconPath = flag.String("lexicon", "", "optional YAML lexicon file")
		workers     = flag.Int("workers", 4, "concurrency (>=1)")
		pretty      = flag.Bool("pretty", false, "indent output")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	lex := lexicon.Default()
	if *lexiconPath != "" {
		var err error
		if lex, err = lexicon.Load(*lexiconPath); err != nil {
			log.Fatal().Err(err).Msg("lexicon")
		}
	}
	opts := fraud.DefaultOptions()
	opts.Workers = *workers
	engine := fraud.NewEngine(lex, opts)

	var entries []models.BatchEntry
	if *useSamples {
		set, err := samples.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("samples")
		}
		entries = engine.AnalyzeBatch(samples.BatchItems(set.Normalize(samples.ParseKind(*sampleType))))
	} else {
		items, err := readItems(flag.Arg(0))
		if err != nil {
			log.Fatal().Err(err).Msg("input")
		}
		entries = engine.AnalyzeRawBatch(items)
	}
	if entries == nil {
		entries = []models.BatchEntry{}
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(models.BatchResponse{Results: entries}); err != nil {
		log.Fatal().Err(err).Msg("output")
	}
}

// readItems reads a JSON array from path, or stdin when path is empty or "-".
func readItems(path string) ([]json.RawMessage, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("expected a JSON array of items: %w", err)
	}
	return items, nil
}
