package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/buildbarn/bb-pagesim/pkg/api"
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/random"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
	"github.com/buildbarn/bb-pagesim/pkg/util"
)

const compareAll = "all"

func mustParse(delimiter string, identifiers reference.IdentifierKind, text string) reference.Sequence {
	sequence, err := reference.NewParser(delimiter, identifiers, 0).Parse(text)
	if err != nil {
		log.Fatal(util.StatusWrap(err, "Invalid reference string"))
	}
	return sequence
}

func main() {
	var (
		frames      = flag.Int("frames", 3, "Number of page frames")
		algorithm   = flag.String("algorithm", eviction.FirstInFirstOut.String(), "Replacement policy (fifo, lru, predictive, markov), or \"all\" to compare fifo, lru and predictive")
		delimiter   = flag.String("delimiter", ",", "String separating references. Use \" \" to split on whitespace")
		identifiers = flag.String("identifiers", "integer", "Kind of page identifiers (integer or opaque)")
		lookahead   = flag.Int("markov-lookahead", eviction.DefaultMarkovLookahead, "Number of references predicted by the markov policy")

		randomLength     = flag.Int("random-length", 0, "Generate a random reference string of this length instead of reading one")
		randomPages      = flag.Int("random-pages", 10, "Number of distinct pages in a random reference string")
		randomLocality   = flag.Float64("random-locality", 0, "Probability that a random reference hits the working set")
		randomWorkingSet = flag.Int("random-working-set", 3, "Size of the working set of a random reference string")
		randomSeed       = flag.Uint64("random-seed", 0, "Seed for generating random reference strings. Zero picks a random seed")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pagesim [flags] [reference string]\n\nThe reference string is read from standard input if not provided.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)

	identifierKind, err := reference.ParseIdentifierKind(*identifiers)
	if err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(*delimiter) == "" {
		*delimiter = ""
	}

	var sequence reference.Sequence
	switch {
	case *randomLength > 0:
		if flag.NArg() != 0 {
			flag.Usage()
			os.Exit(2)
		}
		generator := random.NewFastSingleThreadedGenerator()
		if *randomSeed != 0 {
			generator = random.NewSeededSingleThreadedGenerator(*randomSeed, 0)
		}
		sequence, err = reference.GenerateSequence(generator, reference.GeneratorOptions{
			Length:         *randomLength,
			Pages:          *randomPages,
			Locality:       *randomLocality,
			WorkingSetSize: *randomWorkingSet,
		})
		if err != nil {
			log.Fatal(util.StatusWrap(err, "Failed to generate reference string"))
		}
		separator := *delimiter
		if separator == "" {
			separator = " "
		}
		fmt.Printf("Reference string: %s\n\n", sequence.Join(separator))
	case flag.NArg() == 0:
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal("Failed to read reference string from standard input: ", err)
		}
		sequence = mustParse(*delimiter, identifierKind, string(input))
	case flag.NArg() == 1:
		sequence = mustParse(*delimiter, identifierKind, flag.Arg(0))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if *lookahead <= 0 {
		log.Fatalf("Markov lookahead must be positive, while %d was provided", *lookahead)
	}

	ctx := context.Background()
	runner := simulator.NewLocalRunner(*lookahead, false)
	if strings.EqualFold(strings.TrimSpace(*algorithm), compareAll) {
		comparison, err := simulator.NewComparer(runner).Compare(ctx, sequence, *frames)
		if err != nil {
			log.Fatal(err)
		}
		if err := api.WriteComparisonTable(os.Stdout, comparison); err != nil {
			log.Fatal("Failed to write output: ", err)
		}
		return
	}

	policy, err := eviction.ParsePolicy(*algorithm)
	if err != nil {
		log.Fatal(err)
	}
	run, err := runner.Run(ctx, sequence, *frames, policy)
	if err != nil {
		log.Fatal(err)
	}
	if err := api.WriteRunTable(os.Stdout, run); err != nil {
		log.Fatal("Failed to write output: ", err)
	}
}
