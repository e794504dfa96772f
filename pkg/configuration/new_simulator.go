package configuration

import (
	"strings"

	"github.com/buildbarn/bb-pagesim/pkg/clock"
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewParserFromConfiguration creates a reference sequence parser. A
// nil configuration yields the default parser, which splits on commas
// and accepts integer page identifiers.
func NewParserFromConfiguration(configuration *ParserConfiguration) (*reference.Parser, error) {
	if configuration == nil {
		return reference.DefaultParser, nil
	}
	delimiter := reference.DefaultParser.Delimiter()
	if d := configuration.Delimiter; d != nil {
		delimiter = *d
		if strings.TrimSpace(delimiter) == "" {
			delimiter = ""
		}
	}
	identifiers, err := reference.ParseIdentifierKind(configuration.Identifiers)
	if err != nil {
		return nil, util.StatusWrap(err, "Invalid identifiers")
	}
	if configuration.MaximumLength < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Maximum length must be non-negative, while %d was provided", configuration.MaximumLength)
	}
	return reference.NewParser(delimiter, identifiers, configuration.MaximumLength), nil
}

// NewRunnerAndComparerFromConfiguration creates the Runner and Comparer
// that perform simulations, decorated with metrics, tracing and
// caching as requested.
func NewRunnerAndComparerFromConfiguration(configuration *ApplicationConfiguration, tracerProvider trace.TracerProvider) (simulator.Runner, simulator.Comparer, error) {
	markovLookahead := configuration.MarkovLookahead
	if markovLookahead == 0 {
		markovLookahead = eviction.DefaultMarkovLookahead
	} else if markovLookahead < 0 {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Markov lookahead must be positive, while %d was provided", markovLookahead)
	}
	if configuration.MaximumFrames < 0 {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Maximum number of frames must be non-negative, while %d was provided", configuration.MaximumFrames)
	}

	runner := simulator.NewLocalRunner(markovLookahead, configuration.EnableEvictionSetMetrics)
	runner = simulator.NewMetricsRunner(runner, clock.SystemClock, "local")
	if cacheConfiguration := configuration.ResultCache; cacheConfiguration != nil {
		if cacheConfiguration.MaximumSteps <= 0 {
			return nil, nil, status.Errorf(codes.InvalidArgument, "Result cache size must be positive, while %d steps were provided", cacheConfiguration.MaximumSteps)
		}
		cachingRunner, err := simulator.NewCachingRunner(runner, cacheConfiguration.MaximumSteps)
		if err != nil {
			return nil, nil, err
		}
		runner = cachingRunner
	}
	runner = simulator.NewTracingRunner(runner, tracerProvider)

	comparer := simulator.NewTracingComparer(simulator.NewComparer(runner), tracerProvider)
	return runner, comparer, nil
}
