package configuration

import (
	"github.com/buildbarn/bb-pagesim/pkg/global"
	bb_http "github.com/buildbarn/bb-pagesim/pkg/http"
)

// ApplicationConfiguration is the configuration of the bb_pagesim
// service. It is typically written in Jsonnet.
type ApplicationConfiguration struct {
	// Options that apply to the process as a whole.
	Global *global.Configuration `json:"global"`
	// Web servers that expose the simulation API.
	HTTPServers []bb_http.ServerConfiguration `json:"httpServers"`
	// Origins from which browsers may call the API, such as the
	// development server of a web UI. "*" permits any origin.
	AllowedOrigins []string `json:"allowedOrigins"`
	// How textual reference sequences are parsed.
	Parser *ParserConfiguration `json:"parser"`
	// Largest number of frames that may be requested. Zero means
	// there is no limit.
	MaximumFrames int `json:"maximumFrames"`
	// Number of references the Markov policy predicts when picking
	// a victim. Defaults to 5.
	MarkovLookahead int `json:"markovLookahead"`
	// Expose the number of operations against eviction sets through
	// Prometheus.
	EnableEvictionSetMetrics bool `json:"enableEvictionSetMetrics"`
	// Cache results of recent simulation runs. Disabled if absent.
	ResultCache *ResultCacheConfiguration `json:"resultCache"`
}

// ParserConfiguration controls how textual reference sequences are
// split and converted to page identifiers.
type ParserConfiguration struct {
	// String separating references. Defaults to ",". Set to " " or
	// "" to split on whitespace.
	Delimiter *string `json:"delimiter"`
	// Either "integer" (default) or "opaque".
	Identifiers string `json:"identifiers"`
	// Largest number of references in a sequence. Zero means there
	// is no limit.
	MaximumLength int `json:"maximumLength"`
}

// ResultCacheConfiguration contains the size of the result cache.
type ResultCacheConfiguration struct {
	// Total number of steps of all cached results.
	MaximumSteps int64 `json:"maximumSteps"`
}
