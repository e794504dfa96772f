package api

import (
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
	"github.com/buildbarn/bb-pagesim/pkg/util"
)

type stepResponse struct {
	Page   reference.PageID   `json:"page"`
	Frames []reference.PageID `json:"frames"`
	Fault  bool               `json:"fault"`
}

type runResponse struct {
	Algorithm string         `json:"algorithm"`
	Frames    int            `json:"frames"`
	Faults    int            `json:"faults"`
	Hits      int            `json:"hits"`
	FaultRate float64        `json:"fault_rate"`
	Steps     []stepResponse `json:"steps"`
}

func newRunResponse(run *simulator.RunResult) *runResponse {
	steps := make([]stepResponse, 0, len(run.Steps))
	for _, step := range run.Steps {
		frames := step.Frames
		if frames == nil {
			frames = []reference.PageID{}
		}
		steps = append(steps, stepResponse{
			Page:   step.Page,
			Frames: frames,
			Fault:  step.Fault,
		})
	}
	return &runResponse{
		Algorithm: run.Policy.String(),
		Frames:    run.Capacity,
		Faults:    run.Faults,
		Hits:      run.Hits,
		FaultRate: run.FaultRate(),
		Steps:     steps,
	}
}

type comparisonResponse struct {
	FIFO           *runResponse   `json:"fifo"`
	LRU            *runResponse   `json:"lru"`
	Predictive     *runResponse   `json:"predictive"`
	Recommendation string         `json:"recommendation"`
	TieBreak       string         `json:"tie_break"`
	AllFaults      map[string]int `json:"all_faults"`

	// Names under which the web frontend reads the predictive
	// result and the recommendation.
	AI               *runResponse `json:"ai"`
	AIRecommendation string       `json:"ai_recommendation"`
}

func newComparisonResponse(comparison *simulator.ComparisonResult) *comparisonResponse {
	predictive := newRunResponse(comparison.Run(eviction.Predictive))
	recommendation := comparison.Recommendation.String()
	return &comparisonResponse{
		FIFO:             newRunResponse(comparison.Run(eviction.FirstInFirstOut)),
		LRU:              newRunResponse(comparison.Run(eviction.LeastRecentlyUsed)),
		Predictive:       predictive,
		Recommendation:   recommendation,
		TieBreak:         simulator.TieBreakRule,
		AllFaults:        comparison.Faults(),
		AI:               predictive,
		AIRecommendation: recommendation,
	}
}

type errorDetails struct {
	Kind    util.ErrorKind `json:"kind,omitempty"`
	Message string         `json:"message"`
}

type errorResponse struct {
	Error errorDetails `json:"error"`
}

type welcomeResponse struct {
	Message    string   `json:"message"`
	Algorithms []string `json:"algorithms"`
}

type algorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
	Compared   []string `json:"compared"`
	Default    string   `json:"default"`
}

func policyNames(policies []eviction.Policy) []string {
	names := make([]string, 0, len(policies))
	for _, policy := range policies {
		names = append(names, policy.String())
	}
	return names
}
