package steps

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/combine"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// GenerateParams is the decoded request portion of a generation job payload.
// Strategies defaults to the full registered set when the payload names none.
type GenerateParams struct {
	Strategies []string
	Weights    combine.Weights
	Filter     *strategy.FilterParams
	Search     *strategy.SearchParams
	// MaxResults overrides the configured per-context cap when positive.
	MaxResults int
}

type rawParams struct {
	Strategies []string               `json:"strategies"`
	Weights    map[string]float64     `json:"weights"`
	Filter     *rawFilter             `json:"filter"`
	Search     *strategy.SearchParams `json:"search"`
	MaxResults int                    `json:"max_results"`
}

// rawFilter keeps label_types loosely typed because upstream multi-selects
// deliver either a scalar or a one-element array per entry. Normalization
// happens here, once, before any strategy sees the filter.
type rawFilter struct {
	LabelTypes    []any    `json:"label_types"`
	MinConfidence *float64 `json:"min_confidence"`
	MinDuration   *float64 `json:"min_duration"`
	MaxDuration   *float64 `json:"max_duration"`
	TimeWindow    *float64 `json:"time_window"`
}

// DecodeParams parses the tunable fields out of a generation job payload.
// Invalid label types are rejected up front so the job fails in validate, not
// halfway through a write. Strategy names are kept as given; callers filter
// them through KnownStrategies before scoring.
func DecodeParams(payload datatypes.JSON) (GenerateParams, error) {
	out := GenerateParams{}
	var raw rawParams
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &raw); err != nil {
			return out, fmt.Errorf("decode params: %w", err)
		}
	}

	if len(raw.Strategies) == 0 {
		out.Strategies = strategy.All()
	} else {
		out.Strategies = raw.Strategies
	}

	if len(raw.Weights) > 0 {
		out.Weights = combine.Weights(raw.Weights)
	}

	if raw.Filter != nil {
		f := &strategy.FilterParams{
			MinConfidence: raw.Filter.MinConfidence,
			MinDuration:   raw.Filter.MinDuration,
			MaxDuration:   raw.Filter.MaxDuration,
			TimeWindow:    raw.Filter.TimeWindow,
		}
		for _, v := range raw.Filter.LabelTypes {
			lt, err := strategy.NormalizeLabelType(v)
			if err != nil {
				return out, err
			}
			if !types.ValidLabelType(lt) {
				return out, fmt.Errorf("invalid label type %q", lt)
			}
			f.LabelTypes = append(f.LabelTypes, lt)
		}
		out.Filter = f
	}
	out.Search = raw.Search
	if raw.MaxResults > 0 {
		out.MaxResults = raw.MaxResults
	}

	return out, nil
}

// KnownStrategies drops strategy names with no registered implementation,
// logging each skip. An unknown name contributes zero candidates; it does not
// abort the run.
func KnownStrategies(log *logger.Logger, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := strategy.ByName(name); !ok {
			if log != nil {
				log.Warn("Skipping unknown strategy", "strategy", name)
			}
			continue
		}
		out = append(out, name)
	}
	return out
}
