package strategy

import (
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// passesFilters is the shared media-mode predicate every strategy applies
// before emitting a candidate: label-type allow-list, minimum confidence, and
// duration range.
func passesFilters(f FilterParams, lc types.LabelClip) bool {
	if len(f.LabelTypes) > 0 {
		allowed := false
		for _, t := range f.LabelTypes {
			if t == lc.LabelType {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if f.MinConfidence != nil && lc.Confidence < *f.MinConfidence {
		return false
	}
	dur := lc.End - lc.Start
	if f.MinDuration != nil && dur < *f.MinDuration {
		return false
	}
	if f.MaxDuration != nil && dur > *f.MaxDuration {
		return false
	}
	return true
}
