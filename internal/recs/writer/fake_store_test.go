package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// fakeMediaStore is an in-memory MediaStore that applies column-style updates
// the same way the gorm repo would.
type fakeMediaStore struct {
	rows map[uuid.UUID]*types.MediaRecommendation
	ops  []string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{rows: map[uuid.UUID]*types.MediaRecommendation{}}
}

func (s *fakeMediaStore) GetFirst(_ context.Context, f MediaFilter) (*types.MediaRecommendation, error) {
	for _, r := range s.rows {
		if r.QueryHash != f.QueryHash {
			continue
		}
		if f.Start != nil && r.Start != *f.Start {
			continue
		}
		if f.End != nil && r.End != *f.End {
			continue
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeMediaStore) ListByQueryHash(_ context.Context, queryHash string) ([]*types.MediaRecommendation, error) {
	var out []*types.MediaRecommendation
	for _, r := range s.rows {
		if r.QueryHash == queryHash {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeMediaStore) Create(_ context.Context, rec *types.MediaRecommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	cp := *rec
	s.rows[rec.ID] = &cp
	s.ops = append(s.ops, "create")
	return nil
}

func (s *fakeMediaStore) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	r, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("no row %s", id)
	}
	applyMediaUpdates(r, updates)
	s.ops = append(s.ops, "update")
	return nil
}

func (s *fakeMediaStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("no row %s", id)
	}
	delete(s.rows, id)
	s.ops = append(s.ops, "delete")
	return nil
}

func applyMediaUpdates(r *types.MediaRecommendation, updates map[string]any) {
	for col, v := range updates {
		switch col {
		case "score":
			r.Score = v.(float64)
		case "rank":
			r.Rank = v.(int)
		case "reason":
			r.Reason = v.(string)
		case "reason_data":
			r.ReasonData = v.(datatypes.JSON)
		case "strategy":
			r.Strategy = v.(string)
		case "version":
			r.Version = v.(int)
		case "media_clip_ref":
			if v == nil {
				r.MediaClipRef = nil
			} else {
				r.MediaClipRef = v.(*uuid.UUID)
			}
		default:
			panic(fmt.Sprintf("unexpected column %q", col))
		}
	}
}

type fakeTimelineStore struct {
	rows map[uuid.UUID]*types.TimelineRecommendation
	ops  []string
}

func newFakeTimelineStore() *fakeTimelineStore {
	return &fakeTimelineStore{rows: map[uuid.UUID]*types.TimelineRecommendation{}}
}

func (s *fakeTimelineStore) GetFirst(_ context.Context, f TimelineFilter) (*types.TimelineRecommendation, error) {
	for _, r := range s.rows {
		if r.QueryHash != f.QueryHash {
			continue
		}
		if f.MediaClipRef != nil && r.MediaClipRef != *f.MediaClipRef {
			continue
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeTimelineStore) ListByQueryHash(_ context.Context, queryHash string) ([]*types.TimelineRecommendation, error) {
	var out []*types.TimelineRecommendation
	for _, r := range s.rows {
		if r.QueryHash == queryHash {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeTimelineStore) Create(_ context.Context, rec *types.TimelineRecommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	cp := *rec
	s.rows[rec.ID] = &cp
	s.ops = append(s.ops, "create")
	return nil
}

func (s *fakeTimelineStore) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	r, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("no row %s", id)
	}
	for col, v := range updates {
		switch col {
		case "score":
			r.Score = v.(float64)
		case "rank":
			r.Rank = v.(int)
		case "reason":
			r.Reason = v.(string)
		case "reason_data":
			r.ReasonData = v.(datatypes.JSON)
		case "strategy":
			r.Strategy = v.(string)
		case "version":
			r.Version = v.(int)
		case "target_mode":
			r.TargetMode = v.(string)
		case "seed_clip_ref":
			if v == nil {
				r.SeedClipRef = nil
			} else {
				r.SeedClipRef = v.(*uuid.UUID)
			}
		case "accepted_at":
			if v == nil {
				r.AcceptedAt = nil
			} else {
				r.AcceptedAt = v.(*time.Time)
			}
		default:
			panic(fmt.Sprintf("unexpected column %q", col))
		}
	}
	s.ops = append(s.ops, "update")
	return nil
}

func (s *fakeTimelineStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("no row %s", id)
	}
	delete(s.rows, id)
	s.ops = append(s.ops, "delete")
	return nil
}
