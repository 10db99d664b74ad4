package labelimport

import (
	"encoding/json"
	"strings"

	videointelligencepb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/protobuf/types/known/durationpb"
	"gorm.io/datatypes"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// pendingClip is a label clip plus the entity it should be linked to once the
// entity row exists. EntityName empty means no entity link.
type pendingClip struct {
	Clip       types.LabelClip
	EntityName string
	EntityKind string
}

// convert flattens one asset's annotation results into label clip rows.
// Offsets become float seconds; zero-length and reversed segments are dropped.
func convert(results *videointelligencepb.VideoAnnotationResults) []pendingClip {
	if results == nil {
		return nil
	}
	var out []pendingClip
	out = append(out, convertObjects(results.ObjectAnnotations)...)
	out = append(out, convertShots(results.ShotAnnotations)...)
	out = append(out, convertPersons(results.PersonDetectionAnnotations)...)
	out = append(out, convertSpeech(results.SpeechTranscriptions)...)
	return out
}

func convertObjects(anns []*videointelligencepb.ObjectTrackingAnnotation) []pendingClip {
	var out []pendingClip
	for _, ann := range anns {
		if ann == nil {
			continue
		}
		// Segment is one arm of the track_info oneof; streaming results carry
		// a track id instead and are skipped.
		start, end, ok := segmentBounds(ann.GetSegment())
		if !ok {
			continue
		}
		name := ""
		if ann.Entity != nil {
			name = strings.TrimSpace(ann.Entity.Description)
		}
		out = append(out, pendingClip{
			Clip: types.LabelClip{
				LabelType:  types.LabelTypeObject,
				Start:      start,
				End:        end,
				Confidence: float64(ann.Confidence),
				Payload:    marshalPayload(map[string]any{"description": name}),
			},
			EntityName: name,
			EntityKind: types.LabelTypeObject,
		})
	}
	return out
}

// Shot changes carry no confidence of their own; a detected boundary is taken
// at full confidence.
func convertShots(anns []*videointelligencepb.VideoSegment) []pendingClip {
	var out []pendingClip
	for _, seg := range anns {
		start, end, ok := segmentBounds(seg)
		if !ok {
			continue
		}
		out = append(out, pendingClip{
			Clip: types.LabelClip{
				LabelType:  types.LabelTypeShot,
				Start:      start,
				End:        end,
				Confidence: 1.0,
			},
		})
	}
	return out
}

func convertPersons(anns []*videointelligencepb.PersonDetectionAnnotation) []pendingClip {
	var out []pendingClip
	for _, ann := range anns {
		if ann == nil {
			continue
		}
		for _, track := range ann.Tracks {
			if track == nil || track.Segment == nil {
				continue
			}
			start, end, ok := segmentBounds(track.Segment)
			if !ok {
				continue
			}
			out = append(out, pendingClip{
				Clip: types.LabelClip{
					LabelType:  types.LabelTypePerson,
					Start:      start,
					End:        end,
					Confidence: float64(track.Confidence),
				},
			})
		}
	}
	return out
}

func convertSpeech(anns []*videointelligencepb.SpeechTranscription) []pendingClip {
	var out []pendingClip
	for _, tr := range anns {
		if tr == nil || len(tr.Alternatives) == 0 || tr.Alternatives[0] == nil {
			continue
		}
		alt := tr.Alternatives[0]
		text := strings.TrimSpace(alt.Transcript)
		if text == "" || len(alt.Words) == 0 {
			continue
		}
		start := durToSec(alt.Words[0].StartTime)
		end := durToSec(alt.Words[len(alt.Words)-1].EndTime)
		if end <= start {
			continue
		}
		out = append(out, pendingClip{
			Clip: types.LabelClip{
				LabelType:  types.LabelTypeSpeech,
				Start:      start,
				End:        end,
				Confidence: float64(alt.Confidence),
				Payload:    marshalPayload(map[string]any{"transcript": text}),
			},
		})
	}
	return out
}

func segmentBounds(seg *videointelligencepb.VideoSegment) (float64, float64, bool) {
	if seg == nil {
		return 0, 0, false
	}
	start := durToSec(seg.StartTimeOffset)
	end := durToSec(seg.EndTimeOffset)
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func marshalPayload(m map[string]any) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
