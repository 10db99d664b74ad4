package labelimport

import (
	"math"
	"testing"
	"time"

	videointelligencepb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/protobuf/types/known/durationpb"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

func d(sec float64) *durationpb.Duration {
	return durationpb.New(time.Duration(sec * float64(time.Second)))
}

func seg(start, end float64) *videointelligencepb.VideoSegment {
	return &videointelligencepb.VideoSegment{StartTimeOffset: d(start), EndTimeOffset: d(end)}
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestConvert_Objects(t *testing.T) {
	results := &videointelligencepb.VideoAnnotationResults{
		ObjectAnnotations: []*videointelligencepb.ObjectTrackingAnnotation{
			{
				Entity:     &videointelligencepb.Entity{Description: "dog"},
				Confidence: 0.91,
				TrackInfo: &videointelligencepb.ObjectTrackingAnnotation_Segment{
					Segment: seg(2.5, 7.25),
				},
			},
			// Track-id arm of the oneof: no segment, must be skipped.
			{
				Entity:    &videointelligencepb.Entity{Description: "cat"},
				TrackInfo: &videointelligencepb.ObjectTrackingAnnotation_TrackId{TrackId: 4},
			},
		},
	}
	out := convert(results)
	if len(out) != 1 {
		t.Fatalf("got %d clips, want 1", len(out))
	}
	c := out[0]
	if c.Clip.LabelType != types.LabelTypeObject {
		t.Fatalf("label type %q", c.Clip.LabelType)
	}
	approx(t, c.Clip.Start, 2.5)
	approx(t, c.Clip.End, 7.25)
	approx(t, c.Clip.Confidence, 0.91)
	if c.EntityName != "dog" || c.EntityKind != types.LabelTypeObject {
		t.Fatalf("entity %q kind %q", c.EntityName, c.EntityKind)
	}
}

func TestConvert_ShotsFullConfidence(t *testing.T) {
	results := &videointelligencepb.VideoAnnotationResults{
		ShotAnnotations: []*videointelligencepb.VideoSegment{
			seg(0, 4.2),
			seg(4.2, 9.0),
			seg(9.0, 9.0), // zero-length, dropped
		},
	}
	out := convert(results)
	if len(out) != 2 {
		t.Fatalf("got %d clips, want 2", len(out))
	}
	for _, c := range out {
		if c.Clip.LabelType != types.LabelTypeShot {
			t.Fatalf("label type %q", c.Clip.LabelType)
		}
		if c.Clip.Confidence != 1.0 {
			t.Fatalf("shot confidence %v, want 1.0", c.Clip.Confidence)
		}
		if c.EntityName != "" {
			t.Fatalf("shots must not link entities, got %q", c.EntityName)
		}
	}
}

func TestConvert_PersonTracks(t *testing.T) {
	results := &videointelligencepb.VideoAnnotationResults{
		PersonDetectionAnnotations: []*videointelligencepb.PersonDetectionAnnotation{
			{
				Tracks: []*videointelligencepb.Track{
					{Segment: seg(1, 3), Confidence: 0.8},
					{Segment: seg(10, 12.5), Confidence: 0.65},
					{Segment: nil},
				},
			},
		},
	}
	out := convert(results)
	if len(out) != 2 {
		t.Fatalf("got %d clips, want 2", len(out))
	}
	approx(t, out[1].Clip.Start, 10)
	approx(t, out[1].Clip.End, 12.5)
	approx(t, out[1].Clip.Confidence, 0.65)
}

func TestConvert_SpeechFromWordTimes(t *testing.T) {
	results := &videointelligencepb.VideoAnnotationResults{
		SpeechTranscriptions: []*videointelligencepb.SpeechTranscription{
			{
				Alternatives: []*videointelligencepb.SpeechRecognitionAlternative{
					{
						Transcript: "hello world",
						Confidence: 0.77,
						Words: []*videointelligencepb.WordInfo{
							{Word: "hello", StartTime: d(1.0), EndTime: d(1.5)},
							{Word: "world", StartTime: d(1.5), EndTime: d(2.25)},
						},
					},
				},
			},
			// No word offsets: bounds cannot be derived, dropped.
			{
				Alternatives: []*videointelligencepb.SpeechRecognitionAlternative{
					{Transcript: "no words", Confidence: 0.5},
				},
			},
		},
	}
	out := convert(results)
	if len(out) != 1 {
		t.Fatalf("got %d clips, want 1", len(out))
	}
	c := out[0]
	if c.Clip.LabelType != types.LabelTypeSpeech {
		t.Fatalf("label type %q", c.Clip.LabelType)
	}
	approx(t, c.Clip.Start, 1.0)
	approx(t, c.Clip.End, 2.25)
	approx(t, c.Clip.Confidence, 0.77)
	if string(c.Clip.Payload) == "" {
		t.Fatalf("speech clip must carry the transcript payload")
	}
}

func TestConvert_NilResults(t *testing.T) {
	if out := convert(nil); len(out) != 0 {
		t.Fatalf("nil results must convert to nothing, got %d", len(out))
	}
}
