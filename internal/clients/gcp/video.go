package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	videointelligencepb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

// Video runs the Video Intelligence annotation features this system ingests:
// object tracking, shot change detection, person detection, and speech
// transcription.
type Video interface {
	AnnotateVideoGCS(ctx context.Context, gcsURI string, cfg VideoConfig) (*videointelligencepb.VideoAnnotationResults, error)
	Close() error
}

type VideoConfig struct {
	LanguageCode string // speech transcription language, default en-US

	DisableObjectTracking      bool
	DisableShotChange          bool
	DisablePersonDetection     bool
	DisableSpeechTranscription bool
}

type videoService struct {
	log        *logger.Logger
	client     *videointelligence.Client
	maxRetries int
}

func NewVideo(log *logger.Logger) (Video, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	vlog := log.With("service", "gcp.Video")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}

	return &videoService{
		log:        vlog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *videoService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *videoService) AnnotateVideoGCS(ctx context.Context, gcsURI string, cfg VideoConfig) (*videointelligencepb.VideoAnnotationResults, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := buildAnnotateRequest(gcsURI, cfg)
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("no annotation features enabled")
	}

	resp, err := s.retryAnnotate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("videointelligence annotate(gcs): %w", err)
	}
	if resp == nil || len(resp.AnnotationResults) == 0 {
		return nil, fmt.Errorf("empty annotation response for %s", gcsURI)
	}
	return resp.AnnotationResults[0], nil
}

func buildAnnotateRequest(gcsURI string, cfg VideoConfig) *videointelligencepb.AnnotateVideoRequest {
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en-US"
	}

	req := &videointelligencepb.AnnotateVideoRequest{
		InputUri:     gcsURI,
		VideoContext: &videointelligencepb.VideoContext{},
	}
	if !cfg.DisableObjectTracking {
		req.Features = append(req.Features, videointelligencepb.Feature_OBJECT_TRACKING)
	}
	if !cfg.DisableShotChange {
		req.Features = append(req.Features, videointelligencepb.Feature_SHOT_CHANGE_DETECTION)
	}
	if !cfg.DisablePersonDetection {
		req.Features = append(req.Features, videointelligencepb.Feature_PERSON_DETECTION)
		req.VideoContext.PersonDetectionConfig = &videointelligencepb.PersonDetectionConfig{
			IncludeBoundingBoxes: false,
		}
	}
	if !cfg.DisableSpeechTranscription {
		req.Features = append(req.Features, videointelligencepb.Feature_SPEECH_TRANSCRIPTION)
		req.VideoContext.SpeechTranscriptionConfig = &videointelligencepb.SpeechTranscriptionConfig{
			LanguageCode:               lang,
			EnableAutomaticPunctuation: true,
		}
	}
	return req
}

func (s *videoService) retryAnnotate(ctx context.Context, req *videointelligencepb.AnnotateVideoRequest) (*videointelligencepb.AnnotateVideoResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		op, err := s.client.AnnotateVideo(ctx, req)
		if err == nil {
			var resp *videointelligencepb.AnnotateVideoResponse
			resp, err = op.Wait(ctx)
			if err == nil {
				return resp, nil
			}
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("AnnotateVideo retrying", "attempt", attempt+1, "error", err)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
