package youtube

import (
	"context"
	"errors"
	"strings"

	"digest-stack/internal/models"
	"digest-stack/shared/config"
	"digest-stack/shared/logging"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidReference    = errors.New("Invalid video reference")
	ErrNoTranscripts       = errors.New("No transcripts available for this video")
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrVideoUnavailable    = errors.New("video unavailable")
)

// generatedEnglishLabel is recorded when the auto-generated English
// fallback track is used.
const generatedEnglishLabel = "en (auto-generated)"

// CaptionTrack is one language version of a video's captions.
type CaptionTrack struct {
	LanguageCode string
	Name         string
	BaseURL      string
	Generated    bool
}

// CaptionSource lists and downloads caption tracks for a video.
type CaptionSource interface {
	ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error)
	FetchTrack(ctx context.Context, track CaptionTrack) ([]models.Segment, error)
}

type TranscriptFetcher struct {
	source    CaptionSource
	languages []string
	logger    logrus.FieldLogger
}

// NewTranscriptFetcher uses languages as the preference list when a call
// does not pass its own. An empty list falls back to the defaults.
func NewTranscriptFetcher(source CaptionSource, languages []string, logger logrus.FieldLogger) *TranscriptFetcher {
	if len(languages) == 0 {
		languages = config.DefaultLanguages
	}
	return &TranscriptFetcher{
		source:    source,
		languages: append([]string(nil), languages...),
		logger:    logging.OrDiscard(logger),
	}
}

// Fetch resolves ref and returns the best transcript for the preferred
// languages. Failures are reported in the result, never returned.
func (f *TranscriptFetcher) Fetch(ctx context.Context, ref string, langs ...string) models.TranscriptResult {
	if len(langs) == 0 {
		langs = f.languages
	}

	videoID, ok := Resolve(ref)
	if !ok {
		f.logger.WithField("reference", ref).Error("Could not extract video ID")
		return models.TranscriptResult{Error: ErrInvalidReference.Error()}
	}

	log := f.logger.WithField("video_id", videoID)
	log.Info("Fetching transcript")

	tracks, err := f.source.ListTracks(ctx, videoID)
	if err != nil {
		log.WithError(err).Error("Failed to list transcripts")
		return models.TranscriptResult{VideoID: videoID, Error: err.Error()}
	}
	log.WithField("tracks", trackCodes(tracks)).Debug("Available transcripts")

	track, language, ok := selectTrack(tracks, langs)
	if !ok {
		log.Error("No transcripts available")
		return models.TranscriptResult{VideoID: videoID, Error: ErrNoTranscripts.Error()}
	}
	log = log.WithField("language", language)

	segments, err := f.source.FetchTrack(ctx, track)
	if err != nil {
		log.WithError(err).Error("Failed to fetch transcript track")
		return models.TranscriptResult{VideoID: videoID, Error: err.Error()}
	}

	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			texts = append(texts, s.Text)
		}
	}

	result := models.TranscriptResult{
		Success:  true,
		VideoID:  videoID,
		Text:     strings.Join(texts, "\n"),
		Segments: segments,
		Language: language,
	}
	log.WithField("chars", result.LengthChars()).Info("Fetched transcript")
	return result
}

// FetchMany fetches each reference in turn. The result has one entry per
// reference in input order; a failed entry does not stop the rest.
func (f *TranscriptFetcher) FetchMany(ctx context.Context, refs []string, langs ...string) []models.TranscriptResult {
	f.logger.WithField("count", len(refs)).Info("Fetching transcripts")

	results := make([]models.TranscriptResult, 0, len(refs))
	succeeded := 0
	for _, ref := range refs {
		r := f.Fetch(ctx, ref, langs...)
		if r.Success {
			succeeded++
		}
		results = append(results, r)
	}

	f.logger.Infof("Fetched %d/%d transcripts", succeeded, len(refs))
	return results
}

// selectTrack picks a track for the preference list. Within a preferred
// language an authored track beats a generated one. Without a match it falls
// back to generated English, then to the first track listed.
func selectTrack(tracks []CaptionTrack, langs []string) (CaptionTrack, string, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, "", false
	}

	for _, lang := range langs {
		var generated *CaptionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if !tracks[i].Generated {
				return tracks[i], lang, true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, lang, true
		}
	}

	for _, t := range tracks {
		if t.Generated && t.LanguageCode == "en" {
			return t, generatedEnglishLabel, true
		}
	}

	return tracks[0], tracks[0].LanguageCode, true
}

func trackCodes(tracks []CaptionTrack) []string {
	codes := make([]string, len(tracks))
	for i, t := range tracks {
		codes[i] = t.LanguageCode
		if t.Generated {
			codes[i] += "(asr)"
		}
	}
	return codes
}
