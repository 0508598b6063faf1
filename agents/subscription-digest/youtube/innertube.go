package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"

	"digest-stack/internal/models"
)

const (
	defaultInnertubeURL = "https://www.youtube.com/youtubei/v1/player"
	androidVersion      = "20.10.38"
	androidUserAgent    = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"
)

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Name         struct {
					SimpleText string `json:"simpleText"`
					Runs       []struct {
						Text string `json:"text"`
					} `json:"runs"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// InnertubeSource reads caption tracks through the ANDROID Innertube player
// endpoint and downloads them as timedtext XML.
type InnertubeSource struct {
	client    *http.Client
	playerURL string
}

// NewInnertubeSource returns a source using client, which carries the
// per-request timeout.
func NewInnertubeSource(client *http.Client) *InnertubeSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &InnertubeSource{client: client, playerURL: defaultInnertubeURL}
}

func (s *InnertubeSource) ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	body, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{Client: playerClient{
			ClientName:        "ANDROID",
			ClientVersion:     androidVersion,
			AndroidSdkVersion: 30,
			Hl:                "en",
			Gl:                "US",
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.playerURL+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube player request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube player returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var player playerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 3*1024*1024)).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	if ps := player.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		if ps.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, ps.Reason)
		}
		return nil, fmt.Errorf("%w (%s)", ErrVideoUnavailable, ps.Status)
	}
	if player.Captions == nil {
		return nil, ErrTranscriptsDisabled
	}

	raw := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]CaptionTrack, 0, len(raw))
	for _, t := range raw {
		name := t.Name.SimpleText
		if name == "" && len(t.Name.Runs) > 0 {
			name = t.Name.Runs[0].Text
		}
		tracks = append(tracks, CaptionTrack{
			LanguageCode: t.LanguageCode,
			Name:         name,
			BaseURL:      t.BaseURL,
			Generated:    t.Kind == "asr",
		})
	}
	return tracks, nil
}

func (s *InnertubeSource) FetchTrack(ctx context.Context, track CaptionTrack) ([]models.Segment, error) {
	if track.BaseURL == "" {
		return nil, fmt.Errorf("caption track %s has no URL", track.LanguageCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", androidUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read timedtext: %w", err)
	}
	return parseTimedText(data)
}

func parseTimedText(data []byte) ([]models.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]models.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Entities arrive double-escaped, e.g. &amp;#39; for an apostrophe.
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, models.Segment{Start: start, Duration: dur, Text: text})
	}
	return segments, nil
}
