package activity

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	// DefaultMarkerToken identifies status updates posted by pwm
	DefaultMarkerToken = "pwm:work-end"
	// MarkerVersion is the marker format written by this build
	MarkerVersion = "1.0.0"
	// supportedMarkers bounds the marker formats the tracker understands
	supportedMarkers = "< 2.0.0"
)

// legacyMarkerVersion is assumed for markers that carry no version
var legacyMarkerVersion = semver.MustParse("0.0.0")

// Message is a prior status message with its source-system timestamp
type Message struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}

// UpdateMarker is the authoritative marker found in a status thread
type UpdateMarker struct {
	Timestamp time.Time
	Raw       string
	MessageID int64
	Version   *semver.Version
}

// FormatMarker renders the hidden annotation a posted status update embeds
func FormatMarker(token, version string) string {
	if version == "" {
		return fmt.Sprintf("<!-- %s -->", token)
	}
	return fmt.Sprintf("<!-- %s v%s -->", token, version)
}

// markerPattern matches "<!-- token -->" and "<!-- token v1.2.3 -->"
func markerPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`<!--\s*` + regexp.QuoteMeta(token) + `(?:\s+v?([0-9][0-9A-Za-z.+\-]*))?\s*-->`)
}

// LastUpdate returns the marker of the most recent message carrying token.
// Equal timestamps are resolved in favour of the larger message ID.
// The boolean is false when no message carries a supported marker.
func LastUpdate(messages []Message, token string) (UpdateMarker, bool) {
	if strings.TrimSpace(token) == "" {
		return UpdateMarker{}, false
	}

	pattern := markerPattern(token)
	constraint, err := semver.NewConstraint(supportedMarkers)
	if err != nil {
		panic(err)
	}

	var (
		best  UpdateMarker
		found bool
	)
	for _, msg := range messages {
		match := pattern.FindStringSubmatch(msg.Body)
		if match == nil {
			continue
		}

		version := legacyMarkerVersion
		if match[1] != "" {
			v, err := semver.NewVersion(match[1])
			if err != nil {
				slog.Debug("Skipping marker with unparseable version", "message_id", msg.ID, "version", match[1])
				continue
			}
			version = v
		}
		if !constraint.Check(version) {
			slog.Debug("Skipping unsupported marker version", "message_id", msg.ID, "version", version.String())
			continue
		}

		candidate := UpdateMarker{
			Timestamp: msg.CreatedAt,
			Raw:       match[0],
			MessageID: msg.ID,
			Version:   version,
		}
		if !found || newerMarker(candidate, best) {
			best = candidate
			found = true
		}
	}

	return best, found
}

func newerMarker(a, b UpdateMarker) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.MessageID > b.MessageID
}

// StripMarkers removes every marker for token from body
func StripMarkers(body, token string) string {
	return strings.TrimSpace(markerPattern(token).ReplaceAllString(body, ""))
}
