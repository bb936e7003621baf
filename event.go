package transitsync

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Event is a calendar event to plan transit around.
type Event struct {
	Summary     string
	Location    string
	Start       time.Time // zero when unknown
	End         time.Time // zero when unknown
	Description string
}

// Wire format of the events file: Google-Calendar-shaped JSON objects.
type wireEvent struct {
	Summary     string        `json:"summary"`
	Location    string        `json:"location"`
	Start       *wireDateTime `json:"start"`
	End         *wireDateTime `json:"end"`
	Description string        `json:"description"`
}

type wireDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (w *wireDateTime) parse(loc *time.Location) (time.Time, error) {
	if w == nil || w.DateTime == "" {
		return time.Time{}, nil
	}
	l := loc
	if w.TimeZone != "" {
		if tz, err := time.LoadLocation(w.TimeZone); err == nil {
			l = tz
		}
	}
	if t, err := time.ParseInLocation(time.RFC3339, w.DateTime, l); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", w.DateTime, l)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad dateTime %q: %w", w.DateTime, err)
	}
	return t, nil
}

// LoadEventsFile reads a JSON events file. Entries without a summary or
// location are skipped rather than failing the whole file.
func LoadEventsFile(path string, loc *time.Location) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEvents(data, loc)
}

// ParseEvents decodes events from JSON bytes.
func ParseEvents(data []byte, loc *time.Location) ([]Event, error) {
	if loc == nil {
		loc = time.Local
	}
	var wires []wireEvent
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("parsing events file: %w", err)
	}
	events := make([]Event, 0, len(wires))
	for _, w := range wires {
		if w.Summary == "" && w.Location == "" {
			Debugf("skipping event with no summary or location")
			continue
		}
		start, err := w.Start.parse(loc)
		if err != nil {
			return nil, err
		}
		end, err := w.End.parse(loc)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{
			Summary:     w.Summary,
			Location:    w.Location,
			Start:       start,
			End:         end,
			Description: w.Description,
		})
	}
	return events, nil
}
