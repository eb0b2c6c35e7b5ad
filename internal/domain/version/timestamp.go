package version

import (
	"strings"
	"time"
)

// Timestamp is the decomposition of a point in time stored under current.timestamp.
type Timestamp struct {
	Year     int    `yaml:"year"`
	Month    int    `yaml:"month"`
	Day      int    `yaml:"day"`
	Hour     int    `yaml:"hour"`
	Minute   int    `yaml:"minute"`
	Second   int    `yaml:"second"`
	Timezone string `yaml:"timezone"`
	// Timestamp is the unix time in seconds.
	Timestamp int64 `yaml:"timestamp"`
}

// timezoneLayout renders the UTC offset stored in current.timestamp.timezone.
const timezoneLayout = "-07:00"

// timestampLayouts are tried in order when parsing git timestamps.
// The first one is the output of git show --format=%ci.
//
//nolint:gochecknoglobals // Read-only lookup table.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.UnixDate,
	"2006-01-02T15:04:05 -0700",
	time.DateTime,
	time.DateOnly,
}

// ExplodeTime decomposes t into record fields.
func ExplodeTime(t time.Time) Timestamp {
	return Timestamp{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		Hour:      t.Hour(),
		Minute:    t.Minute(),
		Second:    t.Second(),
		Timezone:  t.Format(timezoneLayout),
		Timestamp: t.Unix(),
	}
}

// Entry is a relative record key with its value.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the decomposition as keys relative to current.timestamp.
func (t Timestamp) Entries() []Entry {
	return []Entry{
		{"year", t.Year},
		{"month", t.Month},
		{"day", t.Day},
		{"hour", t.Hour},
		{"minute", t.Minute},
		{"second", t.Second},
		{"timezone", t.Timezone},
		{"timestamp", t.Timestamp},
	}
}

// Time rebuilds the point in time from the unix timestamp and the offset.
func (t Timestamp) Time() time.Time {
	moment := time.Unix(t.Timestamp, 0)

	if zone, err := time.Parse(timezoneLayout, t.Timezone); err == nil {
		return moment.In(zone.Location())
	}

	return moment
}

// ParseTimestamp parses the timestamp formats git and humans commonly produce.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	// git prints one line per ref; only the first one matters.
	if line, _, found := strings.Cut(value, "\n"); found {
		value = strings.TrimSpace(line)
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// ReadTimestamp returns the decomposition stored in the record.
// The second result is false when no unix timestamp has been recorded yet.
func ReadTimestamp(r *Record) (Timestamp, bool) {
	var result Timestamp

	node := r.lookup(PathTimestamp)
	if node == nil {
		return result, false
	}

	if err := node.Decode(&result); err != nil {
		return Timestamp{}, false
	}

	return result, result.Timestamp != 0
}

// WriteTimestamp stores the decomposition under current.timestamp.
// Other keys of the mapping, such as mode, are left in place.
func WriteTimestamp(r *Record, t Timestamp) error {
	for _, entry := range t.Entries() {
		if err := r.Set(PathTimestamp+pathSeparator+entry.Key, entry.Value); err != nil {
			return err
		}
	}

	return nil
}
