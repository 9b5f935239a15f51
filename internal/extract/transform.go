package extract

import (
	"fmt"
	"strconv"
	"strings"

	"vidmeta/internal/media"
)

// viewsSuffixLen is the width of the " views" tail on the view counter text.
const viewsSuffixLen = 6

// Transform turns a raw capture into a typed value.
type Transform func(raw string) (media.Value, error)

// groupSeparators are the digit-group separators the view counter may use.
var groupSeparators = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "", "\u202f", "")

// Views strips the fixed-width suffix and parses the remaining count.
func Views(raw string) (media.Value, error) {
	r := []rune(raw)
	if len(r) < viewsSuffixLen {
		return media.Absent(), fmt.Errorf("capture shorter than %d-character suffix", viewsSuffixLen)
	}

	digits := groupSeparators.Replace(strings.TrimSpace(string(r[:len(r)-viewsSuffixLen])))
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return media.Absent(), fmt.Errorf("parsing view count: %w", err)
	}
	return media.IntValue(n), nil
}

// Duration converts milliseconds to a "<H>h <M>m <S>s" string.
func Duration(raw string) (media.Value, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return media.Absent(), fmt.Errorf("parsing milliseconds: %w", err)
	}
	if ms < 0 {
		return media.Absent(), fmt.Errorf("negative duration %d", ms)
	}
	return media.StringValue(FormatDuration(ms / 1000)), nil
}

// FormatDuration formats whole seconds as "<H>h <M>m <S>s". Hours are not
// folded into days.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// Tags splits the comma-joined keyword list. Entries are not trimmed.
func Tags(raw string) (media.Value, error) {
	return media.ListValue(strings.Split(raw, ",")), nil
}

// Description drops the literal \n escapes left in the embedded JSON.
func Description(raw string) (media.Value, error) {
	return media.StringValue(strings.ReplaceAll(raw, `\n`, "")), nil
}
