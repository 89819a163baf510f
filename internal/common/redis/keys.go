package redis

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const cutKeyPrefix = "cut:"

// CutKey identifies a cached cut by everything that influences its output.
type CutKey struct {
	HTML            string
	Length          int
	Paragraphs      int
	Marker          string
	StripDenylisted bool
	// Config is the cutter configuration fingerprint, so entries cut under
	// other tag sets or patterns are never reused.
	Config          string
}

// String returns "cut:<xxhash64 hex>". Fields are length-prefixed so
// different inputs cannot collide by concatenation.
func (k CutKey) String() string {
	d := xxhash.New()
	for _, part := range []string{
		strconv.Itoa(k.Length),
		strconv.Itoa(k.Paragraphs),
		strconv.FormatBool(k.StripDenylisted),
		k.Marker,
		k.Config,
		k.HTML,
	} {
		_, _ = d.WriteString(strconv.Itoa(len(part)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(part)
	}
	return fmt.Sprintf("%s%016x", cutKeyPrefix, d.Sum64())
}
