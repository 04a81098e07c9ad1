// Package coding defines the compact symbolic representation of a job's I/O activity over time.
package coding

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Separator delimits symbols in the textual form of a Coding.
const Separator = ":"

// Coding is an ordered sequence of activity symbols, one per time bucket.
type Coding []uint16

// Decode parses a colon separated list of integers, e.g. "256:256:0:0:38".  Empty segments are dropped,
// so "" and "::" both decode to an empty Coding.
func Decode(s string) (Coding, error) {
	segments := strings.Split(s, Separator)
	c := make(Coding, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		v, err := strconv.ParseUint(segment, 10, 16)
		if err != nil {
			return nil, errors.Errorf("invalid symbol %q: %s", segment, err)
		}
		c = append(c, uint16(v))
	}
	return c, nil
}

// MustDecode is Decode, but it panics if s is not a valid coding.
func MustDecode(s string) Coding {
	c, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders c in the form accepted by Decode.
func (c Coding) String() string {
	var sb strings.Builder
	for i, v := range c {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return sb.String()
}

// IsIdle reports whether c contains no activity at all.
func (c Coding) IsIdle() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}
