package fieldmap

import (
	"strconv"
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/tidwall/gjson"
)

// Segment is one step of a Path: an object key, or an array index when
// IsIndex is set.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is a parsed dotted path into a raw entity.
type Path struct {
	Segments []Segment
	expr     string
}

// ParsePath parses a dotted path string into a Path.
// Supports: "entity", "otherinfo.startTime", "primaryfilters.user.0".
// Numeric segments index into arrays.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return Path{}, timeline.ErrInvalidFieldPath.GenWithStackByArgs(path, "empty path")
	}

	var segments []Segment
	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return Path{}, timeline.ErrInvalidFieldPath.GenWithStackByArgs(path, "empty segment")
		}
		if !isValidKey(part) {
			return Path{}, timeline.ErrInvalidFieldPath.GenWithStackByArgs(path, "invalid segment "+strconv.Quote(part))
		}

		seg := Segment{Key: part}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			seg.Index = idx
			seg.IsIndex = true
		}
		segments = append(segments, seg)
	}

	return Path{Segments: segments, expr: path}, nil
}

// MustParsePath is like ParsePath but panics on a malformed path.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	return p.expr
}

// Resolve walks raw along the path. The result does not exist when any
// intermediate key or index is missing. A numeric segment indexes an array
// and names a key of an object.
func (p Path) Resolve(raw gjson.Result) gjson.Result {
	if len(p.Segments) == 0 {
		return gjson.Result{}
	}

	cur := raw
	for _, seg := range p.Segments {
		switch {
		case seg.IsIndex && cur.IsArray():
			items := cur.Array()
			if seg.Index >= len(items) {
				return gjson.Result{}
			}
			cur = items[seg.Index]
		case cur.IsObject():
			cur = cur.Get(seg.Key)
		default:
			return gjson.Result{}
		}
		if !cur.Exists() {
			return gjson.Result{}
		}
	}
	return cur
}

// isValidKey restricts segments to characters gjson reads literally as an
// object key.
func isValidKey(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return s != ""
}
