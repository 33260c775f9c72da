package style

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aerissecure/export/schema"
)

// ErrStyleResolution is returned when a style ref names an unknown style,
// set or set constant.
var ErrStyleResolution = errors.New("style: cannot resolve style")

// DefaultSet is the name of the built-in style set.
const DefaultSet = "default"

// Registry holds named single styles and named style sets. Register styles
// before compiling resources; a Registry is not safe for concurrent
// registration.
type Registry struct {
	singles map[string]Style
	sets    map[string]map[string]Style
}

// NewRegistry returns a registry with the built-in styles:
//
//	default.GREY_HEADER, default.BLUE_HEADER, default.BODY
//	BlueHeader, BlackHeader, Body
func NewRegistry() *Registry {
	r := &Registry{
		singles: make(map[string]Style),
		sets:    make(map[string]map[string]Style),
	}
	r.RegisterSet(DefaultSet, map[string]Style{
		"GREY_HEADER": greyHeader,
		"BLUE_HEADER": blueHeader,
		"BODY":        body,
	})
	r.Register("BlueHeader", solidBlueHeader)
	r.Register("BlackHeader", solidBlackHeader)
	r.Register("Body", body)
	return r
}

// Register adds or replaces a single named style.
func (r *Registry) Register(name string, s Style) {
	r.singles[name] = s
}

// RegisterSet adds or replaces a named set of style constants.
func (r *Registry) RegisterSet(name string, constants map[string]Style) {
	set := make(map[string]Style, len(constants))
	for k, v := range constants {
		set[k] = v
	}
	r.sets[name] = set
}

// Resolve returns the style named by ref. The zero ref resolves to nil.
func (r *Registry) Resolve(ref schema.StyleRef) (Style, error) {
	if ref.IsZero() {
		return nil, nil
	}
	if ref.Set == "" {
		s, ok := r.singles[ref.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no style named %q", ErrStyleResolution, ref.Name)
		}
		return s, nil
	}
	set, ok := r.sets[ref.Set]
	if !ok {
		return nil, fmt.Errorf("%w: no style set named %q", ErrStyleResolution, ref.Set)
	}
	s, ok := set[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w: set %q does not name %q (have %v)", ErrStyleResolution, ref.Set, ref.Name, constantNames(set))
	}
	return s, nil
}

func constantNames(set map[string]Style) []string {
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
