// Package elevreg is the process-wide elevation registry: a two-level
// catalog of constructors that turn a cell of one interpretation into
// the root cell of another. Backend packages self-register from their
// own init(), the idiomatic Go analogue of image.RegisterFormat or
// sql.Register, generalizing the distributed-registration pattern used
// by internal/tools/registry.go in the source this was grounded on.
package elevreg

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"treenav/internal/cell"
	"treenav/internal/herr"
	"treenav/internal/logging"
	"treenav/internal/value"
)

// Params carries the parameters collected from an elevation path item's
// bracket list, e.g. ^regex["pattern"] or ^fs[w].
type Params struct {
	Named      map[string]value.OwnValue
	Positional []value.OwnValue
}

func (p Params) Named_(name string) (value.OwnValue, bool) {
	v, ok := p.Named[name]
	return v, ok
}

func (p Params) At(i int) (value.OwnValue, bool) {
	if i < 0 || i >= len(p.Positional) {
		return value.OwnValue{}, false
	}
	return p.Positional[i], true
}

// Constructor builds the root cell of target from source, given the
// parameters collected from the path's elevation item.
type Constructor func(source cell.Cell, target string, params Params) (cell.Cell, error)

type registration struct {
	sources []string
	targets []string
	ctor    Constructor
	seq     int
}

var (
	mu       sync.Mutex
	regs     []registration
	seqNext  int
	index    map[string]map[string]Constructor
	indexSeq map[string]map[string]int
)

// Register records a constructor for every (source, target) pair in the
// cross product of sources and targets. Called from each backend
// package's init(). Collisions are resolved first-registration-wins,
// with a warning logged for the loser.
func Register(sources, targets []string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	regs = append(regs, registration{sources: sources, targets: targets, ctor: ctor, seq: seqNext})
	seqNext++
	index = nil // force rebuild on next lookup
}

func ensureBuilt() {
	if index != nil {
		return
	}
	index = make(map[string]map[string]Constructor)
	indexSeq = make(map[string]map[string]int)
	// Rebuild in registration order so "first wins" is well defined even
	// though Register may have been called from many init()s in
	// import-order-dependent sequence.
	ordered := append([]registration(nil), regs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	for _, r := range ordered {
		for _, s := range r.sources {
			for _, t := range r.targets {
				if index[s] == nil {
					index[s] = make(map[string]Constructor)
					indexSeq[s] = make(map[string]int)
				}
				if _, exists := index[s][t]; exists {
					logging.Elevate().Warnf("elevation constructor collision for %s -> %s, keeping first registration", s, t)
					continue
				}
				index[s][t] = r.ctor
				indexSeq[s][t] = r.seq
			}
		}
	}
}

// Lookup finds the constructor registered for source -> target.
func Lookup(source, target string) (Constructor, bool) {
	mu.Lock()
	defer mu.Unlock()
	ensureBuilt()
	targets, ok := index[source]
	if !ok {
		return nil, false
	}
	ctor, ok := targets[target]
	return ctor, ok
}

// firstTarget returns the lexicographically-first target registered for
// source, used when an elevation item has no explicit target ("^" alone,
// meaning "auto-detect").
func firstTarget(source string) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	ensureBuilt()
	targets, ok := index[source]
	if !ok || len(targets) == 0 {
		return "", false
	}
	names := make([]string, 0, len(targets))
	for t := range targets {
		names = append(names, t)
	}
	sort.Strings(names)
	return names[0], true
}

// extensionInterpretations maps a filesystem extension to the backend
// that auto-interprets it. ".c" is deliberately absent: no C grammar
// ships with the vendored tree-sitter grammar set wired into
// backend/treesitter.
var extensionInterpretations = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
}

// Elevate materializes the root cell of target from source. If target is
// empty, auto-interpretation picks a default the way a bare "^" does in
// the path language.
func Elevate(source cell.Cell, target string, params Params) (cell.Cell, error) {
	if target == "" {
		guessed, ok := AutoInterpretation(source)
		if !ok {
			g, ok2 := firstTarget(source.Interpretation())
			if !ok2 {
				return cell.Cell{}, herr.UserErrf("no elevation target available from %q", source.Interpretation())
			}
			guessed = g
		}
		target = guessed
	}
	if ctor, ok := Lookup(source.Interpretation(), target); ok {
		return ctor(source, target, params)
	}
	// Fall back to a generic "value" source keyed constructor, for
	// backends (like ownvalue) that elevate purely off their scalar
	// value rather than off their own interpretation name.
	if ctor, ok := Lookup("value", target); ok {
		reader, err := source.Read()
		if err == nil {
			if v, verr := reader.Value(); verr == nil && !v.IsNone() {
				return ctor(source, target, params)
			}
		}
	}
	return cell.Cell{}, herr.UserErrf("no elevation constructor registered for %s -> %s", source.Interpretation(), target)
}

// AutoInterpretation guesses a default elevation target for source with
// no explicit target, the way "./file.json^" or a bare "http://..." cell
// auto-detects its interpretation.
func AutoInterpretation(source cell.Cell) (string, bool) {
	if source.Interpretation() == "fs" {
		reader, err := source.Read()
		if err == nil {
			if label, lerr := reader.Label(); lerr == nil {
				ext := strings.ToLower(filepath.Ext(label))
				if interp, ok := extensionInterpretations[ext]; ok {
					return interp, true
				}
			}
		}
	}
	reader, err := source.Read()
	if err != nil {
		return "", false
	}
	v, err := reader.Value()
	if err != nil {
		return "", false
	}
	s, ok := v.AsStr()
	if !ok {
		return "", false
	}
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return "http", true
	case strings.HasPrefix(s, "./"), strings.HasPrefix(s, "/"):
		return "fs", true
	default:
		return "", false
	}
}
