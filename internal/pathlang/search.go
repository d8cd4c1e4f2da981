package pathlang

import (
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/fieldgroup"
	"treenav/internal/herr"
	"treenav/internal/logging"
	"treenav/internal/value"
)

// frame is one entry of the DFS stack: "enumerate the appropriate
// children of parent and test each against path[pathIndex]".
type frame struct {
	parent    cell.Cell
	pathIndex int
}

// Searcher performs the DFS described in the original design: a stack of
// (parentCell, pathIndex) frames, popped one at a time, each producing
// zero or more new frames or a match. Construct with NewSearcher and pull
// results with Next until it returns ok=false.
type Searcher struct {
	path             []Item
	stack            []frame
	nextMaxPathIndex int
	filterEval       bool
}

// NewSearcher starts a search of path against the children of start.
func NewSearcher(start cell.Cell, path Path) *Searcher {
	return newSearcher(start, path, false)
}

func newSearcher(start cell.Cell, path Path, filterEval bool) *Searcher {
	return &Searcher{
		path:       path.Items,
		stack:      []frame{{parent: start, pathIndex: 0}},
		filterEval: filterEval,
	}
}

// Next pulls the next matching cell, if any. ok is false once the search
// is exhausted; err carries a real (non-KindNone) failure encountered
// while pumping the stack, which callers may choose to log and continue
// past, mirroring the original's "warn and skip" search error handling.
func (s *Searcher) Next() (cell.Cell, bool, error) {
	for len(s.stack) > 0 {
		c, matched, err := s.pump()
		s.updateNextMax()
		if err != nil {
			if herr.IsNone(err) {
				continue
			}
			return cell.Cell{}, false, err
		}
		if matched {
			return c, true, nil
		}
	}
	return cell.Cell{}, false, nil
}

// UnmatchedPath renders the minimal path prefix that failed to match,
// for "path search failed at ..." error messages.
func (s *Searcher) UnmatchedPath() string {
	var p Path
	end := s.nextMaxPathIndex
	if end < len(s.path) {
		end++
	}
	if end > len(s.path) {
		end = len(s.path)
	}
	p.Items = s.path[:end]
	return p.String()
}

func (s *Searcher) updateNextMax() {
	for _, f := range s.stack {
		if f.pathIndex > s.nextMaxPathIndex {
			s.nextMaxPathIndex = f.pathIndex
		}
	}
}

// pump pops one frame and advances the search by one step, returning a
// matched cell when the path is fully consumed.
func (s *Searcher) pump() (cell.Cell, bool, error) {
	n := len(s.stack) - 1
	f := s.stack[n]
	s.stack = s.stack[:n]

	if f.pathIndex >= len(s.path) {
		return f.parent, true, nil
	}
	item := s.path[f.pathIndex]

	switch it := item.(type) {
	case ElevationItem:
		if err := s.processElevation(it, f); err != nil {
			return cell.Cell{}, false, err
		}
		return cell.Cell{}, false, nil
	case NormalItem:
		group, err := s.openGroup(it.Relation, f.parent)
		if err != nil {
			if !herr.IsNone(err) {
				return cell.Cell{}, false, err
			}
		} else {
			s.processGroup(it, group, f.pathIndex)
		}
		if it.Selector != nil && it.Selector.Kind == SelDoubleStar {
			// "**" may also match zero levels: push the parent itself
			// against the next path index without consuming a child.
			s.processCellAdvance(f.parent, f.pathIndex, it, true)
		}
		return cell.Cell{}, false, nil
	default:
		return cell.Cell{}, false, herr.Internal("unknown path item type")
	}
}

func (s *Searcher) openGroup(rel cell.Relation, parent cell.Cell) (cell.Group, error) {
	switch rel {
	case cell.Sub:
		return parent.Sub()
	case cell.Attr:
		return parent.Attr()
	case cell.Field:
		return fieldgroup.Group(parent), nil
	default:
		return nil, herr.Internal("unexpected relation in normal path item")
	}
}

func (s *Searcher) processElevation(it ElevationItem, f frame) error {
	params := elevreg.Params{Named: map[string]value.OwnValue{}}
	for _, p := range it.Params {
		if p.Name != "" {
			params.Named[p.Name] = p.Value
		} else {
			params.Positional = append(params.Positional, p.Value)
		}
	}
	materialized, err := elevreg.Elevate(f.parent, it.Target, params)
	if err != nil {
		if s.filterEval || prevWasWildcard(s.path, f.pathIndex) {
			return nil
		}
		return err
	}
	s.stack = append(s.stack, frame{parent: materialized, pathIndex: f.pathIndex + 1})
	return nil
}

func prevWasWildcard(path []Item, pathIndex int) bool {
	if pathIndex == 0 {
		return false
	}
	ni, ok := path[pathIndex-1].(NormalItem)
	if !ok || ni.Selector == nil {
		return false
	}
	return ni.Selector.Kind == SelStar || ni.Selector.Kind == SelDoubleStar
}

func (s *Searcher) processGroup(pi NormalItem, group cell.Group, pathIndex int) {
	switch {
	case pi.Selector != nil && (pi.Selector.Kind == SelStar || pi.Selector.Kind == SelDoubleStar) && pi.Index == nil:
		n, err := group.Len()
		if err != nil {
			logging.Search().Warnf("cannot get group length: %v", err)
			return
		}
		advance := pi.Selector.Kind != SelDoubleStar
		for i := n - 1; i >= 0; i-- {
			c, err := group.At(i)
			if err != nil {
				if !herr.IsNone(err) {
					logging.Search().Warnf("cannot get cell at %d: %v", i, err)
				}
				continue
			}
			s.processCellAdvance(c, pathIndex, pi, advance)
		}
	case pi.Index != nil && (pi.Selector == nil || pi.Selector.Kind == SelStar || pi.Selector.Kind == SelDoubleStar):
		n, err := group.Len()
		idx := int(*pi.Index)
		if idx < 0 {
			if err != nil {
				logging.Search().Warnf("cannot get group length: %v", err)
				return
			}
			idx = n + idx
		}
		c, err := group.At(idx)
		if err != nil {
			if !herr.IsNone(err) {
				logging.Search().Warnf("cannot get cell at %d: %v", idx, err)
			}
			return
		}
		advance := pi.Selector == nil || pi.Selector.Kind != SelDoubleStar
		s.processCellAdvance(c, pathIndex, pi, advance)
	case pi.Selector != nil && pi.Selector.Kind == SelLabel:
		iter, err := group.GetAll(pi.Selector.Label)
		if err != nil {
			if !herr.IsNone(err) {
				logging.Search().Warnf("cannot get children labeled %q: %v", pi.Selector.Label, err)
			}
			return
		}
		var matches []cell.Cell
		for {
			c, ok := iter.Next()
			if !ok {
				break
			}
			matches = append(matches, c)
		}
		if pi.Index != nil {
			idx := int(*pi.Index)
			if idx < 0 {
				idx = len(matches) + idx
			}
			if idx < 0 || idx >= len(matches) {
				return
			}
			s.processCellAdvance(matches[idx], pathIndex, pi, true)
			return
		}
		for _, c := range matches {
			s.processCellAdvance(c, pathIndex, pi, true)
		}
	default:
		logging.Search().Warnf("missing both selector and index in search")
	}
}

func (s *Searcher) processCellAdvance(c cell.Cell, pathIndex int, pi NormalItem, advance bool) {
	if !s.evalFilters(c, pi) {
		return
	}
	next := pathIndex
	if advance {
		next = pathIndex + 1
	}
	s.stack = append(s.stack, frame{parent: c, pathIndex: next})
}

func (s *Searcher) evalFilters(c cell.Cell, pi NormalItem) bool {
	for _, f := range pi.Filters {
		ok, err := evalExpression(c, f.Expr)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func evalExpression(c cell.Cell, expr Expression) (bool, error) {
	switch e := expr.(type) {
	case TypeExpr:
		reader, err := c.Read()
		if err != nil {
			return false, err
		}
		t, err := reader.Type()
		if err != nil {
			return false, err
		}
		return t == e.Type, nil
	case Ternary:
		return evalTernary(c, e)
	case Or:
		for _, alt := range e.Alternatives {
			ok, err := evalExpression(c, alt)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, herr.Internal("unknown expression type")
	}
}

func evalTernary(c cell.Cell, t Ternary) (bool, error) {
	sub := newSearcher(c, t.Left, true)
	for {
		matched, ok, err := sub.Next()
		if err != nil {
			continue
		}
		if !ok {
			return false, nil
		}
		if t.Op == "" {
			return true, nil
		}
		reader, err := matched.Read()
		if err != nil {
			continue
		}
		lv, err := reader.Value()
		if err != nil {
			continue
		}
		eq := lv.Equal(t.Right.AsValue())
		switch t.Op {
		case "==":
			if eq {
				return true, nil
			}
		case "!=":
			if !eq {
				return true, nil
			}
		}
	}
}
