package navigator

import "github.com/temirov/srcview/internal/treepath"

// BuildBreadcrumb splits path into clickable segments. The target of the i-th
// segment is the path made of segments 0..i, so the last target is path itself.
// The root yields a single crumb pointing at the root.
func BuildBreadcrumb(path treepath.Path) []Crumb {
	if path.IsZero() {
		return nil
	}
	if path.IsRoot() {
		return []Crumb{{Segment: treepath.RootValue, Target: path}}
	}
	segments := path.Segments()
	crumbs := make([]Crumb, 0, len(segments))
	for segmentIndex, segment := range segments {
		crumbs = append(crumbs, Crumb{Segment: segment, Target: path.Prefix(segmentIndex + 1)})
	}
	return crumbs
}
