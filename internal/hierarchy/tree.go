// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package hierarchy implements the genre classification tree.
//
// Tracks are leaves attached at the most specific node of their genre
// path; a flat id lookup table gives O(1) access to any track. Genre
// name matching is exact and case-sensitive throughout. Lookups for
// unknown genres or moods return empty results rather than errors:
// the query surface is existence-tolerant.
//
// The tree is built once from a finalized catalog and is read-only
// afterwards; concurrent queries are safe, concurrent mutation is not.
package hierarchy

import (
	"sort"

	"github.com/rs/zerolog"
)

// RootName is the synthetic name of the top node. It never appears in
// reconstructed genre paths.
const RootName = "music"

// Tree organizes a track catalog into a genre hierarchy.
type Tree struct {
	root   *Node
	tracks map[string]*Node
	logger zerolog.Logger
}

// New creates an empty tree rooted at the synthetic top category.
func New(logger zerolog.Logger) *Tree {
	return &Tree{
		root:   &Node{Name: RootName, Kind: KindCategory},
		tracks: make(map[string]*Node),
		logger: logger.With().Str("component", "hierarchy").Logger(),
	}
}

// Root returns the synthetic top node.
func (t *Tree) Root() *Node {
	return t.root
}

// AddCategoryPath walks the tree from the root, creating any missing
// category per path segment, and returns the deepest node. Segments
// match existing children by exact name equality.
func (t *Tree) AddCategoryPath(path []string) *Node {
	current := t.root

	for _, name := range path {
		var found *Node
		for _, child := range current.Children {
			if child.Kind == KindCategory && child.Name == name {
				found = child
				break
			}
		}
		if found == nil {
			found = &Node{Name: name, Kind: KindCategory}
			current.addChild(found)
		}
		current = found
	}

	return current
}

// AddTrack appends a track leaf under the deepest category of genrePath
// and registers it in the id lookup table. Re-inserting an existing id
// fully replaces the prior track: the old leaf is detached from its
// former parent so the lookup table and the tree never diverge.
// The payload's mood tags and features are copied, so later caller
// mutation of the input cannot alter the tree.
func (t *Tree) AddTrack(id string, genrePath []string, p Payload) *Node {
	if old, ok := t.tracks[id]; ok {
		if old.Parent != nil {
			old.Parent.removeChild(old)
		}
		t.logger.Warn().Str("track_id", id).Msg("duplicate track id, replacing prior node")
	}

	p.MoodTags = append([]string(nil), p.MoodTags...)
	feats := make(map[string]float64, len(p.Features))
	for k, v := range p.Features {
		feats[k] = v
	}
	p.Features = feats

	category := t.AddCategoryPath(genrePath)
	node := &Node{Name: id, Kind: KindTrack, Payload: &p}
	category.addChild(node)
	t.tracks[id] = node
	return node
}

// Track returns the leaf registered under id, if any. O(1).
func (t *Tree) Track(id string) (*Node, bool) {
	n, ok := t.tracks[id]
	return n, ok
}

// TrackCount returns the number of registered tracks.
func (t *Tree) TrackCount() int {
	return len(t.tracks)
}

// GenrePath reconstructs the category path of a node by walking parent
// links, in root-to-leaf order. The synthetic root name is excluded.
func (t *Tree) GenrePath(n *Node) []string {
	var path []string
	for current := n; current != nil && current.Parent != nil; current = current.Parent {
		if current.Kind == KindCategory {
			path = append(path, current.Name)
		}
	}

	// Collected leaf-to-root; reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SearchByGenre returns every track under any category named name, at
// any depth. Same-named categories at different nesting levels all
// contribute their descendants.
func (t *Tree) SearchByGenre(name string) []*Node {
	var results []*Node

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind == KindCategory && n.Name == name && n != t.root {
			collectTracks(n, &results)
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(t.root)

	return results
}

// SearchByMood returns every track whose mood-tag set contains mood,
// by linear scan of the lookup table. Order follows sorted track ids
// so repeated queries are deterministic.
func (t *Tree) SearchByMood(mood string) []*Node {
	ids := make([]string, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []*Node
	for _, id := range ids {
		if n := t.tracks[id]; n.HasMood(mood) {
			results = append(results, n)
		}
	}
	return results
}

// SearchByGenreAndMood intersects SearchByGenre with a mood filter.
func (t *Tree) SearchByGenreAndMood(genre, mood string) []*Node {
	var results []*Node
	for _, n := range t.SearchByGenre(genre) {
		if n.HasMood(mood) {
			results = append(results, n)
		}
	}
	return results
}

// BFS resolves the first category named startGenre (depth-first name
// search), then walks breadth-first from it, visiting each node at
// most once. Depth counts category descent: tracks inherit the depth
// of their owning category, so maxDepth 0 yields exactly the tracks
// directly attached to the start category. Tracks are collected in
// visitation order. A non-empty mood filters the tracks; mood ""
// disables filtering. Unknown genres yield an empty result.
func (t *Tree) BFS(startGenre, mood string, maxDepth int) []*Node {
	start := findCategory(t.root, startGenre)
	if start == nil {
		return nil
	}

	type item struct {
		node  *Node
		depth int
	}
	queue := []item{{start, 0}}
	visited := make(map[*Node]struct{})
	var results []*Node

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, seen := visited[cur.node]; seen || cur.depth > maxDepth {
			continue
		}
		visited[cur.node] = struct{}{}

		if cur.node.Kind == KindTrack && (mood == "" || cur.node.HasMood(mood)) {
			results = append(results, cur.node)
		}

		for _, child := range cur.node.Children {
			depth := cur.depth
			if child.Kind == KindCategory {
				depth++
			}
			queue = append(queue, item{child, depth})
		}
	}

	return results
}

// DFS resolves the start node like BFS, then walks depth-first,
// exploring at most maxBreadth children per node, ordered by name.
// Tracks are collected in visitation order, optionally mood-filtered.
func (t *Tree) DFS(startGenre, mood string, maxBreadth int) []*Node {
	start := findCategory(t.root, startGenre)
	if start == nil {
		return nil
	}

	stack := []*Node{start}
	visited := make(map[*Node]struct{})
	var results []*Node

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		if cur.Kind == KindTrack && (mood == "" || cur.HasMood(mood)) {
			results = append(results, cur)
		}

		children := make([]*Node, len(cur.Children))
		copy(children, cur.Children)
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
		if maxBreadth >= 0 && len(children) > maxBreadth {
			children = children[:maxBreadth]
		}

		// Push in reverse so the first child by name is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return results
}

// GenreNames returns the sorted distinct category names in the tree,
// excluding the synthetic root.
func (t *Tree) GenreNames() []string {
	seen := make(map[string]struct{})

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind == KindCategory && n != t.root {
			seen[n.Name] = struct{}{}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(t.root)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MoodNames returns the sorted distinct mood tags across all tracks.
func (t *Tree) MoodNames() []string {
	seen := make(map[string]struct{})
	for _, n := range t.tracks {
		if n.Payload == nil {
			continue
		}
		for _, tag := range n.Payload.MoodTags {
			seen[tag] = struct{}{}
		}
	}

	moods := make([]string, 0, len(seen))
	for mood := range seen {
		moods = append(moods, mood)
	}
	sort.Strings(moods)
	return moods
}

// findCategory returns the first category named target in depth-first
// order, or nil. The root itself is never returned.
func findCategory(n *Node, target string) *Node {
	for _, child := range n.Children {
		if child.Kind == KindCategory && child.Name == target {
			return child
		}
		if found := findCategory(child, target); found != nil {
			return found
		}
	}
	return nil
}

// collectTracks appends every track leaf beneath n, depth-first.
func collectTracks(n *Node, out *[]*Node) {
	if n.Kind == KindTrack {
		*out = append(*out, n)
		return
	}
	for _, child := range n.Children {
		collectTracks(child, out)
	}
}
