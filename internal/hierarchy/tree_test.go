// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package hierarchy

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func newTestTree() *Tree {
	return New(zerolog.Nop())
}

func trackIDs(nodes []*Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Name)
	}
	return ids
}

func TestAddCategoryPath(t *testing.T) {
	tree := newTestTree()

	rock := tree.AddCategoryPath([]string{"rock"})
	if rock.Name != "rock" {
		t.Errorf("Name = %q, want %q", rock.Name, "rock")
	}
	if rock.Parent != tree.Root() {
		t.Error("rock's parent should be the root")
	}

	alt := tree.AddCategoryPath([]string{"rock", "alternative"})
	if alt.Parent != rock {
		t.Error("alternative's parent should be the existing rock node")
	}

	// Re-adding an existing path returns the same node, no duplicates.
	again := tree.AddCategoryPath([]string{"rock", "alternative"})
	if again != alt {
		t.Error("re-adding an existing path should return the same node")
	}
	if len(rock.Children) != 1 {
		t.Errorf("rock has %d children, want 1", len(rock.Children))
	}

	// Matching is case-sensitive: "Rock" is a distinct sibling.
	upper := tree.AddCategoryPath([]string{"Rock"})
	if upper == rock {
		t.Error("category matching should be case-sensitive")
	}
}

func TestAddTrack_GenrePathRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path []string
	}{
		{name: "single level", path: []string{"rock"}},
		{name: "nested path", path: []string{"rock", "alternative", "grunge"}},
		{name: "empty path attaches to root", path: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTestTree()
			node := tree.AddTrack("t1", tt.path, Payload{Title: "Song"})

			if node.Kind != KindTrack {
				t.Errorf("Kind = %v, want %v", node.Kind, KindTrack)
			}
			got := tree.GenrePath(node)
			if len(tt.path) == 0 {
				if len(got) != 0 {
					t.Errorf("GenrePath = %v, want empty", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.path) {
				t.Errorf("GenrePath = %v, want %v", got, tt.path)
			}
		})
	}
}

func TestTrack_LookupAfterInsert(t *testing.T) {
	tree := newTestTree()
	for i := 0; i < 50; i++ {
		tree.AddTrack(fmt.Sprintf("t%d", i), []string{"pop"}, Payload{})
	}

	if tree.TrackCount() != 50 {
		t.Fatalf("TrackCount() = %d, want 50", tree.TrackCount())
	}
	for i := 0; i < 50; i++ {
		if _, ok := tree.Track(fmt.Sprintf("t%d", i)); !ok {
			t.Errorf("Track(t%d) not found", i)
		}
	}
	if _, ok := tree.Track("absent"); ok {
		t.Error("Track(absent) returned ok")
	}
}

func TestAddTrack_DuplicateIDReplacesPriorNode(t *testing.T) {
	tree := newTestTree()
	old := tree.AddTrack("t1", []string{"rock"}, Payload{Title: "Old"})
	tree.AddTrack("t1", []string{"jazz"}, Payload{Title: "New"})

	if tree.TrackCount() != 1 {
		t.Fatalf("TrackCount() = %d, want 1", tree.TrackCount())
	}

	node, ok := tree.Track("t1")
	if !ok {
		t.Fatal("Track(t1) not found")
	}
	if node.Payload.Title != "New" {
		t.Errorf("Title = %q, want %q", node.Payload.Title, "New")
	}
	if got := tree.GenrePath(node); !reflect.DeepEqual(got, []string{"jazz"}) {
		t.Errorf("GenrePath = %v, want [jazz]", got)
	}

	// The prior leaf must be detached, not orphaned in place.
	if old.Parent != nil {
		t.Error("replaced node still has a parent")
	}
	if got := tree.SearchByGenre("rock"); len(got) != 0 {
		t.Errorf("SearchByGenre(rock) = %v, want empty", trackIDs(got))
	}
}

func TestAddTrack_CopiesPayloadCollections(t *testing.T) {
	tree := newTestTree()
	moods := []string{"energetic"}
	features := map[string]float64{"energy": 0.9}
	node := tree.AddTrack("t1", []string{"rock"}, Payload{MoodTags: moods, Features: features})

	moods[0] = "calm"
	features["energy"] = 0.1

	if !node.HasMood("energetic") || node.HasMood("calm") {
		t.Errorf("MoodTags = %v, caller mutation leaked into the payload", node.Payload.MoodTags)
	}
	if got := node.Payload.Features["energy"]; got != 0.9 {
		t.Errorf("Features[energy] = %f, caller mutation leaked into the payload", got)
	}
}

func TestSearchByGenre_NestedLevels(t *testing.T) {
	tree := newTestTree()
	for i := 0; i < 5; i++ {
		tree.AddTrack(fmt.Sprintf("t%d", i), []string{"rock", "punkrock"}, Payload{})
	}

	outer := tree.SearchByGenre("rock")
	inner := tree.SearchByGenre("punkrock")

	if len(outer) != 5 {
		t.Errorf("SearchByGenre(rock) returned %d tracks, want 5", len(outer))
	}
	if len(inner) != 5 {
		t.Errorf("SearchByGenre(punkrock) returned %d tracks, want 5", len(inner))
	}
	if !reflect.DeepEqual(trackIDs(outer), trackIDs(inner)) {
		t.Errorf("rock and punkrock results differ: %v vs %v", trackIDs(outer), trackIDs(inner))
	}

	if got := tree.SearchByGenre("unknown"); len(got) != 0 {
		t.Errorf("SearchByGenre(unknown) = %v, want empty", trackIDs(got))
	}
}

func TestSearchByMood(t *testing.T) {
	tree := newTestTree()
	tree.AddTrack("t1", []string{"rock"}, Payload{MoodTags: []string{"energetic", "happy"}})
	tree.AddTrack("t2", []string{"jazz"}, Payload{MoodTags: []string{"calm"}})
	tree.AddTrack("t3", []string{"rock"}, Payload{MoodTags: []string{"energetic"}})

	tests := []struct {
		mood string
		want []string
	}{
		{mood: "energetic", want: []string{"t1", "t3"}},
		{mood: "calm", want: []string{"t2"}},
		{mood: "melancholic", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.mood, func(t *testing.T) {
			got := trackIDs(tree.SearchByMood(tt.mood))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchByMood(%s) = %v, want %v", tt.mood, got, tt.want)
			}
		})
	}
}

func TestSearchByGenreAndMood(t *testing.T) {
	tree := newTestTree()
	tree.AddTrack("t1", []string{"rock"}, Payload{MoodTags: []string{"energetic"}})
	tree.AddTrack("t2", []string{"rock"}, Payload{MoodTags: []string{"calm"}})
	tree.AddTrack("t3", []string{"jazz"}, Payload{MoodTags: []string{"energetic"}})

	got := trackIDs(tree.SearchByGenreAndMood("rock", "energetic"))
	if !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("SearchByGenreAndMood = %v, want [t1]", got)
	}

	if got := tree.SearchByGenreAndMood("rock", "unknown"); len(got) != 0 {
		t.Errorf("unknown mood should yield empty, got %v", trackIDs(got))
	}
}

func TestBFS(t *testing.T) {
	// rock
	//   ├── direct0, direct1          (tracks)
	//   └── punkrock
	//         └── deep0               (track)
	tree := newTestTree()
	tree.AddTrack("direct0", []string{"rock"}, Payload{MoodTags: []string{"energetic"}})
	tree.AddTrack("direct1", []string{"rock"}, Payload{MoodTags: []string{"calm"}})
	tree.AddTrack("deep0", []string{"rock", "punkrock"}, Payload{MoodTags: []string{"energetic"}})

	tests := []struct {
		name     string
		genre    string
		mood     string
		maxDepth int
		want     []string
	}{
		{name: "depth 0 stays on direct tracks", genre: "rock", mood: "", maxDepth: 0, want: []string{"direct0", "direct1"}},
		{name: "depth 1 descends one category level", genre: "rock", mood: "", maxDepth: 1, want: []string{"direct0", "direct1", "deep0"}},
		{name: "mood filter applies", genre: "rock", mood: "energetic", maxDepth: 2, want: []string{"direct0", "deep0"}},
		{name: "start from nested category", genre: "punkrock", mood: "", maxDepth: 0, want: []string{"deep0"}},
		{name: "unknown genre", genre: "metal", mood: "", maxDepth: 2, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trackIDs(tree.BFS(tt.genre, tt.mood, tt.maxDepth))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BFS(%q, %q, %d) = %v, want %v", tt.genre, tt.mood, tt.maxDepth, got, tt.want)
			}
		})
	}
}

func TestDFS(t *testing.T) {
	// rock
	//   ├── alpha (category) ── a0 (track)
	//   └── beta  (category) ── b0 (track)
	tree := newTestTree()
	tree.AddTrack("a0", []string{"rock", "alpha"}, Payload{})
	tree.AddTrack("b0", []string{"rock", "beta"}, Payload{})

	t.Run("maxBreadth 1 expands one child per node", func(t *testing.T) {
		got := trackIDs(tree.DFS("rock", "", 1))
		// Only "alpha" (first by name) is explored, and only its first child.
		if !reflect.DeepEqual(got, []string{"a0"}) {
			t.Errorf("DFS = %v, want [a0]", got)
		}
	})

	t.Run("wide enough breadth reaches all tracks", func(t *testing.T) {
		got := trackIDs(tree.DFS("rock", "", 5))
		if !reflect.DeepEqual(got, []string{"a0", "b0"}) {
			t.Errorf("DFS = %v, want [a0 b0]", got)
		}
	})

	t.Run("unknown genre yields empty", func(t *testing.T) {
		if got := tree.DFS("metal", "", 5); len(got) != 0 {
			t.Errorf("DFS(metal) = %v, want empty", trackIDs(got))
		}
	})
}

func TestGenreAndMoodNames(t *testing.T) {
	tree := newTestTree()
	tree.AddTrack("t1", []string{"rock", "punkrock"}, Payload{MoodTags: []string{"energetic"}})
	tree.AddTrack("t2", []string{"jazz"}, Payload{MoodTags: []string{"calm", "dreamy"}})

	wantGenres := []string{"jazz", "punkrock", "rock"}
	if got := tree.GenreNames(); !reflect.DeepEqual(got, wantGenres) {
		t.Errorf("GenreNames() = %v, want %v", got, wantGenres)
	}

	wantMoods := []string{"calm", "dreamy", "energetic"}
	if got := tree.MoodNames(); !reflect.DeepEqual(got, wantMoods) {
		t.Errorf("MoodNames() = %v, want %v", got, wantMoods)
	}
}

func TestKindString(t *testing.T) {
	if KindCategory.String() != "category" || KindTrack.String() != "track" {
		t.Errorf("Kind.String() = %q/%q, want category/track", KindCategory, KindTrack)
	}
}
