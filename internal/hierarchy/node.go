// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

package hierarchy

// Kind discriminates category nodes from track leaves.
type Kind int

const (
	// KindCategory is a genre or subgenre node.
	KindCategory Kind = iota
	// KindTrack is a leaf node representing a single track.
	KindTrack
)

// String returns a human-readable name for the node kind.
func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindTrack:
		return "track"
	default:
		return "unknown"
	}
}

// Payload carries the attributes of a track leaf.
type Payload struct {
	// Title is the display name of the track.
	Title string

	// Artist is the display name of the performing artist.
	Artist string

	// MoodTags is the set of mood labels attached to the track.
	MoodTags []string

	// Features maps audio feature names (energy, valence, tempo, ...)
	// to their numeric values.
	Features map[string]float64

	// Duration is the track length in seconds.
	Duration float64
}

// Node is a single node in the genre hierarchy: either a category or a
// track leaf. The tree owns every node through the Children slices;
// Parent is a non-owning back-reference. Track nodes carry a Payload
// and have no children. Sibling names are unique.
type Node struct {
	Name     string
	Kind     Kind
	Parent   *Node
	Children []*Node
	Payload  *Payload
}

// HasMood reports whether the node is a track tagged with mood.
func (n *Node) HasMood(mood string) bool {
	if n.Kind != KindTrack || n.Payload == nil {
		return false
	}
	for _, tag := range n.Payload.MoodTags {
		if tag == mood {
			return true
		}
	}
	return false
}

// addChild appends child in insertion order and sets its back-reference.
func (n *Node) addChild(child *Node) {
	n.Children = append(n.Children, child)
	child.Parent = n
}

// removeChild detaches child from n, preserving sibling order.
func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}
