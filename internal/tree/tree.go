// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tree owns the canonical topic graph: the branching history of
// explored topics and each node's generated-content cache.
package tree

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// =============================================================================
// NODE TYPES
// =============================================================================

// CardData is one rendered content section. Content grows by appending
// streamed chunks and is never truncated mid-generation. Ordering of
// cards is insertion order and is significant; the first card is
// typically an untitled lead section.
type CardData struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WordCounts holds the word accounting for one generation. InputEstimate
// is a prompt-size heuristic, never a measured count; Output is the
// exact whitespace-tokenized count of streamed text. The two are kept
// separate on purpose.
type WordCounts struct {
	InputEstimate int `json:"input_estimate"`
	Output        int `json:"output"`
}

// NodeCache holds a node's completed generation. Populated once after
// the first successful generation; the only sanctioned replacement path
// is the explicit user-initiated modify operation.
type NodeCache struct {
	Cards          []CardData    `json:"cards"`
	ASCIIArt       string        `json:"ascii_art"`
	GenerationTime time.Duration `json:"generation_time"`
	Words          WordCounts    `json:"words"`
}

// IsWarm reports whether the cache is complete enough to short-circuit
// a generation. Both cards and art must be present; a partial cache is
// treated as cold.
func (c *NodeCache) IsWarm() bool {
	return c != nil && len(c.Cards) > 0 && c.ASCIIArt != ""
}

// TopicNode is one explored topic instance, positioned in the tree.
type TopicNode struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Timestamp time.Time  `json:"timestamp"`
	ParentID  string     `json:"parent_id,omitempty"` // empty for roots
	Children  []string   `json:"children,omitempty"`  // insertion order = branch-creation order
	Cache     *NodeCache `json:"cache,omitempty"`
}

// IsRoot reports whether the node is a tree root.
func (n *TopicNode) IsRoot() bool {
	return n.ParentID == ""
}

// newNodeID derives a unique, stable id from the topic string and the
// creation time. The timestamp component keeps repeated topics distinct.
func newNodeID(topic string, ts time.Time) string {
	slug := util.Slugify(topic)
	if slug == "" {
		slug = "topic"
	}
	return fmt.Sprintf("%s_%d", slug, ts.UnixNano())
}

// =============================================================================
// NAVIGATION STATE
// =============================================================================

// NavigationState is the session-scoped tree of explored topics. It is
// the sole owner of all TopicNode instances; no other component retains
// its own copy of mutable node state. All mutation goes through its
// methods, which are called only from the UI event loop, so no locking
// is needed.
type NavigationState struct {
	NodesByID     map[string]*TopicNode `json:"nodes_by_id"`
	CurrentNodeID string                `json:"current_node_id"`
	RootNodeIDs   []string              `json:"root_node_ids"`
}

// NewNavigationState creates an empty tree.
func NewNavigationState() *NavigationState {
	return &NavigationState{
		NodesByID: make(map[string]*TopicNode),
	}
}

// AddTopic constructs a new node for topic, appends it under parentID
// (or to the root list when parentID is empty), makes it current, and
// returns its id. Existing node identity is never mutated; the tree
// only grows. A blank topic is a no-op returning "".
func (s *NavigationState) AddTopic(topic, parentID string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}

	// An unknown parent id would orphan the node; treat it as a root
	// branch the same way a stale navigation click is tolerated.
	if parentID != "" {
		if _, ok := s.NodesByID[parentID]; !ok {
			parentID = ""
		}
	}

	now := time.Now()
	id := newNodeID(topic, now)
	// Clock granularity can hand two rapid additions the same
	// nanosecond; nudge until the id is unique.
	for _, taken := s.NodesByID[id]; taken; _, taken = s.NodesByID[id] {
		now = now.Add(time.Nanosecond)
		id = newNodeID(topic, now)
	}
	node := &TopicNode{
		ID:        id,
		Topic:     topic,
		Timestamp: now,
		ParentID:  parentID,
	}

	s.NodesByID[node.ID] = node
	if parentID == "" {
		s.RootNodeIDs = append(s.RootNodeIDs, node.ID)
	} else {
		parent := s.NodesByID[parentID]
		parent.Children = append(parent.Children, node.ID)
	}
	s.CurrentNodeID = node.ID
	return node.ID
}

// NavigateTo sets the current node. An unknown id is a tolerated no-op:
// it is a race between stale UI and tree mutation, not an error.
func (s *NavigationState) NavigateTo(nodeID string) {
	if _, ok := s.NodesByID[nodeID]; ok {
		s.CurrentNodeID = nodeID
	}
}

// Node returns the node for id, or nil if unknown.
func (s *NavigationState) Node(nodeID string) *TopicNode {
	return s.NodesByID[nodeID]
}

// CurrentNode returns the node the viewport is displaying, or nil
// before the first topic is established.
func (s *NavigationState) CurrentNode() *TopicNode {
	if s.CurrentNodeID == "" {
		return nil
	}
	return s.NodesByID[s.CurrentNodeID]
}

// NodePath walks parent links from nodeID to its root and returns the
// chain in root-to-leaf order. For a root node the result is a single
// element. Unknown ids yield nil.
func (s *NavigationState) NodePath(nodeID string) []*TopicNode {
	node, ok := s.NodesByID[nodeID]
	if !ok {
		return nil
	}

	var path []*TopicNode
	// Bound the walk by tree size so a corrupted parent cycle cannot
	// loop forever.
	for hops := 0; node != nil && hops <= len(s.NodesByID); hops++ {
		path = append(path, node)
		if node.ParentID == "" {
			break
		}
		node = s.NodesByID[node.ParentID]
	}

	// Reverse to root-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ParentTopic returns the topic of nodeID's immediate parent, used as
// the "previous topic" context for continuation prompts. Empty for
// roots and unknown ids.
func (s *NavigationState) ParentTopic(nodeID string) string {
	node, ok := s.NodesByID[nodeID]
	if !ok || node.ParentID == "" {
		return ""
	}
	if parent := s.NodesByID[node.ParentID]; parent != nil {
		return parent.Topic
	}
	return ""
}

// RecentNodes returns all nodes sorted by creation time descending,
// truncated to limit. A limit <= 0 returns every node.
func (s *NavigationState) RecentNodes(limit int) []*TopicNode {
	nodes := make([]*TopicNode, 0, len(s.NodesByID))
	for _, n := range s.NodesByID {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Timestamp.Equal(nodes[j].Timestamp) {
			return nodes[i].ID > nodes[j].ID
		}
		return nodes[i].Timestamp.After(nodes[j].Timestamp)
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// ChronologicalNodes returns all nodes oldest-first, for the combined
// one-page view.
func (s *NavigationState) ChronologicalNodes() []*TopicNode {
	nodes := s.RecentNodes(0)
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// UpdateNodeContent merges cache into the node's cache. Idempotent:
// applying the same payload twice leaves the observable state of one
// application. Fields absent from the payload survive, which is how the
// modify path replaces cards while keeping art and timing. Unknown ids
// are a no-op.
func (s *NavigationState) UpdateNodeContent(nodeID string, cache NodeCache) {
	node, ok := s.NodesByID[nodeID]
	if !ok {
		return
	}
	if node.Cache == nil {
		node.Cache = &NodeCache{}
	}
	if cache.Cards != nil {
		node.Cache.Cards = cache.Cards
	}
	if cache.ASCIIArt != "" {
		node.Cache.ASCIIArt = cache.ASCIIArt
	}
	if cache.GenerationTime != 0 {
		node.Cache.GenerationTime = cache.GenerationTime
	}
	if cache.Words != (WordCounts{}) {
		node.Cache.Words = cache.Words
	}
}

// ClearHistory resets to the empty state. Destructive and unconditional.
func (s *NavigationState) ClearHistory() {
	s.NodesByID = make(map[string]*TopicNode)
	s.CurrentNodeID = ""
	s.RootNodeIDs = nil
}

// Len returns the number of nodes in the tree.
func (s *NavigationState) Len() int {
	return len(s.NodesByID)
}

// Normalize repairs a rehydrated state: a nil node map becomes an empty
// one and a dangling current pointer is cleared. Persisted state from
// older versions is otherwise trusted verbatim.
func (s *NavigationState) Normalize() {
	if s.NodesByID == nil {
		s.NodesByID = make(map[string]*TopicNode)
	}
	if s.CurrentNodeID != "" {
		if _, ok := s.NodesByID[s.CurrentNodeID]; !ok {
			s.CurrentNodeID = ""
		}
	}
}
