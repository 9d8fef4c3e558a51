package service

import (
	"sort"

	"github.com/google/uuid"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
)

const (
	ReplySortNewest  = "newest"
	ReplySortPopular = "popular"

	// Levels rendered inline before children collapse behind a hasMore marker
	DefaultReplyDepth = 3

	deletedContentMarker = "[deleted]"
)

type ReplyTreeOptions struct {
	Sort         string
	MaxDepth     int // 0 means unlimited
	UpvotedIDs   map[uuid.UUID]bool
	BestAnswerID *uuid.UUID
}

// BuildReplyTree materializes the flat reply rows of a discussion into the
// nested shape the frontend renders. Soft-deleted replies survive as
// tombstones while they still shelter live descendants and are pruned with
// their subtree otherwise. Replies whose parent row is gone are promoted to
// the root level instead of being dropped.
func BuildReplyTree(replies []*model.Reply, opts ReplyTreeOptions) []*dto.ReplyResponse {
	arena := newReplyArena(replies)
	return arena.render(arena.roots, 1, opts)
}

// BuildReplySubtree renders the node behind a hasMore marker together with
// its descendants, the depth cap applied relative to that node.
func BuildReplySubtree(replies []*model.Reply, rootID uuid.UUID, opts ReplyTreeOptions) *dto.ReplyResponse {
	arena := newReplyArena(replies)
	if !arena.keep[rootID] {
		return nil
	}
	rendered := arena.render([]uuid.UUID{rootID}, 1, opts)
	if len(rendered) == 0 {
		return nil
	}
	return rendered[0]
}

// replyArena indexes the flat rows once so the tree assembles in linear
// passes: nodes by id, child ids by parent id.
type replyArena struct {
	nodes    map[uuid.UUID]*model.Reply
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
	keep     map[uuid.UUID]bool
}

func newReplyArena(replies []*model.Reply) *replyArena {
	a := &replyArena{
		nodes:    make(map[uuid.UUID]*model.Reply, len(replies)),
		children: make(map[uuid.UUID][]uuid.UUID),
		keep:     make(map[uuid.UUID]bool, len(replies)),
	}

	for _, r := range replies {
		a.nodes[r.ID] = r
	}
	for _, r := range replies {
		if r.ParentReplyID == nil {
			a.roots = append(a.roots, r.ID)
			continue
		}
		if _, ok := a.nodes[*r.ParentReplyID]; !ok {
			// Orphan: parent row was removed without a tombstone
			a.roots = append(a.roots, r.ID)
			continue
		}
		a.children[*r.ParentReplyID] = append(a.children[*r.ParentReplyID], r.ID)
	}

	a.markKept()
	return a
}

// markKept runs a post-order pass with an explicit stack: a node survives if
// it is live, or if any descendant survived. The visited set also keeps a
// corrupt parent cycle from looping.
func (a *replyArena) markKept() {
	type frame struct {
		id       uuid.UUID
		expanded bool
	}

	visited := make(map[uuid.UUID]bool, len(a.nodes))
	stack := make([]frame, 0, len(a.nodes))
	for _, root := range a.roots {
		stack = append(stack, frame{id: root})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.expanded {
			keep := !a.nodes[f.id].IsDeleted
			if !keep {
				for _, child := range a.children[f.id] {
					if a.keep[child] {
						keep = true
						break
					}
				}
			}
			a.keep[f.id] = keep
			continue
		}

		if visited[f.id] {
			continue
		}
		visited[f.id] = true

		stack = append(stack, frame{id: f.id, expanded: true})
		for _, child := range a.children[f.id] {
			stack = append(stack, frame{id: child})
		}
	}
}

func (a *replyArena) keptChildren(id uuid.UUID) []uuid.UUID {
	var kept []uuid.UUID
	for _, child := range a.children[id] {
		if a.keep[child] {
			kept = append(kept, child)
		}
	}
	return kept
}

func (a *replyArena) sortIDs(ids []uuid.UUID, sortBy string) {
	if sortBy == ReplySortPopular {
		sort.SliceStable(ids, func(i, j int) bool {
			ri, rj := a.nodes[ids[i]], a.nodes[ids[j]]
			if ri.UpvoteCount != rj.UpvoteCount {
				return ri.UpvoteCount > rj.UpvoteCount
			}
			return ri.CreatedAt.Before(rj.CreatedAt)
		})
		return
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return a.nodes[ids[i]].CreatedAt.Before(a.nodes[ids[j]].CreatedAt)
	})
}

// render assembles DTO nodes iteratively; the stack depth is independent of
// the tree depth, so hostile parent chains cannot exhaust the call stack.
func (a *replyArena) render(ids []uuid.UUID, baseDepth int, opts ReplyTreeOptions) []*dto.ReplyResponse {
	type frame struct {
		id     uuid.UUID
		depth  int
		parent *dto.ReplyResponse
	}

	var out []*dto.ReplyResponse

	kept := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if a.keep[id] {
			kept = append(kept, id)
		}
	}
	a.sortIDs(kept, opts.Sort)

	// Children pushed in reverse so the LIFO pop order matches sort order
	stack := make([]frame, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: kept[i], depth: baseDepth})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := a.toNode(f.id, opts)
		if f.parent == nil {
			out = append(out, node)
		} else {
			f.parent.Replies = append(f.parent.Replies, node)
		}

		childIDs := a.keptChildren(f.id)
		if len(childIDs) == 0 {
			continue
		}
		if opts.MaxDepth > 0 && f.depth >= opts.MaxDepth {
			// Deeper levels are not lost, just deferred to the subtree fetch
			node.HasMore = true
			continue
		}

		a.sortIDs(childIDs, opts.Sort)
		for i := len(childIDs) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: childIDs[i], depth: f.depth + 1, parent: node})
		}
	}

	return out
}

func (a *replyArena) toNode(id uuid.UUID, opts ReplyTreeOptions) *dto.ReplyResponse {
	r := a.nodes[id]

	node := &dto.ReplyResponse{
		ID:            r.ID,
		ParentReplyID: r.ParentReplyID,
		UpvoteCount:   r.UpvoteCount,
		ReplyCount:    r.ReplyCount,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}

	if r.IsDeleted {
		node.Content = deletedContentMarker
		node.IsDeleted = true
		return node
	}

	node.Content = r.Content
	node.IsEdited = r.IsEdited
	node.HasUpvoted = opts.UpvotedIDs[r.ID]
	node.IsBestAnswer = opts.BestAnswerID != nil && *opts.BestAnswerID == r.ID
	if r.User.Username != "" {
		node.Author = &dto.AuthorResponse{
			Username:  r.User.Username,
			FullName:  r.User.FullName,
			Practice:  r.User.Practice,
			AvatarURL: r.User.AvatarURL,
		}
	}

	return node
}
