package models

import (
	"time"
)

// PostVote is one like/dislike row. At most one exists per (user, post) pair.
type PostVote struct {
	ID        int64     `json:"vote_id" db:"vote_id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Approve   bool      `json:"approve" db:"approve"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Votes partitions the votes on a post. Both lists are always non-nil.
type Votes struct {
	Likes    []PostVote `json:"likes"`
	Dislikes []PostVote `json:"dislikes"`
}

// VoteState is the per-(user, post) state of the toggle machine.
type VoteState string

const (
	NoVote   VoteState = "none"
	Liked    VoteState = "liked"
	Disliked VoteState = "disliked"
)

// VoteOp is the row mutation a toggle transition requires.
type VoteOp int

const (
	VoteInsert VoteOp = iota // no existing row, create one
	VoteUpdate               // flip approve in place, vote_id retained
	VoteDelete               // same direction twice, remove the row
)

// StateOf maps an existing vote row (or its absence) to a machine state.
func StateOf(v *PostVote) VoteState {
	switch {
	case v == nil:
		return NoVote
	case v.Approve:
		return Liked
	default:
		return Disliked
	}
}

// Transition computes the next state and the row operation for a vote cast in
// the given direction. Voting the same way twice toggles the vote off; voting
// the other way updates the row in place.
func Transition(prev VoteState, approve bool) (VoteState, VoteOp) {
	switch prev {
	case NoVote:
		if approve {
			return Liked, VoteInsert
		}
		return Disliked, VoteInsert
	case Liked:
		if approve {
			return NoVote, VoteDelete
		}
		return Disliked, VoteUpdate
	case Disliked:
		if approve {
			return Liked, VoteUpdate
		}
		return NoVote, VoteDelete
	}
	return NoVote, VoteDelete
}
