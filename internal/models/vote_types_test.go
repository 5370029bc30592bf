package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, NoVote, StateOf(nil))
	assert.Equal(t, Liked, StateOf(&PostVote{Approve: true}))
	assert.Equal(t, Disliked, StateOf(&PostVote{Approve: false}))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		prev    VoteState
		approve bool
		next    VoteState
		op      VoteOp
	}{
		{"first like", NoVote, true, Liked, VoteInsert},
		{"first dislike", NoVote, false, Disliked, VoteInsert},
		{"like toggles off", Liked, true, NoVote, VoteDelete},
		{"like flips to dislike", Liked, false, Disliked, VoteUpdate},
		{"dislike flips to like", Disliked, true, Liked, VoteUpdate},
		{"dislike toggles off", Disliked, false, NoVote, VoteDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, op := Transition(tt.prev, tt.approve)
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.op, op)
		})
	}
}

func TestTransitionRoundTrip(t *testing.T) {
	// Casting the same vote twice always lands back on no vote.
	for _, approve := range []bool{true, false} {
		mid, _ := Transition(NoVote, approve)
		final, op := Transition(mid, approve)
		assert.Equal(t, NoVote, final)
		assert.Equal(t, VoteDelete, op)
	}
}
