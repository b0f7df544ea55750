package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestion_NewAnswer(t *testing.T) {
	q := Question{ID: 7, Subject: "s", Content: "c"}
	a := q.NewAnswer("reply")

	require.Equal(t, uint(7), a.QuestionID)
	require.Equal(t, "reply", a.Content)
	require.Zero(t, a.ID)
	require.False(t, a.CreateDate.IsZero())
	require.Empty(t, q.AnswerList)
}

func TestQuestion_HasAnswer(t *testing.T) {
	q := Question{ID: 1, AnswerList: []Answer{{ID: 3}, {ID: 5}}}
	require.True(t, q.HasAnswer(5))
	require.False(t, q.HasAnswer(4))
	require.False(t, (&Question{}).HasAnswer(0))
}
