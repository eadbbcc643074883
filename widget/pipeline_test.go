package widget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwidget/chatapi"
)

func TestParseOrdering(t *testing.T) {
	assert.Equal(t, OrderArrival, ParseOrdering("arrival"))
	assert.Equal(t, OrderArrival, ParseOrdering(" Arrival "))
	assert.Equal(t, OrderIssue, ParseOrdering("issue"))
	assert.Equal(t, OrderIssue, ParseOrdering(""))
	assert.Equal(t, OrderIssue, ParseOrdering("bogus"))
	assert.Equal(t, "arrival", OrderArrival.String())
	assert.Equal(t, "issue", OrderIssue.String())
}

func TestReplyMsgMessage(t *testing.T) {
	ok := ReplyMsg{Exchange: &chatapi.Exchange{Reply: "hi"}}
	assert.Equal(t, BotMessage("hi"), ok.Message())

	failed := ReplyMsg{Exchange: &chatapi.Exchange{Reply: "partial"}, Err: errors.New("x")}
	assert.Equal(t, ErrorMessage(), failed.Message())

	assert.Equal(t, ErrorMessage(), ReplyMsg{}.Message())
}

func TestPipelineIssueOrderHoldsEarlyReplies(t *testing.T) {
	p := NewPipeline(&fakeExchanger{reply: echo}, "b", OrderIssue)
	for _, text := range []string{"a", "b", "c"} {
		_, _, ok := p.Send(text)
		require.True(t, ok)
	}
	assert.Equal(t, 3, p.InFlight())

	assert.Empty(t, p.Receive(ReplyMsg{Seq: 2}))
	assert.Empty(t, p.Receive(ReplyMsg{Seq: 1}))

	out := p.Receive(ReplyMsg{Seq: 0})
	require.Len(t, out, 3)
	for i, r := range out {
		assert.Equal(t, uint64(i), r.Seq)
	}
	assert.Zero(t, p.InFlight())
}

func TestPipelineArrivalOrderPassesThrough(t *testing.T) {
	p := NewPipeline(&fakeExchanger{reply: echo}, "b", OrderArrival)
	p.Send("a")
	p.Send("b")

	out := p.Receive(ReplyMsg{Seq: 1})
	require.Len(t, out, 1)
	assert.Equal(t, uint64(1), out[0].Seq)
}

func TestPipelineSendCommand(t *testing.T) {
	ex := &fakeExchanger{reply: echo}
	p := NewPipeline(ex, "support", OrderIssue)

	user, cmd, ok := p.Send("  hey ")
	require.True(t, ok)
	assert.Equal(t, UserMessage("hey"), user)
	assert.Empty(t, ex.Calls())

	r, isReply := cmd().(ReplyMsg)
	require.True(t, isReply)
	assert.Equal(t, []string{"support:hey"}, ex.Calls())
	assert.NoError(t, r.Err)
	assert.Equal(t, "echo: hey", r.Exchange.Reply)
}
