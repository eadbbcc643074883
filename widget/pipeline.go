package widget

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"chatwidget/chatapi"
	"chatwidget/identity"
)

// Exchanger performs one chat round trip. *chatapi.Client implements it.
type Exchanger interface {
	Exchange(ctx context.Context, botID, text string) (*chatapi.Exchange, error)
}

// Ordering decides when replies to concurrent sends are appended.
type Ordering int

const (
	// OrderIssue appends replies strictly in the order their sends were issued,
	// holding early arrivals until every earlier reply is in.
	OrderIssue Ordering = iota
	// OrderArrival appends replies as they arrive. A slow first reply can land
	// after a fast second one.
	OrderArrival
)

// ParseOrdering maps "issue" and "arrival" to an Ordering. Anything else is OrderIssue.
func ParseOrdering(s string) Ordering {
	if strings.EqualFold(strings.TrimSpace(s), "arrival") {
		return OrderArrival
	}
	return OrderIssue
}

func (o Ordering) String() string {
	if o == OrderArrival {
		return "arrival"
	}
	return "issue"
}

// ReplyMsg carries the outcome of one exchange back to Update.
type ReplyMsg struct {
	Seq      uint64
	Exchange *chatapi.Exchange
	Err      error
	Node     Node
}

// Message is the transcript message for this outcome: the reply text on
// success, the generic error bubble otherwise.
func (r ReplyMsg) Message() Message {
	if r.Err != nil || r.Exchange == nil {
		return ErrorMessage()
	}
	return BotMessage(r.Exchange.Reply)
}

// Pipeline issues exchanges and sequences their replies. It never retries,
// cancels or times out an exchange.
type Pipeline struct {
	exchanger Exchanger
	botID     identity.BotID
	ordering  Ordering
	nextSeq   uint64
	nextOut   uint64
	held      map[uint64]ReplyMsg
	inFlight  int
}

// NewPipeline creates a pipeline talking to ex on behalf of botID.
func NewPipeline(ex Exchanger, botID identity.BotID, ordering Ordering) Pipeline {
	return Pipeline{
		exchanger: ex,
		botID:     botID,
		ordering:  ordering,
		held:      make(map[uint64]ReplyMsg),
	}
}

// InFlight returns the number of exchanges without a reply yet.
func (p Pipeline) InFlight() int { return p.inFlight }

// Ordering returns the reply ordering policy.
func (p Pipeline) Ordering() Ordering { return p.ordering }

// Send returns the user message to append now and the command performing
// the exchange. ok is false for blank input, in which case nothing happens.
func (p *Pipeline) Send(text string) (user Message, cmd tea.Cmd, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, nil, false
	}

	seq := p.nextSeq
	p.nextSeq++
	p.inFlight++

	ex, botID := p.exchanger, string(p.botID)
	cmd = func() tea.Msg {
		exchange, err := ex.Exchange(context.Background(), botID, text)
		return ReplyMsg{Seq: seq, Exchange: exchange, Err: err}
	}
	return UserMessage(text), cmd, true
}

// Receive records an arrived reply and returns the replies that may now be
// appended, in append order.
func (p *Pipeline) Receive(r ReplyMsg) []ReplyMsg {
	p.inFlight--
	if p.ordering == OrderArrival {
		return []ReplyMsg{r}
	}

	p.held[r.Seq] = r
	var out []ReplyMsg
	for {
		next, ok := p.held[p.nextOut]
		if !ok {
			return out
		}
		delete(p.held, p.nextOut)
		p.nextOut++
		out = append(out, next)
	}
}
