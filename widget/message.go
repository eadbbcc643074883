package widget

import "strings"

// FallbackText is shown in place of a reply when an exchange fails.
const FallbackText = "Sorry, something went wrong. Please try again."

// Sender identifies who produced a message.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

func (s Sender) String() string {
	if s == SenderBot {
		return "bot"
	}
	return "user"
}

// Message is one transcript entry. Messages are never edited once appended.
type Message struct {
	Text    string
	Sender  Sender
	IsError bool
}

// UserMessage returns a user-sent message.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// BotMessage returns a bot reply.
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}

// ErrorMessage returns the generic failure bubble.
func ErrorMessage() Message {
	return Message{Text: FallbackText, Sender: SenderBot, IsError: true}
}

// Node is a rendered message. Body is the content before card decoration;
// Width is the card width View was rendered at.
type Node struct {
	Message Message
	Body    string
	View    string
	Width   int
}

// Transcript is the append-only list of rendered messages.
type Transcript struct {
	nodes []Node
}

// Append adds n after every existing node.
func (t *Transcript) Append(n Node) {
	t.nodes = append(t.nodes, n)
}

// Len returns the number of nodes.
func (t Transcript) Len() int { return len(t.nodes) }

// Messages returns the messages in transcript order.
func (t Transcript) Messages() []Message {
	out := make([]Message, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.Message
	}
	return out
}

// Nodes returns a copy of the rendered nodes.
func (t Transcript) Nodes() []Node {
	return append([]Node(nil), t.nodes...)
}

// rerender replaces every node's rendering, keeping order and messages.
func (t *Transcript) rerender(render func(Message) Node) {
	for i, n := range t.nodes {
		t.nodes[i] = render(n.Message)
	}
}

// Content joins the node views for the transcript viewport.
func (t Transcript) Content() string {
	views := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		views[i] = n.View
	}
	return strings.Join(views, "\n")
}
