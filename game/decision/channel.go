package decision

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kurohane/tenka/game/world"
)

// RequestKind discriminates pending host requests.
type RequestKind int

const (
	RequestConfirm RequestKind = iota
	RequestSelectCharacter
	RequestSelectCastle
	RequestSelectTactic
)

// Request is one pending decision awaiting a host answer.
type Request struct {
	ID         string      `json:"id"`
	Kind       RequestKind `json:"kind"`
	Prompt     string      `json:"prompt"`
	Candidates []world.ID  `json:"candidates,omitempty"`
	Battle     *BattleView `json:"battle,omitempty"`

	reply chan Response
}

// Response answers a Request.
type Response struct {
	Accepted bool     `json:"accepted"`
	Choice   world.ID `json:"choice"`
	Tactic   Tactic   `json:"tactic"`
}

// Channel is a Provider that parks each question as a pending Request
// until the host answers through Resolve. The simulation goroutine
// suspends on the reply channel; other battles and the HTTP surface keep
// running.
type Channel struct {
	mu      sync.Mutex
	pending map[string]*Request
	queue   chan *Request
	notify  func(string)
}

// NewChannel creates a Channel provider. notify may be nil.
func NewChannel(notify func(string)) *Channel {
	return &Channel{
		pending: make(map[string]*Request),
		queue:   make(chan *Request, 32),
		notify:  notify,
	}
}

// Requests exposes the stream of newly parked requests.
func (c *Channel) Requests() <-chan *Request { return c.queue }

// Pending lists unresolved requests.
func (c *Channel) Pending() []*Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Request, 0, len(c.pending))
	for _, r := range c.pending {
		out = append(out, r)
	}
	return out
}

// Resolve answers a pending request by id.
func (c *Channel) Resolve(id string, resp Response) bool {
	c.mu.Lock()
	req, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	req.reply <- resp
	return true
}

func (c *Channel) park(req *Request) {
	req.ID = uuid.NewString()
	req.reply = make(chan Response, 1)
	c.mu.Lock()
	c.pending[req.ID] = req
	c.mu.Unlock()
	select {
	case c.queue <- req:
	default:
	}
}

func (c *Channel) await(ctx context.Context, req *Request) (Response, error) {
	c.park(req)
	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
		return Response{}, ctx.Err()
	case resp := <-req.reply:
		return resp, nil
	}
}

func (c *Channel) Confirm(ctx context.Context, prompt string) (bool, error) {
	resp, err := c.await(ctx, &Request{Kind: RequestConfirm, Prompt: prompt})
	if err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

func (c *Channel) SelectCharacter(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error) {
	resp, err := c.await(ctx, &Request{Kind: RequestSelectCharacter, Prompt: prompt, Candidates: candidates})
	if err != nil {
		return 0, false, err
	}
	return resp.Choice, resp.Accepted, nil
}

func (c *Channel) SelectCastle(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error) {
	resp, err := c.await(ctx, &Request{Kind: RequestSelectCastle, Prompt: prompt, Candidates: candidates})
	if err != nil {
		return 0, false, err
	}
	return resp.Choice, resp.Accepted, nil
}

func (c *Channel) SelectTactic(ctx context.Context, view BattleView) (Tactic, error) {
	resp, err := c.await(ctx, &Request{Kind: RequestSelectTactic, Battle: &view})
	if err != nil {
		return TacticAttack, err
	}
	return resp.Tactic, nil
}

func (c *Channel) Notify(message string) {
	if c.notify != nil {
		c.notify(message)
	}
}
