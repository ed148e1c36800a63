package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"quizmaster/internal/domain"
)

// ErrClosed is returned for calls on a closed or broken connection.
var ErrClosed = errors.New("authority connection closed")

type inboundResponse struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// Client is a player's connection to the authority. It implements the
// engine's Authority, Assistant and Profiles interfaces. Calls may be issued
// concurrently; responses are matched by request id.
type Client struct {
	conn   *websocket.Conn
	player string

	send chan outboundMessage[any]
	done chan struct{}

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan inboundResponse
	closed  bool
	once    sync.Once
}

// Dial connects to the authority at serverURL (http(s):// or ws(s)://) as player.
func Dial(ctx context.Context, serverURL, player string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"player": {player}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial authority: %w", err)
	}

	c := &Client{
		conn:    conn,
		player:  player,
		send:    make(chan outboundMessage[any], 16),
		done:    make(chan struct{}),
		pending: make(map[uint64]chan inboundResponse),
	}
	go c.writeLoop()
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down and fails outstanding calls.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) writeLoop() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) readLoop() {
	defer c.failPending()
	for {
		var resp inboundResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.Close()
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			log.Printf("ws response for unknown request %d", resp.ID)
			continue
		}
		ch <- resp
	}
}

func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// call sends one request and decodes the result payload into out.
func (c *Client) call(ctx context.Context, op string, payload any, out any) error {
	ch := make(chan inboundResponse, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	select {
	case c.send <- outboundMessage[any]{Type: op, ID: id, Payload: payload}:
	case <-ctx.Done():
		forget()
		return ctx.Err()
	case <-c.done:
		forget()
		return ErrClosed
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Type == typeError {
			return &domain.AuthorityError{Code: resp.Code, Message: resp.Message}
		}
		if out == nil || len(resp.Payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Payload, out); err != nil {
			return fmt.Errorf("decode %s response: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		forget()
		return ctx.Err()
	}
}

func (c *Client) ResolveQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error) {
	var rec domain.QuizRecord
	err := c.call(ctx, opResolveQuiz, categoryPayload{Player: player, Category: category}, &rec)
	return rec, err
}

func (c *Client) CreateQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error) {
	var rec domain.QuizRecord
	err := c.call(ctx, opCreateQuiz, categoryPayload{Player: player, Category: category}, &rec)
	return rec, err
}

func (c *Client) VerifyAnswer(ctx context.Context, player, sessionID string, index int, selection string) (domain.Verdict, error) {
	var v domain.Verdict
	p := verifyPayload{Player: player, SessionID: sessionID, Index: index, Selection: selection}
	err := c.call(ctx, opVerifyAnswer, p, &v)
	return v, err
}

func (c *Client) RevealHint(ctx context.Context, player, sessionID string, index int, rarity domain.Rarity) ([]string, error) {
	var res hintResult
	p := hintPayload{Player: player, SessionID: sessionID, Index: index, Rarity: rarity}
	err := c.call(ctx, opRevealHint, p, &res)
	return res.Eliminated, err
}

func (c *Client) AssistReply(ctx context.Context, prompt string) (string, error) {
	var res assistResult
	err := c.call(ctx, opAssistReply, assistPayload{Prompt: prompt}, &res)
	return res.Reply, err
}

func (c *Client) Inventory(ctx context.Context, player string) (domain.Inventory, error) {
	inv := make(domain.Inventory)
	err := c.call(ctx, opInventory, playerPayload{Player: player}, &inv)
	return inv, err
}

func (c *Client) ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error {
	return c.call(ctx, opApplyInventory, inventoryDeltaPayload{Player: player, Delta: delta}, nil)
}

func (c *Client) ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error {
	return c.call(ctx, opApplyStats, statsDeltaPayload{Player: player, Delta: delta}, nil)
}

func (c *Client) Stats(ctx context.Context, player string) (domain.Stats, error) {
	var st domain.Stats
	err := c.call(ctx, opStats, playerPayload{Player: player}, &st)
	return st, err
}
