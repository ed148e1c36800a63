package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quizmaster/internal/domain"
)

// Authority is the set of use cases served over the socket.
type Authority interface {
	ResolveQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error)
	CreateQuiz(ctx context.Context, player, category string) (domain.QuizRecord, error)
	VerifyAnswer(ctx context.Context, player, sessionID string, index int, selection string) (domain.Verdict, error)
	RevealHint(ctx context.Context, player, sessionID string, index int, rarity domain.Rarity) ([]string, error)
	AssistReply(ctx context.Context, prompt string) (string, error)
	Inventory(ctx context.Context, player string) (domain.Inventory, error)
	ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error
	ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error
	Stats(ctx context.Context, player string) (domain.Stats, error)
}

type WSHandler struct {
	service  Authority
	upgrader websocket.Upgrader
}

func NewWSHandler(service Authority) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades HTTP requests to websockets and serves authority requests.
// Requests are handled concurrently; each response echoes its request id.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		http.Error(w, "missing player", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				cancel()
				// keep draining so handlers never block
				for range send {
				}
				return
			}
		}
	}()

	var inflight sync.WaitGroup
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		inflight.Add(1)
		go func(in inboundMessage) {
			defer inflight.Done()
			send <- h.dispatch(ctx, player, in)
		}(inbound)
	}

	cancel()
	inflight.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, player string, in inboundMessage) outboundMessage[any] {
	payload, err := h.handle(ctx, player, in)
	if err != nil {
		code := domain.CodeFor(err)
		if code == domain.CodeInternal {
			log.Printf("%s for %s failed: %v", in.Type, player, err)
		}
		return outboundMessage[any]{Type: typeError, ID: in.ID, Message: err.Error(), Code: code}
	}
	return outboundMessage[any]{Type: typeResult, ID: in.ID, Payload: payload}
}

func (h *WSHandler) handle(ctx context.Context, player string, in inboundMessage) (any, error) {
	switch in.Type {
	case opResolveQuiz, opCreateQuiz:
		var p categoryPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		if in.Type == opResolveQuiz {
			return h.service.ResolveQuiz(ctx, player, p.Category)
		}
		return h.service.CreateQuiz(ctx, player, p.Category)
	case opVerifyAnswer:
		var p verifyPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		return h.service.VerifyAnswer(ctx, player, p.SessionID, p.Index, p.Selection)
	case opRevealHint:
		var p hintPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		eliminated, err := h.service.RevealHint(ctx, player, p.SessionID, p.Index, p.Rarity)
		if err != nil {
			return nil, err
		}
		return hintResult{Eliminated: eliminated}, nil
	case opAssistReply:
		var p assistPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		reply, err := h.service.AssistReply(ctx, p.Prompt)
		if err != nil {
			return nil, err
		}
		return assistResult{Reply: reply}, nil
	case opInventory, opStats:
		var p playerPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		if in.Type == opStats {
			return h.service.Stats(ctx, player)
		}
		return h.service.Inventory(ctx, player)
	case opApplyInventory:
		var p inventoryDeltaPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		return empty{}, h.service.ApplyInventory(ctx, player, p.Delta)
	case opApplyStats:
		var p statsDeltaPayload
		if err := decode(in.Payload, &p); err != nil {
			return nil, err
		}
		if err := samePlayer(player, p.Player); err != nil {
			return nil, err
		}
		return empty{}, h.service.ApplyStats(ctx, player, p.Delta)
	}
	return nil, fmt.Errorf("%w: unsupported message type %q", domain.ErrInvalidRequest, in.Type)
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

// samePlayer rejects requests on behalf of another player than the connection's.
func samePlayer(conn, requested string) error {
	if requested != "" && requested != conn {
		return fmt.Errorf("%w: connection belongs to %q", domain.ErrInvalidRequest, conn)
	}
	return nil
}
