// ABOUTME: Router broadcasts visitor requests to the operator pool and resolves operator replies.
// ABOUTME: Per-operator send failures are logged and isolated; no outcome here is fatal.

package router

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teamspark/sparkdesk/internal/thread"
)

// Sender is the outbound transport. A failed send marks that one
// recipient unreachable; it never aborts the caller.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (messageID int, err error)
}

// Operators provides membership checks and fan-out snapshots.
type Operators interface {
	IsOperator(userID int64) bool
	Snapshot() []int64
}

// Threads stores and resolves the forwarded-message back-references.
type Threads interface {
	Record(operatorChatID int64, operatorMessageID int, th thread.Thread)
	Resolve(operatorChatID int64, operatorMessageID int) (thread.Thread, bool)
}

// BroadcastStatus classifies the outcome of a broadcast. Neither value
// is an error: a request with no operators online is still accepted.
type BroadcastStatus int

const (
	// BroadcastDelivered means at least the fan-out ran; Notified
	// carries how many operators actually received a copy.
	BroadcastDelivered BroadcastStatus = iota

	// BroadcastNoOperators means nobody is registered yet. The
	// visitor was told their message is saved.
	BroadcastNoOperators
)

func (s BroadcastStatus) String() string {
	switch s {
	case BroadcastDelivered:
		return "delivered"
	case BroadcastNoOperators:
		return "no_operators"
	default:
		return "unknown"
	}
}

// BroadcastResult reports what a broadcast did.
type BroadcastResult struct {
	Status   BroadcastStatus
	Notified int
	Ref      string // correlation id, also present in log fields
}

// RouteStatus classifies the outcome of resolving an operator reply.
// Only RouteDelivered reaches a visitor.
type RouteStatus int

const (
	// RouteDelivered means the reply was forwarded to the visitor.
	RouteDelivered RouteStatus = iota

	// RouteNotOperator means the sender never registered; replies
	// from unregistered users never trigger routing.
	RouteNotOperator

	// RouteNoSuchThread means the replied-to message is not a
	// forwarded copy. Ordinary replies fall through here.
	RouteNoSuchThread

	// RouteDeliveryFailed means the thread resolved but the send to
	// the visitor failed.
	RouteDeliveryFailed
)

func (s RouteStatus) String() string {
	switch s {
	case RouteDelivered:
		return "delivered"
	case RouteNotOperator:
		return "not_operator"
	case RouteNoSuchThread:
		return "no_such_thread"
	case RouteDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// Origin identifies the visitor message behind a broadcast.
type Origin struct {
	ChatID    int64
	MessageID int
	VisitorID int64
	Name      string
}

// Notices are the texts the router sends on its own behalf.
type Notices struct {
	// NoOperators is sent to the visitor when nobody is registered.
	NoOperators string

	// ReplyLabel prefixes operator replies routed back to visitors.
	ReplyLabel string
}

// Router connects the operator registry and thread table to the
// outbound transport.
type Router struct {
	sender    Sender
	operators Operators
	threads   Threads
	notices   Notices
	logger    *slog.Logger
}

// New creates a Router. Pass nil logger for default.
func New(sender Sender, operators Operators, threads Threads, notices Notices, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		sender:    sender,
		operators: operators,
		threads:   threads,
		notices:   notices,
		logger:    logger.With("component", "router"),
	}
}

// Broadcast acknowledges the visitor, then sends summaryText to every
// currently registered operator, recording one thread entry per copy
// delivered. The operator set is snapshotted at call time; operators
// registering mid-broadcast do not receive this one. One unreachable
// operator never blocks delivery to the rest.
func (r *Router) Broadcast(ctx context.Context, origin Origin, summaryText, ackText string) BroadcastResult {
	ref := uuid.New().String()
	logger := r.logger.With("ref", ref, "visitor_id", origin.VisitorID, "chat_id", origin.ChatID)

	// The visitor is acknowledged no matter what happens next.
	if _, err := r.sender.SendText(ctx, origin.ChatID, ackText); err != nil {
		logger.Error("failed to ack visitor", "error", err)
	}

	operators := r.operators.Snapshot()
	if len(operators) == 0 {
		logger.Warn("no operators registered, request parked")
		if _, err := r.sender.SendText(ctx, origin.ChatID, r.notices.NoOperators); err != nil {
			logger.Error("failed to send no-operators notice", "error", err)
		}
		return BroadcastResult{Status: BroadcastNoOperators, Ref: ref}
	}

	notified := 0
	for _, operatorID := range operators {
		// Operator chats are direct chats: chat id == user id.
		msgID, err := r.sender.SendText(ctx, operatorID, summaryText)
		if err != nil {
			logger.Error("failed to notify operator",
				"error", err,
				"operator_id", operatorID,
			)
			continue
		}

		r.threads.Record(operatorID, msgID, thread.Thread{
			VisitorChatID:    origin.ChatID,
			VisitorMessageID: origin.MessageID,
			VisitorName:      origin.Name,
			Text:             summaryText,
		})
		notified++
	}

	logger.Info("request broadcast",
		"operators", len(operators),
		"notified", notified,
	)
	return BroadcastResult{Status: BroadcastDelivered, Notified: notified, Ref: ref}
}

// Resolve routes an operator's reply back to the visitor behind the
// replied-to message. Only registered operators trigger routing, and
// only replies to recorded forwarded copies resolve to a thread.
func (r *Router) Resolve(ctx context.Context, operatorID, operatorChatID int64, repliedToMessageID int, replyText string) RouteStatus {
	if !r.operators.IsOperator(operatorID) {
		return RouteNotOperator
	}

	th, ok := r.threads.Resolve(operatorChatID, repliedToMessageID)
	if !ok {
		return RouteNoSuchThread
	}

	text := replyText
	if r.notices.ReplyLabel != "" {
		text = r.notices.ReplyLabel + "\n" + replyText
	}

	if _, err := r.sender.SendText(ctx, th.VisitorChatID, text); err != nil {
		r.logger.Error("failed to deliver operator reply",
			"error", err,
			"operator_id", operatorID,
			"visitor_chat_id", th.VisitorChatID,
		)
		return RouteDeliveryFailed
	}

	r.logger.Info("operator reply routed",
		"operator_id", operatorID,
		"visitor_chat_id", th.VisitorChatID,
	)
	return RouteDelivered
}
