// Package relay fans realtime messages out to every connection in a shared
// group. WebRTC signaling (offer, answer, ice-candidate) and chat frames are
// forwarded unchanged; malformed frames are dropped.
package relay

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures members created by the relay.
type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Relay serves admitted connections against one group.
type Relay struct {
	group  Group
	logger *logrus.Logger
	opts   Options
}

// New creates a relay bound to group.
func New(group Group, opts Options, logger *logrus.Logger) *Relay {
	return &Relay{group: group, logger: logger, opts: opts}
}

// Group returns the group connections join.
func (r *Relay) Group() Group {
	return r.group
}

// Serve joins conn to the group and reads frames until the connection
// fails or is evicted. Membership is always released on return.
func (r *Relay) Serve(ctx context.Context, conn Conn, identity string) {
	m := NewMember(conn, identity, MemberOptions{
		SendBuffer:   r.opts.SendBuffer,
		WriteTimeout: r.opts.WriteTimeout,
		PingInterval: r.opts.PingInterval,
	})

	r.group.Join(m)
	defer r.group.Leave(m)

	log := r.logger.WithFields(logrus.Fields{
		"group":    r.group.Name(),
		"member":   m.ID,
		"identity": identity,
	})

	go m.writeLoop(func(err error) {
		log.WithError(err).Warn("Relay write failed, evicting member")
		r.group.Leave(m)
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-m.Done():
			default:
				log.WithError(err).Debug("Relay connection closed")
			}
			return
		}
		r.dispatch(ctx, log, Classify(data))
	}
}

func (r *Relay) dispatch(ctx context.Context, log *logrus.Entry, env Envelope) {
	switch {
	case env.Kind.IsSignal():
		r.handleSignal(ctx, log, env)
	case env.Kind == KindChat:
		r.handleChat(ctx, log, env)
	default:
		log.WithField("bytes", len(env.Raw)).Warn("Dropping malformed relay frame")
	}
}

func (r *Relay) handleSignal(ctx context.Context, log *logrus.Entry, env Envelope) {
	if err := r.group.Broadcast(ctx, env.Raw); err != nil {
		log.WithError(err).WithField("type", env.Type).Error("Failed to relay signaling message")
	}
}

func (r *Relay) handleChat(ctx context.Context, log *logrus.Entry, env Envelope) {
	if err := r.group.Broadcast(ctx, env.Raw); err != nil {
		log.WithError(err).WithField("type", env.Type).Error("Failed to relay chat message")
	}
}
