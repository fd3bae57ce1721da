package relay

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Group is a named set of live members that receive every broadcast.
type Group interface {
	Name() string
	Join(m *Member)
	Leave(m *Member)
	Broadcast(ctx context.Context, data []byte) error
	Count() int
	CloseAll()
}

// LocalGroup keeps membership in process memory.
type LocalGroup struct {
	name    string
	logger  *logrus.Logger
	mu      sync.RWMutex
	members map[string]*Member
}

// NewLocalGroup creates an empty group.
func NewLocalGroup(name string, logger *logrus.Logger) *LocalGroup {
	return &LocalGroup{
		name:    name,
		logger:  logger,
		members: make(map[string]*Member),
	}
}

func (g *LocalGroup) Name() string {
	return g.name
}

// Join adds m to the group.
func (g *LocalGroup) Join(m *Member) {
	g.mu.Lock()
	g.members[m.ID] = m
	count := len(g.members)
	g.mu.Unlock()

	g.logger.WithFields(logrus.Fields{
		"group":    g.name,
		"member":   m.ID,
		"identity": m.Identity,
		"members":  count,
	}).Debug("Relay member joined")
}

// Leave removes m and closes its connection. Calling it more than once is
// harmless.
func (g *LocalGroup) Leave(m *Member) {
	g.mu.Lock()
	_, ok := g.members[m.ID]
	delete(g.members, m.ID)
	count := len(g.members)
	g.mu.Unlock()

	m.close()

	if ok {
		g.logger.WithFields(logrus.Fields{
			"group":    g.name,
			"member":   m.ID,
			"identity": m.Identity,
			"members":  count,
		}).Debug("Relay member left")
	}
}

// Broadcast queues data for every current member. Members whose buffer is
// full are evicted.
func (g *LocalGroup) Broadcast(_ context.Context, data []byte) error {
	g.deliver(data)
	return nil
}

func (g *LocalGroup) deliver(data []byte) {
	g.mu.RLock()
	snapshot := make([]*Member, 0, len(g.members))
	for _, m := range g.members {
		snapshot = append(snapshot, m)
	}
	g.mu.RUnlock()

	for _, m := range snapshot {
		if !m.enqueue(data) {
			g.logger.WithFields(logrus.Fields{
				"group":    g.name,
				"member":   m.ID,
				"identity": m.Identity,
			}).Warn("Relay member too slow, evicting")
			g.Leave(m)
		}
	}
}

// Count returns the number of members.
func (g *LocalGroup) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// CloseAll evicts every member and closes its connection.
func (g *LocalGroup) CloseAll() {
	g.mu.Lock()
	snapshot := make([]*Member, 0, len(g.members))
	for id, m := range g.members {
		snapshot = append(snapshot, m)
		delete(g.members, id)
	}
	g.mu.Unlock()

	for _, m := range snapshot {
		m.close()
	}
}
