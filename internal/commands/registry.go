// Package commands holds the platform-neutral command and guild lifecycle
// handlers. Platform adapters translate their updates into a Request or a
// GuildEvent and dispatch it through a Registry.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ykvlv/calendar-bot/internal/delivery"
	"github.com/ykvlv/calendar-bot/internal/domain"
)

// ErrUnknownCommand is returned by Dispatch for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// Command names.
const (
	CmdCreate   = "create"
	CmdInit     = "init"
	CmdList     = "list"
	CmdRestrict = "restrict"
	CmdHelp     = "help"
	CmdInvite   = "invite"
)

// Guild lifecycle event kinds.
const (
	EventGuildCreate = "guild_create"
	EventGuildDelete = "guild_delete"
	EventGuildUpdate = "guild_update"
)

// Request is one command invocation.
type Request struct {
	Name      string
	GuildID   string // empty outside a guild
	GuildName string
	ChannelID string
	UserID    string
	// CanManage is true if the caller holds administrator, manage guild,
	// manage roles or manage messages.
	CanManage bool
	Options   map[string]string
}

// String returns the trimmed option value, or "" if absent.
func (r Request) String(name string) string {
	return strings.TrimSpace(r.Options[name])
}

// Int parses an integer option. ok is false if the option is absent.
func (r Request) Int(name string) (v int, ok bool, err error) {
	s := r.String(name)
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("option %s: %w", name, err)
	}
	return v, true, nil
}

// Bool parses a boolean option; absent means false.
func (r Request) Bool(name string) (bool, error) {
	s := r.String(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("option %s: %w", name, err)
	}
	return v, nil
}

// Reply is what a handler answers with.
type Reply struct {
	Content   string
	Embed     *delivery.Message
	Ephemeral bool
	// Pager is set on paginated replies.
	Pager *Pager
}

// GuildEvent reports a guild joining, leaving or changing.
type GuildEvent struct {
	Kind  string
	Guild domain.Guild
	// Unavailable is set when the platform reports an outage instead of a removal.
	Unavailable bool
}

// Handler answers a command. User mistakes are replies, not errors.
type Handler func(ctx context.Context, req Request) (Reply, error)

// EventHandler reacts to a guild lifecycle event.
type EventHandler func(ctx context.Context, ev GuildEvent) error

// Registry is the dispatch table of commands and guild events.
type Registry struct {
	commands map[string]Handler
	events   map[string]EventHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Handler),
		events:   make(map[string]EventHandler),
	}
}

// Handle registers h under name, replacing any previous handler.
func (r *Registry) Handle(name string, h Handler) {
	r.commands[name] = h
}

// On registers h for a guild event kind.
func (r *Registry) On(kind string, h EventHandler) {
	r.events[kind] = h
}

// Dispatch runs the handler registered for req.Name.
func (r *Registry) Dispatch(ctx context.Context, req Request) (Reply, error) {
	h, ok := r.commands[req.Name]
	if !ok {
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Name)
	}
	return h(ctx, req)
}

// Emit runs the handler registered for ev.Kind. Unhandled kinds are ignored.
func (r *Registry) Emit(ctx context.Context, ev GuildEvent) error {
	h, ok := r.events[ev.Kind]
	if !ok {
		return nil
	}
	return h(ctx, ev)
}

// Commands lists registered command names in sorted order.
func (r *Registry) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
