package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

// PageSize is the number of events per list page.
const PageSize = 4

const pagerPrefix = CmdList + ":"

// Pager describes the page shown by a list reply.
type Pager struct {
	Range domain.Range
	Page  int
	Pages int
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Page < p.Pages }

// ID encodes a request for page n of the same range, e.g. "list:future:2".
// Platforms use it as button payload.
func (p Pager) ID(n int) string {
	return pagerPrefix + string(p.Range) + ":" + strconv.Itoa(n)
}

// ParsePagerID decodes an ID into a list request.
func ParsePagerID(id string) (Request, bool) {
	rest, ok := strings.CutPrefix(id, pagerPrefix)
	if !ok {
		return Request{}, false
	}
	rng, page, ok := strings.Cut(rest, ":")
	if !ok {
		return Request{}, false
	}
	if _, err := strconv.Atoi(page); err != nil {
		return Request{}, false
	}
	return Request{
		Name:    CmdList,
		Options: map[string]string{OptRange: rng, OptPage: page},
	}, true
}

// pageCount returns the number of pages for n events.
func pageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

func (h *Handlers) list(ctx context.Context, req Request) (Reply, error) {
	if req.GuildID == "" {
		return ephemeral(textGuildOnly), nil
	}

	page, ok, err := req.Int(OptPage)
	if err != nil {
		return ephemeral(textInvalidOption, OptPage), nil
	}
	if !ok || page < 1 {
		page = 1
	}

	rng := domain.ParseRange(req.String(OptRange))
	events, err := h.repo.ListGuildEvents(ctx, req.GuildID, rng, h.now().UTC())
	if err != nil {
		return Reply{}, fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return ephemeral(textNoEvents), nil
	}

	total := pageCount(len(events))
	if page > total {
		page = total
	}
	from := (page - 1) * PageSize
	to := min(from+PageSize, len(events))

	msg := listMessage(events[from:to], page, total)
	return Reply{Embed: &msg, Pager: &Pager{Range: rng, Page: page, Pages: total}}, nil
}
