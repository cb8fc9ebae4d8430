package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
)

type createInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=1000"`
}

type dateFields struct {
	year, month, day, hour, minute int
}

func (d dateFields) valid() bool {
	return domain.ValidateCalendarFields(d.year, d.month, d.day, d.hour, d.minute)
}

// instant converts entered fields to UTC. Timed fields are display-zone wall
// clock. All-day dates are stored at UTC midnight of the entered date.
func (d dateFields) instant(allDay bool) time.Time {
	if allDay {
		return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.year, time.Month(d.month), d.day, d.hour, d.minute, 0, 0, domain.DisplayZone).UTC()
}

// readDate reads the five date options sharing prefix names.
func readDate(req Request, names [5]string) (dateFields, *Reply) {
	var v [5]int
	for i, name := range names {
		n, ok, err := req.Int(name)
		if !ok {
			r := ephemeral(textMissingOption, name)
			return dateFields{}, &r
		}
		if err != nil {
			r := ephemeral(textInvalidOption, name)
			return dateFields{}, &r
		}
		v[i] = n
	}
	return dateFields{v[0], v[1], v[2], v[3], v[4]}, nil
}

func (h *Handlers) create(ctx context.Context, req Request) (Reply, error) {
	if req.GuildID == "" {
		return ephemeral(textGuildOnly), nil
	}
	restricted, err := h.restricted(ctx, req.GuildID)
	if err != nil {
		return Reply{}, err
	}
	if restricted && !req.CanManage {
		return ephemeral(textNeedManage), nil
	}

	in := createInput{Name: req.String(OptName), Description: req.String(OptDescription)}
	if r := h.validateInput(in); r != nil {
		return *r, nil
	}

	start, r := readDate(req, [5]string{OptStartYear, OptStartMonth, OptStartDay, OptStartHour, OptStartMinute})
	if r != nil {
		return *r, nil
	}
	end, r := readDate(req, [5]string{OptEndYear, OptEndMonth, OptEndDay, OptEndHour, OptEndMinute})
	if r != nil {
		return *r, nil
	}
	if !start.valid() {
		return ephemeral(textInvalidStart, start.year, start.month, start.day, start.hour, start.minute), nil
	}
	if !end.valid() {
		return ephemeral(textInvalidEnd, end.year, end.month, end.day, end.hour, end.minute), nil
	}

	allDay, err := req.Bool(OptIsAllDay)
	if err != nil {
		return ephemeral(textInvalidOption, OptIsAllDay), nil
	}
	startAt, endAt := start.instant(allDay), end.instant(allDay)
	if startAt.After(endAt) {
		return ephemeral(textStartAfterEnd), nil
	}

	color, err := domain.ColorHex(req.String(OptColor))
	if err != nil {
		return ephemeral(textUnknownColor, req.String(OptColor)), nil
	}

	var notifications []domain.NotificationOffset
	for key, opt := range NotifyOptions {
		v := req.String(opt)
		if v == "" {
			continue
		}
		n, err := domain.ParseReminder(key, v)
		if err != nil {
			return ephemeral(textInvalidNotify, v), nil
		}
		notifications = append(notifications, n)
	}

	e, err := h.repo.CreateEvent(ctx, domain.EventCreate{
		GuildID:       req.GuildID,
		Name:          in.Name,
		Description:   in.Description,
		Color:         color,
		IsAllDay:      allDay,
		StartAt:       startAt,
		EndAt:         endAt,
		ChannelID:     req.ChannelID,
		Notifications: notifications,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("create event: %w", err)
	}
	h.log.Info("event created",
		zap.String("guildID", e.GuildID), zap.String("eventID", e.ID), zap.Time("startAt", e.StartAt))

	msg := eventMessage(e, h.now())
	return Reply{Content: textCreated, Embed: &msg}, nil
}

// validateInput maps validation failures to a user reply.
func (h *Handlers) validateInput(in createInput) *Reply {
	err := h.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		r := ephemeral(textInvalidOption, OptName)
		return &r
	}

	fe := verrs[0]
	var r Reply
	switch {
	case fe.Field() == "Name" && fe.Tag() == "required":
		r = ephemeral(textMissingOption, OptName)
	case fe.Field() == "Name":
		r = ephemeral(textNameTooLong, maxNameLen)
	default:
		r = ephemeral(textDescTooLong, maxDescriptionLen)
	}
	return &r
}
