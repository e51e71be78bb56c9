package http

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// inboundToCommand decodes a client frame. A pinned username (from a
// verified token) replaces whatever the payload claims.
func inboundToCommand(pinned string, inbound proto.Inbound) (core.Command, *core.CoreError) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, invalidMessage("malformed join payload")
		}
		return core.JoinCommand{
			Username: pinnedOr(pinned, join.Username),
			Room:     join.Room,
		}, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, invalidMessage("malformed message payload")
		}
		return core.SendBroadcastCommand{
			Username: pinnedOr(pinned, msg.Username),
			Room:     msg.Room,
			Text:     msg.Text,
		}, nil
	case proto.InboundTypeDirect:
		var dm proto.DirectMessageData
		if err := decodeData(inbound.Data, &dm); err != nil {
			return nil, invalidMessage("malformed direct message payload")
		}
		return core.SendDirectCommand{
			Username:  pinnedOr(pinned, dm.Username),
			Recipient: dm.Recipient,
			Text:      dm.Text,
		}, nil
	case proto.InboundTypeTyping, proto.InboundTypeTypingStop:
		var typing proto.TypingData
		if err := decodeData(inbound.Data, &typing); err != nil {
			return nil, invalidMessage("malformed typing payload")
		}
		return core.TypingCommand{
			Username:  pinnedOr(pinned, typing.Username),
			Room:      typing.Room,
			Recipient: typing.Recipient,
			Stop:      inbound.Type == proto.InboundTypeTypingStop,
		}, nil
	default:
		return nil, invalidMessage("unknown message type")
	}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func pinnedOr(pinned, claimed string) string {
	if pinned != "" {
		return pinned
	}
	return claimed
}

func invalidMessage(msg string) *core.CoreError {
	return core.InvalidMessageError(msg)
}

func outboundFromEvent(event core.Event) proto.Outbound {
	switch ev := event.(type) {
	case core.MessageEvent:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: ev.Name(),
			Data: proto.EventMessage{
				ID:        ev.Message.ID,
				Room:      ev.Message.Room,
				Username:  ev.Message.From,
				Text:      ev.Message.Text,
				Timestamp: ev.Message.CreatedAt.UTC().Format(time.RFC3339),
				Kind:      string(ev.Message.Kind),
			},
		}
	case core.DirectMessageEvent:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: ev.Name(),
			Data: proto.EventDirectMessage{
				ID:        ev.Message.ID,
				Username:  ev.Message.From,
				Recipient: ev.Message.Recipient,
				Text:      ev.Message.Text,
				Timestamp: ev.Message.CreatedAt.UTC().Format(time.RFC3339),
				Sent:      ev.Sent,
			},
		}
	case core.PresenceEvent:
		users := make([]proto.PresenceUser, 0, len(ev.Users))
		for _, u := range ev.Users {
			users = append(users, proto.PresenceUser{Username: u.Username})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: ev.Name(),
			Data:  proto.EventPresence{Room: ev.Room, Users: users},
		}
	case core.TypingEvent:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: ev.Name(),
			Data:  proto.EventTyping{Username: ev.Username, Direct: ev.Direct},
		}
	case core.ErrorEvent:
		if ev.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
