package core

// DirectRouter delivers private messages and typing indicators.
//
// Recipients are resolved by username, not by a stable identity: when two
// live sessions share a username the most recently registered one wins.
type DirectRouter struct {
	registry Registry
	emit     Emitter
}

// NewDirectRouter creates a router over the given registry.
func NewDirectRouter(registry Registry, emit Emitter) *DirectRouter {
	return &DirectRouter{registry: registry, emit: emit}
}

// SendDirect delivers msg to msg.Recipient and confirms it to senderConnID.
// Offline recipients are not queued; the caller reports the error.
func (d *DirectRouter) SendDirect(senderConnID string, msg Message) error {
	if msg.From == msg.Recipient {
		return coreError(ErrCodeInvalidRecipient, "cannot send a private message to yourself", ErrInvalidRecipient)
	}
	target, ok := d.registry.FindByUsername(msg.Recipient)
	if !ok {
		return coreError(ErrCodeRecipientOffline, "Recipient is not online", ErrRecipientOffline)
	}

	msg.Kind = KindDirect
	d.emit.Emit(target.ConnID, DirectMessageEvent{Message: msg, Sent: false})
	d.emit.Emit(senderConnID, DirectMessageEvent{Message: msg, Sent: true})
	return nil
}

// NotifyTyping tells recipient that sender is typing. Best effort.
func (d *DirectRouter) NotifyTyping(sender, recipient string) bool {
	return d.relayTyping(sender, recipient, false)
}

// NotifyStopTyping tells recipient that sender stopped typing. Best effort.
func (d *DirectRouter) NotifyStopTyping(sender, recipient string) bool {
	return d.relayTyping(sender, recipient, true)
}

func (d *DirectRouter) relayTyping(sender, recipient string, stop bool) bool {
	if sender == recipient {
		return false
	}
	target, ok := d.registry.FindByUsername(recipient)
	if !ok {
		return false
	}
	return d.emit.Emit(target.ConnID, TypingEvent{Username: sender, Direct: true, Stop: stop})
}
