package notify

import "fmt"

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// OutcomeStatus is the result of one channel attempt.
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ChannelOutcome records what happened on a single channel.
type ChannelOutcome struct {
	Channel Channel       `json:"channel"`
	Status  OutcomeStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// DispatchResult aggregates per-channel outcomes for one notification.
// Success is true when at least one channel delivered.
type DispatchResult struct {
	Outcomes []ChannelOutcome
}

func (r *DispatchResult) record(ch Channel, status OutcomeStatus, detail string) {
	r.Outcomes = append(r.Outcomes, ChannelOutcome{Channel: ch, Status: status, Error: detail})
}

// Success reports whether any channel delivered.
func (r DispatchResult) Success() bool {
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSent {
			return true
		}
	}
	return false
}

// Sent reports whether the given channel delivered.
func (r DispatchResult) Sent(ch Channel) bool {
	for _, o := range r.Outcomes {
		if o.Channel == ch && o.Status == OutcomeSent {
			return true
		}
	}
	return false
}

// Outcome returns the outcome for a channel, if attempted.
func (r DispatchResult) Outcome(ch Channel) (ChannelOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Channel == ch {
			return o, true
		}
	}
	return ChannelOutcome{}, false
}

// Errors lists channel errors prefixed by channel, in attempt order.
func (r DispatchResult) Errors() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Error == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s failed: %s", channelLabel(o.Channel), o.Error))
	}
	return out
}

func channelLabel(ch Channel) string {
	switch ch {
	case ChannelEmail:
		return "Email"
	case ChannelWhatsApp:
		return "WhatsApp"
	default:
		return string(ch)
	}
}
