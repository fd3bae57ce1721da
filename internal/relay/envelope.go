package relay

import "encoding/json"

// Kind is the routing class of an inbound relay frame.
type Kind int

const (
	KindUnknown Kind = iota
	KindOffer
	KindAnswer
	KindIceCandidate
	KindChat
)

// Wire values of the signaling types.
const (
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeIceCandidate = "ice-candidate"
)

func (k Kind) String() string {
	switch k {
	case KindOffer:
		return TypeOffer
	case KindAnswer:
		return TypeAnswer
	case KindIceCandidate:
		return TypeIceCandidate
	case KindChat:
		return "chat"
	default:
		return "unknown"
	}
}

// IsSignal reports whether k carries WebRTC negotiation data.
func (k Kind) IsSignal() bool {
	return k == KindOffer || k == KindAnswer || k == KindIceCandidate
}

// Envelope is a classified inbound frame. Raw is forwarded untouched.
type Envelope struct {
	Kind Kind
	Type string
	Raw  []byte
}

// Classify inspects the "type" field of a frame. Frames that are not a JSON
// object with a non-empty string type are KindUnknown.
func Classify(data []byte) Envelope {
	env := Envelope{Kind: KindUnknown, Raw: data}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return env
	}
	rawType, ok := fields["type"]
	if !ok {
		return env
	}
	var msgType string
	if err := json.Unmarshal(rawType, &msgType); err != nil || msgType == "" {
		return env
	}

	env.Type = msgType
	switch msgType {
	case TypeOffer:
		env.Kind = KindOffer
	case TypeAnswer:
		env.Kind = KindAnswer
	case TypeIceCandidate:
		env.Kind = KindIceCandidate
	default:
		env.Kind = KindChat
	}
	return env
}
