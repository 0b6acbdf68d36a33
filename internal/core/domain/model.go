package domain

import "time"

type OptionType int

const (
	OptionString OptionType = iota + 1
	OptionBool
	OptionChannel
	OptionAttachment
)

func (t OptionType) String() string {
	switch t {
	case OptionString:
		return "string"
	case OptionBool:
		return "boolean"
	case OptionChannel:
		return "channel"
	case OptionAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Param declares one named parameter of a command.
type Param struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
}

type Attachment struct {
	ID          string
	Filename    string
	URL         string
	ContentType string
	Size        int
}

// Option is one raw parameter of an invocation, already decoded into a primitive
// value by the transport. Only the field matching Type is populated.
type Option struct {
	Name       string
	Type       OptionType
	String     string
	Bool       bool
	ChannelID  string
	Attachment *Attachment
}

// Invocation is one inbound command request. GuildID is empty when the command
// was not issued inside a server. Handle is the transport object needed to reply.
type Invocation struct {
	ID      string
	Command string
	GuildID string
	UserID  string
	Options []Option
	Handle  any
}

type ChannelRef struct {
	ID   string
	Name string
}

func (c ChannelRef) Mention() string {
	return "<#" + c.ID + ">"
}

// Reply is one outbound message. When RestrictTo is set only that user may be
// notified by the message.
type Reply struct {
	Text       string
	RestrictTo string
}

type Track struct {
	Reference string
	Audio     []byte
}

// LedgerEntry records a stored sound uploaded by a user.
type LedgerEntry struct {
	ID         int64
	Reference  string
	UploaderID string
	FilePath   string
	Downloaded bool
	CreatedAt  time.Time
}
