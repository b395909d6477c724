package domain

import "time"

// SystemSender is the sender id used for platform-authored messages,
// such as trade confirmations.
const SystemSender = "system"

// MessageType distinguishes plain text from trade proposals.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeTrade MessageType = "trade"
)

// TradeProposal is the payload of a trade-typed message: the item the
// sender puts on the table.
type TradeProposal struct {
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
}

// Message is a single record in the conversation between two users.
type Message struct {
	ID        string         `json:"id"`
	Sender    string         `json:"sender"`
	Recipient string         `json:"recipient"`
	Text      string         `json:"text"`
	Type      MessageType    `json:"type"`
	Trade     *TradeProposal `json:"trade,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}
