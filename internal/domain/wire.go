package domain

// WireMessage is the transport representation of a message.
//
// Content carries plaintext only for locally-originated (self-sent)
// messages; anything that requires decryption arrives with Content nil and
// the payload in EncryptedContent/IV. Timestamp is milliseconds since the
// Unix epoch. EncryptedContent and IV are standard base64.
type WireMessage struct {
	ID         string  `json:"id"`
	Content    *string `json:"content,omitempty"`
	Timestamp  int64   `json:"timestamp"`
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Status     string  `json:"status"`
	Type       string  `json:"type"`

	// Type-specific fields for Image and File messages.
	ImageWidth  int    `json:"image_width,omitempty"`
	ImageHeight int    `json:"image_height,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`

	EncryptedContent string `json:"encrypted_content"`
	IV               string `json:"iv"`
}
