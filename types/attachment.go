package types

import (
	"encoding/json"
	"time"
)

// Attachment describes a file uploaded against an application.
// The payload itself lives in object storage under ObjectKey.
type Attachment struct {
	// ID is the unique identifier of the attachment.
	ID string `json:"attachment_id" db:"attachment_id"`

	// ApplicationID identifies the owning application.
	ApplicationID string `json:"-" db:"application_id"`

	// Filename is the stored name, "<uuid>_<original name>".
	Filename string `json:"filename" db:"filename"`

	// OriginalName is the name supplied by the client.
	OriginalName string `json:"original_name" db:"original_name"`

	// MimeType is the validated media type of the payload.
	MimeType string `json:"mimetype" db:"mimetype"`

	// Size is the payload length in bytes.
	Size int64 `json:"size" db:"size"`

	// ObjectKey locates the payload in object storage.
	ObjectKey string `json:"-" db:"object_key"`

	// UploadedAt is the upload timestamp.
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// AttachmentSet is an ordered collection of attachments keyed by ID.
// The zero value is an empty set ready to use.
type AttachmentSet struct {
	items []Attachment
	index map[string]int
}

// NewAttachmentSet builds a set from items, keeping their order.
func NewAttachmentSet(items ...Attachment) AttachmentSet {
	var set AttachmentSet
	for _, item := range items {
		set.Add(item)
	}
	return set
}

// Add appends a to the set. An attachment with the same ID is replaced in place.
func (s *AttachmentSet) Add(a Attachment) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[a.ID]; ok {
		s.items[i] = a
		return
	}
	s.index[a.ID] = len(s.items)
	s.items = append(s.items, a)
}

// Find returns the attachment with the given ID.
func (s AttachmentSet) Find(id string) (Attachment, bool) {
	i, ok := s.index[id]
	if !ok {
		return Attachment{}, false
	}
	return s.items[i], true
}

// Remove deletes the attachment with the given ID and reports whether it existed.
func (s *AttachmentSet) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return true
}

// Len returns the number of attachments.
func (s AttachmentSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the attachments in insertion order.
func (s AttachmentSet) Items() []Attachment {
	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

func (s AttachmentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *AttachmentSet) UnmarshalJSON(data []byte) error {
	var items []Attachment
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewAttachmentSet(items...)
	return nil
}
