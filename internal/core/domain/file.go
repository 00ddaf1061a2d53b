package domain

import "strings"

// File is a user-selected document held by the form: the primary email file
// or one of the attachments.
type File struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Content   []byte `json:"-"`
}

func (f File) Size() int {
	return len(f.Content)
}

type FileCategory string

const (
	CategoryImage FileCategory = "image"
	CategoryPDF   FileCategory = "pdf"
	CategoryText  FileCategory = "text"
	CategoryWord  FileCategory = "word"
	CategoryOther FileCategory = "other"
)

// CategoryOf resolves the preview category from a declared media type.
// Checks are ordered: a type containing both "image" and "pdf" is an image.
func CategoryOf(mediaType string) FileCategory {
	t := strings.ToLower(mediaType)
	switch {
	case strings.Contains(t, "image"):
		return CategoryImage
	case strings.Contains(t, "pdf"):
		return CategoryPDF
	case strings.Contains(t, "text"):
		return CategoryText
	case strings.Contains(t, "msword"), strings.Contains(t, "officedocument.wordprocessing"):
		return CategoryWord
	default:
		return CategoryOther
	}
}

// Slot names which input a file was selected through.
type Slot string

const (
	SlotEmail      Slot = "email"
	SlotAttachment Slot = "attachment"
)

func ParseSlot(raw string) (Slot, bool) {
	switch Slot(strings.ToLower(strings.TrimSpace(raw))) {
	case SlotEmail:
		return SlotEmail, true
	case SlotAttachment, "attachments":
		return SlotAttachment, true
	default:
		return "", false
	}
}
