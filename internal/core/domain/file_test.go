package domain

import "testing"

func TestCategoryOf(t *testing.T) {
	cases := map[string]FileCategory{
		"image/png":                        CategoryImage,
		"IMAGE/JPEG":                       CategoryImage,
		"application/pdf":                  CategoryPDF,
		"text/plain":                       CategoryText,
		"text/plain; charset=windows-1251": CategoryText,
		"application/msword":               CategoryWord,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": CategoryWord,
		"message/rfc822":           CategoryOther,
		"application/octet-stream": CategoryOther,
		"":                         CategoryOther,
	}
	for mediaType, want := range cases {
		if got := CategoryOf(mediaType); got != want {
			t.Fatalf("CategoryOf(%q) = %s, want %s", mediaType, got, want)
		}
	}
}

func TestParseSlot(t *testing.T) {
	if slot, ok := ParseSlot(" Email "); !ok || slot != SlotEmail {
		t.Fatalf("expected email slot, got %q ok=%v", slot, ok)
	}
	if slot, ok := ParseSlot("attachments"); !ok || slot != SlotAttachment {
		t.Fatalf("expected attachment slot, got %q ok=%v", slot, ok)
	}
	if _, ok := ParseSlot("body"); ok {
		t.Fatalf("expected unknown slot to be rejected")
	}
}
