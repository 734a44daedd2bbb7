package history

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxDescribeRunes bounds the text shown by Describe.
const MaxDescribeRunes = 150

// Tag families recognised by Describe. Each list holds the macOS UTI first,
// then the MIME spelling used on the other platforms.
var (
	imageTags   = []string{"public.png", "image/png"}
	htmlTags    = []string{"public.html", "text/html"}
	pdfTags     = []string{"com.adobe.pdf", "application/pdf"}
	urlTags     = []string{"public.url", "text/x-moz-url"}
	fileURLTags = []string{"public.file-url", "text/uri-list"}
	rtfTags     = []string{"public.rtf", "text/rtf"}
)

// IsText reports whether typ carries plain UTF-8 text.
func IsText(typ string) bool {
	switch typ {
	case "public.utf8-plain-text", "UTF8_STRING", "STRING", "TEXT":
		return true
	}
	return typ == "text/plain" || strings.HasPrefix(typ, "text/plain;")
}

// Describe renders a one-line summary of an event's first item, the way a
// history listing shows it: "image, size: 120 bytes", "html, hello", "text,
// hello". It returns "empty" when the event has nothing to show.
func Describe(ev Event) string {
	if len(ev.Items) == 0 || len(ev.Items[0].Payloads) == 0 {
		return "empty"
	}
	ps := ev.Items[0].Payloads
	text, hasText := findText(ps)

	if p, ok := findTag(ps, imageTags); ok {
		return fmt.Sprintf("image, size: %d bytes", p.Size())
	}
	if _, ok := findTag(ps, htmlTags); ok {
		if hasText {
			return "html, " + Truncate(string(text.Data))
		}
		return "html, no plain text"
	}
	if p, ok := findTag(ps, pdfTags); ok {
		return fmt.Sprintf("pdf, size: %d bytes", p.Size())
	}
	if p, ok := findTag(ps, urlTags); ok {
		return "url: " + Truncate(string(p.Data))
	}
	if p, ok := findTag(ps, fileURLTags); ok {
		return "file: " + Truncate(string(p.Data))
	}
	if p, ok := findTag(ps, rtfTags); ok {
		if hasText {
			return "rtf, " + Truncate(string(text.Data))
		}
		return fmt.Sprintf("rtf, size: %d bytes", p.Size())
	}
	if hasText {
		return "text, " + Truncate(string(text.Data))
	}
	return fmt.Sprintf("%s, size: %d bytes", ps[0].Type, ps[0].Size())
}

// Truncate shortens s to MaxDescribeRunes runes, appending "..." when cut.
// Invalid UTF-8 is replaced rather than split mid-sequence.
func Truncate(s string) string {
	s = strings.ToValidUTF8(s, "�")
	if utf8.RuneCountInString(s) <= MaxDescribeRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxDescribeRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

func findTag(ps []Payload, tags []string) (Payload, bool) {
	for _, p := range ps {
		for _, t := range tags {
			if strings.Contains(p.Type, t) {
				return p, true
			}
		}
	}
	return Payload{}, false
}

func findText(ps []Payload) (Payload, bool) {
	for _, p := range ps {
		if IsText(p.Type) {
			return p, true
		}
	}
	return Payload{}, false
}
