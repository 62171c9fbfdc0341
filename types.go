package contentd

import "mime"

// TargetKind classifies what a resolved name points at.
type TargetKind int

const (
	KindMissing TargetKind = iota
	KindFile
	KindDirectory
)

func (k TargetKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "missing"
	}
}

// Target is a root-relative name together with its classification.
type Target struct {
	Kind TargetKind
	Name string
}

// Skip records a directory entry left out of an aggregate and why.
type Skip struct {
	Name string
	Err  error
}

// Aggregate is the concatenated text of the regular files directly inside
// a directory. Every included file contributes its text followed by "\n".
type Aggregate struct {
	Text    string
	Files   []string
	Skipped []Skip
}

const (
	ContentTypeText  = "text/plain; charset=utf-8"
	ContentTypeOctet = "application/octet-stream"
)

// Content is a successful result ready to be written to a client.
// A non-empty Filename marks the content as an attachment.
type Content struct {
	Body        []byte
	ContentType string
	Filename    string
}

// TextContent wraps s as a text/plain Content.
func TextContent(s string) Content {
	return Content{Body: []byte(s), ContentType: ContentTypeText}
}

// AttachmentContent wraps b as an octet-stream download named filename.
func AttachmentContent(b []byte, filename string) Content {
	return Content{Body: b, ContentType: ContentTypeOctet, Filename: filename}
}

// IsAttachment reports whether c should be served with a Content-Disposition header.
func (c Content) IsAttachment() bool {
	return c.Filename != ""
}

// Disposition returns the Content-Disposition header value, or "" for inline content.
func (c Content) Disposition() string {
	if !c.IsAttachment() {
		return ""
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": c.Filename})
}
