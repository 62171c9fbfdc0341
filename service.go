package contentd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"unicode/utf8"
)

// UploadPrefix precedes the echoed body in upload responses.
const UploadPrefix = "Received body: "

// ContentStore defines the filesystem operations the Service needs.
// Names are relative to the store's root and already contained by the
// PathResolver.
//
// All methods accept a context; implementations should check it before
// doing I/O.
type ContentStore interface {
	// Stat classifies name. It returns ErrNotFound for missing or
	// unreachable names and ErrPermission when access is denied.
	Stat(ctx context.Context, name string) (Target, error)

	// ReadText opens, fully reads and UTF-8 validates a regular file.
	// Failures wrap ErrNotFound, ErrPermission, ErrRead or ErrDecode.
	ReadText(ctx context.Context, name string) (string, error)

	// ReadDir aggregates the regular files directly inside a directory.
	// Per-file failures are recorded in Aggregate.Skipped and never fail
	// the call; only an unlistable directory returns an error.
	ReadDir(ctx context.Context, name string) (Aggregate, error)

	// ReadBytes opens and fully reads a regular file without decoding.
	ReadBytes(ctx context.Context, name string) ([]byte, error)
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Resolver ResolverConfig
	// AttachmentPath is a root-relative file served as an octet-stream
	// download. Empty disables the attachment.
	AttachmentPath string
	// AttachmentFilename is the name sent in Content-Disposition. It
	// defaults to the base name of AttachmentPath.
	AttachmentFilename string
}

// Service resolves identifiers to content. It has no mutable state and
// is safe for concurrent use.
type Service struct {
	resolver           *PathResolver
	store              ContentStore
	reporter           Reporter
	attachmentName     string
	attachmentFilename string
}

// NewService creates a Service. A nil reporter discards events.
func NewService(cfg ServiceConfig, store ContentStore, reporter Reporter) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: store is required")
	}
	if reporter == nil {
		reporter = NopReporter
	}

	s := &Service{
		resolver: NewPathResolver(cfg.Resolver),
		store:    store,
		reporter: reporter,
	}

	if cfg.AttachmentPath != "" {
		name, ok := ContainedName(cfg.AttachmentPath)
		if !ok || name == "." {
			return nil, fmt.Errorf("new service: invalid attachment path %q: %w", cfg.AttachmentPath, ErrOutsideRoot)
		}
		s.attachmentName = name
		s.attachmentFilename = cfg.AttachmentFilename
		if s.attachmentFilename == "" {
			s.attachmentFilename = filepath.Base(name)
		}
	}

	return s, nil
}

// Resolver returns the PathResolver used by the Service.
func (s *Service) Resolver() *PathResolver {
	return s.resolver
}

// Download resolves the identifier carried by q and returns its content.
func (s *Service) Download(ctx context.Context, q url.Values) (Content, error) {
	return s.Fetch(ctx, s.resolver.Value(q))
}

// Fetch resolves value and returns the content of the file or directory it
// names. A directory yields the aggregate of its regular files, which may
// be empty.
func (s *Service) Fetch(ctx context.Context, value string) (Content, error) {
	ev := Event{Op: OpDownload, Value: value}

	content, err := s.fetch(ctx, value, &ev)
	ev.Err = err
	ev.Bytes = len(content.Body)
	s.reporter.Report(ctx, ev)

	return content, err
}

func (s *Service) fetch(ctx context.Context, value string, ev *Event) (Content, error) {
	name, err := s.resolver.ResolveValue(value)
	if err != nil {
		return Content{}, err
	}
	ev.Name = name

	target, err := s.store.Stat(ctx, name)
	if err != nil {
		return Content{}, err
	}
	ev.Kind = target.Kind

	switch target.Kind {
	case KindDirectory:
		agg, err := s.store.ReadDir(ctx, name)
		if err != nil {
			return Content{}, err
		}
		ev.Files = agg.Files
		ev.Skipped = agg.Skipped
		return TextContent(agg.Text), nil
	case KindFile:
		text, err := s.store.ReadText(ctx, name)
		if err != nil {
			return Content{}, err
		}
		return TextContent(text), nil
	default:
		return Content{}, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
}

// Attachment returns the configured attachment as an octet-stream download.
// It returns ErrNotFound when no attachment is configured.
func (s *Service) Attachment(ctx context.Context) (Content, error) {
	ev := Event{Op: OpAttachment, Value: s.attachmentName, Name: s.attachmentName, Kind: KindFile}

	var content Content
	var err error
	if s.attachmentName == "" {
		err = fmt.Errorf("attachment: %w", ErrNotFound)
	} else {
		var b []byte
		b, err = s.store.ReadBytes(ctx, s.attachmentName)
		if err == nil {
			content = AttachmentContent(b, s.attachmentFilename)
		}
	}

	ev.Err = err
	ev.Bytes = len(content.Body)
	s.reporter.Report(ctx, ev)

	return content, err
}

// Upload reads body to completion and echoes it back prefixed with
// UploadPrefix. A body that is not valid UTF-8 returns ErrInvalidInput.
// Read errors are returned wrapped so callers can inspect them.
func (s *Service) Upload(ctx context.Context, body io.Reader) (Content, error) {
	ev := Event{Op: OpUpload}

	content, err := s.upload(ctx, body)
	ev.Err = err
	ev.Bytes = len(content.Body)
	s.reporter.Report(ctx, ev)

	return content, err
}

func (s *Service) upload(ctx context.Context, body io.Reader) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}

	if body == nil {
		return TextContent(UploadPrefix), nil
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return Content{}, fmt.Errorf("read upload body: %w", err)
	}

	if !utf8.Valid(b) {
		return Content{}, fmt.Errorf("upload body is not valid utf-8: %w", ErrInvalidInput)
	}

	return TextContent(UploadPrefix + string(b)), nil
}
