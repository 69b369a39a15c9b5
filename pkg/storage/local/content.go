package local

import (
	"errors"
	"io"
	"os"

	"github.com/starford/storagekit/pkg/storage"
)

var _ storage.Content = (*Content)(nil)

// Content is an open view over a local file. Streams are opened on demand
// and closed with the handle if the caller has not closed them already.
// A Content is meant for a single caller and does no locking.
type Content struct {
	path    string
	mode    storage.OpenMode
	streams []*stream
	closed  bool
}

// Mode returns the open mode.
func (c *Content) Mode() storage.OpenMode { return c.mode }

// ReadStream opens the file for reading from the start.
func (c *Content) ReadStream() (io.ReadCloser, error) {
	if c.closed {
		return nil, storage.AccessError("read stream", c.path, "content is closed", nil)
	}
	if !c.mode.CanRead() {
		return nil, storage.PermissionError("read stream", c.path, "reading requires read permission, mode is "+c.mode.String())
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, storage.AccessError("read stream", c.path, "", err)
	}
	return c.track(f), nil
}

// WriteStream opens the file for writing. The existing content is
// truncated.
func (c *Content) WriteStream() (io.WriteCloser, error) {
	if c.closed {
		return nil, storage.AccessError("write stream", c.path, "content is closed", nil)
	}
	if !c.mode.CanWrite() {
		return nil, storage.PermissionError("write stream", c.path, "writing requires read-write permission, mode is "+c.mode.String())
	}
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return nil, storage.AccessError("write stream", c.path, "", err)
	}
	return c.track(f), nil
}

// Close releases every stream still open. It is safe to call twice.
func (c *Content) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for _, s := range c.streams {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.streams = nil
	if err := errors.Join(errs...); err != nil {
		return storage.AccessError("close content", c.path, "", err)
	}
	return nil
}

func (c *Content) track(f *os.File) *stream {
	s := &stream{File: f}
	c.streams = append(c.streams, s)
	return s
}

// stream is an *os.File whose Close may be called more than once.
type stream struct {
	*os.File
	closed bool
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.File.Close()
}
