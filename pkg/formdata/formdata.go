// Package formdata streams multipart/form-data bodies mixing JSON segments
// with binary file parts.
package formdata

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

const (
	// JSONContentType is attached to structured data segments.
	JSONContentType = "application/json"
	// BinaryContentType is the fallback for files without a declared type.
	BinaryContentType = "application/octet-stream"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// File is a named binary blob destined for one multipart part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Payload is a multipart body that is produced while it is read. Closing it
// before the end aborts the producer.
type Payload struct {
	Body        io.ReadCloser
	ContentType string
}

// Close releases the producing goroutine.
func (p *Payload) Close() error {
	if p == nil || p.Body == nil {
		return nil
	}
	return p.Body.Close()
}

type part struct {
	name string
	data []byte
	file *File
}

// Builder accumulates parts in order.
type Builder struct {
	parts []part
	err   error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// JSON appends a part named name holding the JSON encoding of v.
func (b *Builder) JSON(name string, v interface{}) *Builder {
	if b.err != nil {
		return b
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s part: %w", name, err)
		return b
	}
	b.parts = append(b.parts, part{name: name, data: data})
	return b
}

// File appends a binary part named name.
func (b *Builder) File(name string, f File) *Builder {
	if b.err != nil {
		return b
	}
	if f.Content == nil {
		b.err = fmt.Errorf("file part %s has no content", name)
		return b
	}
	file := f
	b.parts = append(b.parts, part{name: name, file: &file})
	return b
}

// Build starts streaming the accumulated parts and returns the readable body.
func (b *Builder) Build() (*Payload, error) {
	if b.err != nil {
		return nil, b.err
	}
	parts := make([]part, len(b.parts))
	copy(parts, b.parts)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeParts(mw, parts)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	return &Payload{Body: pr, ContentType: mw.FormDataContentType()}, nil
}

func writeParts(mw *multipart.Writer, parts []part) error {
	for _, p := range parts {
		if p.file == nil {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.name)))
			h.Set("Content-Type", JSONContentType)
			w, err := mw.CreatePart(h)
			if err != nil {
				return fmt.Errorf("create %s part: %w", p.name, err)
			}
			if _, err := w.Write(p.data); err != nil {
				return fmt.Errorf("write %s part: %w", p.name, err)
			}
			continue
		}

		filename := p.file.Name
		if filename == "" {
			filename = p.name
		}
		contentType := p.file.ContentType
		if contentType == "" {
			contentType = BinaryContentType
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.name), escapeQuotes(filename)))
		h.Set("Content-Type", contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create %s part: %w", p.name, err)
		}
		if _, err := io.Copy(w, p.file.Content); err != nil {
			return fmt.Errorf("stream %s part: %w", p.name, err)
		}
	}
	return nil
}

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
