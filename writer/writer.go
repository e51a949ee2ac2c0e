// Package writer serializes a semantic.Document into PDF bytes: it assigns
// object numbers, emits fonts, images, content streams and the document
// information dictionary, and finishes with a classic xref table and trailer.
package writer

import (
	"context"
	"io"
	"time"

	"github.com/xterra/fieldreport/ir/raw"
	"github.com/xterra/fieldreport/ir/semantic"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// Config controls serialization.
type Config struct {
	Version PDFVersion
	// Compression is the flate level applied to content streams, embedded
	// font programs and raw image data. Zero leaves streams uncompressed.
	Compression int
	// Deterministic omits time-dependent entries so identical documents
	// serialize to identical bytes.
	Deterministic bool
	// CreationDate is written to /Info when set and Deterministic is false.
	CreationDate time.Time
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes every indirect object as it is serialized.
type Interceptor interface {
	BeforeWrite(ctx context.Context, obj raw.Object) error
	AfterWrite(ctx context.Context, obj raw.Object, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }
