package writer

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/xterra/fieldreport/builder"
	"github.com/xterra/fieldreport/fonts"
	"github.com/xterra/fieldreport/ir/raw"
	"github.com/xterra/fieldreport/ir/semantic"
)

func buildDoc(t *testing.T) *semantic.Document {
	t.Helper()
	b := builder.NewBuilder()
	b.RegisterFont("F1", fonts.Standard(fonts.TimesRoman))
	b.RegisterFont("F2", fonts.Standard(fonts.TimesBold))
	img := &semantic.Image{Width: 1, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{1, 2, 3}}
	b.NewPage(612, 792).
		DrawText("Hello (world)", 72.123456, 700, builder.TextOptions{Font: "F1", FontSize: 11}).
		DrawText("Bold", 72, 680, builder.TextOptions{Font: "F2", FontSize: 11}).
		DrawImage(img, 100, 100, 50, 50, builder.ImageOptions{})
	b.NewPage(612, 792).
		DrawText("Page two", 72, 700, builder.TextOptions{Font: "F1", FontSize: 11}).
		DrawImage(img, 100, 100, 50, 50, builder.ImageOptions{})
	b.SetInfo(&semantic.DocumentInfo{Title: "Site Report", Producer: "fieldreport"})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return doc
}

func write(t *testing.T, doc *semantic.Document, cfg Config) string {
	t.Helper()
	var buf bytes.Buffer
	if err := (&WriterBuilder{}).Build().Write(context.Background(), doc, &buf, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.String()
}

func TestWriteUncompressed(t *testing.T) {
	out := write(t, buildDoc(t), Config{Deterministic: true})

	if !strings.HasPrefix(out, "%PDF-1.7\n") {
		t.Fatalf("missing header: %q", out[:12])
	}
	if !strings.HasSuffix(out, "%%EOF\n") {
		t.Fatalf("missing EOF marker")
	}
	for _, want := range []string{
		"/Type /Catalog",
		"/Count 2",
		"/BaseFont /Times-Roman",
		"/BaseFont /Times-Bold",
		"/Encoding /WinAnsiEncoding",
		"(Hello \\(world\\)) Tj",
		"72.1235 700 Td",
		"/Subtype /Image",
		"/Title (Site Report)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := strings.Count(out, "/Subtype /Image"); n != 1 {
		t.Fatalf("shared image written %d times", n)
	}
	if n := strings.Count(out, "/BaseFont /Times-Roman"); n != 1 {
		t.Fatalf("shared font written %d times", n)
	}
	if strings.Contains(out, "/CreationDate") {
		t.Fatalf("deterministic output must not carry a creation date")
	}
	if !regexp.MustCompile(`/ID \[<[0-9A-F]{32}> <[0-9A-F]{32}>\]`).MatchString(out) {
		t.Fatalf("trailer ID missing or malformed")
	}
}

func TestWriteDeterministic(t *testing.T) {
	a := write(t, buildDoc(t), Config{Deterministic: true, Compression: 6})
	b := write(t, buildDoc(t), Config{Deterministic: true, Compression: 6})
	if a != b {
		t.Fatalf("identical documents produced different bytes")
	}
	if !strings.Contains(a, "/Filter /FlateDecode") {
		t.Fatalf("compression not applied")
	}
}

func TestWriteCreationDate(t *testing.T) {
	date := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	out := write(t, buildDoc(t), Config{CreationDate: date})
	if !strings.Contains(out, "/CreationDate (D:20240501130405Z)") {
		t.Fatalf("creation date missing")
	}
}

func TestWriteXRefOffsets(t *testing.T) {
	out := write(t, buildDoc(t), Config{Deterministic: true})
	start := strings.LastIndex(out, "startxref\n")
	var xrefOffset int
	if _, err := fmt.Sscan(out[start+len("startxref\n"):], &xrefOffset); err != nil {
		t.Fatalf("parse startxref: %v", err)
	}
	if !strings.HasPrefix(out[xrefOffset:], "xref\n") {
		t.Fatalf("startxref does not point at xref table")
	}
	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllStringSubmatch(out, -1)
	if len(entries) == 0 {
		t.Fatalf("no xref entries")
	}
	for i, e := range entries {
		var off int
		if _, err := fmt.Sscan(e[1], &off); err != nil {
			t.Fatalf("parse offset: %v", err)
		}
		if want := regexp.MustCompile(`^\d+ 0 obj\n`); !want.MatchString(out[off:]) {
			t.Fatalf("xref entry %d does not point at an object", i+1)
		}
	}
}

func TestWriteTrueTypeFont(t *testing.T) {
	b := builder.NewBuilder()
	b.RegisterTrueTypeFont("Body", goregular.TTF)
	b.NewPage(200, 200).DrawText("Hi", 10, 10, builder.TextOptions{Font: "Body"})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out := write(t, doc, Config{Deterministic: true})
	for _, want := range []string{"/Subtype /TrueType", "/FontFile2", "/FirstChar 32", "/LastChar 255", "/Type /FontDescriptor"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestWriteImageWithMask(t *testing.T) {
	mask := &semantic.Image{Width: 1, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 8, Data: []byte{128}}
	img := &semantic.Image{Width: 1, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{1, 2, 3}, SMask: mask}
	jpg := &semantic.Image{Width: 1, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{0xFF, 0xD8}, Filter: "DCTDecode"}
	b := builder.NewBuilder()
	b.NewPage(100, 100).
		DrawImage(img, 0, 0, 10, 10, builder.ImageOptions{}).
		DrawImage(jpg, 20, 0, 10, 10, builder.ImageOptions{})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out := write(t, doc, Config{Deterministic: true, Compression: 9})
	if !regexp.MustCompile(`/SMask \d+ 0 R`).MatchString(out) {
		t.Fatalf("soft mask reference missing")
	}
	if !strings.Contains(out, "/Filter /DCTDecode") {
		t.Fatalf("jpeg filter missing")
	}
	if strings.Count(out, "/Filter /FlateDecode") < 3 {
		t.Fatalf("expected content, image and mask to be flate encoded")
	}
}

type countingInterceptor struct {
	objects int
	bytes   int64
}

func (c *countingInterceptor) BeforeWrite(context.Context, raw.Object) error { c.objects++; return nil }
func (c *countingInterceptor) AfterWrite(_ context.Context, _ raw.Object, n int64) error {
	c.bytes += n
	return nil
}

func TestWriterInterceptor(t *testing.T) {
	ic := &countingInterceptor{}
	w := (&WriterBuilder{}).WithInterceptor(ic).Build()
	var buf bytes.Buffer
	if err := w.Write(context.Background(), buildDoc(t), &buf, Config{Deterministic: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// catalog, pages, 2 pages, 2 contents, 2 fonts, 1 image, info
	if ic.objects != 10 {
		t.Fatalf("objects = %d, want 10", ic.objects)
	}
	if ic.bytes <= 0 || ic.bytes >= int64(buf.Len()) {
		t.Fatalf("unexpected byte count %d of %d", ic.bytes, buf.Len())
	}
}

func TestWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := (&WriterBuilder{}).Build().Write(ctx, buildDoc(t), &buf, Config{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
	if buf.Len() != 0 {
		t.Fatalf("cancelled write produced output")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:          "0",
		-0.00001:   "0",
		12:         "12",
		1.23456789: "1.2346",
		-3.5:       "-3.5",
		612.000001: "612",
	}
	for in, want := range cases {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTextStringUTF16(t *testing.T) {
	s := textString("Café")
	if !bytes.HasPrefix(s.Value(), []byte{0xFE, 0xFF}) {
		t.Fatalf("expected UTF-16BE BOM, got % X", s.Value())
	}
	if got := string(textString("plain").Value()); got != "plain" {
		t.Fatalf("ascii text changed: %q", got)
	}
}
