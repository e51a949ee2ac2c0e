package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/xterra/fieldreport/ir/raw"
	"github.com/xterra/fieldreport/ir/semantic"
)

type impl struct{ interceptors []Interceptor }

// objectTable hands out object numbers in allocation order and keeps the
// objects assigned to them.
type objectTable struct {
	next    int
	objects map[raw.ObjectRef]raw.Object
}

func newObjectTable() *objectTable {
	return &objectTable{next: 1, objects: make(map[raw.ObjectRef]raw.Object)}
}

func (t *objectTable) alloc() raw.ObjectRef {
	ref := raw.ObjectRef{Num: t.next}
	t.next++
	return ref
}

func (t *objectTable) put(ref raw.ObjectRef, obj raw.Object) { t.objects[ref] = obj }

func (t *objectTable) add(obj raw.Object) raw.ObjectRef {
	ref := t.alloc()
	t.put(ref, obj)
	return ref
}

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil || len(doc.Pages) == 0 {
		return fmt.Errorf("document has no pages")
	}
	objects := newObjectTable()
	catalogRef := objects.alloc()
	pagesRef := objects.alloc()

	fontRefs := make(map[*semantic.Font]raw.ObjectRef)
	imageRefs := make(map[*semantic.Image]raw.ObjectRef)
	pageRefs := make([]raw.ObjectRef, 0, len(doc.Pages))

	for _, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageRef := objects.alloc()
		pageRefs = append(pageRefs, pageRef)

		pageDict := raw.Dict().
			Set("Type", raw.Name("Page")).
			Set("Parent", raw.Ref(pagesRef)).
			Set("MediaBox", rectArray(p.MediaBox))

		res := raw.Dict()
		if p.Resources != nil {
			if len(p.Resources.Fonts) > 0 {
				fontRes := raw.Dict()
				for _, name := range sortedKeys(p.Resources.Fonts) {
					ref, err := w.fontRef(p.Resources.Fonts[name], fontRefs, objects, cfg)
					if err != nil {
						return fmt.Errorf("page %d font %s: %w", p.Index+1, name, err)
					}
					fontRes.Set(name, raw.Ref(ref))
				}
				res.Set("Font", fontRes)
			}
			if len(p.Resources.XObjects) > 0 {
				xoRes := raw.Dict()
				for _, name := range sortedKeys(p.Resources.XObjects) {
					ref, err := w.imageRef(p.Resources.XObjects[name], imageRefs, objects, cfg)
					if err != nil {
						return fmt.Errorf("page %d image %s: %w", p.Index+1, name, err)
					}
					xoRes.Set(name, raw.Ref(ref))
				}
				res.Set("XObject", xoRes)
			}
		}
		pageDict.Set("Resources", res)

		var content []byte
		for _, cs := range p.Contents {
			content = append(content, serializeContentStream(cs)...)
		}
		stream, err := newStream(raw.Dict(), content, cfg)
		if err != nil {
			return fmt.Errorf("page %d content: %w", p.Index+1, err)
		}
		pageDict.Set("Contents", raw.Ref(objects.add(stream)))
		objects.put(pageRef, pageDict)
	}

	kids := raw.NewArray()
	for _, r := range pageRefs {
		kids.Append(raw.Ref(r))
	}
	objects.put(pagesRef, raw.Dict().
		Set("Type", raw.Name("Pages")).
		Set("Count", raw.NumberInt(int64(len(pageRefs)))).
		Set("Kids", kids))
	objects.put(catalogRef, raw.Dict().
		Set("Type", raw.Name("Catalog")).
		Set("Pages", raw.Ref(pagesRef)))

	var infoRef *raw.ObjectRef
	if info := infoDict(doc.Info, cfg); info != nil {
		ref := objects.add(info)
		infoRef = &ref
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + pdfVersion(cfg) + "\n%\xE2\xE3\xCF\xD3\n")
	offsets := make(map[int]int64)

	ordered := make([]raw.ObjectRef, 0, len(objects.objects))
	for ref := range objects.objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })
	for _, ref := range ordered {
		obj := objects.objects[ref]
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, obj); err != nil {
				return err
			}
		}
		offsets[ref.Num] = int64(buf.Len())
		serialized, err := w.SerializeObject(ref, obj)
		if err != nil {
			return err
		}
		buf.Write(serialized)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, obj, int64(len(serialized))); err != nil {
				return err
			}
		}
	}

	ids := fileID(buf.Bytes())
	xrefOffset := buf.Len()
	maxObjNum := ordered[len(ordered)-1].Num
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObjNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObjNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	trailer := buildTrailer(maxObjNum+1, catalogRef, infoRef, ids)
	buf.WriteString("trailer\n")
	buf.Write(serializePrimitive(trailer))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

func (w *impl) fontRef(font *semantic.Font, seen map[*semantic.Font]raw.ObjectRef, objects *objectTable, cfg Config) (raw.ObjectRef, error) {
	if ref, ok := seen[font]; ok {
		return ref, nil
	}
	if font == nil {
		return raw.ObjectRef{}, fmt.Errorf("nil font")
	}
	ref := objects.alloc()
	seen[font] = ref

	subtype := font.Subtype
	if subtype == "" {
		subtype = "Type1"
	}
	dict := raw.Dict().
		Set("Type", raw.Name("Font")).
		Set("Subtype", raw.Name(subtype)).
		Set("BaseFont", raw.Name(font.BaseFont))
	if font.Encoding != "" {
		dict.Set("Encoding", raw.Name(font.Encoding))
	}
	if len(font.Widths) > 0 {
		widths := raw.NewArray()
		for _, wd := range font.Widths {
			widths.Append(raw.NumberInt(int64(wd)))
		}
		dict.Set("FirstChar", raw.NumberInt(int64(font.FirstChar))).
			Set("LastChar", raw.NumberInt(int64(font.FirstChar+len(font.Widths)-1))).
			Set("Widths", widths)
	}
	if fd := font.Descriptor; fd != nil {
		desc := raw.Dict().
			Set("Type", raw.Name("FontDescriptor")).
			Set("FontName", raw.Name(fd.FontName)).
			Set("Flags", raw.NumberInt(int64(fd.Flags))).
			Set("ItalicAngle", raw.NumberFloat(fd.ItalicAngle)).
			Set("Ascent", raw.NumberFloat(fd.Ascent)).
			Set("Descent", raw.NumberFloat(fd.Descent)).
			Set("CapHeight", raw.NumberFloat(fd.CapHeight)).
			Set("StemV", raw.NumberInt(int64(fd.StemV))).
			Set("FontBBox", raw.Numbers(fd.FontBBox[:]...))
		if len(fd.FontFile) > 0 {
			stream, err := newStream(raw.Dict().Set("Length1", raw.NumberInt(int64(len(fd.FontFile)))), fd.FontFile, cfg)
			if err != nil {
				return raw.ObjectRef{}, err
			}
			desc.Set("FontFile2", raw.Ref(objects.add(stream)))
		}
		dict.Set("FontDescriptor", raw.Ref(objects.add(desc)))
	}
	objects.put(ref, dict)
	return ref, nil
}

func (w *impl) imageRef(img *semantic.Image, seen map[*semantic.Image]raw.ObjectRef, objects *objectTable, cfg Config) (raw.ObjectRef, error) {
	if ref, ok := seen[img]; ok {
		return ref, nil
	}
	if img == nil {
		return raw.ObjectRef{}, fmt.Errorf("nil image")
	}
	ref := objects.alloc()
	seen[img] = ref

	cs := img.ColorSpace
	if cs == "" {
		cs = "DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	dict := raw.Dict().
		Set("Type", raw.Name("XObject")).
		Set("Subtype", raw.Name("Image")).
		Set("Width", raw.NumberInt(int64(img.Width))).
		Set("Height", raw.NumberInt(int64(img.Height))).
		Set("ColorSpace", raw.Name(cs)).
		Set("BitsPerComponent", raw.NumberInt(int64(bpc)))
	if img.Interpolate {
		dict.Set("Interpolate", raw.Bool(true))
	}
	if img.SMask != nil {
		maskRef, err := w.imageRef(img.SMask, seen, objects, cfg)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		dict.Set("SMask", raw.Ref(maskRef))
	}

	var stream *raw.StreamObj
	if img.Filter != "" {
		dict.Set("Filter", raw.Name(img.Filter))
		stream = raw.NewStream(dict, img.Data)
	} else {
		var err error
		stream, err = newStream(dict, img.Data, cfg)
		if err != nil {
			return raw.ObjectRef{}, err
		}
	}
	objects.put(ref, stream)
	return ref, nil
}

// newStream flate-encodes data when compression is enabled.
func newStream(dict *raw.DictObj, data []byte, cfg Config) (*raw.StreamObj, error) {
	if cfg.Compression == 0 || len(data) == 0 {
		return raw.NewStream(dict, data), nil
	}
	enc, err := flateEncode(data, cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	dict.Set("Filter", raw.Name("FlateDecode"))
	return raw.NewStream(dict, enc), nil
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + pdfNameLiteral(v.Value()))
	case raw.NumberObj:
		if v.IsInteger() {
			return []byte(fmt.Sprintf("%d", v.Int()))
		}
		return []byte(formatNumber(v.Float()))
	case raw.BoolObj:
		if v.Value() {
			return []byte("true")
		}
		return []byte("false")
	case raw.NullObj:
		return []byte("null")
	case raw.StringObj:
		if v.IsHex() {
			return []byte(fmt.Sprintf("<%X>", v.Value()))
		}
		return escapeLiteralString(v.Value())
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		for _, k := range sortedKeys(v.KV) {
			b.WriteString("/" + pdfNameLiteral(k) + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *raw.StreamObj:
		dict := v.Dict
		if dict == nil {
			dict = raw.Dict()
		}
		dict.Set("Length", raw.NumberInt(int64(len(v.Data))))
		var b bytes.Buffer
		b.Write(serializePrimitive(dict))
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(fmt.Sprintf("%d %d R", v.Ref().Num, v.Ref().Gen))
	default:
		return []byte("null")
	}
}
