// Package semantic is the page-level document model produced by the builder
// and consumed by the writer: pages, content operations and their resources.
package semantic

// Document is the semantic representation of a generated PDF.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
}

// Page models a single PDF page.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
}

// Operation represents a PDF operator and operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

// StringOperand holds text already encoded for the font that shows it.
type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Resources holds the fonts and images a page refers to by name.
type Resources struct {
	Fonts    map[string]*Font
	XObjects map[string]*Image
}

// Font represents a simple (single-byte) font resource.
type Font struct {
	Subtype    string // Type1 (standard 14) or TrueType
	BaseFont   string
	Encoding   string
	FirstChar  int
	Widths     []int // glyph widths for FirstChar..FirstChar+len-1, 1/1000 em
	Descriptor *FontDescriptor
}

// FontDescriptor carries metrics and the embedded font program.
type FontDescriptor struct {
	FontName    string
	Flags       int
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	StemV       int
	FontBBox    [4]float64
	FontFile    []byte // FontFile2 (TrueType) program
}

// Image is an image XObject.
type Image struct {
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB, DeviceGray
	BitsPerComponent int
	Data             []byte
	Filter           string // DCTDecode for pass-through JPEG; empty lets the writer compress
	Interpolate      bool
	SMask            *Image
}

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of r.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent of r.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
	Creator  string
	Producer string
}
