package render

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/xterra/fieldreport/ir/semantic"
	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

func TestBinPhotos(t *testing.T) {
	tests := []struct {
		name      string
		heights   []float64
		available float64
		want      [][]int
	}{
		{"empty", nil, 220, nil},
		{"single", []float64{90}, 220, [][]int{{0}}},
		{"pair then single", []float64{100, 100, 100}, 220, [][]int{{0, 1}, {2}}},
		{"exact fit pairs", []float64{106, 106}, 220, [][]int{{0, 1}}},
		{"just over stays single", []float64{106.5, 106}, 220, [][]int{{0}, {1}}},
		{"rejected photo opens next group", []float64{150, 100, 100, 30}, 220, [][]int{{0}, {1, 2}, {3}}},
		{"greedy not optimal", []float64{50, 160, 50}, 220, [][]int{{0, 1}, {2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BinPhotos(tt.heights, tt.available, TightGap)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("BinPhotos(%v) = %v, want %v", tt.heights, got, tt.want)
			}
		})
	}
}

func TestBinPhotosProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const available = 222.4
	for run := 0; run < 200; run++ {
		heights := make([]float64, rng.Intn(12))
		for i := range heights {
			heights[i] = 20 + rng.Float64()*200
		}
		groups := BinPhotos(heights, available, TightGap)
		if again := BinPhotos(heights, available, TightGap); !reflect.DeepEqual(groups, again) {
			t.Fatalf("BinPhotos not deterministic for %v", heights)
		}

		next := 0
		for _, g := range groups {
			if len(g) < 1 || len(g) > 2 {
				t.Fatalf("group %v has %d entries", g, len(g))
			}
			for _, idx := range g {
				if idx != next {
					t.Fatalf("groups %v skip or reorder index %d", groups, next)
				}
				next++
			}
			fits := g[0]+1 < len(heights) && heights[g[0]]+heights[g[0]+1]+2*TightGap <= available
			if len(g) == 2 != fits {
				t.Fatalf("group %v violates the pairing rule for %v", g, heights)
			}
		}
		if next != len(heights) {
			t.Fatalf("groups %v cover %d of %d entries", groups, next, len(heights))
		}
	}
}

func okSize(w, h int) probeResult { return probeResult{Size: Size{Width: w, Height: h}} }

func TestPhotoLayoutPlan(t *testing.T) {
	env := newTestEnv(t)
	pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
	available := env.cur.FreshSpace()

	photos := []report.PhotoEntry{
		{Label: "Photo 1", Date: "2024-05-01"},
		{Label: "Site map", IsMap: true},
		{Label: "Photo 2", Date: "2024-05-01"},
		{Label: "Photo 3", Date: "2024-05-02"},
	}
	content := &report.Content{Photos: photos}
	sites := content.SitePhotos()
	sizes := []probeResult{okSize(400, 300), okSize(400, 300), okSize(400, 1000)}

	groups := pl.Plan(photos, sites, sizes, available)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if !reflect.DeepEqual(groups[0].Entries, []int{0, 2}) || !reflect.DeepEqual(groups[1].Entries, []int{3}) {
		t.Fatalf("groups = %+v, want [[0 2] [3]]", groups)
	}
	if h := groups[0].Heights[0]; !near(h, 82.5) {
		t.Fatalf("landscape height = %v, want 82.5", h)
	}
	if h := groups[1].Heights[0]; !near(h, available) {
		t.Fatalf("portrait height = %v, want clamp to %v", h, available)
	}
}

func longDescription(words int) string {
	return strings.TrimSpace(strings.Repeat("sediment ", words))
}

// assertWithinPage fails when any text on page starts below maxY.
func assertWithinPage(t *testing.T, env *testEnv, page int) {
	t.Helper()
	for _, st := range env.texts(t) {
		if st.Page == page && (st.Y > env.cur.MaxY || st.Y < 0) {
			t.Fatalf("text %q at y=%v is outside 0..%v", st.Text, st.Y, env.cur.MaxY)
		}
	}
}

func TestFitCaption(t *testing.T) {
	env := newTestEnv(t)
	short := report.PhotoEntry{Label: "Photo 1", Date: "d", Location: "l", Description: "Fence"}
	long := report.PhotoEntry{Label: "Photo 1", Date: "d", Location: "l", Description: longDescription(400)}
	lh := layout.LineHeight(env.theme.BodySize)

	tests := []struct {
		name      string
		entry     report.PhotoEntry
		limit     float64
		wantLines int
	}{
		{"fits unchanged", short, 100, 3},
		{"description cut", long, 60, 3},
		{"fields dropped", long, 2*lh + 3*captionLead, 1},
		{"nothing fits", long, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := planCaption(env.theme, env.m, tt.entry, 70, true)
			b := fitCaption(env.theme, env.m, full, tt.limit)
			if b.height > tt.limit+1e-9 {
				t.Fatalf("height %v exceeds %v", b.height, tt.limit)
			}
			if len(b.lines) != tt.wantLines {
				t.Fatalf("kept %d fields, want %d", len(b.lines), tt.wantLines)
			}
			if full.height <= tt.limit {
				if b.height != full.height {
					t.Fatalf("caption within the limit was changed")
				}
				return
			}
			if len(b.lines) == 0 {
				return
			}
			last := b.lines[len(b.lines)-1]
			if n := len(last.value.Lines); n > 0 {
				tail := last.value.Lines[n-1]
				if !strings.HasSuffix(tail, ellipsis) {
					t.Fatalf("last line %q does not end in an ellipsis", tail)
				}
				if w := env.m.Width(tail, env.theme.Body()); w > b.width-last.valueX+1e-9 {
					t.Fatalf("last line width %v exceeds %v", w, b.width-last.valueX)
				}
			}
		})
	}
}

func TestPhotoEntryTallerThanPage(t *testing.T) {
	tests := []struct {
		name  string
		entry report.PhotoEntry
		size  probeResult
		image *semantic.Image
	}{
		{"long description", report.PhotoEntry{Label: "Photo 1", Description: longDescription(1100)}, okSize(400, 300), testImage(4, 3)},
		{"portrait image clamped", report.PhotoEntry{Label: "Photo 2", Description: "Culvert"}, okSize(400, 1000), testImage(4, 10)},
		{"failed probe and long description", report.PhotoEntry{Label: "Photo 3", Description: longDescription(1100)}, probeResult{Err: errNoImage}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
			available := env.cur.FreshSpace()
			groups := pl.Plan([]report.PhotoEntry{tt.entry}, []int{0}, []probeResult{tt.size}, available)
			if len(groups) != 1 || groups[0].Heights[0] > available+1e-9 {
				t.Fatalf("groups = %+v, want one entry no taller than %v", groups, available)
			}
			placed := []placedEntry{{Entry: tt.entry, Image: tt.image, ImageHeight: pl.imageHeight(tt.size, available)}}
			pl.Draw(env.cur, groups[0], placed, available)

			if env.cur.Y > env.cur.MaxY+1e-9 {
				t.Fatalf("entry ends at %v, past %v", env.cur.Y, env.cur.MaxY)
			}
			if env.doc.PageCount() != 1 {
				t.Fatalf("entry spilled onto %d pages", env.doc.PageCount())
			}
			assertWithinPage(t, env, 1)
		})
	}
}

func TestEntryHeightFailedProbe(t *testing.T) {
	env := newTestEnv(t)
	pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
	e := report.PhotoEntry{Label: "Photo 4", Description: "N/A"}

	failed := pl.EntryHeight(e, probeResult{Err: errors.New("decode failed")}, 200)
	text := planCaption(env.theme, env.m, e, pl.textWidth(), true).height
	if failed <= 0 || !near(failed, text) {
		t.Fatalf("failed probe height = %v, want caption height %v", failed, text)
	}
	if withImage := pl.EntryHeight(e, okSize(100, 100), 200); !near(withImage, DefaultPhotoWidth) {
		t.Fatalf("square image height = %v, want %v", withImage, DefaultPhotoWidth)
	}
}

func TestPlanCaptionFields(t *testing.T) {
	env := newTestEnv(t)
	e := report.PhotoEntry{Label: "Photo 1", Direction: "North", Date: "d", Location: "l"}
	labels := func(b captionBlock) string {
		var out []string
		for _, l := range b.lines {
			out = append(out, l.label)
		}
		return strings.Join(out, " ")
	}
	if got := labels(planCaption(env.theme, env.m, e, 70, true)); got != "Direction: Date: Location: Description:" {
		t.Fatalf("site caption labels = %q", got)
	}
	if got := labels(planCaption(env.theme, env.m, e, 70, false)); got != "Date: Location: Description:" {
		t.Fatalf("map caption labels = %q", got)
	}
	e.Direction = "  "
	if got := labels(planCaption(env.theme, env.m, e, 70, true)); got != "Date: Location: Description:" {
		t.Fatalf("blank direction labels = %q", got)
	}
}

func testImage(w, h int) *semantic.Image {
	return &semantic.Image{Width: w, Height: h, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: make([]byte, w*h*3)}
}

func TestPhotoPairBalanced(t *testing.T) {
	env := newTestEnv(t)
	pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
	available := env.cur.FreshSpace()
	top := env.cur.Y

	g := PhotoGroup{Entries: []int{0, 1}, Heights: []float64{82.5, 82.5}}
	placed := []placedEntry{
		{Entry: report.PhotoEntry{Label: "Photo 1"}, Image: testImage(4, 3), ImageHeight: 82.5},
		{Entry: report.PhotoEntry{Label: "Photo 2"}, Image: testImage(4, 3), ImageHeight: 82.5},
	}
	pl.Draw(env.cur, g, placed, available)

	if !near(env.cur.Y, env.cur.MaxY) {
		t.Fatalf("balanced pair ends at %v, want %v", env.cur.Y, env.cur.MaxY)
	}
	if env.cur.Queue().Len() != 0 {
		t.Fatalf("separator left in the queue")
	}
	if n := env.countOps(t, 1, "Do"); n != 2 {
		t.Fatalf("drew %d images, want 2", n)
	}

	pad := (available - 165 - 2*TightGap) / 2
	texts := env.texts(t)
	p2 := findText(texts, "Photo 2")[0]
	want := top + 82.5 + TightGap + 2*pad + TightGap + env.theme.BodySize*layout.PtToMM*0.8
	if !near(p2.Y, want) {
		t.Fatalf("second entry baseline = %v, want %v", p2.Y, want)
	}
}

func TestPhotoPairFallbackPad(t *testing.T) {
	env := newTestEnv(t)
	pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
	top := env.cur.Y
	g := PhotoGroup{Entries: []int{0, 1}, Heights: []float64{120, 110}}
	placed := []placedEntry{
		{Entry: report.PhotoEntry{Label: "A"}, ImageHeight: 120},
		{Entry: report.PhotoEntry{Label: "B"}, ImageHeight: 110},
	}
	pl.Draw(env.cur, g, placed, env.cur.FreshSpace())
	if want := top + 120 + 2*TightGap + 2*fallbackPad + 110; !near(env.cur.Y, want) {
		t.Fatalf("end = %v, want %v", env.cur.Y, want)
	}
}

func TestMissingImagePlaceholder(t *testing.T) {
	env := newTestEnv(t)
	pl := NewPhotoLayout(env.theme, env.geo, env.m, DefaultPhotoWidth)
	entry := report.PhotoEntry{Label: "Photo 9", Date: "2024-05-03", Location: "KP 12", Description: "N/A"}
	h := pl.EntryHeight(entry, probeResult{Err: errNoImage}, env.cur.FreshSpace())
	pl.Draw(env.cur, PhotoGroup{Entries: []int{0}, Heights: []float64{h}}, []placedEntry{{Entry: entry}}, env.cur.FreshSpace())

	texts := env.texts(t)
	for _, s := range []string{"Photo 9", "Date:", "2024-05-03", "Location:", "KP 12", "Description:", "N/A"} {
		if len(findText(texts, s)) != 1 {
			t.Fatalf("caption is missing %q", s)
		}
	}
	if n := env.countOps(t, 1, "re"); n != 1 {
		t.Fatalf("placeholder rectangles = %d, want 1", n)
	}
	if n := env.countOps(t, 1, "Do"); n != 0 {
		t.Fatalf("drew %d images for a missing photo", n)
	}
}

func TestMapRenderer(t *testing.T) {
	env := newTestEnv(t)
	mr := NewMapRenderer(env.theme, env.geo, env.m)
	entry := report.PhotoEntry{Label: "Map 1", Direction: "ignored", Description: "Overview", IsMap: true}
	end := mr.Render(env.cur, entry, testImage(20, 10))

	if env.doc.PageCount() != 2 {
		t.Fatalf("map did not open a page")
	}
	if n := env.countOps(t, 2, "Do"); n != 1 {
		t.Fatalf("map page has %d images", n)
	}
	texts := env.texts(t)
	if len(findText(texts, "Direction:")) != 0 {
		t.Fatalf("map caption shows a direction")
	}
	label := findText(texts, "Map 1")
	imageBottom := env.header.Running().End() + env.geo.ContentWidth()/2
	if len(label) != 1 || label[0].Page != 2 || label[0].Y < imageBottom {
		t.Fatalf("caption %+v not beneath the map ending at %v", label, imageBottom)
	}
	if end > env.cur.MaxY {
		t.Fatalf("map page overflows: %v", end)
	}

	mr.Render(env.cur, report.PhotoEntry{Label: "Map 2", IsMap: true}, nil)
	if n := env.countOps(t, 3, "re"); n != 1 {
		t.Fatalf("missing map placeholder rectangles = %d", n)
	}
}

func TestMapRendererTallCaption(t *testing.T) {
	tests := []struct {
		name  string
		image *semantic.Image
		ops   string
	}{
		{"image", testImage(20, 10), "Do"},
		{"placeholder", nil, "re"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			mr := NewMapRenderer(env.theme, env.geo, env.m)
			entry := report.PhotoEntry{Label: "Map 1", Description: longDescription(1100), IsMap: true}
			end := mr.Render(env.cur, entry, tt.image)

			if end > env.cur.MaxY+1e-9 {
				t.Fatalf("map page ends at %v, past %v", end, env.cur.MaxY)
			}
			if env.doc.PageCount() != 2 {
				t.Fatalf("pages = %d, want 2", env.doc.PageCount())
			}
			if n := env.countOps(t, 2, tt.ops); n != 1 {
				t.Fatalf("%s ops = %d, want 1", tt.ops, n)
			}
			assertWithinPage(t, env, 2)

			var last shownText
			for _, st := range env.texts(t) {
				if st.Page == 2 && st.Y >= last.Y {
					last = st
				}
			}
			if !strings.HasSuffix(last.Text, "\x85") {
				t.Fatalf("last caption line %q is not ellipsized", last.Text)
			}
		})
	}
}
