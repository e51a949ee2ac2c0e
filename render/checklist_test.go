package render

import (
	"testing"

	"github.com/xterra/fieldreport/layout"
	"github.com/xterra/fieldreport/report"
)

func TestChecklistRender(t *testing.T) {
	env := newTestEnv(t)
	cr := NewChecklistRenderer(env.theme, env.geo, env.m, "Site Conditions")
	items := []report.ChecklistItem{
		{Label: "Erosion controls in place", Value: report.ChecklistYes},
		{Label: "Spill kit on site", Value: report.ChecklistNo},
		{Label: "Wildlife sightings"},
	}
	start := env.cur.Y
	end := cr.Render(env.doc, start, items)
	if want := start + cr.Measure(items); !near(end, want) {
		t.Fatalf("Render end = %v, want %v", end, want)
	}

	if n := env.countOps(t, 1, "B"); n != 2 {
		t.Fatalf("filled marks = %d, want 2", n)
	}
	if n := env.countOps(t, 1, "c"); n != 4*3*len(items) {
		t.Fatalf("curve segments = %d, want %d", n, 4*3*len(items))
	}

	texts := env.texts(t)
	for i, choice := range report.ChecklistChoices {
		got := findText(texts, string(choice))
		if len(got) != 1 {
			t.Fatalf("caption %q drawn %d times", choice, len(got))
		}
		w := env.m.Width(string(choice), env.theme.CaptionBold())
		if !near(got[0].X+w/2, cr.choiceX(i)) {
			t.Fatalf("caption %q centred at %v, want %v", choice, got[0].X+w/2, cr.choiceX(i))
		}
	}
	if got := cr.choiceX(2); !near(got, env.geo.ContentRight()-ChoicePitch/2) {
		t.Fatalf("last column at %v", got)
	}
	if got := cr.choiceX(1) - cr.choiceX(0); !near(got, ChoicePitch) {
		t.Fatalf("pitch = %v", got)
	}
}

func TestChecklistRowHeight(t *testing.T) {
	env := newTestEnv(t)
	cr := NewChecklistRenderer(env.theme, env.geo, env.m, "")
	short := cr.RowHeight(report.ChecklistItem{Label: "Short"})
	if want := layout.LineHeight(env.theme.BodySize) + rowGap; !near(short, want) {
		t.Fatalf("single-line row = %v, want %v", short, want)
	}
	long := cr.RowHeight(report.ChecklistItem{Label: numberedLines(3)})
	if want := 3*layout.LineHeight(env.theme.BodySize) + rowGap; !near(long, want) {
		t.Fatalf("three-line row = %v, want %v", long, want)
	}
	if got := cr.CaptionHeight(); !near(got, layout.LineHeight(env.theme.CaptionSize)+captionGap) {
		t.Fatalf("untitled caption = %v", got)
	}
}
