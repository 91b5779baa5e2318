package testing

import (
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/testing/internal/testbed"
)

func newCounterTester(t *testing.T, initial int) *Tester {
	tree, store := testbed.Counter{Initial: initial}.Build()
	return NewTesterWithT(t, tree, store)
}

func TestByType(t *testing.T) {
	tester := newCounterTester(t, 0)

	result := tester.Find(ByType("Button"))
	if result.Count() != 2 {
		t.Fatalf("expected 2 buttons, got %d", result.Count())
	}
	if got := *result.First().Label; got != "Increment" {
		t.Errorf("expected first button 'Increment', got %q", got)
	}
}

func TestByText(t *testing.T) {
	tester := newCounterTester(t, 42)

	if !tester.Find(ByText("Count: 42")).Exists() {
		t.Error("expected to find text 'Count: 42'")
	}
	if tester.Find(ByText("# Count: 42")).Exists() {
		t.Error("heading marker should not be part of the content")
	}
	if tester.Find(ByText("Count: 99")).Exists() {
		t.Error("should not find text 'Count: 99'")
	}
}

func TestByTextContaining(t *testing.T) {
	tester := newCounterTester(t, 123)

	if !tester.Find(ByTextContaining("12")).Exists() {
		t.Error("expected to find text containing '12'")
	}
	if tester.Find(ByTextContaining("99")).Exists() {
		t.Error("should not find text containing '99'")
	}
}

func TestByLabel(t *testing.T) {
	tester := newCounterTester(t, 0)
	if !tester.Find(ByLabel("Reset")).Exists() {
		t.Error("expected to find Reset button")
	}

	tree, store := testbed.Form{}.Build()
	form := NewTesterWithT(t, tree, store)
	result := form.Find(ByLabel("Age"))
	if !result.Exists() {
		t.Fatal("expected to find Age input")
	}
	if got := result.Prop("variable"); got != "age" {
		t.Errorf("expected variable 'age', got %v", got)
	}
}

func TestByIDAndVariable(t *testing.T) {
	tree, store := testbed.Form{}.Build()
	tester := NewTesterWithT(t, tree, store)

	input := tester.Find(ByVariable("name")).First()
	if input.Type != "Input" {
		t.Fatalf("expected Input, got %s", input.Type)
	}
	if got := tester.Find(ByID(input.ID)).First(); got != input {
		t.Error("ByID should return the same record")
	}
	if tester.Find(ByVariable("missing")).Exists() {
		t.Error("should not find an unbound variable")
	}
}

func TestByMarkup(t *testing.T) {
	tester := newCounterTester(t, 0)

	if got := tester.Find(ByMarkup(render.MarkupHeading)).Content(); got != "Count: 0" {
		t.Errorf("expected heading 'Count: 0', got %q", got)
	}
	if tester.Find(ByMarkup(render.MarkupSeparator)).Exists() {
		t.Error("should not find a separator")
	}
}

func TestByPredicate(t *testing.T) {
	tester := newCounterTester(t, 0)

	result := tester.Find(ByPredicate("secondary buttons", func(v *render.View) bool {
		return v.Props["variant"] == "secondary"
	}))
	if result.Count() != 1 {
		t.Fatalf("expected 1 match, got %d", result.Count())
	}
	if got := *result.First().Label; got != "Reset" {
		t.Errorf("expected Reset, got %q", got)
	}
}

func TestDescendant(t *testing.T) {
	tester := newCounterTester(t, 0)

	inRow := tester.Find(Descendant(ByType("Row"), ByType("Button")))
	if inRow.Count() != 2 {
		t.Errorf("expected 2 buttons in row, got %d", inRow.Count())
	}
	if tester.Find(Descendant(ByType("Row"), ByType("Text"))).Exists() {
		t.Error("heading is not inside the row")
	}
	// The row itself is a descendant of the card, not of itself.
	if got := tester.Find(Descendant(ByType("Row"), ByType("Row"))).Count(); got != 0 {
		t.Errorf("expected no Row under Row, got %d", got)
	}
}

func TestAncestor(t *testing.T) {
	tester := newCounterTester(t, 0)

	result := tester.Find(Ancestor(ByLabel("Reset"), ByPredicate("containers", func(v *render.View) bool {
		return v.IsContainer()
	})))
	if result.Count() != 3 {
		t.Fatalf("expected root Column, Card and Row, got %d", result.Count())
	}
	if result.At(0).Type != "Column" || result.At(1).Type != "Card" || result.At(2).Type != "Row" {
		t.Errorf("expected [Column Card Row], got [%s %s %s]", result.At(0).Type, result.At(1).Type, result.At(2).Type)
	}
	if tester.Find(Ancestor(ByText("nothing"), ByType("Card"))).Exists() {
		t.Error("no ancestors expected for a finder that matches nothing")
	}
}

func TestFinderResult_FirstPanicsWhenEmpty(t *testing.T) {
	tester := newCounterTester(t, 0)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, `ByText("missing")`) {
			t.Errorf("panic message should name the finder, got %v", r)
		}
	}()
	tester.Find(ByText("missing")).First()
}

func TestFinderResult_AtOutOfRange(t *testing.T) {
	tester := newCounterTester(t, 0)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	tester.Find(ByType("Button")).At(5)
}

func TestFinderResult_FirstOrNil(t *testing.T) {
	tester := newCounterTester(t, 0)

	if tester.Find(ByType("Chart")).FirstOrNil() != nil {
		t.Error("expected nil for no matches")
	}
	if tester.Find(ByType("Card")).FirstOrNil() == nil {
		t.Error("expected the card")
	}
}
