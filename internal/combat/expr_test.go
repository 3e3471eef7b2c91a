package combat

import "testing"

type fakeStats map[string]float64

func (f fakeStats) Stat(name string) float64 { return f[name] }

func TestExprArithmeticPrecedence(t *testing.T) {
	p, err := Compile("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := p.Eval(fakeStats{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 14 {
		t.Fatalf("got %v, want 14", got)
	}
}

func TestExprParentheses(t *testing.T) {
	p, err := Compile("(2 + 3) * 4")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := p.Eval(fakeStats{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestExprStatIdentifier(t *testing.T) {
	p, err := Compile("20 + intellect * 0.5")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := p.Eval(fakeStats{"intellect": 40})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 40 {
		t.Fatalf("got %v, want 40", got)
	}
}

func TestExprMinMax(t *testing.T) {
	p, err := Compile("max(10, 20)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := p.Eval(fakeStats{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 20 {
		t.Fatalf("got %v, want 20", got)
	}

	p2, err := Compile("min(10, 20)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got2, err := p2.Eval(fakeStats{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got2 != 10 {
		t.Fatalf("got %v, want 10", got2)
	}
}

func TestExprDivideByZero(t *testing.T) {
	p, err := Compile("10 / 0")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := p.Eval(fakeStats{}); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}
