package grader

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single lowercase", in: "a", want: "A"},
		{name: "single with spaces", in: "  b ", want: "B"},
		{name: "judge answer", in: "true", want: "TRUE"},
		{name: "multi sorted", in: "A,B", want: "A,B"},
		{name: "multi unsorted", in: "B,A", want: "A,B"},
		{name: "multi with spaces", in: "b , a", want: "A,B"},
		{name: "multi duplicate tokens", in: "A,A,B", want: "A,B"},
		{name: "multi empty tokens", in: "A,,B,", want: "A,B"},
		{name: "internal whitespace", in: "A B", want: "AB"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"a", "B,A", "c, a , b", "A,,B", "  judge  ", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		correct string
		want    bool
	}{
		{name: "exact single", user: "A", correct: "A", want: true},
		{name: "case insensitive", user: "a", correct: "A", want: true},
		{name: "multi order independent", user: "B,A", correct: "A,B", want: true},
		{name: "multi spaces and case", user: "a, b", correct: "B,A", want: true},
		{name: "wrong single", user: "A", correct: "B", want: false},
		{name: "missing token", user: "A", correct: "A,B", want: false},
		{name: "extra token", user: "A,B,C", correct: "A,B", want: false},
		{name: "empty user", user: "", correct: "A", want: false},
		{name: "empty correct", user: "A", correct: "", want: false},
		{name: "both empty", user: "", correct: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.user, tc.correct); got != tc.want {
				t.Errorf("IsCorrect(%q, %q) = %v, want %v", tc.user, tc.correct, got, tc.want)
			}
		})
	}
}
