package ctxbuild

import "testing"

func TestMatchesFilter(t *testing.T) {
	cases := []struct {
		title          string
		pattern        string
		build, target  string
		want           bool
	}{
		{title: "empty pattern matches everything", pattern: "", build: "Debug", target: "Board", want: true},
		{title: "build-only literal matches same build, any target", pattern: ".Debug", build: "Debug", target: "Board", want: true},
		{title: "build-only literal rejects different build", pattern: ".Debug", build: "Release", target: "Board", want: false},
		{title: "target-only literal matches same target, any build", pattern: "+Board", build: "Debug", target: "Board", want: true},
		{title: "full literal requires both to match", pattern: ".Debug+Board", build: "Debug", target: "Board", want: true},
		{title: "full literal rejects target mismatch", pattern: ".Debug+Board", build: "Debug", target: "OtherBoard", want: false},
	}
	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			if got := MatchesFilter(c.pattern, c.build, c.target); got != c.want {
				t.Errorf("MatchesFilter(%q, %q, %q) = %v, want %v", c.pattern, c.build, c.target, got, c.want)
			}
		})
	}
}

func TestIncludedAppliesIncludeThenExclude(t *testing.T) {
	// Open Question (b): both for-context and not-for-context matching
	// means exclusion still wins.
	included := Included([]string{".Debug"}, []string{".Debug+Board"}, "Debug", "Board")
	if included {
		t.Fatal("expected not-for-context to win when both lists match")
	}

	included = Included([]string{".Debug"}, []string{".Debug+OtherBoard"}, "Debug", "Board")
	if !included {
		t.Fatal("expected inclusion to hold when exclusion does not match")
	}
}

func TestIncludedWithNoForContextDefaultsToIncluded(t *testing.T) {
	if !Included(nil, nil, "Debug", "Board") {
		t.Fatal("expected no for-context/not-for-context entries to mean 'included'")
	}
}

func TestTypeFilterIncludedOrThenExcludeWins(t *testing.T) {
	if TypeFilterIncluded([]string{".Debug"}, []string{".Debug"}, "Debug", "Board") {
		t.Fatal("expected exclusion to win over inclusion")
	}
	if !TypeFilterIncluded(nil, []string{".Release"}, "Debug", "Board") {
		t.Fatal("expected Debug to remain included when only Release is excluded")
	}
}
