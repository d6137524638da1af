package journal

import "testing"

func TestAnchorScore_Labels(t *testing.T) {
	cases := []struct {
		mood string
		want int
	}{
		{"😔 Very Low", 2},
		{"😟 Low", 4},
		{"😐 Neutral", 5},
		{"🙂 Good", 7},
		{"😊 Great", 9},
		{"Ecstatic", 5}, // unknown label falls back to neutral
		{"", 5},
	}
	for _, tc := range cases {
		if got := AnchorScore(tc.mood); got != tc.want {
			t.Errorf("AnchorScore(%q) = %d, want %d", tc.mood, got, tc.want)
		}
	}
}

func TestBlendScore_WeightedRounding(t *testing.T) {
	cases := []struct {
		anchor, text, want int
	}{
		{5, 10, 7},   // 0.7*5 + 0.3*10 = 6.5 rounds up
		{7, 7, 7},    // agreement keeps the anchor
		{9, 5, 8},    // 6.3 + 1.5 = 7.8 rounds to 8
		{2, 1, 2},    // 1.7 rounds to 2
		{2, 810, 10}, // absurd parsed score still clamps to 10
		{1, 1, 1},
	}
	for _, tc := range cases {
		if got := BlendScore(tc.anchor, tc.text); got != tc.want {
			t.Errorf("BlendScore(%d, %d) = %d, want %d", tc.anchor, tc.text, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0, 1, 10) != 1 || Clamp(11, 1, 10) != 10 || Clamp(5, 1, 10) != 5 {
		t.Fatalf("Clamp bounds wrong")
	}
}

func TestParseTextScore_DigitConcatenation(t *testing.T) {
	cases := []struct {
		reply string
		want  int
	}{
		{"7", 7},
		{" 7 \n", 7},
		{"Score: 8/10", 810}, // digits concatenate, not first-number
		{"I'd rate this a 6.", 6},
		{"no digits here", DefaultTextScore},
		{"", DefaultTextScore},
		{"99999999999999999999", DefaultTextScore}, // overflows int
	}
	for _, tc := range cases {
		if got := ParseTextScore(tc.reply); got != tc.want {
			t.Errorf("ParseTextScore(%q) = %d, want %d", tc.reply, got, tc.want)
		}
	}
}
