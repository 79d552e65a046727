package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string // canonical form
		wantErr bool
	}{
		{in: "1.2.3", want: "1.2.3"},
		{in: "1.0", want: "1.0"},
		{in: "v1.0", want: "1.0"},
		{in: "1!2.0", want: "1!2.0"},
		{in: "1.0a1", want: "1.0a1"},
		{in: "1.0-alpha.1", want: "1.0a1"},
		{in: "1.0.beta2", want: "1.0b2"},
		{in: "1.0rc1", want: "1.0rc1"},
		{in: "1.0pre1", want: "1.0rc1"},
		{in: "1.0.post1", want: "1.0.post1"},
		{in: "1.0-1", want: "1.0.post1"},
		{in: "1.0rev2", want: "1.0.post2"},
		{in: "1.0.dev3", want: "1.0.dev3"},
		{in: "1.0dev", want: "1.0.dev0"},
		{in: "1.0+cpu", want: "1.0+cpu"},
		{in: "0.7.1", want: "0.7.1"},
		{in: "  1.2.3  ", want: "1.2.3"},
		{in: "1.0A1", want: "1.0a1"},
		{in: "", wantErr: true},
		{in: "not-a-version", wantErr: true},
		{in: "1.2.x", wantErr: true},
		{in: "1..2", wantErr: true},
		{in: "==1.2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got := v.Canonical(); got != tt.want {
				t.Errorf("Canonical() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_PreservesOriginal(t *testing.T) {
	v := MustParse("1.0-Alpha.1")
	if v.String() != "1.0-Alpha.1" {
		t.Errorf("String() = %q, want original spelling", v.String())
	}
}

func TestCompare_Ordering(t *testing.T) {
	// Each version must sort strictly before the next.
	ordered := []string{
		"0.9",
		"1.0.dev1",
		"1.0a1",
		"1.0a2",
		"1.0b1",
		"1.0rc1",
		"1.0rc1.post1",
		"1.0",
		"1.0.post0",
		"1.0.post1",
		"1.0.1",
		"1.1",
		"2.0",
		"1!0.5",
	}

	for i := 0; i < len(ordered)-1; i++ {
		a, b := MustParse(ordered[i]), MustParse(ordered[i+1])
		if Compare(a, b) >= 0 {
			t.Errorf("Compare(%q, %q) >= 0, want < 0", ordered[i], ordered[i+1])
		}
		if Compare(b, a) <= 0 {
			t.Errorf("Compare(%q, %q) <= 0, want > 0", ordered[i+1], ordered[i])
		}
	}
}

func TestCompare_ZeroPadding(t *testing.T) {
	if Compare(MustParse("1.0"), MustParse("1.0.0")) != 0 {
		t.Error("1.0 should equal 1.0.0")
	}
	if Compare(MustParse("1"), MustParse("1.0.0.0")) != 0 {
		t.Error("1 should equal 1.0.0.0")
	}
}

func TestCompare_DevBeforePre(t *testing.T) {
	if Compare(MustParse("1.0.dev9"), MustParse("1.0a1")) >= 0 {
		t.Error("1.0.dev9 should sort before 1.0a1")
	}
	if Compare(MustParse("1.0a1.dev1"), MustParse("1.0a1")) >= 0 {
		t.Error("1.0a1.dev1 should sort before 1.0a1")
	}
}

func TestEqual_IgnoresLocal(t *testing.T) {
	if !MustParse("1.0+cpu").Equal(MustParse("1.0")) {
		t.Error("1.0+cpu should equal 1.0 under pin equality")
	}
	if !MustParse("1.0").Equal(MustParse("1.0.0")) {
		t.Error("1.0 should equal 1.0.0")
	}
	if MustParse("1.0").Equal(MustParse("1.0.1")) {
		t.Error("1.0 should not equal 1.0.1")
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.0", false},
		{"1.0.post1", false},
		{"1.0a1", true},
		{"1.0rc2", true},
		{"1.0.dev1", true},
	}
	for _, tt := range tests {
		if got := MustParse(tt.in).IsPrerelease(); got != tt.want {
			t.Errorf("IsPrerelease(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
