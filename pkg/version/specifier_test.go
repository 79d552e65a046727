package version

import "testing"

func TestParseSpecifier(t *testing.T) {
	tests := []struct {
		in      string
		clauses int
		wantErr bool
	}{
		{in: "", clauses: 0},
		{in: "==1.2.3", clauses: 1},
		{in: ">=1.2, <2.0", clauses: 2},
		{in: "~=1.4.2", clauses: 1},
		{in: "==1.2.*", clauses: 1},
		{in: "!=1.2.*", clauses: 1},
		{in: "===1.0-special", clauses: 1},
		{in: ">=1.2.*", wantErr: true}, // wildcard only with == and !=
		{in: "~=1", wantErr: true},     // needs two release segments
		{in: "==", wantErr: true},
		{in: "1.2.3", wantErr: true}, // bare version is not a clause
		{in: ">=1.2,,<2.0", wantErr: true},
		{in: "==not.a.version!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, err := ParseSpecifier(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSpecifier(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecifier(%q): %v", tt.in, err)
			}
			if len(spec) != tt.clauses {
				t.Errorf("len = %d, want %d", len(spec), tt.clauses)
			}
		})
	}
}

func TestSpecifier_Match(t *testing.T) {
	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{"==1.2.3", "1.2.3", true},
		{"==1.2.3", "1.2.4", false},
		{"==1.0", "1.0.0", true}, // zero padding
		{"==1.0", "1.0+cpu", true},
		{"!=1.2.3", "1.2.3", false},
		{"!=1.2.3", "1.2.4", true},
		{">=1.2", "1.2", true},
		{">=1.2", "1.1.9", false},
		{"<2.0", "1.9.9", true},
		{"<2.0", "2.0", false},
		{">1.0", "1.0.post1", true},
		{">=1.2,<2.0", "1.5", true},
		{">=1.2,<2.0", "2.1", false},
		{"==1.2.*", "1.2.9", true},
		{"==1.2.*", "1.3.0", false},
		{"==1.*", "1.9", true},
		{"!=1.2.*", "1.2.1", false},
		{"!=1.2.*", "1.3.0", true},
		{"~=1.4.2", "1.4.2", true},
		{"~=1.4.2", "1.4.9", true},
		{"~=1.4.2", "1.5.0", false},
		{"~=1.4.2", "1.4.1", false},
		{"~=2.2", "2.9", true},
		{"~=2.2", "3.0", false},
		{"===1.0", "1.0", true},
		{"===1.0", "1.0.0", false}, // arbitrary equality is literal
		{"", "0.0.1", true},        // empty specifier matches everything
	}

	for _, tt := range tests {
		t.Run(tt.spec+" vs "+tt.version, func(t *testing.T) {
			spec, err := ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifier(%q): %v", tt.spec, err)
			}
			if got := spec.Match(MustParse(tt.version)); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.spec, tt.version, got, tt.want)
			}
		})
	}
}

func TestSpecifier_ExactPin(t *testing.T) {
	tests := []struct {
		spec string
		pin  string
		ok   bool
	}{
		{"==1.2.3", "1.2.3", true},
		{"===1.0-special", "1.0-special", true},
		{"==1.2.*", "", false},
		{">=1.2", "", false},
		{">=1.2,<2.0", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifier(%q): %v", tt.spec, err)
			}
			pin, ok := spec.ExactPin()
			if ok != tt.ok || pin != tt.pin {
				t.Errorf("ExactPin() = (%q, %v), want (%q, %v)", pin, ok, tt.pin, tt.ok)
			}
		})
	}
}

func TestSpecifier_String(t *testing.T) {
	spec, err := ParseSpecifier(">=1.2, <2.0")
	if err != nil {
		t.Fatal(err)
	}
	if got := spec.String(); got != ">=1.2,<2.0" {
		t.Errorf("String() = %q", got)
	}
}
