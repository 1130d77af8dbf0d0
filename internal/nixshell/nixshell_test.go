package nixshell

import (
	"os"
	"testing"

	"github.com/jzbor/zinn/internal/zinnfile"
)

func TestPackageRefs(t *testing.T) {
	tests := []struct {
		name string
		cfg  *zinnfile.NixConfig
		want []string
	}{
		{
			name: "explicit nixpkgs",
			cfg:  &zinnfile.NixConfig{Nixpkgs: "nixpkgs-unstable", Packages: []string{"gnumake", "jq"}},
			want: []string{"nixpkgs-unstable#gnumake", "nixpkgs-unstable#jq"},
		},
		{
			name: "default nixpkgs when unset",
			cfg:  &zinnfile.NixConfig{Packages: []string{"go"}},
			want: []string{"nixpkgs#go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := packageRefs(tt.cfg)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInsideWrap(t *testing.T) {
	_ = os.Unsetenv(envMarker)
	if InsideWrap() {
		t.Fatal("expected false when env marker unset")
	}

	t.Setenv(envMarker, "1")
	if !InsideWrap() {
		t.Fatal("expected true once env marker set")
	}
}
