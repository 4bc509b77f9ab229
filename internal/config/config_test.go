package config

import "testing"

func TestParseAdminIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "123456789", want: []int64{123456789}},
		{name: "multiple with spaces", raw: "1, 2,3", want: []int64{1, 2, 3}},
		{name: "trailing comma", raw: "42,", want: []int64{42}},
		{name: "garbage", raw: "1,abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAdminIDs(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAdminIDs(%q) expected error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAdminIDs(%q) unexpected error: %v", tt.raw, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseAdminIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseAdminIDs(%q)[%d] = %d, want %d", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{adminIDs: map[int64]struct{}{111: {}, 222: {}}}

	if !cfg.IsAdmin(111) {
		t.Error("expected 111 to be admin")
	}
	if cfg.IsAdmin(333) {
		t.Error("expected 333 not to be admin")
	}
}
