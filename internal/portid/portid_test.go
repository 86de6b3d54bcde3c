package portid

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GigabitEthernet1/0/12", "1/0/12"},
		{"3/14", "3/14"},
		{"Te0/8/1/12", "0/8/1/12"},
		{"ge-0/0/5", "0/0/5"},
		{"Port 7", "7"},
		{"Gi1/0/1.100", "1/0/1"},
		{"Slot 2 Port 1/4", "1/4"},
		{"eth1 eth2", "2"},
		{"mgmt", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Extract(tt.in); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromNames(t *testing.T) {
	if got := FromNames("uplink", "Gi1/0/3"); got != "1/0/3" {
		t.Errorf("FromNames = %q, want %q", got, "1/0/3")
	}
	if got := FromNames("", "lo"); got != "" {
		t.Errorf("FromNames = %q, want empty", got)
	}
}

func TestDashedAndSegments(t *testing.T) {
	if got := Dashed("0/8/1/12"); got != "0-8-1-12" {
		t.Errorf("Dashed = %q", got)
	}
	segs := Segments("0-8/1-12")
	if len(segs) != 4 || segs[0] != "0" || segs[3] != "12" {
		t.Errorf("Segments = %v", segs)
	}
	if Segments("") != nil {
		t.Error("Segments(\"\") should be nil")
	}
	if got := Join([]string{"3", "2"}); got != "3-2" {
		t.Errorf("Join = %q", got)
	}
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		id    string
		name  string
		match bool
	}{
		{"1/1", "GigabitEthernet1/1", true},
		{"1-1", "GigabitEthernet1/1", true},
		{"1/1", "Gi1/1/Bay", true},
		{"1/1", "Gi1/1/1", false},
		{"1/1", "Gi11/1", false},
		{"1/1", "Gi1/10", false},
		{"3/14", "3/14", true},
		{"3/14", "port 3/14 uplink", true},
		{"7", "Port 7", true},
		{"7", "Port 17", false},
	}
	for _, tt := range tests {
		t.Run(tt.id+"_"+tt.name, func(t *testing.T) {
			if got := Matcher(tt.id).MatchString(tt.name); got != tt.match {
				t.Errorf("Matcher(%q).MatchString(%q) = %v, want %v", tt.id, tt.name, got, tt.match)
			}
		})
	}
}
