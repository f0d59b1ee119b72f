package pci

import "testing"

func TestClassName(t *testing.T) {
	tests := []struct {
		code uint8
		want string
	}{
		{0x00, "Unclassified"},
		{0x01, "Mass Storage Controller"},
		{0x02, "Network Controller"},
		{0x03, "Display Controller"},
		{0x06, "Bridge"},
		{0x0C, "Serial Bus Controller"},
		{0x40, "Coprocessor"},
		{0x55, "Unknown"},
		{0xFE, "Unknown"},
	}

	for _, tt := range tests {
		if got := ClassName(tt.code); got != tt.want {
			t.Errorf("ClassName(%#02x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
