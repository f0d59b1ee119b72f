package pci

import (
	"errors"
	"testing"

	"github.com/jslinux/JsOs/pkg"
)

// =============================================================================
// Address Tests
// =============================================================================

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name    string
		bus     uint8
		slot    uint8
		fn      uint8
		wantErr bool
	}{
		{"zero", 0, 0, 0, false},
		{"typical", 0, 2, 0, false},
		{"maxima", 255, 31, 7, false},
		{"slot too large", 0, 32, 0, true},
		{"func too large", 0, 0, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.bus, tt.slot, tt.fn)
			if tt.wantErr {
				if !errors.Is(err, pkg.ErrInvalidAddress) {
					t.Errorf("NewAddress(%d,%d,%d) error = %v, want ErrInvalidAddress",
						tt.bus, tt.slot, tt.fn, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAddress(%d,%d,%d) unexpected error: %v",
					tt.bus, tt.slot, tt.fn, err)
			}
			if addr.Bus != tt.bus || addr.Slot != tt.slot || addr.Func != tt.fn {
				t.Errorf("NewAddress(%d,%d,%d) = %+v", tt.bus, tt.slot, tt.fn, addr)
			}
		})
	}
}

func TestAddress_String(t *testing.T) {
	tests := []struct {
		addr Address
		want string
	}{
		{Address{Bus: 0, Slot: 2, Func: 0}, "00:02.0"},
		{Address{Bus: 1, Slot: 31, Func: 7}, "01:1f.7"},
		{Address{Bus: 254, Slot: 16, Func: 3}, "fe:10.3"},
	}

	for _, tt := range tests {
		if got := tt.addr.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestAddress_MapKey(t *testing.T) {
	m := map[Address]int{
		{Bus: 0, Slot: 2, Func: 0}: 1,
		{Bus: 0, Slot: 2, Func: 1}: 2,
	}

	if m[Address{Bus: 0, Slot: 2, Func: 0}] != 1 {
		t.Error("value-type key lookup failed")
	}
	if m[Address{Bus: 0, Slot: 2, Func: 1}] != 2 {
		t.Error("value-type key lookup failed for function 1")
	}
}

// =============================================================================
// Field Table Tests
// =============================================================================

func TestFields_DwordAligned(t *testing.T) {
	fields := []struct {
		name  string
		field Field
	}{
		{"VendorID", FieldVendorID},
		{"DeviceID", FieldDeviceID},
		{"Command", FieldCommand},
		{"Status", FieldStatus},
		{"HeaderType", FieldHeaderType},
		{"ClassCode", FieldClassCode},
		{"InterruptPin", FieldInterruptPin},
		{"BAR0", FieldBAR0},
		{"BAR5", FieldBAR5},
		{"SubsystemID", FieldSubsystemID},
		{"SecondaryBus", FieldSecondaryBus},
	}

	for _, tt := range fields {
		if tt.field.Offset&3 != 0 {
			t.Errorf("%s offset %#x is not dword-aligned", tt.name, tt.field.Offset)
		}
		if tt.field.Shift > 3 {
			t.Errorf("%s shift %d exceeds a dword", tt.name, tt.field.Shift)
		}
		switch tt.field.Mask {
		case 0xFF, 0xFFFF, 0xFFFFFFFF:
		default:
			t.Errorf("%s mask %#x is not a supported width", tt.name, tt.field.Mask)
		}
	}
}

func TestConfigAddress(t *testing.T) {
	tests := []struct {
		addr   Address
		offset uint8
		want   uint32
	}{
		{Address{Bus: 0, Slot: 0, Func: 0}, 0x00, 0x80000000},
		{Address{Bus: 0, Slot: 2, Func: 0}, 0x00, 0x80001000},
		{Address{Bus: 1, Slot: 3, Func: 2}, 0x10, 0x80011A10},
		// Sub-dword offsets are masked down to their dword.
		{Address{Bus: 0, Slot: 0, Func: 0}, 0x3E, 0x8000003C},
	}

	for _, tt := range tests {
		if got := configAddress(tt.addr, tt.offset); got != tt.want {
			t.Errorf("configAddress(%s, %#x) = %#x, want %#x",
				tt.addr, tt.offset, got, tt.want)
		}
	}
}
