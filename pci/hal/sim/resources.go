package sim

import (
	"fmt"

	"github.com/jslinux/JsOs/pci/hal"
)

// MemoryBlock is a claimed simulated memory window backed by a sparse
// byte store.
type MemoryBlock struct {
	base uint32
	size uint32
	data map[uint32]byte
}

// Base implements [hal.MemoryHandle].
func (b *MemoryBlock) Base() uint32 { return b.base }

// Size implements [hal.MemoryHandle].
func (b *MemoryBlock) Size() uint32 { return b.size }

// Read8 implements [hal.MemoryHandle].
func (b *MemoryBlock) Read8(offset uint32) uint8 { return b.data[offset] }

// Read16 implements [hal.MemoryHandle].
func (b *MemoryBlock) Read16(offset uint32) uint16 {
	return uint16(b.data[offset]) | uint16(b.data[offset+1])<<8
}

// Read32 implements [hal.MemoryHandle].
func (b *MemoryBlock) Read32(offset uint32) uint32 {
	return uint32(b.data[offset]) | uint32(b.data[offset+1])<<8 |
		uint32(b.data[offset+2])<<16 | uint32(b.data[offset+3])<<24
}

// Write8 implements [hal.MemoryHandle].
func (b *MemoryBlock) Write8(offset uint32, value uint8) { b.data[offset] = value }

// Write16 implements [hal.MemoryHandle].
func (b *MemoryBlock) Write16(offset uint32, value uint16) {
	b.data[offset] = byte(value)
	b.data[offset+1] = byte(value >> 8)
}

// Write32 implements [hal.MemoryHandle].
func (b *MemoryBlock) Write32(offset uint32, value uint32) {
	b.data[offset] = byte(value)
	b.data[offset+1] = byte(value >> 8)
	b.data[offset+2] = byte(value >> 16)
	b.data[offset+3] = byte(value >> 24)
}

// MemoryRange hands out simulated memory windows.
type MemoryRange struct {
	claims []*MemoryBlock
}

// NewMemoryRange creates a simulated physical memory range.
func NewMemoryRange() *MemoryRange {
	return &MemoryRange{}
}

// Block implements [hal.MemoryRange].
func (r *MemoryRange) Block(base, size uint32) hal.MemoryHandle {
	b := &MemoryBlock{base: base, size: size, data: make(map[uint32]byte)}
	r.claims = append(r.claims, b)
	return b
}

// Claims returns all windows handed out so far.
func (r *MemoryRange) Claims() []*MemoryBlock {
	return r.claims
}

// IOWindow is a claimed simulated port window backed by a sparse byte
// store.
type IOWindow struct {
	base uint16
	end  uint16
	data map[uint16]byte
}

// Base implements [hal.IOHandle].
func (w *IOWindow) Base() uint16 { return w.base }

// End implements [hal.IOHandle].
func (w *IOWindow) End() uint16 { return w.end }

// Read8 implements [hal.IOHandle].
func (w *IOWindow) Read8(offset uint16) uint8 { return w.data[offset] }

// Read16 implements [hal.IOHandle].
func (w *IOWindow) Read16(offset uint16) uint16 {
	return uint16(w.data[offset]) | uint16(w.data[offset+1])<<8
}

// Read32 implements [hal.IOHandle].
func (w *IOWindow) Read32(offset uint16) uint32 {
	return uint32(w.data[offset]) | uint32(w.data[offset+1])<<8 |
		uint32(w.data[offset+2])<<16 | uint32(w.data[offset+3])<<24
}

// Write8 implements [hal.IOHandle].
func (w *IOWindow) Write8(offset uint16, value uint8) { w.data[offset] = value }

// Write16 implements [hal.IOHandle].
func (w *IOWindow) Write16(offset uint16, value uint16) {
	w.data[offset] = byte(value)
	w.data[offset+1] = byte(value >> 8)
}

// Write32 implements [hal.IOHandle].
func (w *IOWindow) Write32(offset uint16, value uint32) {
	w.data[offset] = byte(value)
	w.data[offset+1] = byte(value >> 8)
	w.data[offset+2] = byte(value >> 16)
	w.data[offset+3] = byte(value >> 24)
}

// IORange hands out simulated port windows.
type IORange struct {
	claims []*IOWindow
}

// NewIORange creates a simulated I/O port range.
func NewIORange() *IORange {
	return &IORange{}
}

// Port implements [hal.IORange].
func (r *IORange) Port(n uint16) hal.IOHandle {
	return r.Subrange(n, n)
}

// Subrange implements [hal.IORange].
func (r *IORange) Subrange(base, end uint16) hal.IOHandle {
	w := &IOWindow{base: base, end: end, data: make(map[uint16]byte)}
	r.claims = append(r.claims, w)
	return w
}

// Claims returns all windows handed out so far.
func (r *IORange) Claims() []*IOWindow {
	return r.claims
}

// IRQLine is a claimed simulated interrupt vector.
type IRQLine struct {
	vector uint8
}

// Vector implements [hal.IRQHandle].
func (l *IRQLine) Vector() uint8 { return l.vector }

// IRQRange hands out simulated interrupt vectors.
type IRQRange struct {
	claims []uint8
}

// NewIRQRange creates a simulated interrupt range.
func NewIRQRange() *IRQRange {
	return &IRQRange{}
}

// IRQ implements [hal.IRQRange].
func (r *IRQRange) IRQ(vector uint8) hal.IRQHandle {
	r.claims = append(r.claims, vector)
	return &IRQLine{vector: vector}
}

// Claims returns all vectors handed out so far.
func (r *IRQRange) Claims() []uint8 {
	return r.claims
}

// Allocator hands out simulated memory blocks from a bump pointer.
type Allocator struct {
	next uint32
}

// NewAllocator creates an allocator starting at the given physical base.
func NewAllocator(base uint32) *Allocator {
	return &Allocator{next: base}
}

// Allocate implements [hal.Allocator].
func (a *Allocator) Allocate(size, align uint32) (hal.MemoryHandle, error) {
	if size == 0 || align == 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("allocate size %d align %d: invalid arguments", size, align)
	}
	base := (a.next + align - 1) &^ (align - 1)
	a.next = base + size
	return &MemoryBlock{base: base, size: size, data: make(map[uint32]byte)}, nil
}

var (
	_ hal.MemoryRange = (*MemoryRange)(nil)
	_ hal.IORange     = (*IORange)(nil)
	_ hal.IRQRange    = (*IRQRange)(nil)
	_ hal.Allocator   = (*Allocator)(nil)
)
