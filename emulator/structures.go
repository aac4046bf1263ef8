package emulator

import (
	"sync"
	"sync/atomic"
)

const (
	MemorySize      = 1 << 15 // words of RAM and of ROM
	ScreenAddress   = 16384
	KeyboardAddress = 24576
	ScreenWidth     = 512
	ScreenHeight    = 256
	screenWords     = ScreenWidth * ScreenHeight / 16
	wordsPerRow     = ScreenWidth / 16
)

type EmulatorConfig struct {
	Program              []uint16
	RuntimeLimit         uint64 // instructions executed before the run is cut off, 0 for no limit
	RuntimeErrorCallback func(RuntimeException)
}

type RuntimeException struct {
	pc      uint16
	a       uint16
	d       uint16
	message string
}

func (e RuntimeException) Error() string {
	return e.message
}

func (e RuntimeException) PC() uint16 {
	return e.pc
}

// VirtualDisplay is the memory-mapped screen. Each word holds 16 pixels, least significant bit leftmost.
type VirtualDisplay struct {
	data          [screenWords]uint16
	updateRegions [wordsPerRow * ScreenHeight / 16]bool // for each 16x16 pixel group, whether it has been updated
	dataMutex     sync.Mutex
	displayWrites atomic.Int64
}

type EmulatorInstance struct {
	rom      []uint16
	ram      [KeyboardAddress]uint16 // everything below the keyboard; the screen lives in display
	a        uint16
	d        uint16
	pc       uint16
	keyboard atomic.Uint32

	runtimeLimit         uint64
	executedInstructions uint64
	halted               bool // stopped on a jump to itself
	terminated           atomic.Bool

	display              *VirtualDisplay
	errors               []RuntimeException
	runtimeErrorCallback func(RuntimeException)
}

// State is a snapshot of the CPU registers.
type State struct {
	A        uint16 `json:"a"`
	D        uint16 `json:"d"`
	PC       uint16 `json:"pc"`
	Executed uint64 `json:"executed"`
	Halted   bool   `json:"halted"`
}
