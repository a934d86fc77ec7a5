// regs.go - register name -> id / size lookups (§4.D)
//
// Grounded on the teacher's register-part accessors (cpu_x86.go's
// AX()/AL()/AH() helpers) generalized from the fixed EAX..EDI set to the
// full x86-64 GPR/XMM/YMM families plus the REX-extended r8-r15 registers
// the teacher's 32-bit-only emulator never needed.

package regs

// ids maps every recognized register name to its 4-bit encoding number
// (0..15) or its xmm/ymm index (0..15).
var ids = map[string]int{
	// 8-bit, REX absent required semantics (AH/CH/DH/BH) at id 4..7.
	"al": 0, "cl": 1, "dl": 2, "bl": 3, "ah": 4, "ch": 5, "dh": 6, "bh": 7,
	// 8-bit, REX required to select over ah/ch/dh/bh at the same ids.
	"spl": 4, "bpl": 5, "sil": 6, "dil": 7,
	"r8b": 8, "r9b": 9, "r10b": 10, "r11b": 11, "r12b": 12, "r13b": 13, "r14b": 14, "r15b": 15,

	// 16-bit.
	"ax": 0, "cx": 1, "dx": 2, "bx": 3, "sp": 4, "bp": 5, "si": 6, "di": 7,
	"r8w": 8, "r9w": 9, "r10w": 10, "r11w": 11, "r12w": 12, "r13w": 13, "r14w": 14, "r15w": 15,

	// 32-bit.
	"eax": 0, "ecx": 1, "edx": 2, "ebx": 3, "esp": 4, "ebp": 5, "esi": 6, "edi": 7,
	"r8d": 8, "r9d": 9, "r10d": 10, "r11d": 11, "r12d": 12, "r13d": 13, "r14d": 14, "r15d": 15,

	// 64-bit.
	"rax": 0, "rcx": 1, "rdx": 2, "rbx": 3, "rsp": 4, "rbp": 5, "rsi": 6, "rdi": 7,
	"r8": 8, "r9": 9, "r10": 10, "r11": 11, "r12": 12, "r13": 13, "r14": 14, "r15": 15,

	// XMM / YMM.
	"xmm0": 0, "xmm1": 1, "xmm2": 2, "xmm3": 3, "xmm4": 4, "xmm5": 5, "xmm6": 6, "xmm7": 7,
	"xmm8": 8, "xmm9": 9, "xmm10": 10, "xmm11": 11, "xmm12": 12, "xmm13": 13, "xmm14": 14, "xmm15": 15,
	"ymm0": 0, "ymm1": 1, "ymm2": 2, "ymm3": 3, "ymm4": 4, "ymm5": 5, "ymm6": 6, "ymm7": 7,
	"ymm8": 8, "ymm9": 9, "ymm10": 10, "ymm11": 11, "ymm12": 12, "ymm13": 13, "ymm14": 14, "ymm15": 15,
}

var sizes = map[string]int{
	"al": 1, "cl": 1, "dl": 1, "bl": 1, "ah": 1, "ch": 1, "dh": 1, "bh": 1,
	"spl": 1, "bpl": 1, "sil": 1, "dil": 1,
	"r8b": 1, "r9b": 1, "r10b": 1, "r11b": 1, "r12b": 1, "r13b": 1, "r14b": 1, "r15b": 1,

	"ax": 2, "cx": 2, "dx": 2, "bx": 2, "sp": 2, "bp": 2, "si": 2, "di": 2,
	"r8w": 2, "r9w": 2, "r10w": 2, "r11w": 2, "r12w": 2, "r13w": 2, "r14w": 2, "r15w": 2,

	"eax": 4, "ecx": 4, "edx": 4, "ebx": 4, "esp": 4, "ebp": 4, "esi": 4, "edi": 4,
	"r8d": 4, "r9d": 4, "r10d": 4, "r11d": 4, "r12d": 4, "r13d": 4, "r14d": 4, "r15d": 4,

	"rax": 8, "rcx": 8, "rdx": 8, "rbx": 8, "rsp": 8, "rbp": 8, "rsi": 8, "rdi": 8,
	"r8": 8, "r9": 8, "r10": 8, "r11": 8, "r12": 8, "r13": 8, "r14": 8, "r15": 8,

	"xmm0": 16, "xmm1": 16, "xmm2": 16, "xmm3": 16, "xmm4": 16, "xmm5": 16, "xmm6": 16, "xmm7": 16,
	"xmm8": 16, "xmm9": 16, "xmm10": 16, "xmm11": 16, "xmm12": 16, "xmm13": 16, "xmm14": 16, "xmm15": 16,
	"ymm0": 32, "ymm1": 32, "ymm2": 32, "ymm3": 32, "ymm4": 32, "ymm5": 32, "ymm6": 32, "ymm7": 32,
	"ymm8": 32, "ymm9": 32, "ymm10": 32, "ymm11": 32, "ymm12": 32, "ymm13": 32, "ymm14": 32, "ymm15": 32,
}

// mandatoryRex is the set of 8-bit register names that are only reachable
// when a REX prefix (even an all-zero one, REX.0) is present; without it
// the same id addresses AH/CH/DH/BH instead (§4.D, §9 "AVX register id
// collisions").
var mandatoryRex = map[string]bool{"spl": true, "bpl": true, "sil": true, "dil": true}

// ID returns the 4-bit register number (0..15) for name, or -1 if name is
// not a recognized register (§4.E "Unknown registers return id −1").
func ID(name string) int {
	if id, ok := ids[name]; ok {
		return id
	}
	return -1
}

// Size returns the register's width in bytes, or 0 if unrecognized.
func Size(name string) int {
	return sizes[name]
}

// RequiresRex reports whether name can only be encoded with a REX prefix
// present (SPL/BPL/SIL/DIL vs. AH/CH/DH/BH).
func RequiresRex(name string) bool {
	return mandatoryRex[name]
}

// IsExtended reports whether name needs REX.B/R/X (or the inverted VEX
// bit) because its id is 8..15.
func IsExtended(name string) bool {
	return ID(name) >= 8
}

// IsXMM reports whether name is an xmm register.
func IsXMM(name string) bool {
	return len(name) >= 4 && name[:3] == "xmm"
}

// IsYMM reports whether name is a ymm register.
func IsYMM(name string) bool {
	return len(name) >= 4 && name[:3] == "ymm"
}
