package page

import "crypto/rand"

// Offsets of the clean-shutdown validity marker within page one.
const (
	VCOpenOffset  = 100
	VCCloseOffset = 108
	VCLen         = 8
)

// InitPageOneRaw returns blank bytes for page one with a fresh open
// marker. Called the first time a database file is created.
func InitPageOneRaw() []byte {
	data := make([]byte, Size)
	SetVcOpen(data)
	return data
}

// SetVcOpen overwrites the open-marker window with fresh random bytes.
// Called every time the database opens.
func SetVcOpen(data []byte) {
	rand.Read(data[VCOpenOffset : VCOpenOffset+VCLen])
}

// SetVcClose copies the open marker into the close-marker window. Called
// only on a clean shutdown.
func SetVcClose(data []byte) {
	copy(data[VCCloseOffset:VCCloseOffset+VCLen], data[VCOpenOffset:VCOpenOffset+VCLen])
}

// CheckVc reports whether the open and close markers match, i.e. whether
// the previous shutdown was clean.
func CheckVc(data []byte) bool {
	for i := 0; i < VCLen; i++ {
		if data[VCOpenOffset+i] != data[VCCloseOffset+i] {
			return false
		}
	}
	return true
}
