// This package implements the ESC/POS command byte sequences and the raster
// image codec understood by CTP500 thermal photo printers.
package escpos

// Control characters
const (
	Esc = 0x1B
	GS  = 0x1D
	LF  = 0x0A
	RS  = 0x1E
)

// Initialises the printer & prepares it to accept commands
func Init() []byte {
	return []byte{Esc, 0x40}
}

// Arms the print engine so that raster data following it is burned to paper
func StartPrint() []byte {
	return []byte{GS, 0x49, 0xF0, 0x19}
}

// Spools the tail of the image out of the mechanism and ends the job
func EndPrint() []byte {
	return []byte{LF, LF, LF, 0x9A}
}

// Asks the device to push its status line through the notify characteristic
func RequestStatus() []byte {
	return []byte{RS, 0x47, 0x03}
}

// Prepares the printer to accept raster bitmap data.
// widthBytes specifies the width of one bitmap row in bytes, with 8 pixels
// packed into 1 byte. heightRows specifies the height of the bitmap in rows.
// After this command is written, (widthBytes * heightRows) bytes of data must
// then be written.
func RasterHeader(widthBytes uint16, heightRows uint16) []byte {
	return []byte{
		GS, 0x76, 0x30, 0x00,
		byte(widthBytes & 0xFF), byte(widthBytes >> 8),
		byte(heightRows & 0xFF), byte(heightRows >> 8),
	}
}
