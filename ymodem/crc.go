package ymodem

// crcPoly is the CRC-16/XMODEM generator polynomial.
const crcPoly uint16 = 0x1021

// CRC16 computes the CRC-16/XMODEM checksum of data: initial register 0,
// polynomial 0x1021, bytes processed MSB-first, no final XOR, no reflection.
//
// This is the exact variant the receiver validates each packet payload
// against, so it must match the classical CCITT/XMODEM reference bit for bit.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
