package emv

import "fmt"

// Checksum computes the CRC-16/CCITT-FALSE checksum of a payload and
// renders it as 4 upper-case hex digits. The register starts at 0xFFFF
// with polynomial 0x1021; each byte is XORed into the high byte before
// eight shift-and-conditional-XOR rounds.
//
// Callers must include the literal "6304" trailer (tag and length of the
// checksum field itself) in the input; the BR Code checksum covers it.
func Checksum(payload string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(payload); i++ {
		crc ^= uint16(payload[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
