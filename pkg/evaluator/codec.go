package evaluator

import "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

// encodeElement/decodeElement give field elements a fixed 32-byte wire
// format for broadcast payloads, using fr.Element's own canonical
// Bytes()/SetBytes() representation.
func encodeElement(x fr.Element) []byte {
	b := x.Bytes()
	return b[:]
}

func decodeElement(b []byte) fr.Element {
	var x fr.Element
	var arr [fr.Bytes]byte
	copy(arr[:], b)
	x.SetBytes(arr[:])
	return x
}

func decodeElementPair(b []byte) (fr.Element, fr.Element) {
	return decodeElement(b[:fr.Bytes]), decodeElement(b[fr.Bytes : 2*fr.Bytes])
}
