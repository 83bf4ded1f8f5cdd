// Package aes128 is the bundled scalar AES-128 primitive (C1 in the design).
//
// It exists as a standalone, swappable block primitive rather than a
// wrapper around crypto/aes precisely because the XTSN engine needs a
// primitive it can substitute for the runtime-discovered external provider
// in pkg/aesprovider: the point of the split is pluggability, and wrapping
// the same stdlib cipher on both sides would erase it.
package aes128

const (
	blockSize = 16
	nk        = 4  // key length in 32-bit words
	nr        = 10 // number of rounds for AES-128
	nb        = 4  // block size in words

	// RoundKeysSize is the size in bytes of one expanded AES-128 key
	// schedule: Nb*(Nr+1) words of 4 bytes each.
	RoundKeysSize = nb * (nr + 1) * 4
)

// RoundKeys is an expanded AES-128 key schedule, 176 bytes (11 round keys
// of 16 bytes each), laid out round-key-major so a given round's key is
// RoundKeys[16*round : 16*round+16].
type RoundKeys [RoundKeysSize]byte

// Schedule performs the standard FIPS-197 AES-128 key expansion.
func Schedule(key [16]byte) RoundKeys {
	var w [nb * (nr + 1)][4]byte
	for i := 0; i < nk; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}
	for i := nk; i < nb*(nr+1); i++ {
		temp := w[i-1]
		if i%nk == 0 {
			temp = subWord(rotWord(temp))
			temp[0] ^= rcon[i/nk]
		}
		for b := 0; b < 4; b++ {
			w[i][b] = w[i-nk][b] ^ temp[b]
		}
	}

	var rk RoundKeys
	for i, word := range w {
		copy(rk[4*i:4*i+4], word[:])
	}
	return rk
}

func rotWord(w [4]byte) [4]byte {
	return [4]byte{w[1], w[2], w[3], w[0]}
}

func subWord(w [4]byte) [4]byte {
	return [4]byte{sbox[w[0]], sbox[w[1]], sbox[w[2]], sbox[w[3]]}
}

// roundKey returns the 4x4 state-order key for the given round (0..nr).
func (rk *RoundKeys) roundKey(round int) [16]byte {
	var k [16]byte
	copy(k[:], rk[16*round:16*round+16])
	return k
}

func addRoundKey(state *[16]byte, rkey [16]byte) {
	for i := range state {
		state[i] ^= rkey[i]
	}
}

// state[r][c] lives at flat index r+4c, matching FIPS-197's column-major fill.

func subBytes(state *[16]byte) {
	for i := range state {
		state[i] = sbox[state[i]]
	}
}

func invSubBytes(state *[16]byte) {
	for i := range state {
		state[i] = invSbox[state[i]]
	}
}

func shiftRows(state *[16]byte) {
	s := *state
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[r+4*c] = s[r+4*((c+r)%4)]
		}
	}
}

func invShiftRows(state *[16]byte) {
	s := *state
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[r+4*c] = s[r+4*((c-r+4)%4)]
		}
	}
}

func mixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[4*c], state[4*c+1], state[4*c+2], state[4*c+3]
		state[4*c+0] = gmul(a0, 2) ^ gmul(a1, 3) ^ a2 ^ a3
		state[4*c+1] = a0 ^ gmul(a1, 2) ^ gmul(a2, 3) ^ a3
		state[4*c+2] = a0 ^ a1 ^ gmul(a2, 2) ^ gmul(a3, 3)
		state[4*c+3] = gmul(a0, 3) ^ a1 ^ a2 ^ gmul(a3, 2)
	}
}

func invMixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[4*c], state[4*c+1], state[4*c+2], state[4*c+3]
		state[4*c+0] = gmul(a0, 14) ^ gmul(a1, 11) ^ gmul(a2, 13) ^ gmul(a3, 9)
		state[4*c+1] = gmul(a0, 9) ^ gmul(a1, 14) ^ gmul(a2, 11) ^ gmul(a3, 13)
		state[4*c+2] = gmul(a0, 13) ^ gmul(a1, 9) ^ gmul(a2, 14) ^ gmul(a3, 11)
		state[4*c+3] = gmul(a0, 11) ^ gmul(a1, 13) ^ gmul(a2, 9) ^ gmul(a3, 14)
	}
}

// EncryptBlock encrypts the 16 bytes at src into dst under rk. dst and src
// may point at the same array.
func (rk *RoundKeys) EncryptBlock(dst, src *[16]byte) {
	var state [16]byte
	state = *src

	addRoundKey(&state, rk.roundKey(0))
	for round := 1; round < nr; round++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		addRoundKey(&state, rk.roundKey(round))
	}
	subBytes(&state)
	shiftRows(&state)
	addRoundKey(&state, rk.roundKey(nr))

	*dst = state
}

// DecryptBlock decrypts the 16 bytes at src into dst under rk. dst and src
// may point at the same array.
func (rk *RoundKeys) DecryptBlock(dst, src *[16]byte) {
	var state [16]byte
	state = *src

	addRoundKey(&state, rk.roundKey(nr))
	for round := nr - 1; round >= 1; round-- {
		invShiftRows(&state)
		invSubBytes(&state)
		addRoundKey(&state, rk.roundKey(round))
		invMixColumns(&state)
	}
	invShiftRows(&state)
	invSubBytes(&state)
	addRoundKey(&state, rk.roundKey(0))

	*dst = state
}
