package aes128

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// FIPS-197 Appendix B known-answer vector.
func TestEncryptBlockFIPSVector(t *testing.T) {
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	plaintext := mustHex(t, "00112233445566778899aabbccddeeff")
	wantCiphertext := mustHex(t, "69c4e0d86a7b0430d8cdb78070b4c55a")

	var k [16]byte
	copy(k[:], key)
	rk := Schedule(k)

	var in, out [16]byte
	copy(in[:], plaintext)
	rk.EncryptBlock(&out, &in)

	if !bytes.Equal(out[:], wantCiphertext) {
		t.Fatalf("EncryptBlock = %x, want %x", out, wantCiphertext)
	}
}

func TestDecryptBlockInvertsEncrypt(t *testing.T) {
	var k [16]byte
	for i := range k {
		k[i] = byte(i * 17)
	}
	rk := Schedule(k)

	var plaintext [16]byte
	for i := range plaintext {
		plaintext[i] = byte(i*i + 3)
	}

	var ciphertext, decrypted [16]byte
	rk.EncryptBlock(&ciphertext, &plaintext)
	rk.DecryptBlock(&decrypted, &ciphertext)

	if decrypted != plaintext {
		t.Fatalf("DecryptBlock(EncryptBlock(p)) = %x, want %x", decrypted, plaintext)
	}
}

func TestEncryptBlockAliasedInPlace(t *testing.T) {
	var k [16]byte
	copy(k[:], mustHex(t, "000102030405060708090a0b0c0d0e0f"))
	rk := Schedule(k)

	var buf [16]byte
	copy(buf[:], mustHex(t, "00112233445566778899aabbccddeeff"))
	rk.EncryptBlock(&buf, &buf)

	want := mustHex(t, "69c4e0d86a7b0430d8cdb78070b4c55a")
	if !bytes.Equal(buf[:], want) {
		t.Fatalf("in-place EncryptBlock = %x, want %x", buf, want)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	var k [16]byte
	copy(k[:], mustHex(t, "00112233445566778899aabbccddeeff"))
	a := Schedule(k)
	b := Schedule(k)
	if a != b {
		t.Fatalf("Schedule is not deterministic")
	}
}

func TestECBRoundTrip(t *testing.T) {
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	plaintext := mustHex(t, "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")[:32]

	ciphertext, err := ECBEncrypt(plaintext, key)
	if err != nil {
		t.Fatalf("ECBEncrypt: %v", err)
	}
	// ECB is block-independent: two identical plaintext blocks under the
	// same key must produce identical ciphertext blocks.
	if !bytes.Equal(ciphertext[:16], ciphertext[16:]) {
		t.Fatalf("ECB of two identical plaintext blocks produced different ciphertext")
	}

	decrypted, err := ECBDecrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("ECBDecrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("ECB round trip failed: got %x, want %x", decrypted, plaintext)
	}
}

func TestECBRejectsMisalignedData(t *testing.T) {
	key := make([]byte, 16)
	if _, err := ECBEncrypt(make([]byte, 15), key); err == nil {
		t.Fatalf("expected an error for misaligned data")
	}
}

func TestECBRejectsBadKeyLength(t *testing.T) {
	if _, err := ECBEncrypt(make([]byte, 16), make([]byte, 15)); err == nil {
		t.Fatalf("expected an error for a bad key length")
	}
}
