package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"log"
	"regexp"
)

// Fixed key and IV shared with the client-side encoder. These are
// compile-time constants for compatibility with deployed clients, not
// secrets; rotating them breaks every existing conversation.
const (
	legacyKeyB64 = "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDA="
	legacyIVB64  = "MDEyMzQ1Njc4OTAxMjM0NQ=="
)

// DecryptFailedSentinel is returned when every decryption strategy fails.
// Callers must treat it as valid-but-unusable text, never as real content.
const DecryptFailedSentinel = "[Mensaje no pudo ser desencriptado]"

// encryptedLengthThreshold guards against mis-decrypting short plaintext
// that coincidentally matches the base64 alphabet.
const encryptedLengthThreshold = 20

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

var errBadCiphertext = errors.New("ciphertext is not a whole number of blocks")

// LooksBase64 reports whether text matches the base64 alphabet. This is a
// heuristic, not a cryptographic check: short plaintext can satisfy it.
func LooksBase64(text string) bool {
	return base64Pattern.MatchString(text)
}

// LooksEncrypted is the predicate the pipeline uses to decide whether a
// message body should be run through Decrypt.
func LooksEncrypted(text string) bool {
	return LooksBase64(text) && len(text) > encryptedLengthThreshold
}

// Decrypt recovers the plaintext of a legacy-encrypted message body. Empty
// input and input that does not look like base64 are returned unchanged.
// Three padding strategies are attempted in order because historical client
// encoders produced padding inconsistently; the first one that completes
// wins. If all fail the sentinel is returned instead of an error.
//
// Decrypt performs no I/O and is a pure function of its inputs; messageID is
// only used for log correlation.
func Decrypt(ciphertext, messageID string) string {
	if ciphertext == "" {
		return ciphertext
	}
	if !LooksBase64(ciphertext) {
		return ciphertext
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		log.Printf("decrypt: base64 decode failed message_id=%s: %v", messageID, err)
		return DecryptFailedSentinel
	}

	// Strategy 1: standard PKCS#7 removal.
	if plain, err := decryptCBC(raw); err == nil {
		if unpadded, err := stripPKCS7(plain); err == nil {
			return string(unpadded)
		} else {
			log.Printf("decrypt: strategy 1 failed message_id=%s: %v", messageID, err)
		}
	} else {
		log.Printf("decrypt: strategy 1 failed message_id=%s: %v", messageID, err)
	}

	// Strategy 2: no padding removal, strip the last byte's value worth of
	// trailing bytes when it is a plausible pad length.
	if plain, err := decryptCBC(raw); err == nil {
		if n := int(plain[len(plain)-1]); n <= aes.BlockSize && n <= len(plain) {
			plain = plain[:len(plain)-n]
		}
		return string(plain)
	} else {
		log.Printf("decrypt: strategy 2 failed message_id=%s: %v", messageID, err)
	}

	// Strategy 3: explicit manual PKCS#7 removal. Mechanically close to
	// strategy 2 but kept as a separately-logged attempt for diagnosability.
	if plain, err := decryptCBC(raw); err == nil {
		if n := int(plain[len(plain)-1]); n > 0 && n <= aes.BlockSize && n <= len(plain) {
			plain = plain[:len(plain)-n]
		}
		return string(plain)
	} else {
		log.Printf("decrypt: strategy 3 failed message_id=%s: %v", messageID, err)
	}

	log.Printf("decrypt: all strategies failed message_id=%s", messageID)
	return DecryptFailedSentinel
}

// decryptCBC runs AES-256-CBC with the fixed key and IV, returning the
// plaintext with padding still attached.
func decryptCBC(data []byte) ([]byte, error) {
	key, iv := legacyKeyIV()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errBadCiphertext
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)
	return plain, nil
}

// stripPKCS7 removes and validates PKCS#7 padding.
func stripPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, errors.New("invalid padding length")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding byte")
		}
	}
	return data[:len(data)-n], nil
}

func legacyKeyIV() ([]byte, []byte) {
	key, _ := base64.StdEncoding.DecodeString(legacyKeyB64)
	iv, _ := base64.StdEncoding.DecodeString(legacyIVB64)
	return key, iv
}
