package ports

// SecurityPort encrypts and decrypts sensitive column values.
type SecurityPort interface {
	// Encrypt takes a plaintext and returns a secure, encrypted ciphertext.
	Encrypt(plaintext []byte) (ciphertext []byte, err error)

	// Decrypt takes a ciphertext and returns the original plaintext.
	Decrypt(ciphertext []byte) (plaintext []byte, err error)

	// EncryptString encrypts s and returns base64 text suitable for a TEXT column.
	EncryptString(s string) (string, error)

	// DecryptString reverses EncryptString.
	DecryptString(encoded string) (string, error)
}
