package port

// PasswordCipher encrypts checkout passwords for at-rest staging and recovers
// them at completion time. Ciphertext is text-safe for storage.
type PasswordCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
