package adapters

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

const encryptedValuePrefix = "VP_ENC_"

// EncryptedStringSerializer is a gorm serializer that encrypts string columns with AES-256-GCM.
// Models use it with the tag `gorm:"serializer:encstr"`. It is registered by NewDatabase.
// Values without the prefix are read as plain text, so encryption can be enabled on existing databases.
type EncryptedStringSerializer struct {
	key []byte // nil if encryption is disabled
}

// NewEncryptedStringSerializer creates a serializer for the given passphrase.
// An empty passphrase disables encryption, values are stored as plain text.
func NewEncryptedStringSerializer(passphrase string) EncryptedStringSerializer {
	if passphrase == "" {
		return EncryptedStringSerializer{}
	}

	key := sha256.Sum256([]byte(passphrase))
	return EncryptedStringSerializer{key: key[:]}
}

// Scan decrypts the database value.
func (s EncryptedStringSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	var stored string
	switch v := dbValue.(type) {
	case nil:
	case []byte:
		stored = string(v)
	case string:
		stored = v
	default:
		return fmt.Errorf("unsupported type %T for encrypted field %s", dbValue, field.Name)
	}

	if !strings.HasPrefix(stored, encryptedValuePrefix) {
		field.ReflectValueOf(ctx, dst).SetString(stored)
		return nil
	}
	if s.key == nil {
		return fmt.Errorf("field %s is encrypted, but no encryption passphrase is configured", field.Name)
	}

	plain, err := decryptString(strings.TrimPrefix(stored, encryptedValuePrefix), s.key)
	if err != nil {
		return fmt.Errorf("failed to decrypt field %s: %w", field.Name, err)
	}
	field.ReflectValueOf(ctx, dst).SetString(plain)

	return nil
}

// Value encrypts the field value before it is written.
func (s EncryptedStringSerializer) Value(_ context.Context, field *schema.Field, _ reflect.Value, fieldValue any) (
	any,
	error,
) {
	v, ok := fieldValue.(string)
	if !ok {
		return nil, fmt.Errorf("encryption of field %s only supports strings, got %T", field.Name, fieldValue)
	}
	if v == "" || s.key == nil {
		return v, nil
	}

	encrypted, err := encryptString(v, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt field %s: %w", field.Name, err)
	}

	return encryptedValuePrefix + encrypted, nil
}

func encryptString(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func decryptString(encoded string, key []byte) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	if len(sealed) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
