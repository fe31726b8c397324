package keyvalue

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize       = 16
	keySize        = 32
	pbkdf2Rounds   = 100_000
	fileMode       = 0o600
	fileHeaderByte = 'c'
)

// FileStore persists keys in a single JSON file encrypted with AES-GCM.
// The key is derived from a passphrase with PBKDF2; a fresh salt and nonce
// are written on every save. Writes go through a temp file and rename so a
// crash never leaves a torn state file.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

func NewFile(path, passphrase string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{path: path, passphrase: passphrase}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return nil, err
	}
	value, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string][]byte, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	plain, err := s.decrypt(raw)
	if err != nil {
		return nil, err
	}

	values := make(map[string][]byte)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string][]byte) error {
	plain, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	sealed, err := s.encrypt(plain)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, fileMode); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// encrypt seals plain as header || salt || nonce || ciphertext.
func (s *FileStore) encrypt(plain []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+saltSize+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, fileHeaderByte)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plain, nil), nil
}

func (s *FileStore) decrypt(raw []byte) ([]byte, error) {
	if len(raw) < 1+saltSize || raw[0] != fileHeaderByte {
		return nil, fmt.Errorf("state file corrupt")
	}
	salt := raw[1 : 1+saltSize]

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	rest := raw[1+saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("state file corrupt")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt state file: %w", err)
	}
	return plain, nil
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(s.passphrase), salt, pbkdf2Rounds, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
