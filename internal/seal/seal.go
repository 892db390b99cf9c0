// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/verity-tui/internal/storage"
)

// =============================================================================
// SEAL RECORD
// =============================================================================

const (
	storageKey = "seal"

	// PBKDF2 parameters. Iterations chosen for interactive latency on
	// modest hardware.
	iterations = 120_000
	saltLen    = 16
	keyLen     = 32

	// minPhraseLen rejects trivially guessable phrases at enrolment.
	minPhraseLen = 8
)

var (
	// ErrNotEnrolled means no seal exists yet.
	ErrNotEnrolled = errors.New("seal: not enrolled")

	// ErrAlreadyEnrolled means a seal exists; re-enrolment requires the
	// current phrase first.
	ErrAlreadyEnrolled = errors.New("seal: already enrolled")

	// ErrPhraseTooShort rejects a weak phrase at enrolment.
	ErrPhraseTooShort = fmt.Errorf("seal: phrase must be at least %d characters", minPhraseLen)

	// ErrCheckFailed means the phrase or TOTP code did not match.
	ErrCheckFailed = errors.New("seal: check failed")
)

// record is the persisted seal. The phrase itself is never stored.
type record struct {
	Salt       string `json:"salt"`
	Hash       string `json:"hash"`
	Iterations int    `json:"iterations"`
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// Seal wraps the stored record with check and enrolment operations.
type Seal struct {
	kv *storage.KV
}

// New returns a Seal backed by kv.
func New(kv *storage.KV) *Seal {
	return &Seal{kv: kv}
}

// =============================================================================
// ENROLMENT
// =============================================================================

// Enrolled reports whether a seal record exists.
func (s *Seal) Enrolled() bool {
	_, err := s.kv.Get(storageKey)
	return err == nil
}

// Enroll creates the seal from phrase. When withTOTP is set, a TOTP
// secret is generated and returned as an otpauth URL for the user to
// register in their authenticator.
func (s *Seal) Enroll(phrase string, withTOTP bool) (otpauthURL string, err error) {
	if s.Enrolled() {
		return "", ErrAlreadyEnrolled
	}
	phrase = strings.TrimSpace(phrase)
	if len(phrase) < minPhraseLen {
		return "", ErrPhraseTooShort
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("seal: random salt: %w", err)
	}

	rec := record{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Hash:       base64.StdEncoding.EncodeToString(deriveKey(phrase, salt, iterations)),
		Iterations: iterations,
	}

	if withTOTP {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      "verity",
			AccountName: "private-mode",
		})
		if err != nil {
			return "", fmt.Errorf("seal: totp generation: %w", err)
		}
		rec.TOTPSecret = key.Secret()
		otpauthURL = key.URL()
	}

	if err := s.save(rec); err != nil {
		return "", err
	}
	return otpauthURL, nil
}

// Reset removes the seal after a successful check of the current phrase.
func (s *Seal) Reset(phrase, code string) error {
	if err := s.Check(phrase, code); err != nil {
		return err
	}
	return s.kv.Delete(storageKey)
}

// =============================================================================
// CHECKING
// =============================================================================

// Check verifies phrase (and code, when a TOTP secret is enrolled)
// against the stored record. Comparison is constant time.
func (s *Seal) Check(phrase, code string) error {
	rec, err := s.load()
	if err != nil {
		return err
	}

	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return fmt.Errorf("seal: corrupt record: %w", err)
	}
	want, err := base64.StdEncoding.DecodeString(rec.Hash)
	if err != nil {
		return fmt.Errorf("seal: corrupt record: %w", err)
	}

	got := deriveKey(strings.TrimSpace(phrase), salt, rec.Iterations)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrCheckFailed
	}

	if rec.TOTPSecret != "" {
		if !totp.Validate(strings.TrimSpace(code), rec.TOTPSecret) {
			return ErrCheckFailed
		}
	}

	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func deriveKey(phrase string, salt []byte, iters int) []byte {
	if iters <= 0 {
		iters = iterations
	}
	return pbkdf2.Key([]byte(phrase), salt, iters, keyLen, sha256.New)
}

func (s *Seal) load() (record, error) {
	raw, err := s.kv.Get(storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return record{}, ErrNotEnrolled
	}
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, fmt.Errorf("seal: corrupt record: %w", err)
	}
	return rec, nil
}

func (s *Seal) save(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Put(storageKey, string(data))
}
