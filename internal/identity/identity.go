package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalidDisplayName = errors.New("invalid display name")
var ErrInvalidRoomName = errors.New("invalid room name")

const (
	MaxDisplayNameLen = 20
	MaxRoomNameLen    = 50

	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_identity.go github.com/DoyleJ11/partyroom-backend/internal/identity Generator
type Generator interface {
	ParticipantID() string
	ConnectionID() string
	// RoomCode returns a fresh short code; prefix is prepended and counts toward length.
	RoomCode(prefix string, length int) (string, error)
}

// DefaultGenerator hands out uuid ids and crypto/rand room codes.
type DefaultGenerator struct{}

func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

func (DefaultGenerator) ParticipantID() string {
	return uuid.New().String()
}

func (DefaultGenerator) ConnectionID() string {
	return uuid.New().String()
}

func (DefaultGenerator) RoomCode(prefix string, length int) (string, error) {
	n := length - len(prefix)
	if n <= 0 {
		return "", fmt.Errorf("room code length %d too short for prefix %q", length, prefix)
	}
	code := make([]byte, n)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return prefix + string(code), nil
}

// NormalizeName trims surrounding space and composes the name to NFC so that
// visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func ValidateDisplayName(name string) (string, error) {
	n := NormalizeName(name)
	if n == "" || utf8.RuneCountInString(n) > MaxDisplayNameLen {
		return "", ErrInvalidDisplayName
	}
	return n, nil
}

func ValidateRoomName(name string) (string, error) {
	n := NormalizeName(name)
	if n == "" || utf8.RuneCountInString(n) > MaxRoomNameLen {
		return "", ErrInvalidRoomName
	}
	return n, nil
}

// UniqueName returns requested if it is free, otherwise the first of
// requested(2), requested(3), ... not present in existing.
func UniqueName(requested string, existing []string) string {
	name := requested
	for i := 2; slices.Contains(existing, name); i++ {
		name = fmt.Sprintf("%s(%d)", requested, i)
	}
	return name
}
