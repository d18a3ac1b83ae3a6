// Package certificate содержит доменную модель сертификата о завершении курса.
// Сертификат - неизменяемая запись с уникальным проверочным кодом, по которому
// подлинность сертификата подтверждается без раскрытия внутренних ID.
package certificate

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFICATION CODE
// ══════════════════════════════════════════════════════════════════════════════

// codeAlphabet - алфавит проверочного кода без визуально похожих символов
// (исключены I, O, 0, 1). 32 символа дают ровно 5 бит энтропии на символ.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength - длина проверочного кода: 26 символов * 5 бит = 130 бит,
// что превышает требуемый минимум в 128 бит.
const CodeLength = 26

// VerificationCode - проверочный код сертификата.
type VerificationCode string

// IsValid проверяет формат кода: длина и алфавит.
func (c VerificationCode) IsValid() bool {
	if len(c) != CodeLength {
		return false
	}
	for _, r := range string(c) {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

// String возвращает строковое представление кода.
func (c VerificationCode) String() string {
	return string(c)
}

// Digest возвращает hex-представление BLAKE2b-256 хеша кода.
// Поиск сертификата выполняется по дайджесту, а не по самому коду:
// сравнение точное и не зависит по времени от длины совпавшего префикса.
func (c VerificationCode) Digest() string {
	sum := blake2b.Sum256([]byte(c))
	return hex.EncodeToString(sum[:])
}

// ParseVerificationCode нормализует и валидирует код, введённый пользователем.
func ParseVerificationCode(raw string) (VerificationCode, error) {
	c := VerificationCode(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", shared.ErrCertificateNotFound
	}
	return c, nil
}

// GenerateCode генерирует криптографически случайный проверочный код.
func GenerateCode() (VerificationCode, error) {
	b := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", shared.WrapError("certificate", "GenerateCode", shared.ErrExhausted, "random source failure", err)
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return VerificationCode(b), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус сертификата. Сертификаты никогда не удаляются:
// отзыв - это смена статуса с сохранением истории проверок.
type Status string

const (
	// StatusValid - сертификат действителен.
	StatusValid Status = "valid"
	// StatusRevoked - сертификат отозван.
	StatusRevoked Status = "revoked"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusValid || s == StatusRevoked
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: CERTIFICATE
// ══════════════════════════════════════════════════════════════════════════════

// Certificate - подтверждение завершения курса.
//
// Инварианты:
//   - ровно один сертификат на зачисление, создаётся только при переходе
//     зачисления в Completed;
//   - проверочный код глобально уникален и неизменяем после выдачи;
//   - запись никогда не изменяется и не удаляется (кроме поля отзыва).
type Certificate struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// EnrollmentID - зачисление, за которое выдан сертификат.
	EnrollmentID string

	// Number - человекочитаемый номер сертификата (CERT-...).
	Number string

	// Code - проверочный код. Выдаётся владельцу один раз при выпуске.
	Code VerificationCode

	// CodeDigest - BLAKE2b-256 дайджест кода, ключ точного поиска.
	CodeDigest string

	// Status - действителен или отозван.
	Status Status

	// RevokedReason - причина отзыва (пусто для действительных).
	RevokedReason string

	// RevokedAt - время отзыва.
	RevokedAt *time.Time

	// IssuedBy - кто выдал сертификат.
	IssuedBy string

	// IssuedAt - время выдачи.
	IssuedAt time.Time
}

// NewCertificateParams содержит параметры выпуска сертификата.
type NewCertificateParams struct {
	ID           string
	EnrollmentID string
	Code         VerificationCode
	IssuedBy     string
	Sequence     int64
}

// DefaultIssuer - издатель по умолчанию.
const DefaultIssuer = "Training Management System"

// NewCertificate создаёт новый сертификат с валидацией параметров.
func NewCertificate(params NewCertificateParams) (*Certificate, error) {
	if !shared.IsValidID(params.ID) {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrInvalidID, "certificate id must be a UUID")
	}
	if strings.TrimSpace(params.EnrollmentID) == "" {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrEmptyValue, "enrollment id is required")
	}
	if !params.Code.IsValid() {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrInvalidFormat, "malformed verification code")
	}

	issuedBy := strings.TrimSpace(params.IssuedBy)
	if issuedBy == "" {
		issuedBy = DefaultIssuer
	}

	now := time.Now().UTC()

	return &Certificate{
		ID:           shared.NormalizeID(params.ID),
		EnrollmentID: params.EnrollmentID,
		Number:       FormatNumber(params.Sequence, now),
		Code:         params.Code,
		CodeDigest:   params.Code.Digest(),
		Status:       StatusValid,
		IssuedBy:     issuedBy,
		IssuedAt:     now,
	}, nil
}

// FormatNumber формирует человекочитаемый номер сертификата,
// например "CERT-42-20240131094500".
func FormatNumber(sequence int64, issuedAt time.Time) string {
	return fmt.Sprintf("CERT-%d-%s", sequence, issuedAt.UTC().Format("20060102150405"))
}

// IsRevoked возвращает true, если сертификат отозван.
func (c *Certificate) IsRevoked() bool {
	return c.Status == StatusRevoked
}

// Revoke помечает сертификат отозванным. Запись не удаляется.
func (c *Certificate) Revoke(reason string) error {
	if c.IsRevoked() {
		return shared.NewDomainError("certificate", "Revoke", shared.ErrInvalidState, "certificate is already revoked")
	}
	now := time.Now().UTC()
	c.Status = StatusRevoked
	c.RevokedReason = strings.TrimSpace(reason)
	c.RevokedAt = &now
	return nil
}
