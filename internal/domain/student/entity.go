// Package student содержит доменную модель профиля студента.
// Ядро зачислений видит студентов только через предикат существования;
// валидация профиля (email, телефон, CPF) живёт здесь, на границе реестра.
package student

import (
	"regexp"
	"strings"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Email представляет адрес электронной почты студента.
type Email string

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValid проверяет формат адреса.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String возвращает строковое представление адреса.
func (e Email) String() string {
	return string(e)
}

// NewEmail нормализует и валидирует адрес.
func NewEmail(raw string) (Email, error) {
	e := Email(strings.ToLower(strings.TrimSpace(raw)))
	if !e.IsValid() {
		return "", shared.ErrInvalidEmail
	}
	return e, nil
}

// Phone представляет бразильский номер телефона (10-11 цифр).
type Phone string

var nonDigits = regexp.MustCompile(`[^0-9]`)

// IsValid проверяет количество цифр в номере.
func (p Phone) IsValid() bool {
	n := len(string(p))
	return n == 10 || n == 11
}

// String возвращает строковое представление номера.
func (p Phone) String() string {
	return string(p)
}

// NewPhone очищает номер от форматирования и валидирует его.
// Пустой номер допустим: телефон - необязательное поле профиля.
func NewPhone(raw string) (Phone, error) {
	clean := nonDigits.ReplaceAllString(raw, "")
	if clean == "" {
		return "", nil
	}
	p := Phone(clean)
	if !p.IsValid() {
		return "", shared.ErrInvalidPhone
	}
	return p, nil
}

// CPF представляет бразильский идентификационный номер налогоплательщика.
type CPF string

// IsValid проверяет контрольные цифры CPF.
func (c CPF) IsValid() bool {
	digits := string(c)
	if len(digits) != 11 {
		return false
	}
	// Все цифры одинаковые - формально корректная, но недопустимая запись.
	allSame := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	d1 := (sum * 10 % 11) % 10
	if int(digits[9]-'0') != d1 {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * (11 - i)
	}
	d2 := (sum * 10 % 11) % 10
	return int(digits[10]-'0') == d2
}

// String возвращает строковое представление номера.
func (c CPF) String() string {
	return string(c)
}

// NewCPF очищает номер от форматирования и валидирует контрольные цифры.
// Пустой номер допустим: CPF - необязательное поле профиля.
func NewCPF(raw string) (CPF, error) {
	clean := nonDigits.ReplaceAllString(raw, "")
	if clean == "" {
		return "", nil
	}
	c := CPF(clean)
	if !c.IsValid() {
		return "", shared.ErrInvalidCPF
	}
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус профиля студента.
type Status string

const (
	// StatusActive - профиль активен, студент может зачисляться на курсы.
	StatusActive Status = "active"
	// StatusInactive - профиль деактивирован (мягкое удаление).
	StatusInactive Status = "inactive"
	// StatusSuspended - студент временно отстранён.
	StatusSuspended Status = "suspended"
	// StatusGraduated - студент завершил программу обучения.
	StatusGraduated Status = "graduated"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusGraduated:
		return true
	default:
		return false
	}
}

// CanEnroll возвращает true, если студенту разрешены новые зачисления.
func (s Status) CanEnroll() bool {
	return s == StatusActive
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - профиль студента в реестре.
type Student struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// Name - полное имя студента.
	Name string

	// Email - адрес электронной почты, уникален в реестре.
	Email Email

	// Phone - номер телефона (необязательно).
	Phone Phone

	// CPF - идентификационный номер (необязательно, уникален при наличии).
	CPF CPF

	// BirthDate - дата рождения (необязательно).
	BirthDate *time.Time

	// Status - статус профиля.
	Status Status

	// Notes - свободные заметки о студенте.
	Notes string

	// RegisteredAt - время регистрации.
	RegisteredAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewStudentParams содержит параметры регистрации студента.
type NewStudentParams struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CPF       string
	BirthDate *time.Time
	Notes     string
}

// NewStudent создаёт новый профиль с валидацией всех полей.
func NewStudent(params NewStudentParams) (*Student, error) {
	if !shared.IsValidID(params.ID) {
		return nil, shared.NewDomainError("student", "New", shared.ErrInvalidID, "student id must be a UUID")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 150 {
		return nil, shared.NewDomainError("student", "New", shared.ErrInvalidInput, "name must be 1-150 chars")
	}

	email, err := NewEmail(params.Email)
	if err != nil {
		return nil, err
	}

	phone, err := NewPhone(params.Phone)
	if err != nil {
		return nil, err
	}

	cpf, err := NewCPF(params.CPF)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Student{
		ID:           shared.NormalizeID(params.ID),
		Name:         name,
		Email:        email,
		Phone:        phone,
		CPF:          cpf,
		BirthDate:    params.BirthDate,
		Status:       StatusActive,
		Notes:        strings.TrimSpace(params.Notes),
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// Deactivate деактивирует профиль (мягкое удаление).
func (s *Student) Deactivate() {
	s.Status = StatusInactive
	s.UpdatedAt = time.Now().UTC()
}

// MarkGraduated помечает студента завершившим программу.
func (s *Student) MarkGraduated() {
	s.Status = StatusGraduated
	s.UpdatedAt = time.Now().UTC()
}
