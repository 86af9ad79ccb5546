package session

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrFederatedFailed    = errors.New("federated sign-in failed")
	ErrNotAdmin           = errors.New("not an admin")
)

// NotAdminError carries the rejected identity. It matches ErrNotAdmin.
type NotAdminError struct{ Email string }

func (e *NotAdminError) Error() string { return fmt.Sprintf("%s is not an admin", e.Email) }

func (e *NotAdminError) Is(target error) bool { return target == ErrNotAdmin }

// Message maps a sign-in failure to the text shown on the login page.
func Message(err error) string {
	var notAdmin *NotAdminError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notAdmin):
		return fmt.Sprintf("Email %s bukan admin. Akses ditolak.", notAdmin.Email)
	case errors.Is(err, ErrNotAdmin):
		return "Akses ditolak."
	case errors.Is(err, ErrMissingCredentials):
		return "Email dan Password harus diisi!"
	case errors.Is(err, ErrUserNotFound):
		return "Akun tidak ditemukan."
	case errors.Is(err, ErrWrongPassword):
		return "Password salah."
	case errors.Is(err, ErrTooManyAttempts):
		return "Terlalu banyak percobaan. Coba lagi nanti."
	case errors.Is(err, ErrFederatedFailed):
		return "Gagal login Google. Coba cek koneksi internet atau popup blocker."
	}
	return "Email atau Password salah!"
}

// Wire codes for sign-in failures, shared by the content service and its clients.
var codes = []struct {
	code string
	err  error
}{
	{"auth/missing-credentials", ErrMissingCredentials},
	{"auth/invalid-credential", ErrInvalidCredentials},
	{"auth/user-not-found", ErrUserNotFound},
	{"auth/wrong-password", ErrWrongPassword},
	{"auth/too-many-requests", ErrTooManyAttempts},
	{"auth/federated-failed", ErrFederatedFailed},
	{"auth/not-admin", ErrNotAdmin},
}

// Code returns the wire code of err, or "" when it is not a sign-in failure.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode is the inverse of Code. Unknown codes map to ErrInvalidCredentials.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return ErrInvalidCredentials
}
