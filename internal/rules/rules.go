// Package rules decides who may read and write which collection. HTTP and gRPC share it.
package rules

import (
	"fmt"
	"strings"

	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/internal/store"
)

type Op string

const (
	OpRead      Op = "read"
	OpAdd       Op = "add"
	OpSet       Op = "set"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpIncrement Op = "increment"
)

var publicContent = map[string]bool{
	content.Projects:      true,
	content.Certificates:  true,
	content.Skills:        true,
	content.Experiences:   true,
	content.Testimonials:  true,
	content.Articles:      true,
	content.GuestbookMsgs: true,
	content.Config:        true,
}

type Rules struct {
	AdminEmail string
}

func New(adminEmail string) Rules { return Rules{AdminEmail: adminEmail} }

// siteData reports whether collection is a stats collection under artifacts/{app}/public/data.
func siteData(collection string) bool {
	parts := strings.Split(collection, "/")
	if len(parts) != 5 || parts[0] != "artifacts" || parts[2] != "public" || parts[3] != "data" {
		return false
	}
	return parts[4] == "visitors" || parts[4] == "online_users"
}

// Check returns nil when claims may perform op on collection, and an error wrapping
// store.ErrPermissionDenied otherwise. claims is nil for requests without a session.
func (r Rules) Check(claims *auth.Claims, op Op, collection string) error {
	if r.allowed(claims, op, collection) {
		return nil
	}
	return fmt.Errorf("%w: %s on %s", store.ErrPermissionDenied, op, collection)
}

func (r Rules) allowed(claims *auth.Claims, op Op, collection string) bool {
	if claims.IsAdmin(r.AdminEmail) {
		return true
	}
	signedIn := claims != nil
	switch {
	case op == OpRead:
		return publicContent[collection] || siteData(collection)
	case siteData(collection):
		return signedIn
	case collection == content.ContactMessages, collection == content.GuestbookMsgs:
		return signedIn && op == OpAdd
	}
	return false
}
