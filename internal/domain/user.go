package domain

import (
	"sort"
	"time"
)

// User represents a bot user
type User struct {
	UserID           int64
	Username         string // empty when the account has no handle
	FullName         string
	RegistrationDate time.Time
	IsBlocked        bool
	IsAdmin          bool
}

// Handle returns "@username" or a placeholder when the user has none
func (u User) Handle() string {
	if u.Username == "" {
		return "Отсутствует"
	}
	return "@" + u.Username
}

// AdminSet is the configured list of bootstrap administrators.
// Members are admins regardless of what the store says and can never be demoted.
type AdminSet map[int64]struct{}

// NewAdminSet builds a set from configured ids
func NewAdminSet(ids []int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is a bootstrap admin
func (s AdminSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order
func (s AdminSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
