package rbac

import "time"

// Permission represents an atomic capability such as "categories.create".
type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
