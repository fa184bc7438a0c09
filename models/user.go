package models

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type User struct {
	ID       int64  `bson:"_id" json:"id"`
	Email    string `bson:"email" json:"email"`
	Name     string `bson:"name" json:"name"`
	LastName string `bson:"lastName" json:"lastName"`
	Role     Role   `bson:"role" json:"role"`
}

// FullName is the display form used on task post-images.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// Actor is the authenticated identity attached to each request. The
// service trusts it verbatim; resolving it is the job of the identity
// middleware.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
