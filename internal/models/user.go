package models

import "time"

type UserRole string

const (
	UserRoleUser       UserRole = "USER"
	UserRoleTeacher    UserRole = "TEACHER"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// Level places roles on a strict hierarchy. Unknown roles map to 0 so a
// value the server never defined cannot grant capability.
func (r UserRole) Level() int {
	switch r {
	case UserRoleUser:
		return 1
	case UserRoleTeacher:
		return 2
	case UserRoleAdmin:
		return 3
	case UserRoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

func (r UserRole) Known() bool {
	return r.Level() > 0
}

type User struct {
	ID          int       `json:"id" mapstructure:"id"`
	Name        string    `json:"name" mapstructure:"name"`
	Email       string    `json:"email" mapstructure:"email"`
	Password    string    `json:"password,omitempty" mapstructure:"password"`
	Role        UserRole  `json:"role" mapstructure:"role"`
	Photo       string    `json:"photo,omitempty" mapstructure:"photo"`
	PhotoURL    string    `json:"photoUrl,omitempty" mapstructure:"photoUrl"`
	Phone       string    `json:"phone,omitempty" mapstructure:"phone"`
	Sex         string    `json:"sex" mapstructure:"sex"`
	Status      bool      `json:"status" mapstructure:"status"`
	BgColor     string    `json:"bgColor" mapstructure:"bgColor"`
	FirstAccess bool      `json:"firstAccess" mapstructure:"firstAccess"`
	CreatedAt   time.Time `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" mapstructure:"updatedAt"`
}

// UserSummary is the denormalized shape the API embeds in schedules so the
// calendar can render creator and teachers without a second fetch.
type UserSummary struct {
	ID       int    `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Email    string `json:"email" mapstructure:"email"`
	Phone    string `json:"phone,omitempty" mapstructure:"phone"`
	Photo    string `json:"photo,omitempty" mapstructure:"photo"`
	PhotoURL string `json:"photoUrl,omitempty" mapstructure:"photoUrl"`
}

// CanEditUser reports whether actor may edit target. Admins manage plain
// users and teachers; only a super admin manages admins or other supers.
func CanEditUser(actor, target *User) bool {
	if actor == nil || target == nil {
		return false
	}
	switch actor.Role {
	case UserRoleSuperAdmin:
		return true
	case UserRoleAdmin:
		return target.Role == UserRoleUser || target.Role == UserRoleTeacher
	default:
		return false
	}
}

type CreateUserData struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=USER TEACHER ADMIN SUPER_ADMIN"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Sex      string `json:"sex" validate:"required,oneof=M F O"`
	BgColor  string `json:"bgColor,omitempty"`
}

type UpdateProfileData struct {
	Name    string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Photo   string `json:"photo,omitempty"`
	BgColor string `json:"bgColor,omitempty"`
}

type ChangePasswordData struct {
	Email          string `json:"email" validate:"required,email"`
	OldPassword    string `json:"oldPassword" validate:"required"`
	NewPassword    string `json:"newPassword" validate:"required,min=6"`
	RepeatPassword string `json:"repeatePassword" validate:"required,eqfield=NewPassword"`
}

type RecoveryPasswordData struct {
	Email          string `json:"email" validate:"required,email"`
	NewPassword    string `json:"newPwd" validate:"required,min=6"`
	RepeatPassword string `json:"repeatPwd" validate:"required,eqfield=NewPassword"`
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserFilters struct {
	Name   string
	Email  string
	Role   string
	Status *bool
	Page   int
	Limit  int
}

type UserStats struct {
	Total    int            `json:"total" mapstructure:"total"`
	Active   int            `json:"active" mapstructure:"active"`
	Inactive int            `json:"inactive" mapstructure:"inactive"`
	ByRole   map[string]int `json:"byRole" mapstructure:"byRole"`
}
