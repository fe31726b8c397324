package models

import "time"

// SessionTimeout is how long a session stays valid without activity.
const SessionTimeout = 24 * time.Hour

// Session is the client's record of who is logged in. Users is serialized
// as a one-element slice because that is the shape the backend's original
// persistence layer expects back.
type Session struct {
	Users           []User    `json:"user"`
	Token           string    `json:"token"`
	RefreshToken    string    `json:"refreshToken,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	LastActivity    time.Time `json:"lastActivity"`
}

func NewSession(user User, token, refreshToken string) Session {
	return Session{
		Users:           []User{user},
		Token:           token,
		RefreshToken:    refreshToken,
		IsAuthenticated: true,
		LastActivity:    time.Now(),
	}
}

func (s *Session) User() *User {
	if len(s.Users) == 0 {
		return nil
	}
	return &s.Users[0]
}

func (s *Session) SetUser(user User) {
	s.Users = []User{user}
}

// Valid reports whether the session has seen activity within the timeout
// window and still carries a token.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" || !s.IsAuthenticated {
		return false
	}
	return now.Sub(s.LastActivity) < SessionTimeout
}

func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

func (s *Session) Clear() {
	s.Users = nil
	s.Token = ""
	s.RefreshToken = ""
	s.IsAuthenticated = false
	s.LastActivity = time.Now()
}
