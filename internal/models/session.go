package models

import "time"

// Session is the client-side login state kept between runs.
type Session struct {
	Token     string      `yaml:"token"`
	User      UserSummary `yaml:"user"`
	CreatedAt time.Time   `yaml:"created_at"`
}

func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}
