package session

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Context struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
