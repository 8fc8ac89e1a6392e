package auth

import (
	"chat-relay/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const MaxUsernameLength = 32

var validate = validator.New()

type JoinRoomRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Room     string `json:"room" validate:"required,max=64"`
}

// ValidateJoinRoom checks a join_room payload. The username may be empty when
// the connection is authenticated, since the token's name replaces it.
func ValidateJoinRoom(req JoinRoomRequest, authenticated bool) error {
	if authenticated {
		if err := validate.Var(req.Room, "required,max=64"); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		return nil
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

// ValidateMessage rejects empty texts and texts longer than maxLength runes.
// A maxLength of 0 disables the length check.
func ValidateMessage(text string, maxLength int) error {
	tag := "required"
	if maxLength > 0 {
		tag = fmt.Sprintf("required,max=%d", maxLength)
	}
	if err := validate.Var(text, tag); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
