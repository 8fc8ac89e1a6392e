package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_Default_Room_Is_Seeded(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(0)

	req.True(registry.Exists(domain.DefaultRoom))
	req.Equal([]string{domain.DefaultRoom}, registry.List())
}

func TestRoomRegistry_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "Empty", input: "", wantErr: errors.ErrInvalidName},
		{name: "Whitespace only", input: " \t\n ", wantErr: errors.ErrInvalidName},
		{name: "Too long", input: strings.Repeat("é", domain.MaxRoomNameLength+1), wantErr: errors.ErrNameTooLong},
		{name: "Existing default", input: "General", wantErr: errors.ErrAlreadyExists},
		{name: "Trimmed", input: "  Sports  ", want: "Sports"},
		{name: "Case sensitive", input: "general", want: "general"},
		{name: "Longest allowed", input: strings.Repeat("é", domain.MaxRoomNameLength), want: strings.Repeat("é", domain.MaxRoomNameLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			registry := NewRoomRegistry(0)

			name, err := registry.Create(tt.input)

			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				req.Len(registry.List(), 1)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, name)
			req.True(registry.Exists(tt.want))
		})
	}
}

func TestRoomRegistry_List_Keeps_Creation_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(0)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := registry.Create(name)
		req.NoError(err)
	}

	req.Equal([]string{"General", "Zeta", "Alpha", "Mid"}, registry.List())

	// The returned slice is a copy
	list := registry.List()
	list[0] = "Mutated"
	req.Equal("General", registry.List()[0])
}

func TestRoomRegistry_Cap(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(2)

	_, err := registry.Create("Sports")
	req.NoError(err)

	_, err = registry.Create("Music")
	req.ErrorIs(err, errors.ErrResourceExhausted)
	req.False(registry.Exists("Music"))

	// Duplicates are still reported as such once the cap is reached
	_, err = registry.Create("Sports")
	req.ErrorIs(err, errors.ErrAlreadyExists)
}
