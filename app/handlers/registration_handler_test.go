package handlers

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icct-platform/registration-backend/app/dto"
)

func validationTestRequest() *dto.RegistrationRequest {
	players := make([]dto.RegistrationPlayer, 0, 11)
	for i := 1; i <= 11; i++ {
		players = append(players, dto.RegistrationPlayer{
			FullName:     fmt.Sprintf("Player %c", 'A'+i-1),
			Role:         "batter",
			JerseyNumber: i,
		})
	}
	return &dto.RegistrationRequest{
		TeamName:      "Northern Knights",
		Institution:   "Test University",
		CaptainName:   "Jordan Smith",
		CaptainEmail:  "captain@example.com",
		CaptainMobile: "+447912345678",
		Players:       players,
		Documents: []dto.RegistrationDocument{
			{
				Kind:          "payment_proof",
				Filename:      "receipt.png",
				ContentBase64: base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n")),
			},
		},
	}
}

func TestRegistrationRequestValidation(t *testing.T) {
	h := NewRegistrationHandler(nil)

	t.Run("ValidRequest", func(t *testing.T) {
		require.NoError(t, h.validator.Struct(validationTestRequest()))
	})

	t.Run("MobileMustBeDigits", func(t *testing.T) {
		req := validationTestRequest()
		req.CaptainMobile = "abcdefghijk"
		assert.Error(t, h.validator.Struct(req))
	})

	t.Run("MobileRequiresPlusPrefix", func(t *testing.T) {
		req := validationTestRequest()
		req.CaptainMobile = "447912345678"
		assert.Error(t, h.validator.Struct(req))
	})

	t.Run("MobileLengthBounds", func(t *testing.T) {
		req := validationTestRequest()
		req.CaptainMobile = "+12345"
		assert.Error(t, h.validator.Struct(req))

		req.CaptainMobile = "+123456789012345678"
		assert.Error(t, h.validator.Struct(req))
	})

	t.Run("CaptainNameRejectsDigitsAndPunctuation", func(t *testing.T) {
		req := validationTestRequest()
		req.CaptainName = "Jordan Smith 123 !!!"
		assert.Error(t, h.validator.Struct(req))
	})

	t.Run("PlayerNameRejectsDigits", func(t *testing.T) {
		req := validationTestRequest()
		req.Players[0].FullName = "Player 1"
		assert.Error(t, h.validator.Struct(req))
	})
}
