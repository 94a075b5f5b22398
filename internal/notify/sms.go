// Package notify sends transactional SMS through Twilio.
package notify

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SMSVerifier struct {
	client *twilio.RestClient
	from   string
}

// NewSMSVerifierFromEnv returns nil when Twilio credentials are not
// configured; callers treat a nil verifier as "SMS disabled".
func NewSMSVerifierFromEnv() *SMSVerifier {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if sid == "" || token == "" || from == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &SMSVerifier{client: client, from: from}
}

// GenerateCode returns a 6-digit verification code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *SMSVerifier) SendCode(phone, code string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody("Your verification code is " + code)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send verification SMS: %w", err)
	}
	return nil
}
