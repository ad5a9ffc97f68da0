package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twapi "github.com/twilio/twilio-go/rest/api/v2010"

	marksvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
)

// TwilioTransport delivers marksheet documents over the Twilio WhatsApp API.
type TwilioTransport struct {
	client *twilio.RestClient
	from   string
}

var _ marksvc.Transport = (*TwilioTransport)(nil)

func NewTwilioTransport(accountSID, authToken, fromNumber string) *TwilioTransport {
	return &TwilioTransport{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: fromNumber,
	}
}

// SendDocument sends the rendered marksheet as a WhatsApp media message.
// Provider rejections come back as a non-success result with the Twilio
// error code; anything else (network, auth) is returned as an error.
func (t *TwilioTransport) SendDocument(ctx context.Context, phone, documentURL, message string) (marksvc.SendResult, error) {
	params := &twapi.CreateMessageParams{}
	params.SetTo(whatsappAddr(phone))
	params.SetFrom(whatsappAddr(t.from))
	params.SetBody(message)
	params.SetMediaUrl([]string{documentURL})

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) {
			log.Printf("[TRANSPORT] Twilio rejected message to %s: %d %s", phone, restErr.Code, restErr.Message)
			return marksvc.SendResult{
				Success:      false,
				ErrorCode:    strconv.Itoa(restErr.Code),
				ErrorMessage: restErr.Message,
			}, nil
		}
		return marksvc.SendResult{}, err
	}

	result := marksvc.SendResult{Success: true}
	if resp.Sid != nil {
		result.ProviderMessageID = *resp.Sid
	}
	return result, nil
}

// whatsappAddr prefixes the channel scheme Twilio expects.
func whatsappAddr(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	if !strings.HasPrefix(phone, "+") {
		// Default to Indian country code for bare 10-digit numbers.
		phone = "+91" + phone
	}
	return "whatsapp:" + phone
}
