package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhatsappAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+919840012345", "whatsapp:+919840012345"},
		{"9840012345", "whatsapp:+919840012345"}, // bare numbers default to +91
		{" +919840012345 ", "whatsapp:+919840012345"},
		{"whatsapp:+919840012345", "whatsapp:+919840012345"},
		{"+14155238886", "whatsapp:+14155238886"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, whatsappAddr(tt.in), "input %q", tt.in)
	}
}
