package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommand(t *testing.T) {
	testCases := []struct {
		transcript string
		want       string
		found      bool
	}{
		{"okay so add orange chicken", "add orange chicken", true},
		{"um let's create a bowl", "create a bowl", true},
		{"and add chow mein", "add chow mein", true},
		{"I guess check out now", "check out now", true},
		{"get a bigger plate", "bigger plate", true},
		{"Cancel that", "Cancel that", true},
		{"please, checkout!", "checkout!", true},
		{"restarting", "start", true},
		{"checking out", "", false},
		{"can we check outside", "checkout", true},
		{"two bowls please", "bowl", true},
		{"bigger plates", "plate", true},
		{"restart bigger plates", "start", true},
		{"hello there", "", false},
		{"and and and", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.transcript, func(t *testing.T) {
			got, ok := ExtractCommand(tc.transcript)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
