package command

import (
	"testing"
	"yamble/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = []domain.Param{
	{Name: "music", Type: domain.OptionString, Required: true},
	{Name: "target", Type: domain.OptionChannel},
	{Name: "loud", Type: domain.OptionBool},
	{Name: "sound", Type: domain.OptionAttachment},
}

func TestScanOptions(t *testing.T) {
	attachment := &domain.Attachment{Filename: "a.mp3"}

	args, err := ScanOptions(testParams, []domain.Option{
		{Name: "music", Type: domain.OptionString, String: "horn"},
		{Name: "target", Type: domain.OptionChannel, ChannelID: "42"},
		{Name: "loud", Type: domain.OptionBool, Bool: true},
		{Name: "sound", Type: domain.OptionAttachment, Attachment: attachment},
		{Name: "volume", Type: domain.OptionString, String: "11"},
	})
	require.NoError(t, err)

	music, ok := args.String("music")
	assert.True(t, ok)
	assert.Equal(t, "horn", music)

	target, ok := args.Channel("target")
	assert.True(t, ok)
	assert.Equal(t, "42", target)

	loud, ok := args.Bool("loud")
	assert.True(t, ok)
	assert.True(t, loud)

	got, ok := args.Attachment("sound")
	assert.True(t, ok)
	assert.Same(t, attachment, got)

	_, ok = args.String("volume")
	assert.False(t, ok)
}

func TestScanOptions_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		options []domain.Option
	}{
		{"no options", nil},
		{"only optional", []domain.Option{{Name: "target", Type: domain.OptionChannel, ChannelID: "1"}}},
		{"wrong type", []domain.Option{{Name: "music", Type: domain.OptionBool, Bool: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScanOptions(testParams, tt.options)

			var ue *domain.UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, "missing `music` required parameter", ue.Message)
		})
	}
}

func TestScanOptions_NilAttachmentIsAbsent(t *testing.T) {
	params := []domain.Param{{Name: "sound", Type: domain.OptionAttachment, Required: true}}

	_, err := ScanOptions(params, []domain.Option{{Name: "sound", Type: domain.OptionAttachment}})

	var ue *domain.UserError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Message, "sound")
}
