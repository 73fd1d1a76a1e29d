package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tube-pulse/domain/dto"
)

func TestResolveIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKind  dto.IdentifierKind
		wantValue string
		wantOK    bool
	}{
		{
			name:      "channel URL",
			input:     "https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantKind:  dto.IdentifierChannelID,
			wantValue: "UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantOK:    true,
		},
		{
			name:      "channel URL without scheme",
			input:     "youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantKind:  dto.IdentifierChannelID,
			wantValue: "UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantOK:    true,
		},
		{
			name:      "custom URL",
			input:     "https://www.youtube.com/c/GoogleDevelopers",
			wantKind:  dto.IdentifierHandle,
			wantValue: "GoogleDevelopers",
			wantOK:    true,
		},
		{
			name:      "legacy user URL",
			input:     "http://youtube.com/user/GoogleDevelopers",
			wantKind:  dto.IdentifierHandle,
			wantValue: "GoogleDevelopers",
			wantOK:    true,
		},
		{
			name:      "handle URL",
			input:     "https://www.youtube.com/@GoogleDevelopers",
			wantKind:  dto.IdentifierHandle,
			wantValue: "GoogleDevelopers",
			wantOK:    true,
		},
		{
			name:      "bare channel id",
			input:     "UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantKind:  dto.IdentifierChannelID,
			wantValue: "UC_x5XG1OV2P6uZZ5FSM9Ttw",
			wantOK:    true,
		},
		{
			name:      "bare handle with at sign",
			input:     "@GoogleDevelopers",
			wantKind:  dto.IdentifierHandle,
			wantValue: "GoogleDevelopers",
			wantOK:    true,
		},
		{
			name:      "bare handle token",
			input:     "GoogleDevelopers",
			wantKind:  dto.IdentifierHandle,
			wantValue: "GoogleDevelopers",
			wantOK:    true,
		},
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace only", input: "   ", wantOK: false},
		{name: "channel URL with short id", input: "https://www.youtube.com/channel/UCshort", wantOK: false},
		{name: "channel id with bad trailing char", input: "UC_x5XG1OV2P6uZZ5FSM9Ttz", wantOK: false},
		{name: "other site URL", input: "https://vimeo.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw", wantOK: false},
		{name: "unrecognized path", input: "https://www.youtube.com/watch?v=abc123", wantOK: false},
		{name: "token with spaces", input: "not a handle", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := (&Client{}).ResolveIdentifier(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, got.Kind)
				assert.Equal(t, tt.wantValue, got.Value)
			}
		})
	}
}

func TestBatchVideoIDs(t *testing.T) {
	ids := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		ids = append(ids, "video")
	}

	batches := batchVideoIDs(ids, 50)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 50)
	assert.Len(t, batches[2], 20)

	assert.Nil(t, batchVideoIDs(nil, 50))
	assert.Len(t, batchVideoIDs([]string{"a"}, 50), 1)
}
