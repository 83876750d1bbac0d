package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverLabel(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOK  bool
		wantCat string
		wantSub string
	}{
		{
			name:    "strict JSON",
			text:    `{"category": "personal care", "subcategory": "toothbrush"}`,
			wantOK:  true,
			wantCat: "personal care",
			wantSub: "toothbrush",
		},
		{
			name:    "JSON embedded in prose",
			text:    "Sure! Here is the label: {\"category\": \"soap\", \"subcategory\": \"bar soap\"} Hope that helps.",
			wantOK:  true,
			wantCat: "soap",
			wantSub: "bar soap",
		},
		{
			name:    "trailing comma repaired",
			text:    `{"category": "soap", "subcategory": "bar soap",}`,
			wantOK:  true,
			wantCat: "soap",
			wantSub: "bar soap",
		},
		{
			name:    "single quotes normalized",
			text:    `{'category': 'soap', 'subcategory': 'bar soap'}`,
			wantOK:  true,
			wantCat: "soap",
			wantSub: "bar soap",
		},
		{
			name:    "single quotes and trailing comma",
			text:    `{'category': 'haircare', 'subcategory': 'oil',}`,
			wantOK:  true,
			wantCat: "haircare",
			wantSub: "oil",
		},
		{
			name: "unquoted keys reported as failure, never a panic",
			text: `{category: 'soap', subcategory: 'bar soap',}`,
		},
		{
			name: "no object at all",
			text: "I cannot classify this title.",
		},
		{
			name: "empty reply",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recoverLabel(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCat, got.Category)
				assert.Equal(t, tt.wantSub, got.SubCategory)
			}
		})
	}
}

func TestStripTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a": "b"}`, stripTrailingCommas(`{"a": "b",}`))
	assert.Equal(t, `["a"]`, stripTrailingCommas(`["a", ]`))
	assert.Equal(t, `{"a": "b"}`, stripTrailingCommas(`{"a": "b"}`))
}
