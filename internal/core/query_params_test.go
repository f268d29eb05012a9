package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQueryOptionsDefaults(t *testing.T) {
	opts, err := ParseListQueryOptions(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, "desc", opts.SortOrder)
	assert.Empty(t, opts.Status)
}

func TestParseListQueryOptions(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, opts *ListQueryOptions)
	}{
		{"limit and offset", "limit=10&offset=20", false, func(t *testing.T, opts *ListQueryOptions) {
			assert.Equal(t, 10, opts.Limit)
			assert.Equal(t, 20, opts.Offset)
		}},
		{"order is case insensitive", "order=ASC", false, func(t *testing.T, opts *ListQueryOptions) {
			assert.Equal(t, "asc", opts.SortOrder)
		}},
		{"status filter", "status=Error", false, func(t *testing.T, opts *ListQueryOptions) {
			assert.Equal(t, "error", opts.Status)
		}},
		{"limit not a number", "limit=ten", true, nil},
		{"limit zero", "limit=0", true, nil},
		{"limit too large", "limit=501", true, nil},
		{"negative offset", "offset=-1", true, nil},
		{"bad order", "order=sideways", true, nil},
		{"bad status", "status=pending", true, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			opts, err := ParseListQueryOptions(values)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, opts)
				return
			}
			require.NoError(t, err)
			tc.check(t, opts)
		})
	}
}
